//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2026 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of LakeETL.
//
// LakeETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// LakeETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with LakeETL. If not, see https://www.gnu.org/licenses/.

package writers

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/aaronlmathis/lakeetl/core"
)

// PartitionedWriterError wraps partitioned-write errors with context about the operation.
type PartitionedWriterError struct {
	Op  string // Operation that failed (e.g., "clear_destination", "open_part", "write")
	Err error  // Underlying error
}

func (e *PartitionedWriterError) Error() string {
	return fmt.Sprintf("partitioned writer %s: %v", e.Op, e.Err)
}

func (e *PartitionedWriterError) Unwrap() error {
	return e.Err
}

// PartitionedWriter implements core.DataSink for a Parquet table laid out
// as a partitioned file set:
//
//	<table>/<k1>=<v1>/<k2>=<v2>/part-00000.parquet
//
// Partition columns determine directory layout only; every record keeps
// its full column set. The destination prefix is cleared when the writer
// is created, so each run fully overwrites the table.
type PartitionedWriter struct {
	target      Target
	table       string
	partitionBy []string
	partOpts    []WriterOption
	parts       map[string]*ParquetWriter
	partOrder   []string
	closed      bool
}

// PartitionedOption configures a PartitionedWriter.
type PartitionedOption func(*PartitionedWriter)

// PartitionBy sets up to two partition key columns for the table layout.
func PartitionBy(columns ...string) PartitionedOption {
	return func(w *PartitionedWriter) {
		w.partitionBy = make([]string, len(columns))
		copy(w.partitionBy, columns)
	}
}

// WithPartOptions forwards Parquet writer options to every part file.
func WithPartOptions(options ...WriterOption) PartitionedOption {
	return func(w *PartitionedWriter) {
		w.partOpts = append(w.partOpts, options...)
	}
}

// NewPartitionedWriter creates a sink writing table under target,
// clearing any previous contents of the table prefix first.
func NewPartitionedWriter(ctx context.Context, target Target, table string, options ...PartitionedOption) (*PartitionedWriter, error) {
	w := &PartitionedWriter{
		target: target,
		table:  table,
		parts:  make(map[string]*ParquetWriter),
	}
	for _, option := range options {
		option(w)
	}

	if err := target.RemoveAll(ctx, table); err != nil {
		return nil, &PartitionedWriterError{
			Op:  "clear_destination",
			Err: fmt.Errorf("failed to clear %s: %w", table, err),
		}
	}

	return w, nil
}

// Write implements the core.DataSink interface. The record is routed to
// the part file of its partition, which is created on first use.
func (w *PartitionedWriter) Write(ctx context.Context, record core.Record) error {
	if w.closed {
		return &PartitionedWriterError{
			Op:  "write",
			Err: fmt.Errorf("partitioned writer is closed"),
		}
	}

	dir, err := w.partitionDir(record)
	if err != nil {
		return err
	}

	part, ok := w.parts[dir]
	if !ok {
		key := path.Join(w.table, dir, "part-00000.parquet")
		out, err := w.target.Create(ctx, key)
		if err != nil {
			return &PartitionedWriterError{
				Op:  "open_part",
				Err: fmt.Errorf("failed to open %s: %w", key, err),
			}
		}
		part, err = NewParquetWriterTo(out, w.partOpts...)
		if err != nil {
			out.Close()
			return &PartitionedWriterError{Op: "open_part", Err: err}
		}
		w.parts[dir] = part
		w.partOrder = append(w.partOrder, dir)
	}

	return part.Write(ctx, record)
}

// Flush implements the core.DataSink interface.
func (w *PartitionedWriter) Flush() error {
	for _, dir := range w.partOrder {
		if err := w.parts[dir].Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the core.DataSink interface, closing every part file.
func (w *PartitionedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var firstErr error
	for _, dir := range w.partOrder {
		if err := w.parts[dir].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Partitions returns the partition directories written so far, sorted.
func (w *PartitionedWriter) Partitions() []string {
	dirs := make([]string, len(w.partOrder))
	copy(dirs, w.partOrder)
	sort.Strings(dirs)
	return dirs
}

// partitionDir builds the key=value directory path for a record. Tables
// with no partition columns write directly under the table prefix.
func (w *PartitionedWriter) partitionDir(record core.Record) (string, error) {
	if len(w.partitionBy) == 0 {
		return "", nil
	}

	dir := ""
	for _, column := range w.partitionBy {
		value, exists := record[column]
		if !exists || value == nil {
			return "", &PartitionedWriterError{
				Op:  "partition_key",
				Err: fmt.Errorf("record is missing partition column %s", column),
			}
		}
		dir = path.Join(dir, fmt.Sprintf("%s=%v", column, value))
	}
	return dir, nil
}
