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
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/lakeetl/core"
)

// Package writers provides implementations of core.DataSink for writing
// tables to columnar destinations.
//
// This file implements a batching Parquet writer. It supports Arrow schema
// inference from the first record, explicit field ordering, compression,
// and statistics. The writer targets any io.WriteCloser so the same code
// serves local files and buffered object-store uploads.

// ParquetWriterError wraps Parquet-specific write errors with context about the operation.
type ParquetWriterError struct {
	Op  string // Operation that failed (e.g., "write", "flush_batch", "open_file", "schema")
	Err error  // Underlying error
}

// Error returns the error string for ParquetWriterError.
func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for ParquetWriterError.
func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriter implements core.DataSink for a single Parquet file.
type ParquetWriter struct {
	out           io.WriteCloser
	writer        *pqarrow.FileWriter
	schema        *arrow.Schema
	recordCount   int64
	closed        bool
	batchSize     int64
	recordBuffer  []core.Record
	fieldOrder    []string // Track field order for consistent schema
	stats         WriterStats
	errorState    bool // Mark writer as errored
	builders      []array.Builder
	allocator     memory.Allocator
	opts          *ParquetWriterOptions
	fieldIndexMap map[string]int // Cache field name to index mapping
}

// ParquetWriterOptions configures the Parquet writer.
type ParquetWriterOptions struct {
	BatchSize    int64                // Number of records to buffer before writing
	Schema       *arrow.Schema        // Pre-defined schema (optional)
	Compression  compress.Compression // Compression algorithm
	FieldOrder   []string             // Explicit field ordering
	RowGroupSize int64                // Maximum rows per row group
	Metadata     map[string]string    // File metadata
}

// WriterStats holds statistics about the Parquet writer's progress.
type WriterStats struct {
	RecordsWritten  int64
	BatchesWritten  int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// WriterOption represents a configuration function for ParquetWriterOptions.
type WriterOption func(*ParquetWriterOptions)

// WithBatchSize sets the number of records to buffer before writing a batch.
func WithBatchSize(size int64) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.BatchSize = size
	}
}

// WithSchema sets a pre-defined Arrow schema, bypassing inference from
// the first record.
func WithSchema(schema *arrow.Schema) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.Schema = schema
	}
}

// WithCompression sets the Parquet compression algorithm.
func WithCompression(compression compress.Compression) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.Compression = compression
	}
}

// WithFieldOrder sets the explicit field ordering for the Parquet schema.
func WithFieldOrder(fields []string) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.FieldOrder = make([]string, len(fields))
		copy(opts.FieldOrder, fields)
	}
}

// WithRowGroupSize sets the row group size for the Parquet file.
func WithRowGroupSize(size int64) WriterOption {
	return func(opts *ParquetWriterOptions) {
		opts.RowGroupSize = size
	}
}

// WithMetadata sets user metadata for the Parquet file.
func WithMetadata(metadata map[string]string) WriterOption {
	return func(opts *ParquetWriterOptions) {
		if opts.Metadata == nil {
			opts.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			opts.Metadata[k] = v
		}
	}
}

// NewParquetWriter creates a Parquet writer for a local file, creating
// parent directories as needed.
func NewParquetWriter(filename string, options ...WriterOption) (*ParquetWriter, error) {
	dir := filepath.Dir(filename)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &ParquetWriterError{
				Op:  "create_directory",
				Err: fmt.Errorf("failed to create directory %s: %w", dir, err),
			}
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, &ParquetWriterError{
			Op:  "open_file",
			Err: fmt.Errorf("failed to create parquet file %s: %w", filename, err),
		}
	}
	return NewParquetWriterTo(f, options...)
}

// sinkCloser wraps the destination so Close is idempotent and the first
// close error is retained. pqarrow's file writer closes the sink inside a
// defer and drops the error; retaining it here lets ParquetWriter.Close
// report upload and sync failures to the caller.
type sinkCloser struct {
	io.WriteCloser
	closed bool
	err    error
}

func (s *sinkCloser) Close() error {
	if s.closed {
		return s.err
	}
	s.closed = true
	s.err = s.WriteCloser.Close()
	return s.err
}

// NewParquetWriterTo creates a Parquet writer over an arbitrary
// io.WriteCloser. The writer takes ownership of out and closes it when
// Close is called.
func NewParquetWriterTo(out io.WriteCloser, options ...WriterOption) (*ParquetWriter, error) {
	opts := (&ParquetWriterOptions{}).withDefaults()
	for _, option := range options {
		option(opts)
	}

	writer := &ParquetWriter{
		out:          &sinkCloser{WriteCloser: out},
		batchSize:    opts.BatchSize,
		schema:       opts.Schema,
		fieldOrder:   opts.FieldOrder,
		recordBuffer: make([]core.Record, 0, opts.BatchSize),
		stats:        WriterStats{NullValueCounts: make(map[string]int64)},
		allocator:    memory.NewGoAllocator(),
		opts:         opts,
	}

	return writer, nil
}

// Stats returns the current statistics of the Parquet writer.
func (p *ParquetWriter) Stats() WriterStats {
	return p.stats
}

// Write implements the core.DataSink interface.
// Buffers records and writes in batches.
func (p *ParquetWriter) Write(ctx context.Context, record core.Record) error {
	if p.closed {
		return &ParquetWriterError{
			Op:  "write",
			Err: fmt.Errorf("parquet writer is closed"),
		}
	}

	if p.errorState {
		return &ParquetWriterError{
			Op:  "write",
			Err: fmt.Errorf("writer is in error state"),
		}
	}

	if p.schema == nil {
		if err := p.initializeSchemaFromRecord(record); err != nil {
			p.errorState = true
			return &ParquetWriterError{
				Op:  "schema",
				Err: fmt.Errorf("failed to initialize schema: %w", err),
			}
		}
	}

	if p.writer == nil {
		if err := p.initializeWriter(); err != nil {
			p.errorState = true
			return err
		}
	}

	p.recordBuffer = append(p.recordBuffer, record)
	p.recordCount++
	p.stats.RecordsWritten++

	if int64(len(p.recordBuffer)) >= p.batchSize {
		if err := p.flushBatch(); err != nil {
			return &ParquetWriterError{
				Op:  "flush_batch",
				Err: fmt.Errorf("failed to flush batch: %w", err),
			}
		}
	}

	return nil
}

// Flush implements the core.DataSink interface.
// Forces any buffered records to be written to the Parquet file.
func (p *ParquetWriter) Flush() error {
	if len(p.recordBuffer) > 0 {
		return p.flushBatch()
	}
	return nil
}

// Close implements the core.DataSink interface.
// Flushes remaining records, writes the footer, and closes the destination.
func (p *ParquetWriter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	if len(p.recordBuffer) > 0 {
		if err := p.flushBatch(); err != nil {
			return &ParquetWriterError{
				Op:  "flush_remaining",
				Err: fmt.Errorf("failed to flush remaining records: %w", err),
			}
		}
	}

	for _, builder := range p.builders {
		if builder != nil {
			builder.Release()
		}
	}
	p.builders = nil

	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			return &ParquetWriterError{
				Op:  "close_writer",
				Err: fmt.Errorf("failed to close parquet writer: %w", err),
			}
		}
		p.writer = nil
	}

	// pqarrow closes the sink inside a defer and discards its error.
	// The sinkCloser wrapper retained it, so closing again surfaces
	// failures to persist the file (local sync, S3 upload).
	if p.out != nil {
		err := p.out.Close()
		p.out = nil
		if err != nil {
			return &ParquetWriterError{
				Op:  "close_output",
				Err: err,
			}
		}
	}

	return nil
}

// withDefaults applies default values to ParquetWriterOptions.
func (opts *ParquetWriterOptions) withDefaults() *ParquetWriterOptions {
	result := &ParquetWriterOptions{}

	if opts != nil {
		*result = *opts
	}

	if result.BatchSize <= 0 {
		result.BatchSize = 1000
	}
	if result.RowGroupSize <= 0 {
		result.RowGroupSize = 10000
	}
	if result.Compression == 0 {
		result.Compression = compress.Codecs.Snappy
	}
	if result.Metadata == nil {
		result.Metadata = make(map[string]string)
	}

	return result
}

// initializeSchemaFromRecord creates an Arrow schema from the first record.
func (p *ParquetWriter) initializeSchemaFromRecord(record core.Record) error {
	var fields []arrow.Field

	fieldNames := p.fieldOrder
	if fieldNames == nil {
		fieldNames = make([]string, 0, len(record))
		for name := range record {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)
		p.fieldOrder = fieldNames
	}

	for _, name := range fieldNames {
		value, exists := record[name]

		var dataType arrow.DataType
		var err error

		if exists && value != nil {
			if dataType, err = inferArrowType(value); err != nil {
				return &ParquetWriterError{
					Op:  "schema",
					Err: fmt.Errorf("failed to infer arrow type for field %s: %w", name, err),
				}
			}
		} else {
			// Field missing or null in the first record - default to string
			dataType = arrow.BinaryTypes.String
		}

		fields = append(fields, arrow.Field{
			Name:     name,
			Type:     dataType,
			Nullable: true,
		})
	}

	p.fieldIndexMap = make(map[string]int, len(fieldNames))
	for i, name := range fieldNames {
		p.fieldIndexMap[name] = i
	}
	p.schema = arrow.NewSchema(fields, nil)

	return nil
}

// initializeWriter creates the pqarrow file writer and the array builders.
func (p *ParquetWriter) initializeWriter() error {
	if p.fieldOrder == nil {
		names := make([]string, 0, len(p.schema.Fields()))
		for _, f := range p.schema.Fields() {
			names = append(names, f.Name)
		}
		p.fieldOrder = names
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(p.opts.Compression),
		parquet.WithMaxRowGroupLength(p.opts.RowGroupSize),
	)

	writer, err := pqarrow.NewFileWriter(p.schema, p.out, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return &ParquetWriterError{
			Op:  "create_writer",
			Err: fmt.Errorf("failed to create parquet file writer: %w", err),
		}
	}
	p.writer = writer

	return p.initializeBuilders()
}

// inferArrowType infers the Arrow data type from a Go value.
func inferArrowType(value interface{}) (arrow.DataType, error) {
	if value == nil {
		return arrow.BinaryTypes.String, nil
	}

	switch v := value.(type) {
	case bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case int32:
		return arrow.PrimitiveTypes.Int32, nil
	case int64:
		return arrow.PrimitiveTypes.Int64, nil
	case int:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			return arrow.PrimitiveTypes.Int32, nil
		}
		return arrow.PrimitiveTypes.Int64, nil
	case float32:
		return arrow.PrimitiveTypes.Float32, nil
	case float64:
		return arrow.PrimitiveTypes.Float64, nil
	case string:
		return arrow.BinaryTypes.String, nil
	case time.Time:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	case []byte:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, &ParquetWriterError{
			Op:  "type_inference",
			Err: fmt.Errorf("unsupported type %T for value %v", value, value),
		}
	}
}

// flushBatch writes the current buffer to the Parquet file.
func (p *ParquetWriter) flushBatch() error {
	if len(p.recordBuffer) == 0 {
		return nil
	}

	startTime := time.Now()

	record, err := p.createArrowRecord(p.recordBuffer)
	if err != nil {
		p.errorState = true
		return &ParquetWriterError{
			Op:  "create_arrow_record",
			Err: fmt.Errorf("failed to create arrow record: %w", err),
		}
	}
	defer record.Release()

	if err := p.writer.Write(record); err != nil {
		p.errorState = true
		return &ParquetWriterError{
			Op:  "write_batch",
			Err: fmt.Errorf("failed to write record batch: %w", err),
		}
	}

	p.stats.BatchesWritten++
	p.stats.FlushDuration += time.Since(startTime)
	p.stats.LastFlushTime = time.Now()

	p.recordBuffer = p.recordBuffer[:0]

	return nil
}

// createArrowRecord converts a slice of core.Record to an Arrow Record.
func (p *ParquetWriter) createArrowRecord(records []core.Record) (arrow.Record, error) {
	if len(records) == 0 {
		return nil, &ParquetWriterError{
			Op:  "create_arrow_record",
			Err: fmt.Errorf("no records to convert"),
		}
	}

	for _, record := range records {
		// Process ALL fields in fieldOrder for consistent schema
		for i, fieldName := range p.fieldOrder {
			value, exists := record[fieldName]

			if !exists || value == nil {
				p.builders[i].AppendNull()
				p.stats.NullValueCounts[fieldName]++
				continue
			}

			if err := p.appendValueToBuilder(p.builders[i], value, fieldName); err != nil {
				return nil, &ParquetWriterError{
					Op:  "append_value",
					Err: fmt.Errorf("failed to append value for field %s: %w", fieldName, err),
				}
			}
		}
	}

	arrays := make([]arrow.Array, len(p.builders))
	for i, builder := range p.builders {
		arrays[i] = builder.NewArray()
		defer arrays[i].Release()
	}

	return array.NewRecord(p.schema, arrays, int64(len(records))), nil
}

// appendValueToBuilder appends a value to the appropriate Arrow array builder.
func (p *ParquetWriter) appendValueToBuilder(builder array.Builder, value interface{}, fieldName string) error {
	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.Int32Builder:
		switch v := value.(type) {
		case int:
			if v >= math.MinInt32 && v <= math.MaxInt32 {
				b.Append(int32(v))
			} else {
				return &ParquetWriterError{
					Op:  "append_value",
					Err: fmt.Errorf("int value %d out of range for int32 field %s", v, fieldName),
				}
			}
		case int32:
			b.Append(v)
		default:
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.Int64Builder:
		switch v := value.(type) {
		case int64:
			b.Append(v)
		case int:
			b.Append(int64(v))
		default:
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.Float32Builder:
		switch v := value.(type) {
		case float32:
			b.Append(v)
		case float64:
			b.Append(float32(v))
		default:
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.Float64Builder:
		switch v := value.(type) {
		case float64:
			b.Append(v)
		case float32:
			b.Append(float64(v))
		default:
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.StringBuilder:
		if v, ok := value.(string); ok {
			b.Append(v)
		} else {
			b.Append(fmt.Sprintf("%v", value))
		}
	case *array.TimestampBuilder:
		switch v := value.(type) {
		case time.Time:
			b.Append(arrow.Timestamp(v.UnixMicro()))
		default:
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	case *array.BinaryBuilder:
		if v, ok := value.([]byte); ok {
			b.Append(v)
		} else {
			b.AppendNull()
			p.stats.NullValueCounts[fieldName]++
		}
	default:
		return &ParquetWriterError{
			Op:  "append_value",
			Err: fmt.Errorf("unsupported builder type for field %s", fieldName),
		}
	}
	return nil
}

// initializeBuilders initializes Arrow array builders for the schema.
func (p *ParquetWriter) initializeBuilders() error {
	if p.builders != nil {
		return nil
	}
	p.builders = make([]array.Builder, len(p.fieldOrder))
	for i, fieldName := range p.fieldOrder {
		var field arrow.Field
		found := false
		for _, f := range p.schema.Fields() {
			if f.Name == fieldName {
				field = f
				found = true
				break
			}
		}
		if !found {
			return &ParquetWriterError{
				Op:  "initialize_builders",
				Err: fmt.Errorf("field %s not found in schema", fieldName),
			}
		}
		p.builders[i] = array.NewBuilder(p.allocator, field.Type)
	}
	return nil
}
