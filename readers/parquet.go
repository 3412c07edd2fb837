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

package readers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/lakeetl/core"
)

// ParquetReaderError provides structured error information for parquet reader operations.
type ParquetReaderError struct {
	Op  string // Operation that failed (e.g., "open_file", "load_batch", "read")
	Err error  // Underlying error
}

func (e *ParquetReaderError) Error() string {
	return fmt.Sprintf("parquet reader %s: %v", e.Op, e.Err)
}

func (e *ParquetReaderError) Unwrap() error {
	return e.Err
}

// ParquetReader implements core.DataSource for Parquet files.
// Rows are decoded back into Records; timestamps come back as time.Time.
// Its main consumer is verification of written table partitions.
type ParquetReader struct {
	fileHandle      *os.File
	reader          *file.Reader
	arrowReader     *pqarrow.FileReader
	recordReader    pqarrow.RecordReader
	currentBatch    arrow.Record
	currentBatchIdx int
	totalRows       int64
	schema          *arrow.Schema
	recordsRead     int64
}

// NewParquetReader opens a Parquet file and prepares an Arrow RecordReader.
func NewParquetReader(filename string) (*ParquetReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParquetReaderError{Op: "open_file", Err: err}
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_reader", Err: err}
	}

	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{BatchSize: 1024}, memory.NewGoAllocator())
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_arrow_reader", Err: err}
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "get_schema", Err: err}
	}

	recordReader, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		f.Close()
		return nil, &ParquetReaderError{Op: "create_record_reader", Err: err}
	}

	return &ParquetReader{
		fileHandle:   f,
		reader:       parquetReader,
		arrowReader:  arrowReader,
		recordReader: recordReader,
		totalRows:    parquetReader.NumRows(),
		schema:       schema,
	}, nil
}

// Read reads the next row from the Parquet file, returning io.EOF at the end.
func (p *ParquetReader) Read(ctx context.Context) (core.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &ParquetReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	if p.currentBatch == nil || p.currentBatchIdx >= int(p.currentBatch.NumRows()) {
		if err := p.loadNextBatch(); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, &ParquetReaderError{Op: "load_batch", Err: err}
		}
	}

	result := p.extractRecordFromBatch(p.currentBatch, p.currentBatchIdx)
	p.currentBatchIdx++
	p.recordsRead++

	return result, nil
}

// Close releases resources and closes the underlying file.
func (p *ParquetReader) Close() error {
	if p.currentBatch != nil {
		p.currentBatch.Release()
		p.currentBatch = nil
	}
	if p.recordReader != nil {
		p.recordReader.Release()
		p.recordReader = nil
	}
	if p.fileHandle != nil {
		return p.fileHandle.Close()
	}
	return nil
}

// Schema returns the Arrow schema of the Parquet file.
func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

// NumRows returns the total row count recorded in the file footer.
func (p *ParquetReader) NumRows() int64 {
	return p.totalRows
}

func (p *ParquetReader) loadNextBatch() error {
	if p.currentBatch != nil {
		p.currentBatch.Release()
		p.currentBatch = nil
	}

	rec, err := p.recordReader.Read()
	if err != nil {
		return err
	}
	if rec == nil || rec.NumRows() == 0 {
		return io.EOF
	}
	rec.Retain()
	p.currentBatch = rec
	p.currentBatchIdx = 0
	return nil
}

// extractRecordFromBatch builds a core.Record from a row in an Arrow record batch.
func (p *ParquetReader) extractRecordFromBatch(record arrow.Record, pos int) core.Record {
	res := make(core.Record)
	sch := record.Schema()
	for i := 0; i < int(record.NumCols()); i++ {
		field := sch.Field(i)
		res[field.Name] = extractValueFromColumn(record.Column(i), pos)
	}
	return res
}

func extractValueFromColumn(col arrow.Array, rowIdx int) interface{} {
	if col.IsNull(rowIdx) {
		return nil
	}

	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(rowIdx)
	case *array.Int32:
		return arr.Value(rowIdx)
	case *array.Int64:
		return arr.Value(rowIdx)
	case *array.Float32:
		return arr.Value(rowIdx)
	case *array.Float64:
		return arr.Value(rowIdx)
	case *array.String:
		return arr.Value(rowIdx)
	case *array.Binary:
		return arr.Value(rowIdx)
	case *array.Timestamp:
		return arr.Value(rowIdx).ToTime(arrow.Microsecond)
	case *array.Date32:
		return arr.Value(rowIdx).ToTime()
	case *array.Date64:
		return arr.Value(rowIdx).ToTime()
	default:
		return fmt.Sprintf("%v", col.GetOneForMarshal(rowIdx))
	}
}
