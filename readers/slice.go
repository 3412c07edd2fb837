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
	"io"

	"github.com/aaronlmathis/lakeetl/core"
)

// SliceReader implements core.DataSource over an in-memory relation.
// Materialized tables (dedup and join results) are fed back through a
// pipeline to a sink with it.
type SliceReader struct {
	records []core.Record
	index   int
}

// NewSliceReader creates a DataSource that yields records in slice order.
func NewSliceReader(records []core.Record) *SliceReader {
	return &SliceReader{records: records}
}

// Read implements the core.DataSource interface.
func (s *SliceReader) Read(ctx context.Context) (core.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if s.index >= len(s.records) {
		return nil, io.EOF
	}
	record := s.records[s.index]
	s.index++
	return record, nil
}

// Close implements the core.DataSource interface.
func (s *SliceReader) Close() error {
	return nil
}
