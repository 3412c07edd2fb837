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

package lakeetl

import (
	"github.com/aaronlmathis/lakeetl/core"
)

// Package lakeetl provides a streaming, interface-driven ETL library for Go.
//
// The core types live in the core package; they are re-exported here so
// pipeline construction reads naturally from the root import path.

// Record represents a single data record in the pipeline.
type Record = core.Record

// DataSource streams records from a source (JSON files, S3 objects, Parquet).
type DataSource = core.DataSource

// DataSink writes records to a destination (Parquet file sets, S3 objects).
type DataSink = core.DataSink

// Transformer modifies or enriches records as they pass through the pipeline.
type Transformer = core.Transformer

// Filter decides whether a record is included in the output.
type Filter = core.Filter

// TransformFunc adapts an ordinary function to the Transformer interface.
type TransformFunc = core.TransformFunc

// FilterFunc adapts an ordinary function to the Filter interface.
type FilterFunc = core.FilterFunc

// ErrorHandler processes errors that occur during record processing.
type ErrorHandler = core.ErrorHandler

// ErrorHandlerFunc adapts an ordinary function to the ErrorHandler interface.
type ErrorHandlerFunc = core.ErrorHandlerFunc

// ErrorStrategy selects how pipeline errors are handled.
type ErrorStrategy = core.ErrorStrategy

const (
	// FailFast stops processing on the first error encountered.
	FailFast = core.FailFast
	// SkipErrors continues processing, skipping failed records.
	SkipErrors = core.SkipErrors
	// CollectErrors continues processing, collecting all errors for later inspection.
	CollectErrors = core.CollectErrors
)
