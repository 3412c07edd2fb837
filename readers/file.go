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
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aaronlmathis/lakeetl/core"
)

// FileReaderError provides structured error information for file reader operations.
type FileReaderError struct {
	Op  string // Operation that failed (e.g., "walk", "open_file", "read")
	Err error  // Underlying error
}

func (e *FileReaderError) Error() string {
	return fmt.Sprintf("file reader %s: %v", e.Op, e.Err)
}

func (e *FileReaderError) Unwrap() error {
	return e.Err
}

// FileReader implements core.DataSource for a directory tree of
// line-delimited JSON files. Files are discovered once at construction,
// processed in key order, and streamed one record at a time. It is the
// local-filesystem counterpart of S3Reader.
type FileReader struct {
	files         []string
	currentIndex  int
	currentReader core.DataSource
}

// NewFileReader walks root recursively and collects every file whose name
// ends in suffix (".json" when suffix is empty). The listing is sorted so
// record order is stable across runs.
func NewFileReader(root, suffix string) (*FileReader, error) {
	if suffix == "" {
		suffix = ".json"
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &FileReaderError{Op: "walk", Err: err}
	}
	sort.Strings(files)

	return &FileReader{files: files}, nil
}

// Read implements the core.DataSource interface.
func (f *FileReader) Read(ctx context.Context) (core.Record, error) {
	select {
	case <-ctx.Done():
		return nil, &FileReaderError{Op: "read", Err: ctx.Err()}
	default:
	}

	for {
		if f.currentReader == nil {
			if f.currentIndex >= len(f.files) {
				return nil, io.EOF
			}
			file, err := os.Open(f.files[f.currentIndex])
			if err != nil {
				return nil, &FileReaderError{Op: "open_file", Err: err}
			}
			f.currentReader = NewJSONReader(file)
		}

		record, err := f.currentReader.Read(ctx)
		if err == io.EOF {
			f.closeCurrentReader()
			continue
		}
		if err != nil {
			return nil, &FileReaderError{Op: "read_record", Err: err}
		}
		return record, nil
	}
}

// Close implements the core.DataSource interface.
func (f *FileReader) Close() error {
	return f.closeCurrentReader()
}

// Files returns the discovered file list in processing order.
func (f *FileReader) Files() []string {
	return f.files
}

func (f *FileReader) closeCurrentReader() error {
	if f.currentReader != nil {
		err := f.currentReader.Close()
		f.currentReader = nil
		f.currentIndex++
		return err
	}
	return nil
}
