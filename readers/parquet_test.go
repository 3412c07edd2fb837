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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/lakeetl/core"
	"github.com/aaronlmathis/lakeetl/writers"
)

func TestParquetReaderRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "roundtrip.parquet")
	ctx := context.Background()

	ts := time.Date(2018, time.November, 15, 0, 30, 26, 0, time.UTC)
	written := []core.Record{
		{"user_id": "26", "level": "paid", "start_time": ts, "session_id": int64(583)},
		{"user_id": "80", "level": "free", "start_time": ts.Add(time.Minute), "session_id": int64(584)},
	}

	writer, err := writers.NewParquetWriter(filename,
		writers.WithFieldOrder([]string{"user_id", "level", "start_time", "session_id"}),
	)
	require.NoError(t, err)
	for _, record := range written {
		require.NoError(t, writer.Write(ctx, record))
	}
	require.NoError(t, writer.Close())

	reader, err := NewParquetReader(filename)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, int64(2), reader.NumRows())

	var read []core.Record
	for {
		record, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		read = append(read, record)
	}

	require.Len(t, read, 2)
	assert.Equal(t, "26", read[0]["user_id"])
	assert.Equal(t, "paid", read[0]["level"])
	assert.Equal(t, int64(583), read[0]["session_id"])

	readTime, ok := read[0]["start_time"].(time.Time)
	require.True(t, ok)
	assert.True(t, readTime.Equal(ts))
}

func TestParquetReaderMissingFile(t *testing.T) {
	_, err := NewParquetReader(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}
