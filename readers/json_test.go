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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONReader(t *testing.T) {
	input := `{"song_id": "SOA", "year": 1982}
{"song_id": "SOB", "year": 0}
`
	reader := NewJSONReader(io.NopCloser(strings.NewReader(input)))
	defer reader.Close()

	ctx := context.Background()

	record, err := reader.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SOA", record["song_id"])
	assert.Equal(t, float64(1982), record["year"])

	record, err = reader.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SOB", record["song_id"])

	_, err = reader.Read(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestJSONReaderSkipsBlankLines(t *testing.T) {
	input := "\n{\"id\": 1}\n\n{\"id\": 2}\n\n"
	reader := NewJSONReader(io.NopCloser(strings.NewReader(input)))
	defer reader.Close()

	ctx := context.Background()

	count := 0
	for {
		_, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
}

func TestJSONReaderMalformedLine(t *testing.T) {
	input := "{not json}\n"
	reader := NewJSONReader(io.NopCloser(strings.NewReader(input)))
	defer reader.Close()

	_, err := reader.Read(context.Background())
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
