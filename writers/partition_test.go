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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/lakeetl/core"
)

func TestPartitionedWriterLayout(t *testing.T) {
	dir := t.TempDir()
	target := NewLocalTarget(dir)
	ctx := context.Background()

	writer, err := NewPartitionedWriter(ctx, target, "songs.parquet",
		PartitionBy("year", "artist_id"),
	)
	require.NoError(t, err)

	records := []core.Record{
		{"song_id": "SOA", "year": 1982, "artist_id": "AR1", "duration": 269.58},
		{"song_id": "SOB", "year": 1982, "artist_id": "AR1", "duration": 148.03},
		{"song_id": "SOC", "year": 0, "artist_id": "AR2", "duration": 186.48},
	}
	for _, record := range records {
		require.NoError(t, writer.Write(ctx, record))
	}
	require.NoError(t, writer.Close())

	assert.Equal(t, []string{"year=0/artist_id=AR2", "year=1982/artist_id=AR1"}, writer.Partitions())

	for _, part := range []string{
		"songs.parquet/year=1982/artist_id=AR1/part-00000.parquet",
		"songs.parquet/year=0/artist_id=AR2/part-00000.parquet",
	} {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(part)))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPartitionedWriterOverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	target := NewLocalTarget(dir)
	ctx := context.Background()

	stale := filepath.Join(dir, "time.parquet", "year=2017", "month=1", "part-00000.parquet")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old run"), 0o644))

	writer, err := NewPartitionedWriter(ctx, target, "time.parquet",
		PartitionBy("year", "month"),
	)
	require.NoError(t, err)

	require.NoError(t, writer.Write(ctx, core.Record{"start_time": int64(1), "year": 2018, "month": 11}))
	require.NoError(t, writer.Close())

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "time.parquet", "year=2018", "month=11", "part-00000.parquet"))
	assert.NoError(t, err)
}

func TestPartitionedWriterNoPartitionColumns(t *testing.T) {
	dir := t.TempDir()
	target := NewLocalTarget(dir)
	ctx := context.Background()

	writer, err := NewPartitionedWriter(ctx, target, "artists.parquet")
	require.NoError(t, err)

	require.NoError(t, writer.Write(ctx, core.Record{"artist_id": "AR1", "name": "Elena"}))
	require.NoError(t, writer.Close())

	_, err = os.Stat(filepath.Join(dir, "artists.parquet", "part-00000.parquet"))
	assert.NoError(t, err)
}

func TestPartitionedWriterMissingPartitionColumn(t *testing.T) {
	dir := t.TempDir()
	target := NewLocalTarget(dir)
	ctx := context.Background()

	writer, err := NewPartitionedWriter(ctx, target, "songs.parquet",
		PartitionBy("year"),
	)
	require.NoError(t, err)
	defer writer.Close()

	err = writer.Write(ctx, core.Record{"song_id": "SOA"})
	assert.Error(t, err)

	err = writer.Write(ctx, core.Record{"song_id": "SOB", "year": nil})
	assert.Error(t, err)
}

func TestPartitionedWriterEmptyRunCreatesNoParts(t *testing.T) {
	dir := t.TempDir()
	target := NewLocalTarget(dir)
	ctx := context.Background()

	writer, err := NewPartitionedWriter(ctx, target, "users.parquet")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	_, err = os.Stat(filepath.Join(dir, "users.parquet"))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, writer.Partitions())
}
