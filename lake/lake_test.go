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

package lake

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/lakeetl/core"
	"github.com/aaronlmathis/lakeetl/readers"
)

const (
	// 2018-11-15T00:30:26.796Z
	tsMatched = "1542241826796"
	// 2018-11-15T00:41:21.796Z
	tsUnmatched = "1542242481796"
	// 2018-11-15T03:44:09.796Z
	tsAnonymous = "1542253449796"
)

func writeInputFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

// seedInput lays out a miniature raw data set: two catalog songs (one
// duplicated across files) and four log events covering a matched play,
// an unmatched play, an anonymous play, and a non-play page view.
func seedInput(t *testing.T, input string) {
	t.Helper()

	writeInputFile(t, filepath.Join(input, "song_data", "A", "A", "TRAAA.json"),
		`{"num_songs": 1, "artist_id": "AR5KOSW1187FB35FF4", "artist_latitude": null, "artist_longitude": null, "artist_location": "Dubai UAE", "artist_name": "Elena", "song_id": "SOZCTXZ12AB0182364", "title": "Setanta matins", "duration": 269.58, "year": 0}`)
	writeInputFile(t, filepath.Join(input, "song_data", "A", "B", "TRAAB.json"),
		`{"num_songs": 1, "artist_id": "ARMJAGH1187FB546F3", "artist_latitude": 35.14968, "artist_longitude": -90.04892, "artist_location": "Memphis, TN", "artist_name": "The Box Tops", "song_id": "SOCIWDW12A8C13D406", "title": "Soul Deep", "duration": 148.03, "year": 1969}`)
	// Duplicate of the first song, as a redelivered file would produce.
	writeInputFile(t, filepath.Join(input, "song_data", "A", "C", "TRAAC.json"),
		`{"num_songs": 1, "artist_id": "AR5KOSW1187FB35FF4", "artist_latitude": null, "artist_longitude": null, "artist_location": "Dubai UAE", "artist_name": "Elena", "song_id": "SOZCTXZ12AB0182364", "title": "Setanta matins", "duration": 269.58, "year": 0}`)

	writeInputFile(t, filepath.Join(input, "log_data", "2018-11-15-events.json"),
		`{"artist": "Elena", "auth": "Logged In", "firstName": "Ryan", "gender": "M", "itemInSession": 0, "lastName": "Smith", "length": 269.58, "level": "free", "location": "San Jose-Sunnyvale-Santa Clara, CA", "method": "PUT", "page": "NextSong", "registration": 1541016707796.0, "sessionId": 583, "song": "Setanta matins", "status": 200, "ts": `+tsMatched+`, "userAgent": "Mozilla/5.0", "userId": "26"}`,
		`{"artist": "Sydney Youngblood", "auth": "Logged In", "firstName": "Ryan", "gender": "M", "itemInSession": 1, "lastName": "Smith", "length": 238.07, "level": "paid", "location": "San Jose-Sunnyvale-Santa Clara, CA", "method": "PUT", "page": "NextSong", "registration": 1541016707796.0, "sessionId": 583, "song": "Ain't No Sunshine", "status": 200, "ts": `+tsUnmatched+`, "userAgent": "Mozilla/5.0", "userId": "26"}`,
		`{"artist": "The Box Tops", "auth": "Logged Out", "firstName": null, "gender": null, "itemInSession": 0, "lastName": null, "length": 148.03, "level": "free", "location": null, "method": "PUT", "page": "NextSong", "registration": null, "sessionId": 602, "song": "Soul Deep", "status": 200, "ts": `+tsAnonymous+`, "userAgent": "Mozilla/5.0", "userId": ""}`,
		`{"artist": null, "auth": "Logged In", "firstName": "Ryan", "gender": "M", "itemInSession": 2, "lastName": "Smith", "length": null, "level": "paid", "location": "San Jose-Sunnyvale-Santa Clara, CA", "method": "GET", "page": "Home", "registration": 1541016707796.0, "sessionId": 583, "song": null, "status": 200, "ts": `+tsUnmatched+`, "userAgent": "Mozilla/5.0", "userId": "26"}`)
}

// readTable loads every part file under a table directory.
func readTable(t *testing.T, dir string) []core.Record {
	t.Helper()

	var records []core.Record
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".parquet") {
			return nil
		}
		reader, err := readers.NewParquetReader(path)
		if err != nil {
			return err
		}
		defer reader.Close()
		for {
			record, err := reader.Read(context.Background())
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			records = append(records, record)
		}
	})
	require.NoError(t, err)
	return records
}

func findBy(records []core.Record, field string, value interface{}) core.Record {
	for _, record := range records {
		if record[field] == value {
			return record
		}
	}
	return nil
}

func TestSessionRunEndToEnd(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	seedInput(t, input)

	cfg := Config{
		Region:     "us-west-2",
		InputData:  input,
		OutputData: output,
	}

	ctx := context.Background()
	session, err := NewSession(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, session.Run(ctx))

	t.Run("songs", func(t *testing.T) {
		songs := readTable(t, filepath.Join(output, "songs.parquet"))
		require.Len(t, songs, 2)

		soul := findBy(songs, "song_id", "SOCIWDW12A8C13D406")
		require.NotNil(t, soul)
		assert.Equal(t, "Soul Deep", soul["title"])
		assert.Equal(t, int32(1969), soul["year"])
		assert.Equal(t, 148.03, soul["duration"])

		// Partition layout is year then artist_id.
		_, err := os.Stat(filepath.Join(output, "songs.parquet",
			"year=1969", "artist_id=ARMJAGH1187FB546F3", "part-00000.parquet"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(output, "songs.parquet",
			"year=0", "artist_id=AR5KOSW1187FB35FF4", "part-00000.parquet"))
		assert.NoError(t, err)
	})

	t.Run("artists", func(t *testing.T) {
		artists := readTable(t, filepath.Join(output, "artists.parquet"))
		require.Len(t, artists, 2)

		boxTops := findBy(artists, "artist_id", "ARMJAGH1187FB546F3")
		require.NotNil(t, boxTops)
		assert.Equal(t, "The Box Tops", boxTops["name"])
		assert.Equal(t, "Memphis, TN", boxTops["location"])
		assert.Equal(t, 35.14968, boxTops["latitude"])

		elena := findBy(artists, "artist_id", "AR5KOSW1187FB35FF4")
		require.NotNil(t, elena)
		assert.Nil(t, elena["latitude"])
	})

	t.Run("users", func(t *testing.T) {
		users := readTable(t, filepath.Join(output, "users.parquet"))
		require.Len(t, users, 1)

		// The later event wins, so the level reflects the upgrade.
		assert.Equal(t, "26", users[0]["user_id"])
		assert.Equal(t, "Ryan", users[0]["first_name"])
		assert.Equal(t, "Smith", users[0]["last_name"])
		assert.Equal(t, "paid", users[0]["level"])
	})

	t.Run("time", func(t *testing.T) {
		times := readTable(t, filepath.Join(output, "time.parquet"))
		require.Len(t, times, 3)

		for _, row := range times {
			assert.Equal(t, int32(2018), row["year"])
			assert.Equal(t, int32(11), row["month"])
			assert.Equal(t, int32(15), row["day"])
			assert.Equal(t, int32(5), row["weekday"]) // Thursday
		}

		_, err := os.Stat(filepath.Join(output, "time.parquet",
			"year=2018", "month=11", "part-00000.parquet"))
		assert.NoError(t, err)
	})

	t.Run("songplays", func(t *testing.T) {
		plays := readTable(t, filepath.Join(output, "songplays.parquet"))
		require.Len(t, plays, 3)

		matched := findBy(plays, "song_id", "SOZCTXZ12AB0182364")
		require.NotNil(t, matched)
		assert.Equal(t, "AR5KOSW1187FB35FF4", matched["artist_id"])
		assert.Equal(t, "26", matched["user_id"])
		assert.Equal(t, int32(583), matched["session_id"])

		// The anonymous play matches the catalog too; one play stays unmatched.
		var unmatched int
		for _, play := range plays {
			if play["song_id"] == nil {
				unmatched++
				assert.Nil(t, play["artist_id"])
			}
		}
		assert.Equal(t, 1, unmatched)

		ids := map[interface{}]bool{}
		for _, play := range plays {
			require.NotNil(t, play["songplay_id"])
			ids[play["songplay_id"]] = true
			assert.Equal(t, int32(2018), play["year"])
			assert.Equal(t, int32(11), play["month"])
		}
		assert.Len(t, ids, 3)

		_, err := os.Stat(filepath.Join(output, "songplays.parquet",
			"year=2018", "month=11", "part-00000.parquet"))
		assert.NoError(t, err)
	})
}

func TestSessionRunOverwritesPreviousOutput(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	seedInput(t, input)

	stale := filepath.Join(output, "songs.parquet", "year=1999", "artist_id=GONE", "part-00000.parquet")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("previous run"), 0o644))

	cfg := Config{Region: "us-west-2", InputData: input, OutputData: output}

	ctx := context.Background()
	session, err := NewSession(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, session.Run(ctx))

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessSongDataReturnsCatalog(t *testing.T) {
	input := t.TempDir()
	output := t.TempDir()
	seedInput(t, input)

	cfg := Config{Region: "us-west-2", InputData: input, OutputData: output}

	ctx := context.Background()
	session, err := NewSession(ctx, cfg)
	require.NoError(t, err)

	songs, err := session.ProcessSongData(ctx)
	require.NoError(t, err)
	// Raw records, duplicates included.
	assert.Len(t, songs, 3)
}
