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

package transform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/lakeetl/core"
)

func TestSelect(t *testing.T) {
	ctx := context.Background()
	record := core.Record{"a": 1, "b": "two", "c": 3.0}

	result, err := Select("a", "c").Transform(ctx, record)
	require.NoError(t, err)

	assert.Equal(t, core.Record{"a": 1, "c": 3.0}, result)
	// Selecting an absent field must not materialize it.
	result, err = Select("a", "missing").Transform(ctx, record)
	require.NoError(t, err)
	_, exists := result["missing"]
	assert.False(t, exists)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	record := core.Record{"userId": "42", "level": "paid"}

	result, err := Rename(map[string]string{"userId": "user_id"}).Transform(ctx, record)
	require.NoError(t, err)

	assert.Equal(t, "42", result["user_id"])
	assert.Equal(t, "paid", result["level"])
	_, exists := result["userId"]
	assert.False(t, exists)

	// Original record is untouched.
	assert.Equal(t, "42", record["userId"])
}

func TestToInt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		value    interface{}
		expected interface{}
	}{
		{"float64", float64(1982), 1982},
		{"int64", int64(7), 7},
		{"int32", int32(7), 7},
		{"string", "583", 583},
		{"already_int", 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToInt("year").Transform(ctx, core.Record{"year": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result["year"])
		})
	}

	t.Run("nil_untouched", func(t *testing.T) {
		result, err := ToInt("year").Transform(ctx, core.Record{"year": nil})
		require.NoError(t, err)
		assert.Nil(t, result["year"])
	})

	t.Run("bad_string", func(t *testing.T) {
		_, err := ToInt("year").Transform(ctx, core.Record{"year": "not a number"})
		assert.Error(t, err)
	})
}

func TestToString(t *testing.T) {
	ctx := context.Background()

	result, err := ToString("user_id").Transform(ctx, core.Record{"user_id": float64(26)})
	require.NoError(t, err)
	assert.Equal(t, "26", result["user_id"])

	result, err = ToString("user_id").Transform(ctx, core.Record{"user_id": "26"})
	require.NoError(t, err)
	assert.Equal(t, "26", result["user_id"])
}

func TestEpochMillis(t *testing.T) {
	ctx := context.Background()

	// 2018-11-15T00:30:26.796Z, as the JSON decoder delivers it.
	result, err := EpochMillis("ts", "start_time").Transform(ctx, core.Record{"ts": float64(1542241826796)})
	require.NoError(t, err)

	start, ok := result["start_time"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, start.Location())
	assert.Equal(t, 2018, start.Year())
	assert.Equal(t, time.November, start.Month())
	assert.Equal(t, 15, start.Day())
	assert.Equal(t, int64(1542241826796), start.UnixMilli())

	// Source field stays available for later stages.
	assert.Equal(t, float64(1542241826796), result["ts"])
}

func TestEpochMillisMissingField(t *testing.T) {
	ctx := context.Background()

	result, err := EpochMillis("ts", "start_time").Transform(ctx, core.Record{"page": "Home"})
	require.NoError(t, err)
	_, exists := result["start_time"]
	assert.False(t, exists)
}

func TestTimeParts(t *testing.T) {
	ctx := context.Background()

	// Thursday 2018-11-15 00:30:26 UTC.
	ts := time.Date(2018, time.November, 15, 0, 30, 26, 0, time.UTC)
	result, err := TimeParts("start_time").Transform(ctx, core.Record{"start_time": ts})
	require.NoError(t, err)

	assert.Equal(t, 0, result["hour"])
	assert.Equal(t, 15, result["day"])
	assert.Equal(t, 46, result["week"])
	assert.Equal(t, 11, result["month"])
	assert.Equal(t, 2018, result["year"])
	assert.Equal(t, 5, result["weekday"]) // 1=Sunday, Thursday=5
}

func TestTimePartsSundayWeekday(t *testing.T) {
	ctx := context.Background()

	ts := time.Date(2018, time.November, 18, 12, 0, 0, 0, time.UTC)
	result, err := TimeParts("start_time").Transform(ctx, core.Record{"start_time": ts})
	require.NoError(t, err)
	assert.Equal(t, 1, result["weekday"])
}

func TestAddField(t *testing.T) {
	ctx := context.Background()

	result, err := AddField("source", func(core.Record) interface{} { return "logs" }).
		Transform(ctx, core.Record{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "logs", result["source"])
}
