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
	"github.com/apache/arrow/go/v12/arrow"
)

// tableSpec fixes a table's destination name, column schema, and
// partition layout. Declaring schemas up front keeps column types stable
// even when a column is null in the first record of a part file.
type tableSpec struct {
	name        string
	schema      *arrow.Schema
	partitionBy []string
}

// fieldNames returns the column names in schema order.
func (t tableSpec) fieldNames() []string {
	fields := t.schema.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func utf8Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
}

func int32Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int32, Nullable: true}
}

func int64Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}
}

func float64Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
}

func timestampField(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true}
}

var songsTable = tableSpec{
	name: "songs.parquet",
	schema: arrow.NewSchema([]arrow.Field{
		utf8Field("song_id"),
		utf8Field("title"),
		utf8Field("artist_id"),
		int32Field("year"),
		float64Field("duration"),
	}, nil),
	partitionBy: []string{"year", "artist_id"},
}

var artistsTable = tableSpec{
	name: "artists.parquet",
	schema: arrow.NewSchema([]arrow.Field{
		utf8Field("artist_id"),
		utf8Field("name"),
		utf8Field("location"),
		float64Field("latitude"),
		float64Field("longitude"),
	}, nil),
}

var usersTable = tableSpec{
	name: "users.parquet",
	schema: arrow.NewSchema([]arrow.Field{
		utf8Field("user_id"),
		utf8Field("first_name"),
		utf8Field("last_name"),
		utf8Field("gender"),
		utf8Field("level"),
	}, nil),
}

var timeTable = tableSpec{
	name: "time.parquet",
	schema: arrow.NewSchema([]arrow.Field{
		timestampField("start_time"),
		int32Field("hour"),
		int32Field("day"),
		int32Field("week"),
		int32Field("month"),
		int32Field("year"),
		int32Field("weekday"),
	}, nil),
	partitionBy: []string{"year", "month"},
}

var songplaysTable = tableSpec{
	name: "songplays.parquet",
	schema: arrow.NewSchema([]arrow.Field{
		int64Field("songplay_id"),
		timestampField("start_time"),
		utf8Field("user_id"),
		utf8Field("level"),
		utf8Field("song_id"),
		utf8Field("artist_id"),
		int32Field("session_id"),
		utf8Field("location"),
		utf8Field("user_agent"),
		int32Field("year"),
		int32Field("month"),
	}, nil),
	partitionBy: []string{"year", "month"},
}
