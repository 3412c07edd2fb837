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
	"fmt"
	"strconv"
	"time"

	"github.com/aaronlmathis/lakeetl/core"
)

// Package transform provides reusable, composable transformation functions
// for LakeETL pipelines: field projection, renaming, type conversion, and
// timestamp derivation. All functions return core.Transformer
// implementations for use in ETL pipelines.

// Select creates a transformer that keeps only the specified fields.
// Fields not listed are omitted from the output record.
func Select(fields ...string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := make(core.Record, len(fields))
		for _, field := range fields {
			if value, exists := record[field]; exists {
				result[field] = value
			}
		}
		return result, nil
	})
}

// Rename creates a transformer that renames fields according to the
// provided mapping. Keys are original field names, values are new names.
func Rename(mapping map[string]string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := make(core.Record, len(record))
		for key, value := range record {
			if newKey, exists := mapping[key]; exists {
				result[newKey] = value
			} else {
				result[key] = value
			}
		}
		return result, nil
	})
}

// AddField creates a transformer that adds a computed field to each record.
// The value is computed by fn, which receives the current record.
func AddField(field string, fn func(core.Record) interface{}) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		result := record.Clone()
		result[field] = fn(record)
		return result, nil
	})
}

// ToInt creates a transformer that converts a field to int. JSON numbers
// arrive as float64, so fractional parts are truncated. Missing or nil
// fields are left untouched.
func ToInt(field string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return record, nil
		}

		result := record.Clone()
		switch v := value.(type) {
		case int:
		case int32:
			result[field] = int(v)
		case int64:
			result[field] = int(v)
		case float64:
			result[field] = int(v)
		case float32:
			result[field] = int(v)
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("failed to convert field %s: %w", field, err)
			}
			result[field] = n
		default:
			return nil, fmt.Errorf("failed to convert field %s: unsupported type %T", field, value)
		}
		return result, nil
	})
}

// ToString creates a transformer that converts a field to its string form.
// Missing or nil fields are left untouched.
func ToString(field string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return record, nil
		}
		result := record.Clone()
		if _, ok := value.(string); !ok {
			result[field] = fmt.Sprintf("%v", value)
		}
		return result, nil
	})
}

// EpochMillis creates a transformer that derives a UTC time.Time field
// from an epoch-millisecond numeric field.
func EpochMillis(src, dst string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		value, exists := record[src]
		if !exists || value == nil {
			return record, nil
		}

		var ms int64
		switch v := value.(type) {
		case float64:
			ms = int64(v)
		case int64:
			ms = v
		case int:
			ms = int64(v)
		default:
			return nil, fmt.Errorf("failed to derive %s: field %s has unsupported type %T", dst, src, value)
		}

		result := record.Clone()
		result[dst] = time.UnixMilli(ms).UTC()
		return result, nil
	})
}

// TimeParts creates a transformer that decomposes a time.Time field into
// calendar part columns: hour, day (of month), week (ISO), month, year,
// and weekday (1=Sunday through 7=Saturday).
func TimeParts(field string) core.Transformer {
	return core.TransformFunc(func(ctx context.Context, record core.Record) (core.Record, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return record, nil
		}
		t, ok := value.(time.Time)
		if !ok {
			return nil, fmt.Errorf("failed to decompose %s: expected time.Time, got %T", field, value)
		}

		_, week := t.ISOWeek()

		result := record.Clone()
		result["hour"] = t.Hour()
		result["day"] = t.Day()
		result["week"] = week
		result["month"] = int(t.Month())
		result["year"] = t.Year()
		result["weekday"] = int(t.Weekday()) + 1
		return result, nil
	})
}
