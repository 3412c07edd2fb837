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

package dedupe

import (
	"fmt"
	"strings"
	"time"

	"github.com/aaronlmathis/lakeetl/core"
)

// Package dedupe provides duplicate elimination over materialized
// relations. Both functions are pure: they return a new slice and leave
// the input untouched. Output order follows first appearance of each key,
// so repeated runs over the same input produce identical relations.

// FirstBy returns one record per distinct composite key, keeping the
// first occurrence.
func FirstBy(records []core.Record, keys ...string) []core.Record {
	seen := make(map[string]struct{}, len(records))
	result := make([]core.Record, 0, len(records))

	for _, record := range records {
		key := buildKey(record, keys)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, record)
	}
	return result
}

// LatestBy returns one record per distinct composite key, keeping the
// record with the greatest value in orderField. Ties keep the earlier
// record. The tie-break makes "latest state wins" deduplication explicit
// instead of depending on input ordering.
func LatestBy(records []core.Record, orderField string, keys ...string) []core.Record {
	index := make(map[string]int, len(records))
	order := make([]string, 0, len(records))
	best := make([]core.Record, 0, len(records))

	for _, record := range records {
		key := buildKey(record, keys)
		pos, ok := index[key]
		if !ok {
			index[key] = len(best)
			order = append(order, key)
			best = append(best, record)
			continue
		}
		if orderValue(record, orderField) > orderValue(best[pos], orderField) {
			best[pos] = record
		}
	}

	result := make([]core.Record, 0, len(order))
	for _, key := range order {
		result = append(result, best[index[key]])
	}
	return result
}

// buildKey creates a composite string key from the given fields. Missing
// fields contribute an empty component, matching join key construction.
func buildKey(record core.Record, keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		value, exists := record[field]
		if !exists || value == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", value))
	}
	return strings.Join(parts, "|")
}

// orderValue coerces the ordering field to a comparable float64.
// Non-numeric or missing values sort lowest.
func orderValue(record core.Record, field string) float64 {
	value, exists := record[field]
	if !exists || value == nil {
		return -1 << 62
	}
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case time.Time:
		return float64(v.UnixMilli())
	default:
		return -1 << 62
	}
}
