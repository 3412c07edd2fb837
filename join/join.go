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

package join

import (
	"fmt"
	"math"
	"strings"

	"github.com/aaronlmathis/lakeetl/core"
)

// Package join implements a hash left-join as a pure function over two
// in-memory relations. An unmatched left record is kept without right
// fields, so downstream projection sees its foreign keys as null; no
// error is raised for a non-match.

// Tolerance pairs a numeric left field with a right field that must agree
// within Epsilon for a candidate match to be accepted. It refines the
// equality key match, e.g. matching a played track's length against the
// catalog duration.
type Tolerance struct {
	LeftField  string
	RightField string
	Epsilon    float64
}

// Config defines the join keys. LeftKeys and RightKeys are positional
// pairs and must have equal length.
type Config struct {
	LeftKeys  []string
	RightKeys []string
	Tolerance *Tolerance
}

// Left performs a hash left-join of left against right. Each left record
// merges the fields of its first acceptable match; right fields never
// overwrite left ones (conflicting names get a "right_" prefix). Left
// records with missing key fields, or with no acceptable match, pass
// through unchanged. Output order follows the left relation.
func Left(left, right []core.Record, config Config) ([]core.Record, error) {
	if len(config.LeftKeys) == 0 || len(config.LeftKeys) != len(config.RightKeys) {
		return nil, fmt.Errorf("join requires matching key lists, got %d left and %d right",
			len(config.LeftKeys), len(config.RightKeys))
	}

	index := make(map[string][]core.Record, len(right))
	for _, record := range right {
		key, ok := buildJoinKey(record, config.RightKeys)
		if !ok {
			continue
		}
		index[key] = append(index[key], record)
	}

	result := make([]core.Record, 0, len(left))
	for _, record := range left {
		key, ok := buildJoinKey(record, config.LeftKeys)
		if !ok {
			result = append(result, record)
			continue
		}

		match, found := pickMatch(record, index[key], config.Tolerance)
		if !found {
			result = append(result, record)
			continue
		}
		result = append(result, mergeRecords(record, match))
	}

	return result, nil
}

// pickMatch returns the first candidate satisfying the tolerance, if any.
func pickMatch(left core.Record, candidates []core.Record, tol *Tolerance) (core.Record, bool) {
	for _, candidate := range candidates {
		if tol == nil {
			return candidate, true
		}
		lv, lok := toFloat(left[tol.LeftField])
		rv, rok := toFloat(candidate[tol.RightField])
		if lok && rok && math.Abs(lv-rv) <= tol.Epsilon {
			return candidate, true
		}
	}
	return nil, false
}

// buildJoinKey creates a composite key from the key fields. A missing or
// nil field means the record cannot participate in the equality match.
func buildJoinKey(record core.Record, keyFields []string) (string, bool) {
	parts := make([]string, 0, len(keyFields))
	for _, field := range keyFields {
		value, exists := record[field]
		if !exists || value == nil {
			return "", false
		}
		parts = append(parts, fmt.Sprintf("%v", value))
	}
	return strings.Join(parts, "|"), true
}

// mergeRecords combines a left record with its matched right record.
// Left fields win on name conflicts.
func mergeRecords(left, right core.Record) core.Record {
	result := left.Clone()
	for key, value := range right {
		if _, exists := result[key]; exists {
			result["right_"+key] = value
			continue
		}
		result[key] = value
	}
	return result
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
