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

package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/lakeetl/core"
)

func TestNotNull(t *testing.T) {
	ctx := context.Background()
	f := NotNull("userId")

	tests := []struct {
		name    string
		record  core.Record
		include bool
	}{
		{"present", core.Record{"userId": "26"}, true},
		{"missing", core.Record{"page": "Home"}, false},
		{"nil", core.Record{"userId": nil}, false},
		{"empty_string", core.Record{"userId": ""}, false},
		{"zero_number", core.Record{"userId": float64(0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			include, err := f.ShouldInclude(ctx, tt.record)
			require.NoError(t, err)
			assert.Equal(t, tt.include, include)
		})
	}
}

func TestEquals(t *testing.T) {
	ctx := context.Background()
	f := Equals("page", "NextSong")

	include, err := f.ShouldInclude(ctx, core.Record{"page": "NextSong"})
	require.NoError(t, err)
	assert.True(t, include)

	include, err = f.ShouldInclude(ctx, core.Record{"page": "Home"})
	require.NoError(t, err)
	assert.False(t, include)

	include, err = f.ShouldInclude(ctx, core.Record{})
	require.NoError(t, err)
	assert.False(t, include)
}
