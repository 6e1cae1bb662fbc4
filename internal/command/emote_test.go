// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmoteTable_Match(t *testing.T) {
	table, err := NewEmoteTable(DefaultEmotes())
	require.NoError(t, err)

	tests := []struct {
		token string
		want  string
		hit   bool
	}{
		{token: "wave", want: "Wren waves.", hit: true},
		{token: "waves", want: "Wren waves.", hit: true},
		{token: "WAVE", want: "Wren waves.", hit: true},
		{token: "dance", want: "Wren dances a little jig.", hit: true},
		{token: "wavess", hit: false},
		{token: "wave hello", hit: false},
		{token: "attack", hit: false},
		{token: "", hit: false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			line, ok := table.Match(tt.token, "Wren")
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, tt.want, line)
			}
		})
	}
}

func TestEmoteTable_FirstMatchWins(t *testing.T) {
	table, err := NewEmoteTable([]EmoteSpec{
		{Pattern: "bow*", Template: "{player} bows with a flourish."},
		{Pattern: "bow", Template: "{player} bows."},
	})
	require.NoError(t, err)

	line, ok := table.Match("bow", "Wren")
	require.True(t, ok)
	assert.Equal(t, "Wren bows with a flourish.", line)
}

func TestEmoteTable_InvalidPattern(t *testing.T) {
	_, err := NewEmoteTable([]EmoteSpec{{Pattern: "[", Template: "x"}})
	assert.Error(t, err)
}

func TestEmoteTable_NilSafe(t *testing.T) {
	var table *EmoteTable
	_, ok := table.Match("wave", "Wren")
	assert.False(t, ok)
}
