// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/intent"
)

func TestMove_GrantsDiscoveryBonusOnce(t *testing.T) {
	w := newTestWorld(t)

	err := MoveHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionGo, Target: "north",
	}))
	require.NoError(t, err)

	p := w.reload(t)
	assert.Equal(t, "cave", p.RoomID)
	assert.Equal(t, 15, p.XP)
	assert.Equal(t, 15, p.Score)
	assert.Contains(t, w.sink.text(), "You discover a new place!")
	assert.Contains(t, w.sink.text(), "Dripping Cave")

	// Walking back and forth again grants nothing further.
	for _, dir := range []string{"south", "north"} {
		err = MoveHandler(context.Background(), w.exec(t, intent.Intent{
			Action: intent.ActionGo, Target: dir,
		}))
		require.NoError(t, err)
	}
	p = w.reload(t)
	assert.Equal(t, 15, p.XP)
}

func TestMove_SpawnsOnEntry(t *testing.T) {
	w := newTestWorld(t)

	err := MoveHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionGo, Target: "north",
	}))
	require.NoError(t, err)

	monsters, err := w.store.Monsters().ListByRoom(context.Background(), "cave")
	require.NoError(t, err)
	require.Len(t, monsters, 1)
	assert.Equal(t, "rat", monsters[0].MonsterID)
}

func TestMove_NoExit(t *testing.T) {
	w := newTestWorld(t)

	err := MoveHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionGo, Target: "west",
	}))
	require.Error(t, err)
	assert.Contains(t, command.PlayerMessage(err), "can't go west")

	p := w.reload(t)
	assert.Equal(t, "town-square", p.RoomID)
}

func TestMove_BadDirection(t *testing.T) {
	w := newTestWorld(t)

	err := MoveHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionGo, Target: "sideways",
	}))
	require.Error(t, err)
}
