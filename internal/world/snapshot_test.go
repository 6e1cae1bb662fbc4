// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/world"
	"github.com/mossgate/mossgate/internal/world/worldtest"
)

func newLoadedSnapshot(t *testing.T) (*world.Snapshot, *worldtest.Store) {
	t.Helper()

	store := worldtest.NewStore()
	store.AddRoom(&world.Room{ID: "town-square", Name: "Town Square", Description: "The square."})
	store.AddItemTemplate(&world.ItemTemplate{ID: "torch", Name: "Torch", Aliases: []string{"light"}})
	store.AddItemTemplate(&world.ItemTemplate{ID: "copper-coin", Name: "Copper Coin", Aliases: []string{"coin"}})
	store.AddNpcTemplate(&world.NpcTemplate{ID: "shopkeeper", ShortName: "shopkeeper", Name: "Marta the Shopkeeper", Dialogue: []string{"Welcome!"}})
	store.AddMonsterTemplate(&world.MonsterTemplate{ID: "rat", Name: "Giant Rat", HP: 8, MaxAtk: 3})

	snap := world.NewSnapshot(store.Rooms(), store.Templates())
	require.NoError(t, snap.Load(context.Background()))
	return snap, store
}

func TestSnapshot_LoadAndLookup(t *testing.T) {
	snap, _ := newLoadedSnapshot(t)

	require.NotNil(t, snap.Room("town-square"))
	assert.Equal(t, "Town Square", snap.Room("town-square").Name)
	assert.Nil(t, snap.Room("nowhere"))

	assert.NotNil(t, snap.Item("torch"))
	assert.NotNil(t, snap.Npc("shopkeeper"))
	assert.NotNil(t, snap.Monster("rat"))
	assert.Nil(t, snap.Item("sword"))
}

func TestSnapshot_FindItemByName(t *testing.T) {
	snap, _ := newLoadedSnapshot(t)
	candidates := []string{"copper-coin", "torch"}

	got := snap.FindItemByName(candidates, "light")
	require.NotNil(t, got)
	assert.Equal(t, "torch", got.ID)

	// Candidate order decides ties and unknown names miss.
	assert.Equal(t, "copper-coin", snap.FindItemByName(candidates, "coin").ID)
	assert.Nil(t, snap.FindItemByName(candidates, "sword"))
	assert.Nil(t, snap.FindItemByName(nil, "torch"))
}

func TestSnapshot_FindNpcByName(t *testing.T) {
	snap, _ := newLoadedSnapshot(t)

	got := snap.FindNpcByName([]string{"shopkeeper"}, "marta the shopkeeper")
	require.NotNil(t, got)
	assert.Equal(t, "shopkeeper", got.ID)

	assert.Nil(t, snap.FindNpcByName([]string{"shopkeeper"}, "ferryman"))
}

func TestSnapshot_RefreshRoom(t *testing.T) {
	snap, store := newLoadedSnapshot(t)

	require.NoError(t, store.Rooms().Upsert(context.Background(), &world.Room{
		ID: "town-square", Name: "Market Square", Description: "Renamed.",
	}))

	require.NoError(t, snap.Refresh(context.Background(), "room:town-square"))
	assert.Equal(t, "Market Square", snap.Room("town-square").Name)
}

func TestSnapshot_RefreshUnknownPayloadReloads(t *testing.T) {
	snap, store := newLoadedSnapshot(t)

	require.NoError(t, store.Templates().UpsertItem(context.Background(), &world.ItemTemplate{
		ID: "short-sword", Name: "Short Sword",
	}))

	require.NoError(t, snap.Refresh(context.Background(), "everything"))
	assert.NotNil(t, snap.Item("short-sword"))
}
