// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package seeds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/world"
	"github.com/mossgate/mossgate/internal/world/worldtest"
)

func writePack(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadDir_AppliesAll(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "world.yaml", validPack)

	store := worldtest.NewStore()
	loader := NewLoader(store, store.Rooms(), store.Templates())

	sum, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Summary{Packs: 1, Rooms: 2, Items: 1, Npcs: 1, Monsters: 1}, sum)

	room, err := store.Rooms().Get(context.Background(), "town-square")
	require.NoError(t, err)
	assert.Equal(t, "Town Square", room.Name)
	assert.Equal(t, "cave", room.Exits[world.North])
	assert.True(t, room.HasItem("torch"))
	assert.True(t, room.HasNPC("shopkeeper"))

	item, err := store.Templates().Item(context.Background(), "torch")
	require.NoError(t, err)
	assert.True(t, item.Movable)

	monster, err := store.Templates().Monster(context.Background(), "rat")
	require.NoError(t, err)
	assert.Equal(t, 8, monster.HP)
}

func TestLoadDir_SplitAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "10-templates.yaml", `
format: "1.0.0"
name: templates
items:
  - id: torch
    name: Torch
`)
	writePack(t, dir, "20-rooms.yaml", `
format: "1.0.0"
name: rooms
rooms:
  - id: town-square
    name: Town Square
    description: The square.
    items: [torch]
`)

	store := worldtest.NewStore()
	loader := NewLoader(store, store.Rooms(), store.Templates())

	sum, err := loader.LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Packs)
}

func TestLoadDir_DanglingReferenceFails(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "world.yaml", `
format: "1.0.0"
name: broken
rooms:
  - id: town-square
    name: Town Square
    description: The square.
    exits:
      north: nowhere
`)

	store := worldtest.NewStore()
	loader := NewLoader(store, store.Rooms(), store.Templates())

	_, err := loader.LoadDir(context.Background(), dir)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "SEED_DANGLING_REF", oopsErr.Code())

	// Nothing was written.
	_, err = store.Rooms().Get(context.Background(), "town-square")
	assert.ErrorIs(t, err, world.ErrNotFound)
}

func TestApply_ReferencesExistingContent(t *testing.T) {
	store := worldtest.NewStore()
	store.AddItemTemplate(&world.ItemTemplate{ID: "torch", Name: "Torch"})
	loader := NewLoader(store, store.Rooms(), store.Templates())

	p, err := ParsePack([]byte(`
format: "1.0.0"
name: addon
rooms:
  - id: cellar
    name: Cellar
    description: Low and cool.
    items: [torch]
`))
	require.NoError(t, err)

	_, err = loader.Apply(context.Background(), []*Pack{p})
	require.NoError(t, err)
}

func TestApply_KeepsSpawnStamps(t *testing.T) {
	defeated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store := worldtest.NewStore()
	store.AddMonsterTemplate(&world.MonsterTemplate{ID: "rat", Name: "Giant Rat", HP: 8, MaxAtk: 2})
	store.AddRoom(&world.Room{
		ID:          "cave",
		Name:        "Dripping Cave",
		Description: "Dark.",
		Spawns: []world.SpawnSlot{
			{MonsterID: "rat", RespawnInterval: time.Minute, LastDefeatedAt: defeated},
		},
	})
	loader := NewLoader(store, store.Rooms(), store.Templates())

	p, err := ParsePack([]byte(`
format: "1.0.0"
name: reseed
rooms:
  - id: cave
    name: Dripping Cave
    description: Dark and wet now.
    spawns:
      - monster: rat
        respawn: 5m
`))
	require.NoError(t, err)

	_, err = loader.Apply(context.Background(), []*Pack{p})
	require.NoError(t, err)

	room, err := store.Rooms().Get(context.Background(), "cave")
	require.NoError(t, err)
	assert.Equal(t, "Dark and wet now.", room.Description)
	require.Len(t, room.Spawns, 1)
	assert.Equal(t, 5*time.Minute, room.Spawns[0].RespawnInterval)
	assert.Equal(t, defeated, room.Spawns[0].LastDefeatedAt)
}

func TestValidateDir_ReportsIssues(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "good.yaml", validPack)
	writePack(t, dir, "bad.yaml", `
format: "1.0.0"
name: bad
npcs:
  - id: hermit
    short_name: hermit
    name: The Hermit
    dialogue: [Go away.]
    sells: [moon-rock]
`)
	writePack(t, dir, "mangled.yaml", "format: [\n")

	issues, err := ValidateDir(dir)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	var texts []string
	for _, i := range issues {
		texts = append(texts, i.String())
	}
	assert.Contains(t, texts[0], "mangled.yaml")
	assert.Contains(t, texts[1], "moon-rock")
}

func TestValidateDir_CleanContent(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "world.yaml", validPack)

	issues, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateDir_EmptyDirErrors(t *testing.T) {
	_, err := ValidateDir(t.TempDir())
	require.Error(t, err)
}
