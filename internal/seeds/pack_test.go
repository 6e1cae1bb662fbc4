// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package seeds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/world"
)

const validPack = `
format: "1.0.0"
name: starter
rooms:
  - id: town-square
    name: Town Square
    description: The mossy heart of the town.
    exits:
      north: cave
    items: [torch]
    npcs: [shopkeeper]
    details:
      fountain*: Water burbles over green stone.
  - id: cave
    name: Dripping Cave
    description: Dark and wet.
    exits:
      south: town-square
    spawns:
      - monster: rat
        respawn: 90s
items:
  - id: torch
    name: Torch
    description: A pitch-soaked torch.
    aliases: [light]
    cost: 5
    movable: true
npcs:
  - id: shopkeeper
    short_name: shopkeeper
    name: Marta the Shopkeeper
    dialogue:
      - Welcome!
    sells: [torch]
monsters:
  - id: rat
    name: Giant Rat
    hp: 8
    min_atk: 1
    max_atk: 3
    xp_reward: 10
    gold_reward: 2
`

func TestParsePack_Valid(t *testing.T) {
	p, err := ParsePack([]byte(validPack))
	require.NoError(t, err)

	assert.Equal(t, "starter", p.Name)
	require.Len(t, p.Rooms, 2)
	require.Len(t, p.Items, 1)
	require.Len(t, p.Npcs, 1)
	require.Len(t, p.Monsters, 1)

	room, err := p.Rooms[1].toRoom()
	require.NoError(t, err)
	assert.Equal(t, "town-square", room.Exits[world.South])
	require.Len(t, room.Spawns, 1)
	assert.Equal(t, "rat", room.Spawns[0].MonsterID)
	assert.Equal(t, 90*time.Second, room.Spawns[0].RespawnInterval)
}

func TestParsePack_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty data",
			yaml: "",
			want: "empty",
		},
		{
			name: "missing format",
			yaml: "name: p\n",
			want: "format",
		},
		{
			name: "future major version",
			yaml: "format: \"2.0.0\"\nname: p\n",
			want: "incompatible",
		},
		{
			name: "not semver",
			yaml: "format: latest\nname: p\n",
			want: "semantic version",
		},
		{
			name: "unknown field",
			yaml: "format: \"1.0.0\"\nname: p\nbogus: true\n",
			want: "schema validation failed",
		},
		{
			name: "bad respawn duration",
			yaml: "format: \"1.0.0\"\nname: p\nrooms:\n  - id: r\n    name: R\n    description: d\n    spawns:\n      - monster: rat\n        respawn: soonish\n",
			want: "respawn",
		},
		{
			name: "bad exit direction",
			yaml: "format: \"1.0.0\"\nname: p\nrooms:\n  - id: r\n    name: R\n    description: d\n    exits:\n      sideways: r\n",
			want: "unknown direction",
		},
		{
			name: "duplicate item id",
			yaml: "format: \"1.0.0\"\nname: p\nitems:\n  - id: torch\n    name: Torch\n  - id: torch\n    name: Other Torch\n",
			want: "declared twice",
		},
		{
			name: "monster atk inverted",
			yaml: "format: \"1.0.0\"\nname: p\nmonsters:\n  - id: rat\n    name: Rat\n    hp: 5\n    min_atk: 4\n    max_atk: 2\n",
			want: "atk",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParsePack_MinorVersionDriftAllowed(t *testing.T) {
	_, err := ParsePack([]byte("format: \"1.3.0\"\nname: p\n"))
	require.NoError(t, err)
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), SchemaID)
	assert.Contains(t, string(data), "Mossgate Seed Pack")
}
