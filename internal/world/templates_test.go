// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemTemplate_Matches(t *testing.T) {
	torch := &ItemTemplate{ID: "torch", Name: "Torch", Aliases: []string{"light"}}

	assert.True(t, torch.Matches("torch"))
	assert.True(t, torch.Matches("TORCH"))
	assert.True(t, torch.Matches("Light"))
	assert.False(t, torch.Matches("lantern"))
}

func TestItemTemplate_Validate(t *testing.T) {
	valid := ItemTemplate{ID: "torch", Name: "Torch", Cost: 5}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ItemTemplate)
	}{
		{"empty id", func(it *ItemTemplate) { it.ID = "" }},
		{"empty name", func(it *ItemTemplate) { it.Name = "" }},
		{"negative cost", func(it *ItemTemplate) { it.Cost = -1 }},
		{"empty alias", func(it *ItemTemplate) { it.Aliases = []string{""} }},
		{"weapon without damage", func(it *ItemTemplate) { it.Weapon = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := valid
			tt.mutate(&it)
			assert.Error(t, it.Validate())
		})
	}
}

func TestItemTemplate_Snapshot(t *testing.T) {
	sword := &ItemTemplate{
		ID: "short-sword", Name: "Short Sword", Cost: 40, Movable: true,
		Weapon: true, WeaponDamage: 4, WeaponType: "slash",
		Description: "Plain steel.",
	}

	snap := sword.Snapshot()
	assert.Equal(t, "short-sword", snap.ItemID)
	assert.Equal(t, "Short Sword", snap.Name)
	assert.Equal(t, 40, snap.Cost)
	assert.True(t, snap.Movable)
	assert.True(t, snap.Weapon)
	assert.Equal(t, 4, snap.WeaponDamage)
}

func TestNpcTemplate_Matches(t *testing.T) {
	marta := &NpcTemplate{ID: "shopkeeper", ShortName: "shopkeeper", Name: "Marta the Shopkeeper"}

	assert.True(t, marta.Matches("shopkeeper"))
	assert.True(t, marta.Matches("marta the shopkeeper"))
	assert.False(t, marta.Matches("marta"))
}

func TestNpcTemplate_SellsItem(t *testing.T) {
	marta := &NpcTemplate{Sells: []string{"torch", "healing-potion"}}

	assert.True(t, marta.SellsItem("torch"))
	assert.False(t, marta.SellsItem("short-sword"))
}

func TestNpcTemplate_Validate(t *testing.T) {
	fixed := NpcTemplate{ID: "shopkeeper", ShortName: "shopkeeper", Name: "Marta", Dialogue: []string{"Welcome!"}}
	require.NoError(t, fixed.Validate())

	ai := NpcTemplate{ID: "ferryman", ShortName: "ferryman", Name: "Jonas", UseAI: true, Personality: "weathered"}
	require.NoError(t, ai.Validate())

	noLines := NpcTemplate{ID: "mute", ShortName: "mute", Name: "Mute"}
	assert.Error(t, noLines.Validate(), "fixed-dialogue NPCs need at least one line")

	noPrompt := NpcTemplate{ID: "blank", ShortName: "blank", Name: "Blank", UseAI: true}
	assert.Error(t, noPrompt.Validate(), "AI NPCs need a personality prompt")
}

func TestMonsterTemplate_Validate(t *testing.T) {
	valid := MonsterTemplate{ID: "rat", Name: "Giant Rat", HP: 8, MinAtk: 1, MaxAtk: 3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*MonsterTemplate)
	}{
		{"empty id", func(m *MonsterTemplate) { m.ID = "" }},
		{"zero hp", func(m *MonsterTemplate) { m.HP = 0 }},
		{"inverted atk", func(m *MonsterTemplate) { m.MinAtk = 5 }},
		{"negative reward", func(m *MonsterTemplate) { m.XPReward = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestNewMonsterInstance(t *testing.T) {
	tpl := &MonsterTemplate{ID: "rat", Name: "Giant Rat", HP: 8, MaxAtk: 3}

	inst := NewMonsterInstance(tpl, "cave")
	assert.False(t, inst.ID.IsZero())
	assert.Equal(t, "rat", inst.MonsterID)
	assert.Equal(t, "cave", inst.RoomID)
	assert.Equal(t, 8, inst.HP)
	assert.Equal(t, 8, inst.MaxHP)
	assert.Equal(t, "Giant Rat", inst.Name)
}

func TestMonsterInstance_Matches(t *testing.T) {
	inst := &MonsterInstance{MonsterID: "moss-creeper", Name: "Moss Creeper"}

	assert.True(t, inst.Matches("moss creeper"))
	assert.True(t, inst.Matches("moss-creeper"))
	assert.True(t, inst.Matches("moss"), "prefixes of the display name match")
	assert.False(t, inst.Matches("creeper"))
}
