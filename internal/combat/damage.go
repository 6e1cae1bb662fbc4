// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package combat resolves attack rounds between players and monsters. All
// state mutation for a round happens inside one serializable transaction;
// narration and level-up checks happen after commit.
package combat

import (
	"math/rand"

	"github.com/mossgate/mossgate/internal/world"
)

// Dice returns a uniform value in [0, n). Injected so tests can pin rolls.
type Dice func(n int) int

func defaultDice(n int) int {
	return rand.Intn(n)
}

// PlayerDamage computes one round of player-dealt damage:
// strength modifier (floored at zero) plus a d4 plus the best weapon in
// the inventory. Always at least 1.
func PlayerDamage(p *world.Player, roll Dice) int {
	if roll == nil {
		roll = defaultDice
	}
	mod := world.Modifier(p.Attributes.Str)
	if mod < 0 {
		mod = 0
	}
	dmg := mod + 1 + roll(4) + BestWeaponDamage(p.Inventory)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// MonsterDamage computes one round of monster-dealt damage, uniform in
// the template's [MinAtk, MaxAtk] range.
func MonsterDamage(tpl *world.MonsterTemplate, roll Dice) int {
	if roll == nil {
		roll = defaultDice
	}
	lo, hi := tpl.MinAtk, tpl.MaxAtk
	if hi < lo {
		hi = lo
	}
	dmg := lo + roll(hi-lo+1)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// BestWeaponDamage returns the highest weapon damage among carried weapons,
// resolved against the item template snapshot carried in the inventory.
func BestWeaponDamage(inv []world.InventoryItem) int {
	best := 0
	for _, it := range inv {
		if it.Weapon && it.WeaponDamage > best {
			best = it.WeaponDamage
		}
	}
	return best
}
