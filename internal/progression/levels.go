// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package progression implements the XP curve and the idempotent level-up
// check invoked after any XP-granting event.
package progression

import (
	"context"
	"fmt"
	"math"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// Curve describes the XP-to-level mapping and per-level growth.
type Curve struct {
	// BaseXP scales the exponential fallback: xpForLevel(n) = BaseXP * n^1.5.
	BaseXP int
	// MaxLevel caps progression.
	MaxLevel int
	// Overrides pins explicit thresholds for individual levels; any level
	// without an override uses the exponential fallback.
	Overrides map[int]int
	// HPPerLevel is the max-HP growth per level gained, before the
	// constitution modifier.
	HPPerLevel int
	// StatBonusInterval grants +1 strength and +1 constitution on every
	// level divisible by it. Zero disables stat growth.
	StatBonusInterval int
}

// DefaultCurve returns the stock progression curve.
func DefaultCurve() Curve {
	return Curve{
		BaseXP:            100,
		MaxLevel:          50,
		HPPerLevel:        5,
		StatBonusInterval: 4,
	}
}

// XPForLevel returns the XP threshold for reaching level n. Level 1 is
// always 0.
func (c Curve) XPForLevel(n int) int {
	if n <= 1 {
		return 0
	}
	if xp, ok := c.Overrides[n]; ok {
		return xp
	}
	return int(float64(c.BaseXP) * math.Pow(float64(n), 1.5))
}

// LevelFromXP returns the highest level whose threshold is at or below xp,
// scanning from the maximum level downward.
func (c Curve) LevelFromXP(xp int) int {
	for n := c.MaxLevel; n > 1; n-- {
		if xp >= c.XPForLevel(n) {
			return n
		}
	}
	return 1
}

// Engine applies level-ups. It is safe to invoke redundantly: the check is
// driven off the player's stored level, not off event counting.
type Engine struct {
	players     world.PlayerRepository
	tx          world.Transactor
	broadcaster *core.Broadcaster
	curve       Curve
}

// NewEngine creates a progression engine.
func NewEngine(players world.PlayerRepository, tx world.Transactor, broadcaster *core.Broadcaster, curve Curve) *Engine {
	return &Engine{players: players, tx: tx, broadcaster: broadcaster, curve: curve}
}

// Curve exposes the configured curve for informational commands.
func (e *Engine) Curve() Curve {
	return e.curve
}

// CheckLevelUp re-establishes level == levelFromXp(xp) for the player.
// When one or more levels were gained it grows max HP, heals by the max-HP
// delta (never above the new max), applies stat bonuses, and persists
// everything in one update. Returns the number of levels gained.
//
// The check runs in its own transaction, after and outside whatever
// transaction granted the XP: it is a downstream, idempotent consequence.
func (e *Engine) CheckLevelUp(ctx context.Context, playerID ulid.ULID) (int, error) {
	var gained int
	var newLevel int
	var playerName string

	err := e.tx.InTransaction(ctx, func(ctx context.Context) error {
		gained, newLevel = 0, 0

		p, err := e.players.Get(ctx, playerID)
		if err != nil {
			return oops.With("operation", "level-up check").Wrap(err)
		}
		target := e.curve.LevelFromXP(p.XP)
		if target <= p.Level {
			return nil
		}

		gained = target - p.Level
		newLevel = target
		playerName = p.Name

		conMod := world.Modifier(p.Attributes.Con)
		if conMod < 0 {
			conMod = 0
		}
		hpDelta := gained * (e.curve.HPPerLevel + conMod)

		for lvl := p.Level + 1; lvl <= target; lvl++ {
			if e.curve.StatBonusInterval > 0 && lvl%e.curve.StatBonusInterval == 0 {
				p.Attributes.Str++
				p.Attributes.Con++
			}
		}

		p.Level = target
		p.MaxHP += hpDelta
		p.HP += hpDelta
		p.ClampHP()

		return e.players.Update(ctx, p)
	})
	if err != nil {
		return 0, err
	}

	if gained > 0 && e.broadcaster != nil {
		e.broadcaster.Broadcast(core.NewEvent(core.StreamWorld, core.CategoryGame, playerID.String(),
			fmt.Sprintf("%s has reached level %d!", playerName, newLevel)))
	}
	return gained, nil
}
