// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package combat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/progression"
	"github.com/mossgate/mossgate/internal/world"
)

// Error codes surfaced by the resolver.
const (
	CodeTargetGone  = "COMBAT_TARGET_GONE"
	CodePvPDisabled = "COMBAT_PVP_DISABLED"
)

// Config carries the combat knobs.
type Config struct {
	// HomeRoomID is where defeated players respawn.
	HomeRoomID string
	// DeathGoldPenalty is the fraction of carried gold lost on death,
	// in [0, 1].
	DeathGoldPenalty float64
	// PvPEnabled gates attacks on other players.
	PvPEnabled bool
}

// Outcome describes one resolved combat round for narration. It is
// assembled inside the transaction and safe to use only after Resolve
// returns nil.
type Outcome struct {
	AttackerName string
	TargetName   string
	Verb         string
	Damage       int

	TargetDied  bool
	Newsworthy  bool
	XPGained    int
	GoldGained  int
	ItemDropped string // display name, empty for no drop

	CounterDamage int
	AttackerDied  bool
	GoldLost      int

	LevelsGained int
}

// Resolver executes combat rounds. One round is one serializable
// transaction touching attacker, defender, and the room's spawn slot;
// narration, the durable news record, and the level-up check run after
// commit.
type Resolver struct {
	players     world.PlayerRepository
	monsters    world.MonsterRepository
	rooms       world.RoomRepository
	templates   world.TemplateRepository
	tx          world.Transactor
	progression *progression.Engine
	broadcaster *core.Broadcaster
	news        core.EventStore
	roll        Dice
	cfg         Config
}

// NewResolver creates a combat resolver.
func NewResolver(
	players world.PlayerRepository,
	monsters world.MonsterRepository,
	rooms world.RoomRepository,
	templates world.TemplateRepository,
	tx world.Transactor,
	prog *progression.Engine,
	broadcaster *core.Broadcaster,
	news core.EventStore,
	cfg Config,
) *Resolver {
	return &Resolver{
		players:     players,
		monsters:    monsters,
		rooms:       rooms,
		templates:   templates,
		tx:          tx,
		progression: prog,
		broadcaster: broadcaster,
		news:        news,
		roll:        defaultDice,
		cfg:         cfg,
	}
}

// SetDice overrides the random source. Tests only.
func (r *Resolver) SetDice(roll Dice) {
	r.roll = roll
}

// AttackMonster resolves one round against a monster instance. The caller
// validates presence before invoking; the resolver re-checks under the
// transaction and returns CodeTargetGone if the instance vanished.
func (r *Resolver) AttackMonster(ctx context.Context, attackerID, instanceID ulid.ULID, verb string) (*Outcome, error) {
	var out Outcome

	err := r.tx.InTransaction(ctx, func(ctx context.Context) error {
		out = Outcome{Verb: verbOrDefault(verb)}

		attacker, err := r.players.Get(ctx, attackerID)
		if err != nil {
			return oops.With("operation", "attack").Wrap(err)
		}
		out.AttackerName = attacker.Name

		monster, err := r.monsters.Get(ctx, instanceID)
		if err != nil {
			if errors.Is(err, world.ErrNotFound) {
				return oops.Code(CodeTargetGone).
					With("message", "Your target is already gone.").
					Wrap(err)
			}
			return oops.With("operation", "attack").Wrap(err)
		}
		if monster.RoomID != attacker.RoomID {
			return oops.Code(CodeTargetGone).
				With("message", "Your target is already gone.").
				Wrap(world.ErrNotFound)
		}
		out.TargetName = monster.Name

		tpl, err := r.templates.Monster(ctx, monster.MonsterID)
		if err != nil {
			return oops.With("operation", "attack").With("monster_id", monster.MonsterID).Wrap(err)
		}

		out.Damage = PlayerDamage(attacker, r.roll)
		monster.HP -= out.Damage

		if monster.HP <= 0 {
			return r.monsterDies(ctx, attacker, monster, tpl, &out)
		}

		if err := r.monsters.UpdateHP(ctx, monster.ID, monster.HP); err != nil {
			return err
		}
		out.CounterDamage = MonsterDamage(tpl, r.roll)
		attacker.HP -= out.CounterDamage
		if attacker.HP <= 0 {
			r.playerDies(attacker, &out)
		}
		return r.players.Update(ctx, attacker)
	})
	if err != nil {
		return nil, err
	}

	r.afterRound(ctx, attackerID, &out)
	return &out, nil
}

// AttackPlayer resolves one round against another player. Both directions
// use the player damage formula; a defeated defender respawns at home with
// full health minus a gold penalty. No XP changes hands.
func (r *Resolver) AttackPlayer(ctx context.Context, attackerID, defenderID ulid.ULID, verb string) (*Outcome, error) {
	if !r.cfg.PvPEnabled {
		return nil, oops.Code(CodePvPDisabled).
			With("message", "You cannot attack other adventurers here.").
			Errorf("pvp disabled")
	}
	if attackerID == defenderID {
		return nil, oops.Code(CodeTargetGone).
			With("message", "Attacking yourself seems unwise.").
			Errorf("self attack")
	}

	var out Outcome

	err := r.tx.InTransaction(ctx, func(ctx context.Context) error {
		out = Outcome{Verb: verbOrDefault(verb)}

		attacker, err := r.players.Get(ctx, attackerID)
		if err != nil {
			return oops.With("operation", "attack").Wrap(err)
		}
		defender, err := r.players.Get(ctx, defenderID)
		if err != nil {
			if errors.Is(err, world.ErrNotFound) {
				return oops.Code(CodeTargetGone).
					With("message", "Your target is already gone.").
					Wrap(err)
			}
			return oops.With("operation", "attack").Wrap(err)
		}
		if defender.RoomID != attacker.RoomID {
			return oops.Code(CodeTargetGone).
				With("message", "Your target is already gone.").
				Wrap(world.ErrNotFound)
		}
		out.AttackerName = attacker.Name
		out.TargetName = defender.Name

		out.Damage = PlayerDamage(attacker, r.roll)
		defender.HP -= out.Damage

		if defender.HP <= 0 {
			out.TargetDied = true
			out.Newsworthy = true
			r.respawn(defender)
			if err := r.players.Update(ctx, defender); err != nil {
				return err
			}
			return r.players.Update(ctx, attacker)
		}

		out.CounterDamage = PlayerDamage(defender, r.roll)
		attacker.HP -= out.CounterDamage
		if attacker.HP <= 0 {
			r.playerDies(attacker, &out)
		}
		if err := r.players.Update(ctx, defender); err != nil {
			return err
		}
		return r.players.Update(ctx, attacker)
	})
	if err != nil {
		return nil, err
	}

	r.afterRound(ctx, attackerID, &out)
	return &out, nil
}

// monsterDies handles step four of the round: deletion, rewards, drop, and
// the spawn slot stamp, all inside the caller's transaction.
func (r *Resolver) monsterDies(ctx context.Context, attacker *world.Player, monster *world.MonsterInstance, tpl *world.MonsterTemplate, out *Outcome) error {
	out.TargetDied = true
	out.Newsworthy = tpl.Newsworthy

	if err := r.monsters.Delete(ctx, monster.ID); err != nil {
		return err
	}

	out.XPGained = tpl.XPReward
	out.GoldGained = tpl.GoldReward
	attacker.XP += tpl.XPReward
	attacker.Score += tpl.XPReward
	attacker.Money += tpl.GoldReward

	if tpl.ItemDrop != "" {
		item, err := r.templates.Item(ctx, tpl.ItemDrop)
		switch {
		case errors.Is(err, world.ErrNotFound):
			slog.Warn("monster drop references unknown item",
				"monster_id", tpl.ID, "item_id", tpl.ItemDrop)
		case err != nil:
			return err
		default:
			attacker.Inventory = append(attacker.Inventory, item.Snapshot())
			out.ItemDropped = item.Name
		}
	}

	// Ad hoc monsters without a spawn slot make this a no-op.
	if err := r.rooms.StampSpawn(ctx, monster.RoomID, monster.MonsterID, time.Now().UTC()); err != nil {
		return err
	}

	return r.players.Update(ctx, attacker)
}

// playerDies sends the player home, fully healed, minus a cut of their gold.
func (r *Resolver) playerDies(p *world.Player, out *Outcome) {
	out.AttackerDied = true
	out.GoldLost = r.goldPenalty(p.Money)
	r.respawn(p)
}

func (r *Resolver) respawn(p *world.Player) {
	p.Money -= r.goldPenalty(p.Money)
	p.RoomID = r.cfg.HomeRoomID
	p.HP = p.MaxHP
	p.ClampHP()
}

func (r *Resolver) goldPenalty(money int) int {
	if money <= 0 {
		return 0
	}
	return int(float64(money) * r.cfg.DeathGoldPenalty)
}

// afterRound performs the post-commit consequences: durable news for
// newsworthy kills and the idempotent level-up check.
func (r *Resolver) afterRound(ctx context.Context, attackerID ulid.ULID, out *Outcome) {
	if out.TargetDied && out.Newsworthy {
		ev := core.NewEvent(core.StreamWorld, core.CategoryCombat, attackerID.String(),
			fmt.Sprintf("%s slew %s.", out.AttackerName, out.TargetName))
		if r.news != nil {
			if err := r.news.Append(ctx, ev); err != nil {
				slog.Warn("news append failed", "error", err)
			}
		}
		if r.broadcaster != nil {
			r.broadcaster.Broadcast(ev)
		}
	}

	if out.XPGained > 0 && r.progression != nil {
		gained, err := r.progression.CheckLevelUp(ctx, attackerID)
		if err != nil {
			slog.Warn("level-up check failed", "player_id", attackerID.String(), "error", err)
			return
		}
		out.LevelsGained = gained
	}
}

func verbOrDefault(verb string) string {
	if verb == "" {
		return "hit"
	}
	return verb
}
