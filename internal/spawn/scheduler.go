// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package spawn re-arms room monsters. Scheduling is lazy: eligibility is
// evaluated when a player enters a room, never on a background timer, so an
// unvisited room stays empty.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// Scheduler creates monster instances for eligible spawn slots.
type Scheduler struct {
	rooms       world.RoomRepository
	monsters    world.MonsterRepository
	templates   world.TemplateRepository
	tx          world.Transactor
	broadcaster *core.Broadcaster
	now         func() time.Time
}

// NewScheduler creates a spawn scheduler.
func NewScheduler(
	rooms world.RoomRepository,
	monsters world.MonsterRepository,
	templates world.TemplateRepository,
	tx world.Transactor,
	broadcaster *core.Broadcaster,
) *Scheduler {
	return &Scheduler{
		rooms:       rooms,
		monsters:    monsters,
		templates:   templates,
		tx:          tx,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// SetClock overrides the time source. Tests only.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// OnRoomEntry checks every spawn slot of the room and instantiates the ones
// whose respawn interval has elapsed and which have no live instance. Each
// slot spawns in its own transaction; the occupancy re-check inside the
// transaction keeps the one-instance-per-slot invariant under concurrent
// entry. Appearance announcements go to the room stream after commit.
//
// Slot failures are logged and skipped so one broken template cannot block
// the rest of the room.
func (s *Scheduler) OnRoomEntry(ctx context.Context, roomID string) []*world.MonsterInstance {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		slog.Warn("spawn check: room lookup failed", "room_id", roomID, "error", err)
		return nil
	}

	var spawned []*world.MonsterInstance
	for _, slot := range room.Spawns {
		inst, err := s.spawnSlot(ctx, roomID, slot)
		if err != nil {
			slog.Warn("spawn check: slot failed",
				"room_id", roomID, "monster_id", slot.MonsterID, "error", err)
			continue
		}
		if inst == nil {
			continue
		}
		spawned = append(spawned, inst)
		s.announce(roomID, inst)
	}
	return spawned
}

// spawnSlot returns the new instance, or nil when the slot is occupied or
// not yet eligible.
func (s *Scheduler) spawnSlot(ctx context.Context, roomID string, slot world.SpawnSlot) (*world.MonsterInstance, error) {
	if !slot.Eligible(s.now()) {
		return nil, nil
	}

	var inst *world.MonsterInstance
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		inst = nil

		// Occupancy and eligibility both re-checked under the transaction.
		_, err := s.monsters.FindByRoomAndTemplate(ctx, roomID, slot.MonsterID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, world.ErrNotFound) {
			return err
		}

		room, err := s.rooms.Get(ctx, roomID)
		if err != nil {
			return err
		}
		current := room.SpawnSlotFor(slot.MonsterID)
		if current == nil || !current.Eligible(s.now()) {
			return nil
		}

		tpl, err := s.templates.Monster(ctx, slot.MonsterID)
		if err != nil {
			return err
		}

		inst = world.NewMonsterInstance(tpl, roomID)
		return s.monsters.Create(ctx, inst)
	})
	if err != nil {
		// A unique-index conflict means a concurrent entry won the slot.
		if errors.Is(err, world.ErrConflict) {
			return nil, nil
		}
		return nil, err
	}
	return inst, nil
}

func (s *Scheduler) announce(roomID string, inst *world.MonsterInstance) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(roomID), core.CategoryGame, ulid.ULID{}.String(),
		fmt.Sprintf("A %s appears!", inst.Name),
	))
}
