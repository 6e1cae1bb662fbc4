// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package spawn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
	"github.com/mossgate/mossgate/internal/world/worldtest"
)

func newScheduler(t *testing.T) (*Scheduler, *worldtest.Store, *core.Broadcaster) {
	t.Helper()

	store := worldtest.NewStore()
	store.AddMonsterTemplate(&world.MonsterTemplate{
		ID: "rat", Name: "Giant Rat", HP: 10, MinAtk: 1, MaxAtk: 3,
	})

	broadcaster := core.NewBroadcaster()
	s := NewScheduler(store.Rooms(), store.Monsters(), store.Templates(), store, broadcaster)
	return s, store, broadcaster
}

func TestScheduler_NeverDefeatedSlotSpawnsImmediately(t *testing.T) {
	s, store, broadcaster := newScheduler(t)
	store.AddRoom(&world.Room{
		ID:     "cave",
		Spawns: []world.SpawnSlot{{MonsterID: "rat", RespawnInterval: 5 * time.Minute}},
	})

	sub := broadcaster.Subscribe(core.RoomStream("cave"))
	defer broadcaster.Unsubscribe(core.RoomStream("cave"), sub)

	spawned := s.OnRoomEntry(context.Background(), "cave")
	require.Len(t, spawned, 1)
	assert.Equal(t, "rat", spawned[0].MonsterID)
	assert.Equal(t, 10, spawned[0].HP)

	select {
	case ev := <-sub:
		assert.Contains(t, ev.Text, "Giant Rat")
	default:
		t.Fatal("expected an appearance announcement")
	}
}

func TestScheduler_OccupiedSlotDoesNotDouble(t *testing.T) {
	s, store, _ := newScheduler(t)
	store.AddRoom(&world.Room{
		ID:     "cave",
		Spawns: []world.SpawnSlot{{MonsterID: "rat", RespawnInterval: 5 * time.Minute}},
	})

	first := s.OnRoomEntry(context.Background(), "cave")
	require.Len(t, first, 1)

	second := s.OnRoomEntry(context.Background(), "cave")
	assert.Empty(t, second)

	live, err := store.Monsters().ListByRoom(context.Background(), "cave")
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestScheduler_RespawnIntervalGates(t *testing.T) {
	s, store, _ := newScheduler(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.AddRoom(&world.Room{
		ID: "cave",
		Spawns: []world.SpawnSlot{{
			MonsterID:       "rat",
			RespawnInterval: 5 * time.Minute,
			LastDefeatedAt:  base,
		}},
	})

	s.SetClock(func() time.Time { return base.Add(4 * time.Minute) })
	assert.Empty(t, s.OnRoomEntry(context.Background(), "cave"))

	s.SetClock(func() time.Time { return base.Add(5 * time.Minute) })
	spawned := s.OnRoomEntry(context.Background(), "cave")
	require.Len(t, spawned, 1)
}

func TestScheduler_UnknownTemplateSkipsSlot(t *testing.T) {
	s, store, _ := newScheduler(t)
	store.AddRoom(&world.Room{
		ID: "cave",
		Spawns: []world.SpawnSlot{
			{MonsterID: "ghost", RespawnInterval: time.Minute},
			{MonsterID: "rat", RespawnInterval: time.Minute},
		},
	})

	spawned := s.OnRoomEntry(context.Background(), "cave")
	require.Len(t, spawned, 1)
	assert.Equal(t, "rat", spawned[0].MonsterID)
}

func TestScheduler_RoomWithoutSlots(t *testing.T) {
	s, store, _ := newScheduler(t)
	store.AddRoom(&world.Room{ID: "plaza"})

	assert.Empty(t, s.OnRoomEntry(context.Background(), "plaza"))
	assert.Empty(t, s.OnRoomEntry(context.Background(), "missing"))
}
