// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultLimit is the default page size for list operations.
const DefaultLimit = 100

// RoomRepository manages room persistence. Methods are transaction-aware:
// when called with a context carrying an open transaction (see Transactor),
// they operate inside it.
type RoomRepository interface {
	// Get retrieves a room by ID.
	Get(ctx context.Context, id string) (*Room, error)

	// List returns all rooms, used to prime the world snapshot.
	List(ctx context.Context) ([]*Room, error)

	// Upsert creates or replaces an authored room. Used by seeding only.
	Upsert(ctx context.Context, room *Room) error

	// SetItems replaces the room's ordered item set.
	SetItems(ctx context.Context, roomID string, items []string) error

	// StampSpawn records the defeat time on the room's spawn slot for the
	// given monster template so the scheduler can re-arm it later.
	StampSpawn(ctx context.Context, roomID, monsterID string, at time.Time) error
}

// PlayerRepository manages player persistence.
type PlayerRepository interface {
	// Get retrieves a player by ID.
	Get(ctx context.Context, id ulid.ULID) (*Player, error)

	// GetByName retrieves a player by exact name, case-insensitively.
	GetByName(ctx context.Context, name string) (*Player, error)

	// Create persists a new player.
	Create(ctx context.Context, p *Player) error

	// Update replaces all mutable player fields.
	Update(ctx context.Context, p *Player) error

	// ListByRoom returns players currently located in a room.
	ListByRoom(ctx context.Context, roomID string) ([]*Player, error)
}

// TemplateRepository manages the immutable content templates.
type TemplateRepository interface {
	Item(ctx context.Context, id string) (*ItemTemplate, error)
	Npc(ctx context.Context, id string) (*NpcTemplate, error)
	Monster(ctx context.Context, id string) (*MonsterTemplate, error)

	ListItems(ctx context.Context) ([]*ItemTemplate, error)
	ListNpcs(ctx context.Context) ([]*NpcTemplate, error)
	ListMonsters(ctx context.Context) ([]*MonsterTemplate, error)

	// Upserts are used by seeding only; templates never change during play.
	UpsertItem(ctx context.Context, t *ItemTemplate) error
	UpsertNpc(ctx context.Context, t *NpcTemplate) error
	UpsertMonster(ctx context.Context, t *MonsterTemplate) error
}

// MonsterRepository manages live monster instances.
type MonsterRepository interface {
	// Get retrieves an instance by ID.
	Get(ctx context.Context, id ulid.ULID) (*MonsterInstance, error)

	// Create persists a new instance.
	Create(ctx context.Context, m *MonsterInstance) error

	// Delete removes an instance, typically on death.
	Delete(ctx context.Context, id ulid.ULID) error

	// UpdateHP persists a reduced hit point total.
	UpdateHP(ctx context.Context, id ulid.ULID, hp int) error

	// ListByRoom returns live instances in a room, oldest first.
	ListByRoom(ctx context.Context, roomID string) ([]*MonsterInstance, error)

	// FindByRoomAndTemplate returns the live instance occupying the
	// (room, template) spawn slot, or ErrNotFound. The scheduler relies on
	// this inside a transaction to keep the one-instance-per-slot invariant.
	FindByRoomAndTemplate(ctx context.Context, roomID, monsterID string) (*MonsterInstance, error)
}

// Transactor runs a function inside a serializable database transaction.
// The closure receives a context carrying the transaction; repository calls
// made with it are atomic and see a consistent snapshot. On write conflict
// the whole closure is retried, so it must not perform externally-visible
// side effects. If retries exhaust, ErrConflict is returned.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
