// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/world"
)

// RoomRepository implements world.RoomRepository using PostgreSQL.
type RoomRepository struct {
	pool querier
}

// NewRoomRepository creates a new PostgreSQL room repository.
func NewRoomRepository(pool querier) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = `id, name, description, exits, items, npcs, spawns, details`

// Get retrieves a room by ID.
func (r *RoomRepository) Get(ctx context.Context, id string) (*world.Room, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+roomColumns+` FROM rooms WHERE id = $1
	`, id)
	room, err := scanRoom(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROOM_NOT_FOUND").With("id", id).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROOM_GET_FAILED").With("id", id).Wrap(err)
	}
	return room, nil
}

// List returns all rooms.
func (r *RoomRepository) List(ctx context.Context) ([]*world.Room, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+roomColumns+` FROM rooms ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("ROOM_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var rooms []*world.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, oops.Code("ROOM_SCAN_FAILED").Wrap(err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROOM_QUERY_FAILED").Wrap(err)
	}
	return rooms, nil
}

// Upsert creates or replaces an authored room.
func (r *RoomRepository) Upsert(ctx context.Context, room *world.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	exits, err := marshalJSON(room.Exits, "exits")
	if err != nil {
		return err
	}
	items, err := marshalJSON(room.Items, "items")
	if err != nil {
		return err
	}
	npcs, err := marshalJSON(room.NPCs, "npcs")
	if err != nil {
		return err
	}
	spawns, err := marshalJSON(room.Spawns, "spawns")
	if err != nil {
		return err
	}
	details, err := marshalJSON(room.Details, "details")
	if err != nil {
		return err
	}
	_, err = db(ctx, r.pool).Exec(ctx, `
		INSERT INTO rooms (id, name, description, exits, items, npcs, spawns, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			exits = EXCLUDED.exits,
			items = EXCLUDED.items,
			npcs = EXCLUDED.npcs,
			spawns = EXCLUDED.spawns,
			details = EXCLUDED.details
	`, room.ID, room.Name, room.Description, exits, items, npcs, spawns, details)
	if err != nil {
		return oops.Code("ROOM_UPSERT_FAILED").With("id", room.ID).Wrap(err)
	}
	return nil
}

// SetItems replaces the room's ordered item set.
func (r *RoomRepository) SetItems(ctx context.Context, roomID string, items []string) error {
	if items == nil {
		items = []string{}
	}
	raw, err := marshalJSON(items, "items")
	if err != nil {
		return err
	}
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE rooms SET items = $2 WHERE id = $1
	`, roomID, raw)
	if err != nil {
		return oops.Code("ROOM_UPDATE_FAILED").With("id", roomID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ROOM_NOT_FOUND").With("id", roomID).Wrap(world.ErrNotFound)
	}
	return nil
}

// StampSpawn records the defeat time on the matching spawn slot. Intended
// to run inside the combat transaction; it re-reads the slot list through
// the same transaction before writing it back.
func (r *RoomRepository) StampSpawn(ctx context.Context, roomID, monsterID string, at time.Time) error {
	room, err := r.Get(ctx, roomID)
	if err != nil {
		return err
	}
	slot := room.SpawnSlotFor(monsterID)
	if slot == nil {
		// Monster was placed ad hoc, not via a spawn slot. Nothing to re-arm.
		return nil
	}
	slot.LastDefeatedAt = at.UTC()
	spawns, err := marshalJSON(room.Spawns, "spawns")
	if err != nil {
		return err
	}
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE rooms SET spawns = $2 WHERE id = $1
	`, roomID, spawns)
	if err != nil {
		return oops.Code("ROOM_UPDATE_FAILED").With("id", roomID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ROOM_NOT_FOUND").With("id", roomID).Wrap(world.ErrNotFound)
	}
	return nil
}

// scanRoom scans a single room from a row.
func scanRoom(row pgx.Row) (*world.Room, error) {
	var room world.Room
	var exits, items, npcs, spawns, details []byte
	if err := row.Scan(&room.ID, &room.Name, &room.Description, &exits, &items, &npcs, &spawns, &details); err != nil {
		return nil, err
	}
	room.Exits = make(map[world.Direction]string)
	if err := unmarshalJSON(exits, &room.Exits, "exits"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(items, &room.Items, "items"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(npcs, &room.NPCs, "npcs"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(spawns, &room.Spawns, "spawns"); err != nil {
		return nil, err
	}
	room.Details = make(map[string]string)
	if err := unmarshalJSON(details, &room.Details, "details"); err != nil {
		return nil, err
	}
	return &room, nil
}
