// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/world"
)

// PlayerRepository implements world.PlayerRepository using PostgreSQL.
type PlayerRepository struct {
	pool querier
}

// NewPlayerRepository creates a new PostgreSQL player repository.
func NewPlayerRepository(pool querier) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

const playerColumns = `id, name, password_hash, room_id, inventory, money,
	hp, max_hp, xp, score, level, attributes, visited_rooms, admin, created_at`

// Get retrieves a player by ID.
func (r *PlayerRepository) Get(ctx context.Context, id ulid.ULID) (*world.Player, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+playerColumns+` FROM players WHERE id = $1
	`, id.String())
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return p, nil
}

// GetByName retrieves a player by name, case-insensitively.
func (r *PlayerRepository) GetByName(ctx context.Context, name string) (*world.Player, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+playerColumns+` FROM players WHERE lower(name) = lower($1)
	`, name)
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").With("name", name).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_FAILED").With("name", name).Wrap(err)
	}
	return p, nil
}

// Create persists a new player.
// Callers must validate the player before calling this method.
func (r *PlayerRepository) Create(ctx context.Context, p *world.Player) error {
	inventory, attributes, visited, err := marshalPlayerFields(p)
	if err != nil {
		return err
	}
	_, err = db(ctx, r.pool).Exec(ctx, `
		INSERT INTO players (id, name, password_hash, room_id, inventory, money,
			hp, max_hp, xp, score, level, attributes, visited_rooms, admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID.String(), p.Name, p.PasswordHash, p.RoomID, inventory, p.Money,
		p.HP, p.MaxHP, p.XP, p.Score, p.Level, attributes, visited, p.Admin, p.CreatedAt)
	if err != nil {
		return oops.Code("PLAYER_CREATE_FAILED").With("id", p.ID.String()).Wrap(err)
	}
	return nil
}

// Update replaces all mutable player fields.
// Callers must validate the player before calling this method.
func (r *PlayerRepository) Update(ctx context.Context, p *world.Player) error {
	inventory, attributes, visited, err := marshalPlayerFields(p)
	if err != nil {
		return err
	}
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE players SET room_id = $2, inventory = $3, money = $4, hp = $5,
			max_hp = $6, xp = $7, score = $8, level = $9, attributes = $10,
			visited_rooms = $11
		WHERE id = $1
	`, p.ID.String(), p.RoomID, inventory, p.Money, p.HP,
		p.MaxHP, p.XP, p.Score, p.Level, attributes, visited)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").With("id", p.ID.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").With("id", p.ID.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByRoom returns players currently located in a room, by name.
func (r *PlayerRepository) ListByRoom(ctx context.Context, roomID string) ([]*world.Player, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+playerColumns+` FROM players WHERE room_id = $1 ORDER BY name
	`, roomID)
	if err != nil {
		return nil, oops.Code("PLAYER_QUERY_FAILED").With("room_id", roomID).Wrap(err)
	}
	defer rows.Close()

	var players []*world.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, oops.Code("PLAYER_SCAN_FAILED").Wrap(err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PLAYER_QUERY_FAILED").Wrap(err)
	}
	return players, nil
}

func marshalPlayerFields(p *world.Player) (inventory, attributes, visited []byte, err error) {
	inv := p.Inventory
	if inv == nil {
		inv = []world.InventoryItem{}
	}
	if inventory, err = marshalJSON(inv, "inventory"); err != nil {
		return nil, nil, nil, err
	}
	if attributes, err = marshalJSON(p.Attributes, "attributes"); err != nil {
		return nil, nil, nil, err
	}
	vis := p.VisitedRooms
	if vis == nil {
		vis = []string{}
	}
	if visited, err = marshalJSON(vis, "visited_rooms"); err != nil {
		return nil, nil, nil, err
	}
	return inventory, attributes, visited, nil
}

// scanPlayer scans a single player from a row.
func scanPlayer(row pgx.Row) (*world.Player, error) {
	var p world.Player
	var idStr string
	var inventory, attributes, visited []byte
	if err := row.Scan(&idStr, &p.Name, &p.PasswordHash, &p.RoomID, &inventory, &p.Money,
		&p.HP, &p.MaxHP, &p.XP, &p.Score, &p.Level, &attributes, &visited, &p.Admin, &p.CreatedAt); err != nil {
		return nil, err
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse player id").With("id", idStr).Wrap(err)
	}
	p.ID = id
	if err := unmarshalJSON(inventory, &p.Inventory, "inventory"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(attributes, &p.Attributes, "attributes"); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(visited, &p.VisitedRooms, "visited_rooms"); err != nil {
		return nil, err
	}
	return &p, nil
}
