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

// MonsterRepository implements world.MonsterRepository using PostgreSQL.
type MonsterRepository struct {
	pool querier
}

// NewMonsterRepository creates a new PostgreSQL monster instance repository.
func NewMonsterRepository(pool querier) *MonsterRepository {
	return &MonsterRepository{pool: pool}
}

const monsterInstanceColumns = `id, monster_id, room_id, hp, max_hp, name, created_at`

// Get retrieves a monster instance by ID.
func (r *MonsterRepository) Get(ctx context.Context, id ulid.ULID) (*world.MonsterInstance, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+monsterInstanceColumns+` FROM monster_instances WHERE id = $1
	`, id.String())
	m, err := scanMonsterInstance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INSTANCE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INSTANCE_GET_FAILED").With("id", id.String()).Wrap(err)
	}
	return m, nil
}

// Create persists a new monster instance. The unique index on
// (room_id, monster_id) backs up the scheduler's one-instance-per-slot
// check at the storage layer.
func (r *MonsterRepository) Create(ctx context.Context, m *world.MonsterInstance) error {
	_, err := db(ctx, r.pool).Exec(ctx, `
		INSERT INTO monster_instances (id, monster_id, room_id, hp, max_hp, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID.String(), m.MonsterID, m.RoomID, m.HP, m.MaxHP, m.Name, m.CreatedAt)
	if err != nil {
		return oops.Code("INSTANCE_CREATE_FAILED").With("id", m.ID.String()).Wrap(err)
	}
	return nil
}

// Delete removes a monster instance.
func (r *MonsterRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := db(ctx, r.pool).Exec(ctx, `
		DELETE FROM monster_instances WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("INSTANCE_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("INSTANCE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// UpdateHP persists a reduced hit point total.
func (r *MonsterRepository) UpdateHP(ctx context.Context, id ulid.ULID, hp int) error {
	result, err := db(ctx, r.pool).Exec(ctx, `
		UPDATE monster_instances SET hp = $2 WHERE id = $1
	`, id.String(), hp)
	if err != nil {
		return oops.Code("INSTANCE_UPDATE_FAILED").With("id", id.String()).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("INSTANCE_NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	return nil
}

// ListByRoom returns live instances in a room, oldest first.
func (r *MonsterRepository) ListByRoom(ctx context.Context, roomID string) ([]*world.MonsterInstance, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
		SELECT `+monsterInstanceColumns+` FROM monster_instances
		WHERE room_id = $1 ORDER BY created_at, id
	`, roomID)
	if err != nil {
		return nil, oops.Code("INSTANCE_QUERY_FAILED").With("room_id", roomID).Wrap(err)
	}
	defer rows.Close()

	var instances []*world.MonsterInstance
	for rows.Next() {
		m, err := scanMonsterInstance(rows)
		if err != nil {
			return nil, oops.Code("INSTANCE_SCAN_FAILED").Wrap(err)
		}
		instances = append(instances, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("INSTANCE_QUERY_FAILED").Wrap(err)
	}
	return instances, nil
}

// FindByRoomAndTemplate returns the live instance occupying the
// (room, template) spawn slot, or world.ErrNotFound.
func (r *MonsterRepository) FindByRoomAndTemplate(ctx context.Context, roomID, monsterID string) (*world.MonsterInstance, error) {
	row := db(ctx, r.pool).QueryRow(ctx, `
		SELECT `+monsterInstanceColumns+` FROM monster_instances
		WHERE room_id = $1 AND monster_id = $2
	`, roomID, monsterID)
	m, err := scanMonsterInstance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("INSTANCE_NOT_FOUND").
			With("room_id", roomID).With("monster_id", monsterID).
			Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("INSTANCE_GET_FAILED").With("room_id", roomID).Wrap(err)
	}
	return m, nil
}

func scanMonsterInstance(row pgx.Row) (*world.MonsterInstance, error) {
	var m world.MonsterInstance
	var idStr string
	if err := row.Scan(&idStr, &m.MonsterID, &m.RoomID, &m.HP, &m.MaxHP, &m.Name, &m.CreatedAt); err != nil {
		return nil, err
	}
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse instance id").With("id", idStr).Wrap(err)
	}
	m.ID = id
	return &m, nil
}
