// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package store provides the PostgreSQL connection pool, schema migrations,
// and the durable event log.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
)

// Store owns the database connection pool shared by all repositories.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool against the given database URL.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").Wrap(err)
	}
	return &Store{pool: pool}, nil
}

// Pool returns the underlying connection pool for repository construction.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EventStore implements core.EventStore on the events table.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates an event store over the shared pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Append persists an event. Appends are deliberately not transactional
// with game-state writes: losing a news line on a crash is acceptable,
// holding the combat transaction open for it is not.
func (s *EventStore) Append(ctx context.Context, event core.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, stream, category, actor_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID.String(), event.Stream, string(event.Category), event.ActorID, event.Text, event.Timestamp)
	if err != nil {
		return oops.Code("EVENT_APPEND_FAILED").
			With("stream", event.Stream).With("id", event.ID.String()).
			Wrap(err)
	}
	return nil
}

// Recent returns the most recent events on a stream, newest first.
func (s *EventStore) Recent(ctx context.Context, stream string, limit int) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, stream, category, actor_id, text, created_at
		FROM events WHERE stream = $1 ORDER BY id DESC LIMIT $2
	`, stream, limit)
	if err != nil {
		return nil, oops.Code("EVENT_QUERY_FAILED").With("stream", stream).Wrap(err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var e core.Event
		var idStr, categoryStr string
		if err := rows.Scan(&idStr, &e.Stream, &categoryStr, &e.ActorID, &e.Text, &e.Timestamp); err != nil {
			return nil, oops.Code("EVENT_SCAN_FAILED").With("stream", stream).Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("EVENT_CORRUPT_ID").With("stream", stream).With("id", idStr).Wrap(err)
		}
		e.ID = id
		e.Category = core.Category(categoryStr)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("EVENT_QUERY_FAILED").With("stream", stream).Wrap(err)
	}
	return events, nil
}
