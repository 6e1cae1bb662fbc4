// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package postgres implements the world repositories on PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// querier abstracts query execution over *pgxpool.Pool and pgx.Tx so that
// repository methods work both standalone and inside a transaction.
// Repositories accept it instead of a concrete pool so tests can substitute
// a mock connection.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// txKey is the context key under which Transactor stores the active pgx.Tx.
type txKey struct{}

// db returns the active transaction from ctx if one is open, otherwise
// the pool. All repository methods route queries through this.
func db(ctx context.Context, pool querier) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// marshalJSON marshals a value for a jsonb column.
func marshalJSON(v any, field string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, oops.With("operation", "marshal "+field).Wrap(err)
	}
	return b, nil
}

// unmarshalJSON parses a jsonb column into dst. Null columns leave dst
// untouched.
func unmarshalJSON(raw []byte, dst any, field string) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return oops.With("operation", "unmarshal "+field).Wrap(err)
	}
	return nil
}
