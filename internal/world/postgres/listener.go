// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// worldChannel is the NOTIFY channel the schema triggers fire on whenever
// a room or template row changes.
const worldChannel = "world_changed"

// reconnectDelay paces listener reconnects after a dropped connection.
const reconnectDelay = time.Second

// Listener subscribes to world change notifications and invokes a callback
// per change. It keeps the in-memory world snapshot current without the
// snapshot ever being authoritative for writes.
type Listener struct {
	pool     *pgxpool.Pool
	onChange func(ctx context.Context, payload string)
}

// NewListener creates a Listener invoking onChange for each notification.
func NewListener(pool *pgxpool.Pool, onChange func(ctx context.Context, payload string)) *Listener {
	return &Listener{pool: pool, onChange: onChange}
}

// Run blocks listening for notifications until ctx is cancelled. Dropped
// connections reconnect with a short delay; notifications during the gap
// are lost, which is tolerable because the snapshot is read-mostly and
// mutations never trust it.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("world listener disconnected, reconnecting", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return oops.Code("LISTEN_ACQUIRE_FAILED").Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+worldChannel); err != nil {
		return oops.Code("LISTEN_FAILED").With("channel", worldChannel).Wrap(err)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return oops.Code("LISTEN_WAIT_FAILED").Wrap(err)
		}
		l.onChange(ctx, notification.Payload)
	}
}
