// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package core

import (
	"context"
	"errors"
)

// ErrStreamEmpty is returned when a stream has no events.
var ErrStreamEmpty = errors.New("stream is empty")

// EventStore persists the durable event streams. Only the world stream is
// durable today (newsworthy deaths, level-ups shown by the news command);
// room chatter is fan-out only.
type EventStore interface {
	// Append persists an event.
	Append(ctx context.Context, event Event) error

	// Recent returns the most recent events on a stream, newest first.
	Recent(ctx context.Context, stream string, limit int) ([]Event, error)
}
