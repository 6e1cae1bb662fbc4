// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package core contains the session, event, and broadcast primitives the
// command handlers are built on.
package core

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Category tags an output line for rendering. It is the only structure the
// presentation layer receives beyond ordering.
type Category string

const (
	CategorySystem Category = "system"
	CategoryGame   Category = "game"
	CategoryError  Category = "error"
	CategoryCombat Category = "combat"
	CategoryNpc    Category = "npc"
	CategoryChat   Category = "chat"
	CategoryAction Category = "action"
)

// Line is one ordered, human-readable output line.
type Line struct {
	Category Category
	Text     string
}

// Sink receives output lines for a single player, in order.
type Sink interface {
	Send(line Line)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(line Line)

// Send implements Sink.
func (f SinkFunc) Send(line Line) { f(line) }

// Streams events are broadcast on.
const (
	// StreamWorld carries global announcements (newsworthy deaths, level-ups).
	StreamWorld = "world"
)

// RoomStream names the event stream for a room.
func RoomStream(roomID string) string { return "room:" + roomID }

// PlayerStream names the event stream for a single player.
func PlayerStream(id ulid.ULID) string { return "player:" + id.String() }

// Event is something that happened in the world, fanned out to the
// sessions subscribed to its stream.
type Event struct {
	ID        ulid.ULID
	Stream    string
	Category  Category
	Text      string
	ActorID   string // player ULID string, or "" for system
	Timestamp time.Time
}

// NewEvent builds an event with a fresh ID and current timestamp.
func NewEvent(stream string, category Category, actorID, text string) Event {
	return Event{
		ID:        NewULID(),
		Stream:    stream,
		Category:  category,
		Text:      text,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	}
}
