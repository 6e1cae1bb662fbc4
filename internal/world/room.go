// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package world defines the game world model: rooms, content templates,
// live monster instances, and players, together with the repository and
// transaction interfaces they are persisted through.
package world

import (
	"time"
)

// Direction is a normalized compass direction used as an exit key.
type Direction string

// Canonical directions. The intent parser maps abbreviations ("n", "sw")
// to these before dispatch.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

var inverseDirections = map[Direction]Direction{
	North: South,
	South: North,
	East:  West,
	West:  East,
	Up:    Down,
	Down:  Up,
}

// Inverse returns the opposite direction, used to narrate arrivals
// ("Rill arrives from the south"). Unknown directions invert to themselves.
func (d Direction) Inverse() Direction {
	if inv, ok := inverseDirections[d]; ok {
		return inv
	}
	return d
}

// Valid reports whether d is one of the canonical directions.
func (d Direction) Valid() bool {
	_, ok := inverseDirections[d]
	return ok
}

// SpawnSlot declares that a room hosts at most one live instance of a
// monster template, re-armed lazily after the respawn interval elapses.
type SpawnSlot struct {
	MonsterID       string        `json:"monster_id"`
	RespawnInterval time.Duration `json:"respawn_interval"`
	LastDefeatedAt  time.Time     `json:"last_defeated_at"` // zero = never defeated
}

// Eligible reports whether the slot may produce a new instance at now.
// A never-defeated slot is immediately eligible.
func (s SpawnSlot) Eligible(now time.Time) bool {
	if s.LastDefeatedAt.IsZero() {
		return true
	}
	return now.Sub(s.LastDefeatedAt) >= s.RespawnInterval
}

// Room is a location in the world. Rooms are authored out-of-band and are
// never deleted during play; only their item set and spawn timestamps mutate.
type Room struct {
	ID          string
	Name        string
	Description string
	Exits       map[Direction]string // direction -> destination room ID
	Items       []string             // ordered set of item template IDs
	NPCs        []string             // NPC template IDs present here
	Spawns      []SpawnSlot
	Details     map[string]string // glob pattern -> detail text for examine
}

// Exit returns the destination room ID for a direction, if one exists.
func (r *Room) Exit(dir Direction) (string, bool) {
	id, ok := r.Exits[dir]
	return id, ok
}

// HasItem reports whether the room currently holds the item.
func (r *Room) HasItem(itemID string) bool {
	for _, id := range r.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItem removes the first occurrence of itemID from the room's item
// set, preserving order. Returns false if the item was not present.
func (r *Room) RemoveItem(itemID string) bool {
	for i, id := range r.Items {
		if id == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return true
		}
	}
	return false
}

// AddItem appends itemID to the room's item set.
func (r *Room) AddItem(itemID string) {
	r.Items = append(r.Items, itemID)
}

// HasNPC reports whether the NPC template is present in the room.
func (r *Room) HasNPC(npcID string) bool {
	for _, id := range r.NPCs {
		if id == npcID {
			return true
		}
	}
	return false
}

// SpawnSlotFor returns the spawn slot for a monster template, or nil.
func (r *Room) SpawnSlotFor(monsterID string) *SpawnSlot {
	for i := range r.Spawns {
		if r.Spawns[i].MonsterID == monsterID {
			return &r.Spawns[i]
		}
	}
	return nil
}

// Validate checks structural invariants on an authored room.
func (r *Room) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	for dir := range r.Exits {
		if !dir.Valid() {
			return &ValidationError{Field: "exits", Message: "unknown direction " + string(dir)}
		}
	}
	for _, s := range r.Spawns {
		if s.MonsterID == "" {
			return &ValidationError{Field: "spawns", Message: "monster_id cannot be empty"}
		}
		if s.RespawnInterval < 0 {
			return &ValidationError{Field: "spawns", Message: "respawn_interval cannot be negative"}
		}
	}
	return nil
}
