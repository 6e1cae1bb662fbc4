// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// Snapshot is the in-memory world model: rooms and content templates kept
// current by a change subscription against the store. It serves read-mostly
// lookups (template resolution, room layout, exit validation) and is never
// the source of truth for a mutation; mutating handlers re-read
// authoritative state inside a transaction.
type Snapshot struct {
	rooms     RoomRepository
	templates TemplateRepository

	mu        sync.RWMutex
	roomsByID map[string]*Room
	items     map[string]*ItemTemplate
	npcs      map[string]*NpcTemplate
	monsters  map[string]*MonsterTemplate
}

// NewSnapshot creates an empty snapshot over the given repositories.
// Call Load before first use.
func NewSnapshot(rooms RoomRepository, templates TemplateRepository) *Snapshot {
	return &Snapshot{
		rooms:     rooms,
		templates: templates,
		roomsByID: make(map[string]*Room),
		items:     make(map[string]*ItemTemplate),
		npcs:      make(map[string]*NpcTemplate),
		monsters:  make(map[string]*MonsterTemplate),
	}
}

// Load replaces the snapshot with the current store contents.
func (s *Snapshot) Load(ctx context.Context) error {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return oops.Code("SNAPSHOT_LOAD_FAILED").With("entity", "rooms").Wrap(err)
	}
	items, err := s.templates.ListItems(ctx)
	if err != nil {
		return oops.Code("SNAPSHOT_LOAD_FAILED").With("entity", "items").Wrap(err)
	}
	npcs, err := s.templates.ListNpcs(ctx)
	if err != nil {
		return oops.Code("SNAPSHOT_LOAD_FAILED").With("entity", "npcs").Wrap(err)
	}
	monsters, err := s.templates.ListMonsters(ctx)
	if err != nil {
		return oops.Code("SNAPSHOT_LOAD_FAILED").With("entity", "monsters").Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomsByID = make(map[string]*Room, len(rooms))
	for _, r := range rooms {
		s.roomsByID[r.ID] = r
	}
	s.items = make(map[string]*ItemTemplate, len(items))
	for _, t := range items {
		s.items[t.ID] = t
	}
	s.npcs = make(map[string]*NpcTemplate, len(npcs))
	for _, t := range npcs {
		s.npcs[t.ID] = t
	}
	s.monsters = make(map[string]*MonsterTemplate, len(monsters))
	for _, t := range monsters {
		s.monsters[t.ID] = t
	}
	return nil
}

// Refresh re-reads a single changed entity, identified by a "kind:id"
// change notification payload. Unknown payloads trigger a full reload.
func (s *Snapshot) Refresh(ctx context.Context, payload string) error {
	kind, id, ok := strings.Cut(payload, ":")
	if !ok {
		slog.Debug("world change notification without entity, reloading", "payload", payload)
		return s.Load(ctx)
	}
	switch kind {
	case "room":
		room, err := s.rooms.Get(ctx, id)
		if err != nil {
			return oops.Code("SNAPSHOT_REFRESH_FAILED").With("payload", payload).Wrap(err)
		}
		s.mu.Lock()
		s.roomsByID[id] = room
		s.mu.Unlock()
		return nil
	case "item", "npc", "monster":
		// Template edits only happen out-of-band; a full template reload
		// is cheap at content-pack scale.
		return s.Load(ctx)
	default:
		return s.Load(ctx)
	}
}

// Room returns the cached room, or nil if unknown.
func (s *Snapshot) Room(id string) *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomsByID[id]
}

// Item returns the cached item template, or nil if unknown.
func (s *Snapshot) Item(id string) *ItemTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id]
}

// Npc returns the cached NPC template, or nil if unknown.
func (s *Snapshot) Npc(id string) *NpcTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.npcs[id]
}

// Monster returns the cached monster template, or nil if unknown.
func (s *Snapshot) Monster(id string) *MonsterTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monsters[id]
}

// FindItemByName resolves a player-supplied item name against names and
// aliases of item templates in the given candidate ID set, preserving the
// set's order so "get coin" picks the first coin in the room.
func (s *Snapshot) FindItemByName(candidates []string, name string) *ItemTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range candidates {
		if t := s.items[id]; t != nil && t.Matches(name) {
			return t
		}
	}
	return nil
}

// FindNpcByName resolves a player-supplied NPC name within a candidate set.
func (s *Snapshot) FindNpcByName(candidates []string, name string) *NpcTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range candidates {
		if t := s.npcs[id]; t != nil && t.Matches(name) {
			return t
		}
	}
	return nil
}
