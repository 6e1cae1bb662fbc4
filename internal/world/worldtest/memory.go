// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package worldtest provides an in-memory world store for unit tests. It
// implements every repository interface plus a passthrough Transactor, with
// no isolation or retry semantics.
package worldtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mossgate/mossgate/internal/world"
)

// Store holds world state in maps. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	rooms    map[string]*world.Room
	players  map[ulid.ULID]*world.Player
	items    map[string]*world.ItemTemplate
	npcs     map[string]*world.NpcTemplate
	monsters map[string]*world.MonsterTemplate
	live     map[ulid.ULID]*world.MonsterInstance
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		rooms:    make(map[string]*world.Room),
		players:  make(map[ulid.ULID]*world.Player),
		items:    make(map[string]*world.ItemTemplate),
		npcs:     make(map[string]*world.NpcTemplate),
		monsters: make(map[string]*world.MonsterTemplate),
		live:     make(map[ulid.ULID]*world.MonsterInstance),
	}
}

// InTransaction runs fn directly; there is no rollback.
func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Seed helpers. Each stores a copy.

func (s *Store) AddRoom(r *world.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneRoom(r)
	s.rooms[r.ID] = &cp
}

func cloneRoom(r *world.Room) world.Room {
	cp := *r
	if r.Exits != nil {
		cp.Exits = make(map[world.Direction]string, len(r.Exits))
		for k, v := range r.Exits {
			cp.Exits[k] = v
		}
	}
	if r.Details != nil {
		cp.Details = make(map[string]string, len(r.Details))
		for k, v := range r.Details {
			cp.Details[k] = v
		}
	}
	cp.Items = append([]string(nil), r.Items...)
	cp.NPCs = append([]string(nil), r.NPCs...)
	cp.Spawns = append([]world.SpawnSlot(nil), r.Spawns...)
	return cp
}

func (s *Store) AddPlayer(p *world.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.players[p.ID] = &cp
}

func (s *Store) AddItemTemplate(t *world.ItemTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.items[t.ID] = &cp
}

func (s *Store) AddNpcTemplate(t *world.NpcTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.npcs[t.ID] = &cp
}

func (s *Store) AddMonsterTemplate(t *world.MonsterTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.monsters[t.ID] = &cp
}

func (s *Store) AddInstance(m *world.MonsterInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.live[m.ID] = &cp
}

// RoomRepository.

func (s *Store) Get(ctx context.Context, id string) (*world.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := cloneRoom(r)
	return &cp, nil
}

func (s *Store) List(ctx context.Context) ([]*world.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*world.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := cloneRoom(r)
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Upsert(ctx context.Context, room *world.Room) error {
	s.AddRoom(room)
	return nil
}

func (s *Store) SetItems(ctx context.Context, roomID string, items []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return world.ErrNotFound
	}
	r.Items = append([]string(nil), items...)
	return nil
}

func (s *Store) StampSpawn(ctx context.Context, roomID, monsterID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return world.ErrNotFound
	}
	for i := range r.Spawns {
		if r.Spawns[i].MonsterID == monsterID {
			r.Spawns[i].LastDefeatedAt = at
			return nil
		}
	}
	return nil
}

// Rooms returns a repository view of the store.
func (s *Store) Rooms() world.RoomRepository { return (*roomView)(s) }

// PlayerRepository is served through a view type so that Get does not
// collide with the room Get above.

type playerView Store

func (s *Store) Players() world.PlayerRepository { return (*playerView)(s) }

func (v *playerView) Get(ctx context.Context, id ulid.ULID) (*world.Player, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.players[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := clonePlayer(p)
	return &cp, nil
}

func (v *playerView) GetByName(ctx context.Context, name string) (*world.Player, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.players {
		if strings.EqualFold(p.Name, name) {
			cp := clonePlayer(p)
			return &cp, nil
		}
	}
	return nil, world.ErrNotFound
}

func (v *playerView) Create(ctx context.Context, p *world.Player) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	cp := clonePlayer(p)
	v.players[p.ID] = &cp
	return nil
}

func (v *playerView) Update(ctx context.Context, p *world.Player) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.players[p.ID]; !ok {
		return world.ErrNotFound
	}
	cp := clonePlayer(p)
	v.players[p.ID] = &cp
	return nil
}

func (v *playerView) ListByRoom(ctx context.Context, roomID string) ([]*world.Player, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []*world.Player
	for _, p := range v.players {
		if p.RoomID == roomID {
			cp := clonePlayer(p)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func clonePlayer(p *world.Player) world.Player {
	cp := *p
	cp.Inventory = append([]world.InventoryItem(nil), p.Inventory...)
	cp.VisitedRooms = append([]string(nil), p.VisitedRooms...)
	return cp
}

type roomView Store

func (v *roomView) Get(ctx context.Context, id string) (*world.Room, error) {
	return (*Store)(v).Get(ctx, id)
}

func (v *roomView) List(ctx context.Context) ([]*world.Room, error) {
	return (*Store)(v).List(ctx)
}

func (v *roomView) Upsert(ctx context.Context, room *world.Room) error {
	return (*Store)(v).Upsert(ctx, room)
}

func (v *roomView) SetItems(ctx context.Context, roomID string, items []string) error {
	return (*Store)(v).SetItems(ctx, roomID, items)
}

func (v *roomView) StampSpawn(ctx context.Context, roomID, monsterID string, at time.Time) error {
	return (*Store)(v).StampSpawn(ctx, roomID, monsterID, at)
}

// TemplateRepository.

type templateView Store

func (s *Store) Templates() world.TemplateRepository { return (*templateView)(s) }

func (v *templateView) Item(ctx context.Context, id string) (*world.ItemTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.items[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (v *templateView) Npc(ctx context.Context, id string) (*world.NpcTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.npcs[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (v *templateView) Monster(ctx context.Context, id string) (*world.MonsterTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	t, ok := v.monsters[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (v *templateView) ListItems(ctx context.Context) ([]*world.ItemTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*world.ItemTemplate, 0, len(v.items))
	for _, t := range v.items {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (v *templateView) ListNpcs(ctx context.Context) ([]*world.NpcTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*world.NpcTemplate, 0, len(v.npcs))
	for _, t := range v.npcs {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (v *templateView) ListMonsters(ctx context.Context) ([]*world.MonsterTemplate, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*world.MonsterTemplate, 0, len(v.monsters))
	for _, t := range v.monsters {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (v *templateView) UpsertItem(ctx context.Context, t *world.ItemTemplate) error {
	(*Store)(v).AddItemTemplate(t)
	return nil
}

func (v *templateView) UpsertNpc(ctx context.Context, t *world.NpcTemplate) error {
	(*Store)(v).AddNpcTemplate(t)
	return nil
}

func (v *templateView) UpsertMonster(ctx context.Context, t *world.MonsterTemplate) error {
	(*Store)(v).AddMonsterTemplate(t)
	return nil
}

// MonsterRepository.

type monsterView Store

func (s *Store) Monsters() world.MonsterRepository { return (*monsterView)(s) }

func (v *monsterView) Get(ctx context.Context, id ulid.ULID) (*world.MonsterInstance, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.live[id]
	if !ok {
		return nil, world.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (v *monsterView) Create(ctx context.Context, m *world.MonsterInstance) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, existing := range v.live {
		if existing.RoomID == m.RoomID && existing.MonsterID == m.MonsterID {
			return world.ErrConflict
		}
	}
	cp := *m
	v.live[m.ID] = &cp
	return nil
}

func (v *monsterView) Delete(ctx context.Context, id ulid.ULID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.live[id]; !ok {
		return world.ErrNotFound
	}
	delete(v.live, id)
	return nil
}

func (v *monsterView) UpdateHP(ctx context.Context, id ulid.ULID, hp int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	m, ok := v.live[id]
	if !ok {
		return world.ErrNotFound
	}
	m.HP = hp
	return nil
}

func (v *monsterView) ListByRoom(ctx context.Context, roomID string) ([]*world.MonsterInstance, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []*world.MonsterInstance
	for _, m := range v.live {
		if m.RoomID == roomID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (v *monsterView) FindByRoomAndTemplate(ctx context.Context, roomID, monsterID string) (*world.MonsterInstance, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, m := range v.live {
		if m.RoomID == roomID && m.MonsterID == monsterID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, world.ErrNotFound
}
