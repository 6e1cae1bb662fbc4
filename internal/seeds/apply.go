// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package seeds

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/world"
)

// Summary reports what a seeding run wrote.
type Summary struct {
	Packs    int
	Rooms    int
	Items    int
	Npcs     int
	Monsters int
}

// Loader applies parsed packs to the world repositories. All writes from
// one run happen inside a single transaction; a half-applied content
// update never becomes visible.
type Loader struct {
	tx        world.Transactor
	rooms     world.RoomRepository
	templates world.TemplateRepository
	log       *slog.Logger
}

// NewLoader builds a loader over the given repositories.
func NewLoader(tx world.Transactor, rooms world.RoomRepository, templates world.TemplateRepository) *Loader {
	return &Loader{
		tx:        tx,
		rooms:     rooms,
		templates: templates,
		log:       slog.Default().With("component", "seeds"),
	}
}

// LoadDir parses every pack file in dir (lexical order) and applies them.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Summary, error) {
	paths, err := packFiles(dir)
	if err != nil {
		return Summary{}, err
	}
	if len(paths) == 0 {
		return Summary{}, oops.Code("SEED_EMPTY").
			With("dir", dir).
			Errorf("no pack files found")
	}

	packs := make([]*Pack, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied content dir
		if err != nil {
			return Summary{}, oops.Code("SEED_READ_FAILED").
				With("path", path).
				Wrapf(err, "reading pack file")
		}
		p, err := ParsePack(data)
		if err != nil {
			return Summary{}, oops.Code("SEED_INVALID").
				With("path", path).
				Wrapf(err, "parsing pack file")
		}
		packs = append(packs, p)
	}
	return l.Apply(ctx, packs)
}

// Apply cross-checks references over the full pack set plus existing
// content, then upserts everything transactionally. Re-applying the same
// packs is idempotent; spawn defeat timestamps on existing rooms survive.
func (l *Loader) Apply(ctx context.Context, packs []*Pack) (Summary, error) {
	var sum Summary
	err := l.tx.InTransaction(ctx, func(ctx context.Context) error {
		sum = Summary{}

		known, err := l.knownIDs(ctx)
		if err != nil {
			return err
		}
		indexPacks(known, packs)
		if issues := checkReferences(packs, known); len(issues) > 0 {
			return oops.Code("SEED_DANGLING_REF").
				With("issues", issues).
				Errorf("%d unresolved content references, first: %s", len(issues), issues[0])
		}

		for _, p := range packs {
			if err := l.applyPack(ctx, p, &sum); err != nil {
				return err
			}
			sum.Packs++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	l.log.Info("seed content applied",
		"packs", sum.Packs,
		"rooms", sum.Rooms,
		"items", sum.Items,
		"npcs", sum.Npcs,
		"monsters", sum.Monsters)
	return sum, nil
}

func (l *Loader) applyPack(ctx context.Context, p *Pack, sum *Summary) error {
	for _, it := range p.Items {
		if err := l.templates.UpsertItem(ctx, it.toTemplate()); err != nil {
			return oops.Code("SEED_FAILED").With("item", it.ID).Wrapf(err, "upserting item")
		}
		sum.Items++
	}
	for _, n := range p.Npcs {
		if err := l.templates.UpsertNpc(ctx, n.toTemplate()); err != nil {
			return oops.Code("SEED_FAILED").With("npc", n.ID).Wrapf(err, "upserting npc")
		}
		sum.Npcs++
	}
	for _, m := range p.Monsters {
		if err := l.templates.UpsertMonster(ctx, m.toTemplate()); err != nil {
			return oops.Code("SEED_FAILED").With("monster", m.ID).Wrapf(err, "upserting monster")
		}
		sum.Monsters++
	}
	for _, r := range p.Rooms {
		room, err := r.toRoom()
		if err != nil {
			return oops.Code("SEED_INVALID").With("room", r.ID).Wrap(err)
		}
		l.carrySpawnStamps(ctx, room)
		if err := l.rooms.Upsert(ctx, room); err != nil {
			return oops.Code("SEED_FAILED").With("room", r.ID).Wrapf(err, "upserting room")
		}
		sum.Rooms++
	}
	return nil
}

// carrySpawnStamps copies defeat timestamps from the stored room onto the
// incoming one so re-seeding does not re-arm every spawn slot at once.
func (l *Loader) carrySpawnStamps(ctx context.Context, room *world.Room) {
	existing, err := l.rooms.Get(ctx, room.ID)
	if err != nil {
		return
	}
	for i := range room.Spawns {
		if prev := existing.SpawnSlotFor(room.Spawns[i].MonsterID); prev != nil {
			room.Spawns[i].LastDefeatedAt = prev.LastDefeatedAt
		}
	}
}

// knownIDs collects the IDs already persisted, so packs may reference
// content seeded by an earlier run.
func (l *Loader) knownIDs(ctx context.Context) (map[string]bool, error) {
	known := make(map[string]bool)

	rooms, err := l.rooms.List(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").Wrapf(err, "listing rooms")
	}
	for _, r := range rooms {
		known["room/"+r.ID] = true
	}

	items, err := l.templates.ListItems(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").Wrapf(err, "listing items")
	}
	for _, t := range items {
		known["item/"+t.ID] = true
	}

	npcs, err := l.templates.ListNpcs(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").Wrapf(err, "listing npcs")
	}
	for _, t := range npcs {
		known["npc/"+t.ID] = true
	}

	monsters, err := l.templates.ListMonsters(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").Wrapf(err, "listing monsters")
	}
	for _, t := range monsters {
		known["monster/"+t.ID] = true
	}
	return known, nil
}

// Issue is one problem found while validating a pack file offline.
type Issue struct {
	File string
	Err  error
}

func (i Issue) String() string {
	if i.File == "" {
		return i.Err.Error()
	}
	return i.File + ": " + i.Err.Error()
}

// ValidateDir parses and cross-checks every pack file in dir without
// touching a database. The directory is treated as the complete content
// set, so references must resolve within it. Returns one Issue per
// problem; an empty slice means the content is clean.
func ValidateDir(dir string) ([]Issue, error) {
	paths, err := packFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no pack files found in %s", dir)
	}

	var issues []Issue
	var packs []*Pack
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied content dir
		if err != nil {
			issues = append(issues, Issue{File: path, Err: err})
			continue
		}
		p, err := ParsePack(data)
		if err != nil {
			issues = append(issues, Issue{File: path, Err: err})
			continue
		}
		packs = append(packs, p)
	}

	known := make(map[string]bool)
	indexPacks(known, packs)
	for _, msg := range checkReferences(packs, known) {
		issues = append(issues, Issue{Err: fmt.Errorf("%s", msg)})
	}
	return issues, nil
}

func packFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading seed dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func indexPacks(known map[string]bool, packs []*Pack) {
	for _, p := range packs {
		for _, r := range p.Rooms {
			known["room/"+r.ID] = true
		}
		for _, it := range p.Items {
			known["item/"+it.ID] = true
		}
		for _, n := range p.Npcs {
			known["npc/"+n.ID] = true
		}
		for _, m := range p.Monsters {
			known["monster/"+m.ID] = true
		}
	}
}

// checkReferences verifies that every cross-entity reference in the packs
// resolves against the known ID set.
func checkReferences(packs []*Pack, known map[string]bool) []string {
	var issues []string
	ref := func(pack, from, kind, id string) {
		if id == "" || known[kind+"/"+id] {
			return
		}
		issues = append(issues, fmt.Sprintf("pack %q: %s references unknown %s %q", pack, from, kind, id))
	}
	for _, p := range packs {
		for _, r := range p.Rooms {
			for dir, dest := range r.Exits {
				ref(p.Name, fmt.Sprintf("room %q exit %s", r.ID, dir), "room", dest)
			}
			for _, id := range r.Items {
				ref(p.Name, fmt.Sprintf("room %q", r.ID), "item", id)
			}
			for _, id := range r.Npcs {
				ref(p.Name, fmt.Sprintf("room %q", r.ID), "npc", id)
			}
			for _, s := range r.Spawns {
				ref(p.Name, fmt.Sprintf("room %q spawn", r.ID), "monster", s.Monster)
			}
		}
		for _, n := range p.Npcs {
			for _, id := range n.Sells {
				ref(p.Name, fmt.Sprintf("npc %q sells", n.ID), "item", id)
			}
			for keyword, id := range n.Triggers {
				ref(p.Name, fmt.Sprintf("npc %q trigger %q", n.ID, keyword), "item", id)
			}
		}
		for _, m := range p.Monsters {
			ref(p.Name, fmt.Sprintf("monster %q item_drop", m.ID), "item", m.ItemDrop)
		}
	}
	sort.Strings(issues)
	return issues
}
