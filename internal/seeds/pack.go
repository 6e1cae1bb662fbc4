// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package seeds loads authored world content from YAML packs: rooms, item
// templates, NPC templates, and monster templates. Packs are validated
// against a JSON Schema generated from the seed types, gated on a semver
// format version, and cross-checked for dangling references before any
// write reaches the database.
package seeds

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/mossgate/mossgate/internal/world"
)

// FormatVersion is the content format this build writes and reads.
// Packs declaring a different major version are rejected.
const FormatVersion = "1.0.0"

// Pack is one YAML content file. Every section is optional; a pack may
// ship only rooms, or only templates.
type Pack struct {
	Format   string        `yaml:"format" json:"format" jsonschema:"required,description=Content format version (semver)"`
	Name     string        `yaml:"name" json:"name" jsonschema:"required,description=Human-readable pack name"`
	Rooms    []RoomSeed    `yaml:"rooms,omitempty" json:"rooms,omitempty"`
	Items    []ItemSeed    `yaml:"items,omitempty" json:"items,omitempty"`
	Npcs     []NpcSeed     `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	Monsters []MonsterSeed `yaml:"monsters,omitempty" json:"monsters,omitempty"`
}

// RoomSeed is the authored form of a room. Exits map direction names to
// room IDs; spawn respawn intervals use Go duration syntax ("90s", "5m").
type RoomSeed struct {
	ID          string            `yaml:"id" json:"id" jsonschema:"required"`
	Name        string            `yaml:"name" json:"name" jsonschema:"required"`
	Description string            `yaml:"description" json:"description" jsonschema:"required"`
	Exits       map[string]string `yaml:"exits,omitempty" json:"exits,omitempty"`
	Items       []string          `yaml:"items,omitempty" json:"items,omitempty"`
	Npcs        []string          `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	Spawns      []SpawnSeed       `yaml:"spawns,omitempty" json:"spawns,omitempty"`
	Details     map[string]string `yaml:"details,omitempty" json:"details,omitempty" jsonschema:"description=Glob pattern to examine text"`
}

// SpawnSeed declares a room's spawn slot for one monster template.
type SpawnSeed struct {
	Monster string `yaml:"monster" json:"monster" jsonschema:"required"`
	Respawn string `yaml:"respawn" json:"respawn" jsonschema:"required,description=Respawn interval in Go duration syntax"`
}

// ItemSeed is the authored form of an item template.
type ItemSeed struct {
	ID          string   `yaml:"id" json:"id" jsonschema:"required"`
	Name        string   `yaml:"name" json:"name" jsonschema:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Cost        int      `yaml:"cost,omitempty" json:"cost,omitempty"`
	Movable     bool     `yaml:"movable,omitempty" json:"movable,omitempty"`
	Consumable  bool     `yaml:"consumable,omitempty" json:"consumable,omitempty"`
	HPRestore   int      `yaml:"hp_restore,omitempty" json:"hp_restore,omitempty"`

	Weapon       bool   `yaml:"weapon,omitempty" json:"weapon,omitempty"`
	WeaponDamage int    `yaml:"weapon_damage,omitempty" json:"weapon_damage,omitempty"`
	WeaponType   string `yaml:"weapon_type,omitempty" json:"weapon_type,omitempty"`

	Readable bool   `yaml:"readable,omitempty" json:"readable,omitempty"`
	Text     string `yaml:"text,omitempty" json:"text,omitempty"`
}

// NpcSeed is the authored form of an NPC template.
type NpcSeed struct {
	ID          string `yaml:"id" json:"id" jsonschema:"required"`
	ShortName   string `yaml:"short_name" json:"short_name" jsonschema:"required"`
	Name        string `yaml:"name" json:"name" jsonschema:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Dialogue    []string `yaml:"dialogue,omitempty" json:"dialogue,omitempty"`
	Personality string   `yaml:"personality,omitempty" json:"personality,omitempty"`
	UseAI       bool     `yaml:"use_ai,omitempty" json:"use_ai,omitempty"`

	Triggers map[string]string `yaml:"triggers,omitempty" json:"triggers,omitempty" jsonschema:"description=Keyword to item template ID"`
	Sells    []string          `yaml:"sells,omitempty" json:"sells,omitempty"`
}

// MonsterSeed is the authored form of a monster template.
type MonsterSeed struct {
	ID          string `yaml:"id" json:"id" jsonschema:"required"`
	Name        string `yaml:"name" json:"name" jsonschema:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	HP          int    `yaml:"hp" json:"hp" jsonschema:"required"`
	MinAtk      int    `yaml:"min_atk" json:"min_atk"`
	MaxAtk      int    `yaml:"max_atk" json:"max_atk" jsonschema:"required"`
	XPReward    int    `yaml:"xp_reward,omitempty" json:"xp_reward,omitempty"`
	GoldReward  int    `yaml:"gold_reward,omitempty" json:"gold_reward,omitempty"`
	ItemDrop    string `yaml:"item_drop,omitempty" json:"item_drop,omitempty"`
	Newsworthy  bool   `yaml:"newsworthy,omitempty" json:"newsworthy,omitempty"`
}

// formatConstraint accepts any format version with the same major as
// FormatVersion.
var formatConstraint = semver.MustParse(FormatVersion)

// ParsePack parses and fully validates one pack file: schema shape,
// format version, per-entry structural invariants, and intra-pack
// references. References to IDs outside the pack are allowed; operators
// may split content across files, so only Apply can see the whole world.
func ParsePack(data []byte) (*Pack, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("pack data is empty")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the format version and every entry in the pack.
func (p *Pack) Validate() error {
	v, err := semver.NewVersion(p.Format)
	if err != nil {
		return fmt.Errorf("format %q is not a semantic version: %w", p.Format, err)
	}
	if v.Major() != formatConstraint.Major() {
		return fmt.Errorf("format %s is incompatible with this build (wants %d.x)", p.Format, formatConstraint.Major())
	}
	if p.Name == "" {
		return fmt.Errorf("pack name is required")
	}

	seen := make(map[string]string)
	mark := func(kind, id string) error {
		if prev, ok := seen[kind+"/"+id]; ok {
			return fmt.Errorf("%s %q declared twice (%s)", kind, id, prev)
		}
		seen[kind+"/"+id] = p.Name
		return nil
	}

	for i, r := range p.Rooms {
		room, err := r.toRoom()
		if err != nil {
			return fmt.Errorf("room[%d] %q: %w", i, r.ID, err)
		}
		if err := room.Validate(); err != nil {
			return fmt.Errorf("room[%d] %q: %w", i, r.ID, err)
		}
		if err := mark("room", r.ID); err != nil {
			return err
		}
	}
	for i, it := range p.Items {
		if err := it.toTemplate().Validate(); err != nil {
			return fmt.Errorf("item[%d] %q: %w", i, it.ID, err)
		}
		if err := mark("item", it.ID); err != nil {
			return err
		}
	}
	for i, n := range p.Npcs {
		if err := n.toTemplate().Validate(); err != nil {
			return fmt.Errorf("npc[%d] %q: %w", i, n.ID, err)
		}
		if err := mark("npc", n.ID); err != nil {
			return err
		}
	}
	for i, m := range p.Monsters {
		if err := m.toTemplate().Validate(); err != nil {
			return fmt.Errorf("monster[%d] %q: %w", i, m.ID, err)
		}
		if err := mark("monster", m.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r RoomSeed) toRoom() (*world.Room, error) {
	room := &world.Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Items:       r.Items,
		NPCs:        r.Npcs,
		Details:     r.Details,
	}
	if len(r.Exits) > 0 {
		room.Exits = make(map[world.Direction]string, len(r.Exits))
		for dir, dest := range r.Exits {
			room.Exits[world.Direction(dir)] = dest
		}
	}
	for _, s := range r.Spawns {
		interval, err := time.ParseDuration(s.Respawn)
		if err != nil {
			return nil, fmt.Errorf("spawn %q: bad respawn interval %q", s.Monster, s.Respawn)
		}
		room.Spawns = append(room.Spawns, world.SpawnSlot{
			MonsterID:       s.Monster,
			RespawnInterval: interval,
		})
	}
	return room, nil
}

func (it ItemSeed) toTemplate() *world.ItemTemplate {
	return &world.ItemTemplate{
		ID:           it.ID,
		Name:         it.Name,
		Description:  it.Description,
		Aliases:      it.Aliases,
		Cost:         it.Cost,
		Movable:      it.Movable,
		Consumable:   it.Consumable,
		HPRestore:    it.HPRestore,
		Weapon:       it.Weapon,
		WeaponDamage: it.WeaponDamage,
		WeaponType:   it.WeaponType,
		Readable:     it.Readable,
		Text:         it.Text,
	}
}

func (n NpcSeed) toTemplate() *world.NpcTemplate {
	return &world.NpcTemplate{
		ID:          n.ID,
		ShortName:   n.ShortName,
		Name:        n.Name,
		Description: n.Description,
		Dialogue:    n.Dialogue,
		Personality: n.Personality,
		UseAI:       n.UseAI,
		Triggers:    n.Triggers,
		Sells:       n.Sells,
	}
}

func (m MonsterSeed) toTemplate() *world.MonsterTemplate {
	return &world.MonsterTemplate{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		HP:          m.HP,
		MinAtk:      m.MinAtk,
		MaxAtk:      m.MaxAtk,
		XPReward:    m.XPReward,
		GoldReward:  m.GoldReward,
		ItemDrop:    m.ItemDrop,
		Newsworthy:  m.Newsworthy,
	}
}
