// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// MonsterTemplate describes a monster type. Immutable during play;
// instantiated into MonsterInstance by the spawn scheduler.
type MonsterTemplate struct {
	ID          string
	Name        string
	Description string
	HP          int
	MinAtk      int
	MaxAtk      int
	XPReward    int
	GoldReward  int
	ItemDrop    string // item template ID, empty for no drop
	Newsworthy  bool   // deaths are announced on the world stream
}

// Validate checks structural invariants on an authored monster template.
func (t *MonsterTemplate) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.HP <= 0 {
		return &ValidationError{Field: "hp", Message: "must be positive"}
	}
	if t.MinAtk < 0 || t.MaxAtk < t.MinAtk {
		return &ValidationError{Field: "atk", Message: "requires 0 <= min_atk <= max_atk"}
	}
	if t.XPReward < 0 || t.GoldReward < 0 {
		return &ValidationError{Field: "reward", Message: "cannot be negative"}
	}
	return nil
}

// MonsterInstance is a live monster occupying a room's spawn slot.
// Exactly one instance may exist per (room, monster template) pair;
// the spawn scheduler enforces this inside a transaction.
type MonsterInstance struct {
	ID        ulid.ULID
	MonsterID string // template reference
	RoomID    string
	HP        int
	MaxHP     int
	Name      string // display name snapshot from the template
	CreatedAt time.Time
}

// NewMonsterInstance instantiates a template into a room.
func NewMonsterInstance(tmpl *MonsterTemplate, roomID string) *MonsterInstance {
	return &MonsterInstance{
		ID:        ulid.Make(),
		MonsterID: tmpl.ID,
		RoomID:    roomID,
		HP:        tmpl.HP,
		MaxHP:     tmpl.HP,
		Name:      tmpl.Name,
		CreatedAt: time.Now().UTC(),
	}
}

// Matches reports whether the player-supplied name refers to this instance.
// Prefix matching lets players type "attack moss" for "moss creeper".
func (m *MonsterInstance) Matches(name string) bool {
	if strings.EqualFold(m.Name, name) || strings.EqualFold(m.MonsterID, name) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(m.Name), strings.ToLower(name))
}
