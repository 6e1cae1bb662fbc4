// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"fmt"
	"strings"
)

// ItemTemplate describes an item type. Templates are immutable during play
// and referenced by ID from room item sets and player inventories.
type ItemTemplate struct {
	ID          string
	Name        string
	Description string
	Aliases     []string
	Cost        int
	Movable     bool
	Consumable  bool
	HPRestore   int

	Weapon       bool
	WeaponDamage int
	WeaponType   string

	Readable bool
	Text     string
}

// Matches reports whether the given player-supplied name refers to this
// item, comparing case-insensitively against the name and aliases.
func (t *ItemTemplate) Matches(name string) bool {
	if strings.EqualFold(t.Name, name) || strings.EqualFold(t.ID, name) {
		return true
	}
	for _, alias := range t.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// Validate checks structural invariants on an authored item template.
func (t *ItemTemplate) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if len(t.Aliases) > MaxAliasCount {
		return &ValidationError{Field: "aliases", Message: "too many aliases"}
	}
	for _, alias := range t.Aliases {
		if alias == "" || len(alias) > MaxAliasLength {
			return &ValidationError{Field: "aliases", Message: fmt.Sprintf("alias must be 1-%d characters", MaxAliasLength)}
		}
	}
	if t.Cost < 0 {
		return &ValidationError{Field: "cost", Message: "cannot be negative"}
	}
	if t.Weapon && t.WeaponDamage <= 0 {
		return &ValidationError{Field: "weapon_damage", Message: "weapons must deal positive damage"}
	}
	return nil
}

// InventoryItem is the snapshot of an item carried by a player. Name, cost,
// and movability are denormalized at acquisition time so that later template
// edits do not mutate carried items.
type InventoryItem struct {
	ItemID       string `json:"item_id"`
	Name         string `json:"name"`
	Cost         int    `json:"cost"`
	Movable      bool   `json:"movable"`
	Weapon       bool   `json:"weapon,omitempty"`
	WeaponDamage int    `json:"weapon_damage,omitempty"`
}

// Snapshot builds an inventory entry from a template.
func (t *ItemTemplate) Snapshot() InventoryItem {
	return InventoryItem{
		ItemID:       t.ID,
		Name:         t.Name,
		Cost:         t.Cost,
		Movable:      t.Movable,
		Weapon:       t.Weapon,
		WeaponDamage: t.WeaponDamage,
	}
}
