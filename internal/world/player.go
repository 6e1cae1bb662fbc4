// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Attributes are a player's six rolled ability scores.
type Attributes struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

// Modifier converts an ability score to its bonus: (score-10)/2, floored,
// never below zero for damage purposes (handled by callers that need it).
func Modifier(score int) int {
	return (score - 10) / 2
}

// Player is a player character. HP, money, position, and progression fields
// mutate continuously; all multi-field mutations go through a transaction.
type Player struct {
	ID           ulid.ULID
	Name         string
	PasswordHash string
	RoomID       string
	Inventory    []InventoryItem
	Money        int
	HP           int
	MaxHP        int
	XP           int
	Score        int
	Level        int
	Attributes   Attributes
	VisitedRooms []string
	Admin        bool
	CreatedAt    time.Time
}

// HasVisited reports whether the player has previously entered the room.
func (p *Player) HasVisited(roomID string) bool {
	for _, id := range p.VisitedRooms {
		if id == roomID {
			return true
		}
	}
	return false
}

// MarkVisited records a first visit. No-op if already recorded.
func (p *Player) MarkVisited(roomID string) {
	if !p.HasVisited(roomID) {
		p.VisitedRooms = append(p.VisitedRooms, roomID)
	}
}

// FindInventoryItem returns the index of the first carried item matching
// the given name against its denormalized snapshot name or template ID,
// or -1 if none matches.
func (p *Player) FindInventoryItem(name string) int {
	for i, item := range p.Inventory {
		if strings.EqualFold(item.Name, name) || strings.EqualFold(item.ItemID, name) {
			return i
		}
	}
	return -1
}

// RemoveInventoryItem removes the item at index i, preserving order.
func (p *Player) RemoveInventoryItem(i int) InventoryItem {
	item := p.Inventory[i]
	p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
	return item
}

// ClampHP re-establishes 0 <= hp <= maxHp after a mutation has been
// resolved. Death checks must run on the raw value before clamping.
func (p *Player) ClampHP() {
	if p.HP < 0 {
		p.HP = 0
	}
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
}

// Validate checks invariants that must hold for a player at rest.
func (p *Player) Validate() error {
	if p.ID.IsZero() {
		return &ValidationError{Field: "id", Message: "cannot be zero"}
	}
	if err := ValidatePlayerName(p.Name); err != nil {
		return err
	}
	if p.HP < 0 || p.HP > p.MaxHP {
		return &ValidationError{Field: "hp", Message: "must be within [0, max_hp]"}
	}
	if p.XP < 0 || p.Level < 1 {
		return &ValidationError{Field: "progression", Message: "xp must be non-negative and level at least 1"}
	}
	return nil
}
