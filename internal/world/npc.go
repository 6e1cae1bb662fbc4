// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import "strings"

// NpcTemplate describes a non-player character. Templates are immutable
// during play. An NPC either carries a fixed dialogue list or, when UseAI
// is set, a personality prompt handed to the text-generation service.
type NpcTemplate struct {
	ID          string
	ShortName   string // what players type: "talk to elder"
	Name        string // descriptive: "Elder Maren of the Mossgate"
	Description string

	Dialogue    []string // fixed lines, used when UseAI is false
	Personality string   // prompt fragment, used when UseAI is true
	UseAI       bool

	Triggers map[string]string // keyword -> item template ID the NPC may hand out
	Sells    []string          // item template IDs offered for sale
}

// Matches reports whether the player-supplied name refers to this NPC.
func (t *NpcTemplate) Matches(name string) bool {
	return strings.EqualFold(t.ShortName, name) ||
		strings.EqualFold(t.Name, name) ||
		strings.EqualFold(t.ID, name)
}

// SellsItem reports whether the NPC offers the item for sale.
func (t *NpcTemplate) SellsItem(itemID string) bool {
	for _, id := range t.Sells {
		if id == itemID {
			return true
		}
	}
	return false
}

// Validate checks structural invariants on an authored NPC template.
func (t *NpcTemplate) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if err := ValidateName(t.ShortName); err != nil {
		return err
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}
	if t.UseAI && t.Personality == "" {
		return &ValidationError{Field: "personality", Message: "required when use_ai is set"}
	}
	if !t.UseAI && len(t.Dialogue) == 0 {
		return &ValidationError{Field: "dialogue", Message: "fixed-dialogue NPCs need at least one line"}
	}
	return nil
}
