// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Validation limits for domain types.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 4000
	MaxAliasCount        = 10
	MaxAliasLength       = 50

	// Player name limits (stricter than general names)
	MinPlayerNameLength = 2
	MaxPlayerNameLength = 32
)

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a display name is valid.
// Names must be non-empty, valid UTF-8, free of control characters,
// and within the length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// ValidateDescription checks that a description is valid.
// Empty descriptions are allowed.
func ValidateDescription(desc string) error {
	if !utf8.ValidString(desc) {
		return &ValidationError{Field: "description", Message: "must be valid UTF-8"}
	}
	if len(desc) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("exceeds maximum length of %d", MaxDescriptionLength)}
	}
	return nil
}

// playerNameRegex matches names with only Unicode letters and single
// spaces between words.
var playerNameRegex = regexp.MustCompile(`^[\p{L}]+( [\p{L}]+)*$`)

// ValidatePlayerName checks that a player name is valid for character
// creation: letters only, 2-32 bytes, single spaces between words.
func ValidatePlayerName(name string) error {
	if len(name) < MinPlayerNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("must be at least %d characters", MinPlayerNameLength)}
	}
	if len(name) > MaxPlayerNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxPlayerNameLength)}
	}
	if !playerNameRegex.MatchString(name) {
		return &ValidationError{Field: "name", Message: "may only contain letters separated by single spaces"}
	}
	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
