// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package dialogue mediates NPC conversations. Fixed-dialogue NPCs answer
// from their line list; AI-driven NPCs go through an external text
// generator, always invoked outside any store transaction.
package dialogue

import "context"

// Generator produces NPC dialogue text from an assembled prompt.
type Generator interface {
	// Generate returns the NPC's raw response, which may contain action
	// and speech delimiters plus item-grant markers.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases the underlying client.
	Close() error
}
