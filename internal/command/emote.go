// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// EmoteSpec is one configured emote: a glob pattern over the typed token
// and a template for the room-visible line. "{player}" is replaced with
// the player's name.
type EmoteSpec struct {
	Pattern  string `koanf:"pattern"`
	Template string `koanf:"template"`
}

type emote struct {
	matcher  glob.Glob
	template string
}

// EmoteTable resolves single unknown tokens to social actions. Patterns
// are matched in configuration order, case-insensitively; the first match
// wins.
type EmoteTable struct {
	emotes []emote
}

// NewEmoteTable compiles the configured emote patterns.
func NewEmoteTable(specs []EmoteSpec) (*EmoteTable, error) {
	table := &EmoteTable{}
	for _, spec := range specs {
		matcher, err := glob.Compile(strings.ToLower(spec.Pattern))
		if err != nil {
			return nil, oops.Code("EMOTE_PATTERN_INVALID").
				With("pattern", spec.Pattern).
				Wrap(err)
		}
		table.emotes = append(table.emotes, emote{matcher: matcher, template: spec.Template})
	}
	return table, nil
}

// DefaultEmotes is the stock emote table.
func DefaultEmotes() []EmoteSpec {
	return []EmoteSpec{
		{Pattern: "wave{,s}", Template: "{player} waves."},
		{Pattern: "bow{,s}", Template: "{player} bows deeply."},
		{Pattern: "grin{,s}", Template: "{player} grins."},
		{Pattern: "laugh{,s}", Template: "{player} laughs."},
		{Pattern: "nod{,s}", Template: "{player} nods."},
		{Pattern: "shrug{,s}", Template: "{player} shrugs."},
		{Pattern: "dance{,s}", Template: "{player} dances a little jig."},
		{Pattern: "sigh{,s}", Template: "{player} sighs."},
	}
}

// Match resolves a single typed token. Returns the rendered room line and
// true on a hit.
func (t *EmoteTable) Match(token, playerName string) (string, bool) {
	if t == nil || strings.ContainsAny(token, " \t") {
		return "", false
	}
	lowered := strings.ToLower(token)
	for _, e := range t.emotes {
		if e.matcher.Match(lowered) {
			return strings.ReplaceAll(e.template, "{player}", playerName), true
		}
	}
	return "", false
}
