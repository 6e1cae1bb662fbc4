// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package intent defines the structured command intent the dispatcher
// consumes, and the rule-based parser that produces it from raw input.
package intent

import "context"

// Action is the fixed intent vocabulary. Parsers must only ever produce
// these values; anything unrecognized degrades to ActionUnknown.
type Action string

const (
	ActionGo        Action = "go"
	ActionLook      Action = "look"
	ActionGet       Action = "get"
	ActionDrop      Action = "drop"
	ActionExamine   Action = "examine"
	ActionSay       Action = "say"
	ActionBuy       Action = "buy"
	ActionAttack    Action = "attack"
	ActionTalk      Action = "talk"
	ActionAskNpc    Action = "ask_npc"
	ActionReply     Action = "reply"
	ActionInventory Action = "inventory"
	ActionWho       Action = "who"
	ActionScore     Action = "score"
	ActionStats     Action = "stats"
	ActionNews      Action = "news"
	ActionHelp      Action = "help"
	ActionLogout    Action = "logout"
	ActionUse       Action = "use"
	ActionDrink     Action = "drink"
	ActionRead      Action = "read"
	ActionUnknown   Action = "unknown"
)

// Intent is the structured form a raw command is parsed into before
// dispatch.
type Intent struct {
	Action    Action
	Target    string // item, monster, direction, or free text depending on action
	NpcTarget string // NPC name for buy/talk/ask
	Topic     string // topic for ask_npc
	Verb      string // cosmetic attack verb ("kick", "slash")
}

// Parser turns raw player text into an Intent. Implementations must be
// total: on failure or low confidence they return ActionUnknown rather
// than an error, and callers additionally treat any returned error as
// ActionUnknown.
type Parser interface {
	Parse(ctx context.Context, raw string) (Intent, error)
}
