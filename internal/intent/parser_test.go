// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleParser_Parse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{
			name:  "go with direction",
			input: "go north",
			want:  Intent{Action: ActionGo, Target: "north"},
		},
		{
			name:  "bare direction abbreviation",
			input: "n",
			want:  Intent{Action: ActionGo, Target: "north"},
		},
		{
			name:  "bare look",
			input: "look",
			want:  Intent{Action: ActionLook},
		},
		{
			name:  "look at becomes examine",
			input: "look at mossy altar",
			want:  Intent{Action: ActionExamine, Target: "mossy altar"},
		},
		{
			name:  "get multi-word item",
			input: "get rusty sword",
			want:  Intent{Action: ActionGet, Target: "rusty sword"},
		},
		{
			name:  "pick up",
			input: "pick up torch",
			want:  Intent{Action: ActionGet, Target: "torch"},
		},
		{
			name:  "drop",
			input: "drop torch",
			want:  Intent{Action: ActionDrop, Target: "torch"},
		},
		{
			name:  "buy from npc",
			input: "buy healing draught from trader",
			want:  Intent{Action: ActionBuy, Target: "healing draught", NpcTarget: "trader"},
		},
		{
			name:  "buy without npc",
			input: "buy torch",
			want:  Intent{Action: ActionBuy, Target: "torch"},
		},
		{
			name:  "attack with verb",
			input: "attack rat with kick",
			want:  Intent{Action: ActionAttack, Target: "rat", Verb: "kick"},
		},
		{
			name:  "kill alias",
			input: "kill moss creeper",
			want:  Intent{Action: ActionAttack, Target: "moss creeper"},
		},
		{
			name:  "talk to npc",
			input: "talk to elder",
			want:  Intent{Action: ActionTalk, NpcTarget: "elder"},
		},
		{
			name:  "ask about topic",
			input: "ask elder about the lost amulet",
			want:  Intent{Action: ActionAskNpc, NpcTarget: "elder", Topic: "the lost amulet"},
		},
		{
			name:  "say preserves case and punctuation",
			input: "say Hello, is anyone here?",
			want:  Intent{Action: ActionSay, Target: "Hello, is anyone here?"},
		},
		{
			name:  "apostrophe say shorthand",
			input: "'hello there",
			want:  Intent{Action: ActionSay, Target: "hello there"},
		},
		{
			name:  "reply",
			input: "reply I found it in the marsh",
			want:  Intent{Action: ActionReply, Target: "I found it in the marsh"},
		},
		{
			name:  "drink",
			input: "drink healing draught",
			want:  Intent{Action: ActionDrink, Target: "healing draught"},
		},
		{
			name:  "read",
			input: "read weathered sign",
			want:  Intent{Action: ActionRead, Target: "weathered sign"},
		},
		{
			name:  "inventory abbreviation",
			input: "i",
			want:  Intent{Action: ActionInventory},
		},
		{
			name:  "quit maps to logout",
			input: "quit",
			want:  Intent{Action: ActionLogout},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  Intent{Action: ActionUnknown},
		},
		{
			name:  "gibberish degrades to unknown",
			input: "frobnicate the quux",
			want:  Intent{Action: ActionUnknown},
		},
		{
			name:  "bare say degrades to unknown",
			input: "say",
			want:  Intent{Action: ActionUnknown},
		},
		{
			name:  "mixed case verb",
			input: "Go North",
			want:  Intent{Action: ActionGo, Target: "north"},
		},
		{
			// U+023A lowercases to a longer UTF-8 encoding; splitting
			// must not mix indexes between folded and original text.
			name:  "case folding that grows byte length",
			input: "ȺȺ a",
			want:  Intent{Action: ActionUnknown},
		},
		{
			name:  "multi-byte say argument",
			input: "say Ⱥ marks the spot",
			want:  Intent{Action: ActionSay, Target: "Ⱥ marks the spot"},
		},
	}

	parser := NewRuleParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
