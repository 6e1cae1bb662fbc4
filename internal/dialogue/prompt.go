// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package dialogue

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

//go:embed prompts/npc_reply.txt
var npcReplyPrompt string

var replyTemplate = template.Must(template.New("npc_reply").Parse(npcReplyPrompt))

// giveItemMarker matches the item-grant marker the prompt instructs the
// generator to emit.
var giveItemMarker = regexp.MustCompile(`\[GIVE_ITEM:([A-Za-z0-9_-]+)\]`)

type promptTrigger struct {
	Keyword string
	Marker  string
}

type promptData struct {
	NpcName     string
	Personality string
	PlayerName  string
	Message     string
	Triggers    []promptTrigger
	History     []core.Exchange
}

// buildPrompt assembles the generator prompt from the NPC template, the
// trigger rules, and the recent history.
func buildPrompt(npc *world.NpcTemplate, playerName, message string, history []core.Exchange) (string, error) {
	data := promptData{
		NpcName:     npc.Name,
		Personality: npc.Personality,
		PlayerName:  playerName,
		Message:     message,
		History:     history,
	}
	for keyword, itemID := range npc.Triggers {
		data.Triggers = append(data.Triggers, promptTrigger{
			Keyword: keyword,
			Marker:  fmt.Sprintf("[GIVE_ITEM:%s]", itemID),
		})
	}

	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, data); err != nil {
		return "", oops.Code("DIALOGUE_PROMPT_FAILED").Wrap(err)
	}
	return buf.String(), nil
}

// extractGrants pulls item-grant markers out of generated text, returning
// the granted item IDs and the text with markers stripped.
func extractGrants(text string) ([]string, string) {
	matches := giveItemMarker.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, text
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	cleaned := giveItemMarker.ReplaceAllString(text, "")
	return ids, strings.TrimSpace(cleaned)
}
