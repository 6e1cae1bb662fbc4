// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package intent

import (
	"context"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Linking words get their own token type so that multi-word targets
// ("rusty sword") cannot swallow them: "buy rusty sword from trader"
// splits cleanly at "from".
var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Link", Pattern: `\b(?:from|about|to|with|at)\b`},
	{Name: "Word", Pattern: `[a-z][a-z0-9'\-]*`},
	{Name: "whitespace", Pattern: `\s+`},
})

type grammar struct {
	Go      *goCmd      `  @@`
	Look    *lookCmd    `| @@`
	Get     *getCmd     `| @@`
	Drop    *dropCmd    `| @@`
	Examine *examineCmd `| @@`
	Buy     *buyCmd     `| @@`
	Attack  *attackCmd  `| @@`
	Talk    *talkCmd    `| @@`
	Ask     *askCmd     `| @@`
	Use     *useCmd     `| @@`
	Drink   *drinkCmd   `| @@`
	Read    *readCmd    `| @@`
	Bare    *bareCmd    `| @@`
}

type goCmd struct {
	Direction string `("go" | "walk" | "head") @Word`
}

type lookCmd struct {
	Seen   bool     `@("look" | "l")`
	Target []string `("at"? @Word+)?`
}

type getCmd struct {
	Target []string `("get" | "take" | "grab" | ("pick" "up")) @Word+`
}

type dropCmd struct {
	Target []string `("drop" | "discard") @Word+`
}

type examineCmd struct {
	Target []string `("examine" | "inspect" | "x") "at"? @Word+`
}

type buyCmd struct {
	Item []string `("buy" | "purchase") @Word+`
	Npc  []string `("from" @Word+)?`
}

type attackCmd struct {
	Target []string `("attack" | "kill" | "hit" | "fight") @Word+`
	Verb   string   `("with" @Word)?`
}

type talkCmd struct {
	Npc []string `("talk" | "greet") "to"? @Word+`
}

type askCmd struct {
	Npc   []string `"ask" @Word+`
	Topic []string `"about" @Word+`
}

type useCmd struct {
	Target []string `"use" @Word+`
}

type drinkCmd struct {
	Target []string `("drink" | "quaff") @Word+`
}

type readCmd struct {
	Target []string `"read" @Word+`
}

type bareCmd struct {
	Name string `@("inventory" | "inv" | "i" | "who" | "score" | "stats" | "news" | "help" | "logout" | "quit")`
}

var grammarParser = participle.MustBuild[grammar](
	participle.Lexer(commandLexer),
	participle.UseLookahead(2),
)

// directionAliases maps bare movement words to canonical directions,
// letting players type "n" instead of "go north".
var directionAliases = map[string]string{
	"north": "north", "n": "north",
	"south": "south", "s": "south",
	"east": "east", "e": "east",
	"west": "west", "w": "west",
	"up": "up", "u": "up",
	"down": "down", "d": "down",
}

// RuleParser is the default Parser: a fixed grammar over the command
// vocabulary. It stands in for the external text-to-intent service and is
// total by construction; unparseable input yields ActionUnknown.
type RuleParser struct{}

// NewRuleParser creates a RuleParser.
func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

// Parse converts raw player text into an Intent.
func (p *RuleParser) Parse(_ context.Context, raw string) (Intent, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Intent{Action: ActionUnknown}, nil
	}

	// Free-text commands are carved off before the grammar: their
	// arguments are arbitrary prose the lexer has no business rejecting.
	if text, ok := strings.CutPrefix(trimmed, "'"); ok {
		return sayIntent(text), nil
	}
	// Split before folding: ToLower can change the byte length of
	// multi-byte runes, so indexes into the folded string do not apply
	// to the original.
	first, rest := trimmed, ""
	if i := strings.IndexByte(trimmed, ' '); i >= 0 {
		// Arguments keep their original casing; only the verb is folded.
		first, rest = trimmed[:i], strings.TrimSpace(trimmed[i+1:])
	}
	first = strings.ToLower(first)
	lowered := strings.ToLower(trimmed)
	switch first {
	case "say", "shout":
		return sayIntent(rest), nil
	case "reply":
		return Intent{Action: ActionReply, Target: rest}, nil
	}

	// Bare direction: "north", "n".
	if dir, ok := directionAliases[lowered]; ok {
		return Intent{Action: ActionGo, Target: dir}, nil
	}

	parsed, err := grammarParser.ParseString("", lowered)
	if err != nil {
		return Intent{Action: ActionUnknown}, nil
	}
	return parsed.intent(), nil
}

func sayIntent(text string) Intent {
	if text == "" {
		return Intent{Action: ActionUnknown}
	}
	return Intent{Action: ActionSay, Target: text}
}

func (g *grammar) intent() Intent {
	switch {
	case g.Go != nil:
		dir, ok := directionAliases[g.Go.Direction]
		if !ok {
			return Intent{Action: ActionUnknown}
		}
		return Intent{Action: ActionGo, Target: dir}
	case g.Look != nil:
		if len(g.Look.Target) == 0 {
			return Intent{Action: ActionLook}
		}
		return Intent{Action: ActionExamine, Target: joinWords(g.Look.Target)}
	case g.Get != nil:
		return Intent{Action: ActionGet, Target: joinWords(g.Get.Target)}
	case g.Drop != nil:
		return Intent{Action: ActionDrop, Target: joinWords(g.Drop.Target)}
	case g.Examine != nil:
		return Intent{Action: ActionExamine, Target: joinWords(g.Examine.Target)}
	case g.Buy != nil:
		return Intent{Action: ActionBuy, Target: joinWords(g.Buy.Item), NpcTarget: joinWords(g.Buy.Npc)}
	case g.Attack != nil:
		return Intent{Action: ActionAttack, Target: joinWords(g.Attack.Target), Verb: g.Attack.Verb}
	case g.Talk != nil:
		return Intent{Action: ActionTalk, NpcTarget: joinWords(g.Talk.Npc)}
	case g.Ask != nil:
		return Intent{Action: ActionAskNpc, NpcTarget: joinWords(g.Ask.Npc), Topic: joinWords(g.Ask.Topic)}
	case g.Use != nil:
		return Intent{Action: ActionUse, Target: joinWords(g.Use.Target)}
	case g.Drink != nil:
		return Intent{Action: ActionDrink, Target: joinWords(g.Drink.Target)}
	case g.Read != nil:
		return Intent{Action: ActionRead, Target: joinWords(g.Read.Target)}
	case g.Bare != nil:
		switch g.Bare.Name {
		case "inventory", "inv", "i":
			return Intent{Action: ActionInventory}
		case "who":
			return Intent{Action: ActionWho}
		case "score":
			return Intent{Action: ActionScore}
		case "stats":
			return Intent{Action: ActionStats}
		case "news":
			return Intent{Action: ActionNews}
		case "help":
			return Intent{Action: ActionHelp}
		case "logout", "quit":
			return Intent{Action: ActionLogout}
		}
	}
	return Intent{Action: ActionUnknown}
}

func joinWords(words []string) string {
	return strings.Join(words, " ")
}
