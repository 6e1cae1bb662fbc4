// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// CodeNoListener is returned for ask or reply without an active
// conversation.
const CodeNoListener = "DIALOGUE_NO_LISTENER"

// Reply is the mediated result of one conversation turn.
type Reply struct {
	NpcName  string
	Segments []Segment
	// GrantedItems holds display names of items the NPC handed over.
	GrantedItems []string
}

// Mediator runs NPC conversations. The generator is always invoked outside
// any store transaction; item grants triggered by its output run in their
// own transaction afterwards.
type Mediator struct {
	sessions  *core.SessionManager
	players   world.PlayerRepository
	templates world.TemplateRepository
	tx        world.Transactor
	generator Generator
	randInt   func(n int) int
}

// NewMediator creates a dialogue mediator. The generator may be nil, in
// which case AI-driven NPCs fall back to a canned response.
func NewMediator(
	sessions *core.SessionManager,
	players world.PlayerRepository,
	templates world.TemplateRepository,
	tx world.Transactor,
	generator Generator,
) *Mediator {
	return &Mediator{
		sessions:  sessions,
		players:   players,
		templates: templates,
		tx:        tx,
		generator: generator,
		randInt:   rand.Intn,
	}
}

// Talk starts a conversation with the NPC, discarding any previous history.
func (m *Mediator) Talk(ctx context.Context, player *world.Player, npc *world.NpcTemplate) (*Reply, error) {
	m.sessions.StartConversation(player.ID, npc.ID)
	return m.respond(ctx, player, npc, "Hello.")
}

// Ask continues the active conversation with a question about a topic.
func (m *Mediator) Ask(ctx context.Context, player *world.Player, topic string) (*Reply, error) {
	return m.continueConversation(ctx, player, fmt.Sprintf("Tell me about %s.", topic))
}

// ReplyTo continues the active conversation with free-form text. The
// dispatcher routes unparseable input here while a conversation is open.
func (m *Mediator) ReplyTo(ctx context.Context, player *world.Player, text string) (*Reply, error) {
	return m.continueConversation(ctx, player, text)
}

func (m *Mediator) continueConversation(ctx context.Context, player *world.Player, message string) (*Reply, error) {
	conv := m.sessions.Conversation(player.ID)
	if conv == nil {
		return nil, oops.Code(CodeNoListener).
			With("message", "No one seems to be listening.").
			Errorf("no active conversation")
	}
	npc, err := m.templates.Npc(ctx, conv.NpcID)
	if err != nil {
		if errors.Is(err, world.ErrNotFound) {
			m.sessions.EndConversation(player.ID)
			return nil, oops.Code(CodeNoListener).
				With("message", "No one seems to be listening.").
				Wrap(err)
		}
		return nil, err
	}
	return m.respond(ctx, player, npc, message)
}

func (m *Mediator) respond(ctx context.Context, player *world.Player, npc *world.NpcTemplate, message string) (*Reply, error) {
	if !npc.UseAI {
		line := npc.Dialogue[m.randInt(len(npc.Dialogue))]
		return &Reply{
			NpcName:  npc.ShortName,
			Segments: []Segment{{Kind: SegmentSpeech, Text: line}},
		}, nil
	}

	history := m.sessions.Conversation(player.ID).History
	prompt, err := buildPrompt(npc, player.Name, message, history)
	if err != nil {
		return nil, err
	}
	m.sessions.AppendExchange(player.ID, player.Name, message)

	text, err := m.generate(ctx, prompt)
	if err != nil {
		slog.Warn("dialogue generation failed",
			"npc_id", npc.ID, "player_id", player.ID.String(), "error", err)
		return &Reply{
			NpcName: npc.ShortName,
			Segments: []Segment{{
				Kind: SegmentAction,
				Text: fmt.Sprintf("%s seems lost in thought.", npc.Name),
			}},
		}, nil
	}

	grantIDs, cleaned := extractGrants(text)
	reply := &Reply{NpcName: npc.ShortName, Segments: SplitNarration(cleaned)}
	m.sessions.AppendExchange(player.ID, npc.ShortName, cleaned)

	for _, id := range grantIDs {
		name, err := m.grantItem(ctx, player.ID, npc, id)
		if err != nil {
			slog.Warn("dialogue item grant failed",
				"npc_id", npc.ID, "item_id", id, "error", err)
			continue
		}
		if name != "" {
			reply.GrantedItems = append(reply.GrantedItems, name)
		}
	}
	return reply, nil
}

func (m *Mediator) generate(ctx context.Context, prompt string) (string, error) {
	if m.generator == nil {
		return "", oops.Code("DIALOGUE_NO_GENERATOR").Errorf("no generator configured")
	}
	return m.generator.Generate(ctx, prompt)
}

// grantItem appends the item to the player's inventory inside a
// transaction. The marker is honored only for items the NPC's trigger
// rules actually offer.
func (m *Mediator) grantItem(ctx context.Context, playerID ulid.ULID, npc *world.NpcTemplate, itemID string) (string, error) {
	offered := false
	for _, id := range npc.Triggers {
		if id == itemID {
			offered = true
			break
		}
	}
	if !offered {
		slog.Warn("generator offered unlisted item", "npc_id", npc.ID, "item_id", itemID)
		return "", nil
	}

	item, err := m.templates.Item(ctx, itemID)
	if err != nil {
		return "", err
	}

	err = m.tx.InTransaction(ctx, func(ctx context.Context) error {
		p, err := m.players.Get(ctx, playerID)
		if err != nil {
			return err
		}
		p.Inventory = append(p.Inventory, item.Snapshot())
		return m.players.Update(ctx, p)
	})
	if err != nil {
		return "", err
	}
	return item.Name, nil
}
