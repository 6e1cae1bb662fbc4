// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/intent"
	"github.com/mossgate/mossgate/internal/world"
)

type sinkBuffer struct {
	lines []core.Line
}

func (s *sinkBuffer) Send(line core.Line) { s.lines = append(s.lines, line) }

func newDispatchFixture(t *testing.T) (*Dispatcher, *Execution, *sinkBuffer, *Registry) {
	t.Helper()

	registry := NewRegistry()
	table, err := NewEmoteTable(DefaultEmotes())
	require.NoError(t, err)
	d, err := NewDispatcher(registry, intent.NewRuleParser(), WithEmoteTable(table))
	require.NoError(t, err)

	playerID := core.NewULID()
	sessions := core.NewSessionManager()
	session := sessions.Connect(playerID, "Wren")

	sink := &sinkBuffer{}
	exec := &Execution{
		Player: &world.Player{
			ID: playerID, Name: "Wren", RoomID: "town-square",
		},
		Session: session,
		Sink:    sink,
		Services: &Services{
			Sessions:    sessions,
			Broadcaster: core.NewBroadcaster(),
		},
	}
	return d, exec, sink, registry
}

func TestNewDispatcher_NilGuards(t *testing.T) {
	_, err := NewDispatcher(nil, intent.NewRuleParser())
	assert.ErrorIs(t, err, ErrNilRegistry)

	_, err = NewDispatcher(NewRegistry(), nil)
	assert.ErrorIs(t, err, ErrNilParser)
}

func TestDispatch_RoutesToHandler(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)

	var got intent.Intent
	registry.Register(Entry{
		Action: intent.ActionSay,
		Handler: func(ctx context.Context, exec *Execution) error {
			got = exec.Intent
			return nil
		},
	})

	err := d.Dispatch(context.Background(), "say hello there", exec)
	require.NoError(t, err)
	assert.Equal(t, intent.ActionSay, got.Action)
	assert.Equal(t, "hello there", got.Target)
	assert.Equal(t, "say hello there", exec.Raw)
}

func TestDispatch_NotUnderstood(t *testing.T) {
	d, exec, _, _ := newDispatchFixture(t)

	err := d.Dispatch(context.Background(), "florble the wig", exec)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotUnderstood, oopsErr.Code())
}

func TestDispatch_EmoteFallback(t *testing.T) {
	d, exec, sink, _ := newDispatchFixture(t)

	ch := exec.Services.Broadcaster.Subscribe(core.RoomStream("town-square"))
	defer exec.Services.Broadcaster.Unsubscribe(core.RoomStream("town-square"), ch)

	err := d.Dispatch(context.Background(), "waves", exec)
	require.NoError(t, err)
	require.Len(t, sink.lines, 1)
	assert.Equal(t, "Wren waves.", sink.lines[0].Text)

	select {
	case ev := <-ch:
		assert.Equal(t, "Wren waves.", ev.Text)
	default:
		t.Fatal("expected a room broadcast for the emote")
	}
}

func TestDispatch_ConversationFallbackRoutesToReply(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)

	var got intent.Intent
	registry.Register(Entry{
		Action: intent.ActionReply,
		Handler: func(ctx context.Context, exec *Execution) error {
			got = exec.Intent
			return nil
		},
	})

	exec.Services.Sessions.StartConversation(exec.Player.ID, "elder")

	err := d.Dispatch(context.Background(), "tell me about the darkness", exec)
	require.NoError(t, err)
	assert.Equal(t, intent.ActionReply, got.Action)
	assert.Equal(t, "tell me about the darkness", got.Topic)
}

func TestDispatch_OtherActionsEndConversation(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)
	registry.Register(Entry{
		Action:  intent.ActionLook,
		Handler: func(ctx context.Context, exec *Execution) error { return nil },
	})

	exec.Services.Sessions.StartConversation(exec.Player.ID, "elder")
	require.NotNil(t, exec.Services.Sessions.Conversation(exec.Player.ID))

	err := d.Dispatch(context.Background(), "look", exec)
	require.NoError(t, err)
	assert.Nil(t, exec.Services.Sessions.Conversation(exec.Player.ID))
}

func TestDispatch_TalkKeepsConversation(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)
	registry.Register(Entry{
		Action:  intent.ActionTalk,
		Handler: func(ctx context.Context, exec *Execution) error { return nil },
	})

	exec.Services.Sessions.StartConversation(exec.Player.ID, "elder")

	err := d.Dispatch(context.Background(), "talk to elder", exec)
	require.NoError(t, err)
	assert.NotNil(t, exec.Services.Sessions.Conversation(exec.Player.ID))
}

func TestDispatch_RateLimit(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Entry{
		Action:  intent.ActionLook,
		Handler: func(ctx context.Context, exec *Execution) error { return nil },
	})
	rl := NewRateLimiter(RateLimiterConfig{BurstCapacity: 2, SustainedRate: 0.1})
	defer rl.Close()
	d, err := NewDispatcher(registry, intent.NewRuleParser(), WithRateLimiter(rl))
	require.NoError(t, err)

	playerID := core.NewULID()
	sessions := core.NewSessionManager()
	session := sessions.Connect(playerID, "Wren")
	exec := &Execution{
		Player:   &world.Player{ID: playerID, Name: "Wren"},
		Session:  session,
		Sink:     &sinkBuffer{},
		Services: &Services{Sessions: sessions, Broadcaster: core.NewBroadcaster()},
	}

	require.NoError(t, d.Dispatch(context.Background(), "look", exec))
	require.NoError(t, d.Dispatch(context.Background(), "look", exec))

	err = d.Dispatch(context.Background(), "look", exec)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeRateLimited, oopsErr.Code())

	// Admins bypass the limiter entirely.
	exec.Player.Admin = true
	assert.NoError(t, d.Dispatch(context.Background(), "look", exec))
}

func TestDispatch_NoSession(t *testing.T) {
	d, _, _, _ := newDispatchFixture(t)

	err := d.Dispatch(context.Background(), "look", &Execution{})
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeNoSession, oopsErr.Code())
}

func TestDispatch_HandlerErrorPropagates(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)

	boom := errors.New("boom")
	registry.Register(Entry{
		Action:  intent.ActionLook,
		Handler: func(ctx context.Context, exec *Execution) error { return boom },
	})

	err := d.Dispatch(context.Background(), "look", exec)
	assert.ErrorIs(t, err, boom)
}

func TestDispatch_HandlerPanicBecomesError(t *testing.T) {
	d, exec, _, registry := newDispatchFixture(t)

	registry.Register(Entry{
		Action: intent.ActionLook,
		Handler: func(ctx context.Context, exec *Execution) error {
			panic("handler exploded")
		},
	})

	err := d.Dispatch(context.Background(), "look", exec)
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeInternal, oopsErr.Code())
	assert.Equal(t, "Something went wrong. Try again.", PlayerMessage(err))
}

func TestRegistry_OverwriteAndAll(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Entry{Action: intent.ActionLook, Help: "first"})
	registry.Register(Entry{Action: intent.ActionLook, Help: "second"})
	registry.Register(Entry{Action: intent.ActionGet, Help: "get"})

	entry, ok := registry.Get(intent.ActionLook)
	require.True(t, ok)
	assert.Equal(t, "second", entry.Help)

	all := registry.All()
	require.Len(t, all, 2)
	assert.Equal(t, intent.ActionGet, all[0].Action)
	assert.Equal(t, intent.ActionLook, all[1].Action)
}
