// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/intent"
)

var tracer = otel.Tracer("mossgate/command")

// Dispatcher parses raw input, selects exactly one handler by intent
// action, and executes it. It also owns the two fallbacks for unparseable
// input: the custom emote table and the active-conversation reply route.
type Dispatcher struct {
	registry    *Registry
	parser      intent.Parser
	emotes      *EmoteTable  // optional, can be nil
	rateLimiter *RateLimiter // optional, can be nil
}

// DispatcherOption configures a Dispatcher during construction.
type DispatcherOption func(*Dispatcher)

// WithEmoteTable configures the dispatcher to resolve unknown single
// tokens through the emote table.
func WithEmoteTable(table *EmoteTable) DispatcherOption {
	return func(d *Dispatcher) {
		d.emotes = table
	}
}

// WithRateLimiter configures the dispatcher to use rate limiting.
func WithRateLimiter(rl *RateLimiter) DispatcherOption {
	return func(d *Dispatcher) {
		d.rateLimiter = rl
	}
}

// NewDispatcher creates a dispatcher over the given registry and parser.
func NewDispatcher(registry *Registry, parser intent.Parser, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if parser == nil {
		return nil, ErrNilParser
	}
	d := &Dispatcher{
		registry: registry,
		parser:   parser,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch parses and executes one command. State side effect: any action
// other than talk, ask_npc, reply, or unknown abandons the player's active
// NPC conversation before the handler runs.
func (d *Dispatcher) Dispatch(ctx context.Context, input string, exec *Execution) (err error) {
	if exec == nil || exec.Player == nil || exec.Session == nil {
		return ErrNoSession()
	}
	if exec.Services == nil {
		return ErrNilServices()
	}

	// A panic anywhere below must not take the process down; the session
	// gets one error line and returns to accepting input.
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "command panicked",
				"input", input,
				"player_id", exec.Player.ID.String(),
				"panic", r,
			)
			err = ErrCommandPanicked(r)
		}
	}()

	parsed, perr := d.parser.Parse(ctx, input)
	if perr != nil {
		// The parser is total; an error still degrades to unknown.
		parsed = intent.Intent{Action: intent.ActionUnknown}
	}

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.action", string(parsed.Action)),
			attribute.String("player.id", exec.Player.ID.String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if d.rateLimiter != nil && !exec.Player.Admin {
		allowed, cooldownMs := d.rateLimiter.Allow(exec.Player.ID)
		if !allowed {
			span.SetAttributes(attribute.Bool("command.rate_limited", true))
			RecordRateLimited(string(parsed.Action))
			err = ErrRateLimited(cooldownMs)
			return err
		}
	}

	exec.Services.Sessions.Touch(exec.Player.ID)

	if parsed.Action == intent.ActionUnknown {
		return d.dispatchUnknown(ctx, span, input, exec)
	}

	// Doing anything else walks away from an NPC conversation.
	if parsed.Action != intent.ActionTalk &&
		parsed.Action != intent.ActionAskNpc &&
		parsed.Action != intent.ActionReply {
		exec.Services.Sessions.EndConversation(exec.Player.ID)
	}

	entry, ok := d.registry.Get(parsed.Action)
	if !ok {
		err = ErrNotUnderstood(input)
		return err
	}

	metrics := newRecorder(string(parsed.Action))
	defer metrics.record()

	exec.Intent = parsed
	exec.Raw = input
	err = entry.Handler(ctx, exec)
	if err != nil {
		metrics.setStatus(StatusError)
		slog.WarnContext(ctx, "command execution failed",
			"action", string(parsed.Action),
			"player_id", exec.Player.ID.String(),
			"error", err,
		)
	}
	return err
}

// dispatchUnknown handles input the parser could not claim: a single token
// may be a custom emote; otherwise, with a conversation open, the raw text
// continues it as a reply.
func (d *Dispatcher) dispatchUnknown(ctx context.Context, span trace.Span, input string, exec *Execution) error {
	token := strings.TrimSpace(input)

	if line, ok := d.emotes.Match(token, exec.Player.Name); ok {
		span.SetAttributes(attribute.Bool("command.emote", true))
		EmoteExpansions.WithLabelValues(strings.ToLower(token)).Inc()

		exec.Send(core.CategoryAction, line)
		exec.Services.Broadcaster.Broadcast(core.NewEvent(
			core.RoomStream(exec.Player.RoomID), core.CategoryAction,
			exec.Player.ID.String(), line,
		))
		return nil
	}

	if conv := exec.Services.Sessions.Conversation(exec.Player.ID); conv != nil {
		span.SetAttributes(attribute.Bool("command.conversation_fallback", true))
		ConversationFallbacks.Inc()

		entry, ok := d.registry.Get(intent.ActionReply)
		if !ok {
			return ErrNotUnderstood(input)
		}
		exec.Intent = intent.Intent{Action: intent.ActionReply, Topic: token}
		exec.Raw = input
		return entry.Handler(ctx, exec)
	}

	CommandExecutions.WithLabelValues(string(intent.ActionUnknown), StatusNotUnderstood).Inc()
	return ErrNotUnderstood(input)
}
