// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package command provides the command registry and dispatch system that
// turns parsed player intents into world mutations.
package command

import (
	"context"

	"github.com/mossgate/mossgate/internal/combat"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/dialogue"
	"github.com/mossgate/mossgate/internal/intent"
	"github.com/mossgate/mossgate/internal/progression"
	"github.com/mossgate/mossgate/internal/spawn"
	"github.com/mossgate/mossgate/internal/world"
)

// Handler is the function signature for command handlers.
type Handler func(ctx context.Context, exec *Execution) error

// Entry represents a registered command.
type Entry struct {
	Action  intent.Action
	Handler Handler
	Help    string // one-line description shown by help
	Usage   string // usage pattern, e.g. "get <item>"
}

// Execution carries everything a handler needs for one command. The player
// is preloaded by the dispatcher and reflects state before the command; a
// handler that mutates the player must re-read it inside its transaction.
type Execution struct {
	Player   *world.Player
	Intent   intent.Intent
	Raw      string
	Session  *core.Session
	Sink     core.Sink
	Services *Services
}

// Send emits an output line to the player.
func (e *Execution) Send(category core.Category, text string) {
	e.Sink.Send(core.Line{Category: category, Text: text})
}

// Services provides access to core services for command handlers.
// Handlers MUST NOT store references to services beyond execution.
type Services struct {
	Rooms       world.RoomRepository
	Players     world.PlayerRepository
	Monsters    world.MonsterRepository
	Templates   world.TemplateRepository
	Snapshot    *world.Snapshot
	Tx          world.Transactor
	Sessions    *core.SessionManager
	Broadcaster *core.Broadcaster
	Events      core.EventStore
	Combat      *combat.Resolver
	Progression *progression.Engine
	Spawner     *spawn.Scheduler
	Dialogue    *dialogue.Mediator
	Registry    *Registry

	// DiscoveryBonus is the XP and score granted for entering a room for
	// the first time.
	DiscoveryBonus int
}
