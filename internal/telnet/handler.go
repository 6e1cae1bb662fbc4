// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// ConnectionHandler handles a single telnet connection: the login flow,
// then the command loop interleaved with broadcast events.
type ConnectionHandler struct {
	conn     net.Conn
	reader   *bufio.Reader
	deps     Deps
	connID   ulid.ULID
	playerID ulid.ULID
	roomID   string
	authed   bool
	quitting bool

	roomCh   chan core.Event
	worldCh  chan core.Event
	playerCh chan core.Event
}

// NewConnectionHandler creates a new handler.
func NewConnectionHandler(conn net.Conn, deps Deps) *ConnectionHandler {
	return &ConnectionHandler{
		conn:   conn,
		reader: bufio.NewReader(conn),
		deps:   deps,
		connID: core.NewULID(),
	}
}

// Handle processes the connection until closed.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	defer func() {
		h.unsubscribeAll()
		if h.authed {
			h.deps.Services.Sessions.Disconnect(h.playerID)
			if h.deps.Metrics != nil {
				h.deps.Metrics.PlayersOnline.Dec()
			}
		}
		if err := h.conn.Close(); err != nil {
			slog.Debug("error closing connection", "error", err)
		}
	}()

	h.sendLine(core.Line{Category: core.CategorySystem, Text: "Welcome to Mossgate."})
	h.sendLine(core.Line{Category: core.CategorySystem, Text: "Use: login <name> <password> or create <name> <password>"})

	lineCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		for {
			line, err := h.reader.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			select {
			case lineCh <- strings.TrimSpace(line):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errCh:
			if !errors.Is(err, io.EOF) {
				slog.Debug("connection read error",
					"conn_id", h.connID.String(),
					"error", err,
				)
			}
			return

		case line := <-lineCh:
			if h.authed {
				h.processCommand(ctx, line)
			} else {
				h.processAuthLine(ctx, line)
			}
			if h.quitting {
				return
			}

		case event := <-chanOrNil(h.roomCh):
			h.forwardEvent(event)
		case event := <-chanOrNil(h.worldCh):
			h.forwardEvent(event)
		case event := <-chanOrNil(h.playerCh):
			h.forwardEvent(event)
		}
	}
}

// chanOrNil makes an unsubscribed channel block forever in select.
func chanOrNil(ch chan core.Event) <-chan core.Event {
	if ch != nil {
		return ch
	}
	return nil
}

// processAuthLine handles the pre-login commands.
func (h *ConnectionHandler) processAuthLine(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "login", "connect", "create":
		if len(fields) < 3 {
			h.sendLine(core.Line{Category: core.CategorySystem, Text: fmt.Sprintf("Usage: %s <name> <password>", cmd)})
			return
		}
		// Multi-word names are allowed; the password is the last field.
		name := strings.Join(fields[1:len(fields)-1], " ")
		password := fields[len(fields)-1]

		var (
			player *world.Player
			err    error
		)
		if cmd == "create" {
			player, err = h.deps.Auth.Signup(ctx, name, password)
		} else {
			player, err = h.deps.Auth.Login(ctx, name, password)
		}
		if err != nil {
			h.sendLine(core.Line{Category: core.CategoryError, Text: command.PlayerMessage(err)})
			return
		}
		h.loginAs(ctx, player, cmd == "create")

	case "quit":
		h.sendLine(core.Line{Category: core.CategorySystem, Text: "Goodbye."})
		h.quitting = true

	default:
		h.sendLine(core.Line{Category: core.CategorySystem, Text: "Use: login <name> <password> or create <name> <password>"})
	}
}

// loginAs switches the connection into the command loop for the player.
func (h *ConnectionHandler) loginAs(ctx context.Context, player *world.Player, created bool) {
	if h.deps.Services.Sessions.Get(player.ID) != nil {
		h.sendLine(core.Line{Category: core.CategoryError, Text: "That character is already connected."})
		return
	}

	h.playerID = player.ID
	h.roomID = player.RoomID
	h.authed = true
	h.deps.Services.Sessions.Connect(player.ID, player.Name)
	if h.deps.Metrics != nil {
		h.deps.Metrics.PlayersOnline.Inc()
	}

	h.worldCh = h.deps.Services.Broadcaster.Subscribe(core.StreamWorld)
	h.playerCh = h.deps.Services.Broadcaster.Subscribe(core.PlayerStream(player.ID))
	h.roomCh = h.deps.Services.Broadcaster.Subscribe(core.RoomStream(player.RoomID))

	if created {
		h.sendLine(core.Line{Category: core.CategorySystem, Text: fmt.Sprintf("Welcome to the world, %s!", player.Name)})
	} else {
		h.sendLine(core.Line{Category: core.CategorySystem, Text: fmt.Sprintf("Welcome back, %s!", player.Name)})
	}

	h.deps.Services.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(player.RoomID), core.CategoryAction, player.ID.String(),
		fmt.Sprintf("%s appears.", player.Name),
	))

	h.processCommand(ctx, "look")
}

// processCommand runs one command through the dispatcher. The player row
// is re-read so the execution sees current state.
func (h *ConnectionHandler) processCommand(ctx context.Context, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	player, err := h.deps.Services.Players.Get(ctx, h.playerID)
	if err != nil {
		slog.Error("failed to load player for command",
			"player_id", h.playerID.String(),
			"error", err,
		)
		h.sendLine(core.Line{Category: core.CategoryError, Text: "Something went wrong. Try again."})
		return
	}

	session := h.deps.Services.Sessions.Get(h.playerID)
	if session == nil {
		h.quitting = true
		return
	}

	exec := &command.Execution{
		Player:   player,
		Session:  session,
		Sink:     core.SinkFunc(h.sendLine),
		Services: h.deps.Services,
	}

	if err := h.deps.Dispatcher.Dispatch(ctx, line, exec); err != nil {
		h.sendLine(core.Line{Category: core.CategoryError, Text: command.PlayerMessage(err)})
	}

	// Logout tears the session down inside the handler.
	if h.deps.Services.Sessions.Get(h.playerID) == nil {
		h.quitting = true
		return
	}

	h.refreshRoomSubscription(ctx)
}

// refreshRoomSubscription follows the player across room boundaries.
func (h *ConnectionHandler) refreshRoomSubscription(ctx context.Context) {
	player, err := h.deps.Services.Players.Get(ctx, h.playerID)
	if err != nil || player.RoomID == h.roomID {
		return
	}
	if h.roomCh != nil {
		h.deps.Services.Broadcaster.Unsubscribe(core.RoomStream(h.roomID), h.roomCh)
	}
	h.roomID = player.RoomID
	h.roomCh = h.deps.Services.Broadcaster.Subscribe(core.RoomStream(h.roomID))
}

func (h *ConnectionHandler) unsubscribeAll() {
	b := h.deps.Services.Broadcaster
	if h.roomCh != nil {
		b.Unsubscribe(core.RoomStream(h.roomID), h.roomCh)
	}
	if h.worldCh != nil {
		b.Unsubscribe(core.StreamWorld, h.worldCh)
	}
	if h.playerCh != nil {
		b.Unsubscribe(core.PlayerStream(h.playerID), h.playerCh)
	}
	h.roomCh, h.worldCh, h.playerCh = nil, nil, nil
}

// forwardEvent renders a broadcast event, skipping the player's own
// actions which were already echoed by their handler.
func (h *ConnectionHandler) forwardEvent(event core.Event) {
	if event.ActorID != "" && event.ActorID == h.playerID.String() {
		return
	}
	h.sendLine(core.Line{Category: event.Category, Text: event.Text})
}

// sendLine writes one output line with its category prefix. Game text is
// unprefixed; everything else is tagged for client-side styling.
func (h *ConnectionHandler) sendLine(line core.Line) {
	text := line.Text
	if line.Category != core.CategoryGame && line.Category != "" {
		text = fmt.Sprintf("[%s] %s", line.Category, line.Text)
	}
	if _, err := fmt.Fprintln(h.conn, text); err != nil {
		slog.Debug("failed to send line to client",
			"conn_id", h.connID.String(),
			"error", err,
		)
	}
}
