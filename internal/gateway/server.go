// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/mossgate/mossgate/internal/auth"
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/observability"
	"github.com/mossgate/mossgate/internal/world"
)

const writeTimeout = 5 * time.Second

// Deps carries everything a websocket session needs to authenticate and
// play.
type Deps struct {
	Auth       *auth.Service
	Dispatcher *command.Dispatcher
	Services   *command.Services
	Metrics    *observability.Metrics // optional
}

// Server hosts the websocket endpoint at /ws.
type Server struct {
	addr     string
	deps     Deps
	upgrader websocket.Upgrader
	listener net.Listener
	mu       sync.RWMutex
}

// NewServer creates a new websocket gateway server.
func NewServer(addr string, deps Deps) *Server {
	return &Server{
		addr: addr,
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			// The game carries no credentials in the handshake; origin
			// enforcement belongs to the fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Addr returns the bound listen address, or "" before Run.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves websocket connections until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS(ctx))

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("websocket gateway started", "addr", listener.Addr())

	if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("websocket gateway: %w", err)
	}
	return nil
}

func (s *Server) handleWS(ctx context.Context) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ConnectionsTotal.WithLabelValues("websocket").Inc()
		}
		sess := newWSSession(conn, s.deps)
		sess.run(ctx)
	}
}

// wsSession is one authenticated-or-not websocket connection.
type wsSession struct {
	conn *websocket.Conn
	deps Deps

	playerID ulid.ULID
	roomID   string
	authed   bool

	writeMu sync.Mutex

	roomCh   chan core.Event
	worldCh  chan core.Event
	playerCh chan core.Event
	events   chan core.Event
	stopFwd  chan struct{}
}

func newWSSession(conn *websocket.Conn, deps Deps) *wsSession {
	return &wsSession{
		conn:   conn,
		deps:   deps,
		events: make(chan core.Event, 64),
	}
}

func (s *wsSession) run(ctx context.Context) {
	defer func() {
		s.unsubscribeAll()
		if s.authed {
			s.deps.Services.Sessions.Disconnect(s.playerID)
			if s.deps.Metrics != nil {
				s.deps.Metrics.PlayersOnline.Dec()
			}
		}
		_ = s.conn.Close()
	}()

	for {
		var frame ClientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}

		switch frame.Type {
		case FrameLogin, FrameCreate:
			s.handleAuth(ctx, frame)
		case FrameCommand:
			if !s.authed {
				s.writeFrame(ServerFrame{Type: FrameError, Text: "You are not connected. Log in first."})
				continue
			}
			s.handleCommand(ctx, frame.Text)
			if s.deps.Services.Sessions.Get(s.playerID) == nil {
				s.writeFrame(ServerFrame{Type: FrameBye})
				return
			}
		default:
			s.writeFrame(ServerFrame{Type: FrameError, Text: "unknown frame type"})
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *wsSession) handleAuth(ctx context.Context, frame ClientFrame) {
	if s.authed {
		s.writeFrame(ServerFrame{Type: FrameError, Text: "Already connected."})
		return
	}

	var (
		player *world.Player
		err    error
	)
	if frame.Type == FrameCreate {
		player, err = s.deps.Auth.Signup(ctx, frame.Name, frame.Password)
	} else {
		player, err = s.deps.Auth.Login(ctx, frame.Name, frame.Password)
	}
	if err != nil {
		s.writeFrame(ServerFrame{Type: FrameError, Text: command.PlayerMessage(err)})
		return
	}
	if s.deps.Services.Sessions.Get(player.ID) != nil {
		s.writeFrame(ServerFrame{Type: FrameError, Text: "That character is already connected."})
		return
	}

	s.playerID = player.ID
	s.roomID = player.RoomID
	s.authed = true
	s.deps.Services.Sessions.Connect(player.ID, player.Name)
	if s.deps.Metrics != nil {
		s.deps.Metrics.PlayersOnline.Inc()
	}

	b := s.deps.Services.Broadcaster
	s.worldCh = b.Subscribe(core.StreamWorld)
	s.playerCh = b.Subscribe(core.PlayerStream(player.ID))
	s.roomCh = b.Subscribe(core.RoomStream(player.RoomID))
	s.stopFwd = make(chan struct{})
	go s.pump(s.worldCh)
	go s.pump(s.playerCh)
	go s.pump(s.roomCh)
	go s.forwardEvents()

	s.writeFrame(ServerFrame{Type: FrameWelcome, Name: player.Name})

	b.Broadcast(core.NewEvent(
		core.RoomStream(player.RoomID), core.CategoryAction, player.ID.String(),
		fmt.Sprintf("%s appears.", player.Name),
	))

	s.handleCommand(ctx, "look")
}

func (s *wsSession) handleCommand(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	player, err := s.deps.Services.Players.Get(ctx, s.playerID)
	if err != nil {
		slog.Error("failed to load player for command",
			"player_id", s.playerID.String(),
			"error", err,
		)
		s.writeFrame(ServerFrame{Type: FrameError, Text: "Something went wrong. Try again."})
		return
	}

	session := s.deps.Services.Sessions.Get(s.playerID)
	if session == nil {
		return
	}

	exec := &command.Execution{
		Player:  player,
		Session: session,
		Sink: core.SinkFunc(func(line core.Line) {
			s.writeFrame(ServerFrame{Type: FrameLine, Category: line.Category, Text: line.Text})
		}),
		Services: s.deps.Services,
	}

	if err := s.deps.Dispatcher.Dispatch(ctx, text, exec); err != nil {
		s.writeFrame(ServerFrame{Type: FrameError, Text: command.PlayerMessage(err)})
	}

	s.refreshRoomSubscription(ctx)
}

// pump drains one subscription into the shared event funnel. It exits
// when the subscription channel is closed by Unsubscribe.
func (s *wsSession) pump(ch chan core.Event) {
	for event := range ch {
		select {
		case s.events <- event:
		default:
			// Funnel full; the client is not keeping up.
		}
	}
}

// forwardEvents pushes funneled broadcast events to the client, skipping
// the player's own actions.
func (s *wsSession) forwardEvents() {
	for {
		select {
		case <-s.stopFwd:
			return
		case event := <-s.events:
			if event.ActorID != "" && event.ActorID == s.playerID.String() {
				continue
			}
			s.writeFrame(ServerFrame{Type: FrameLine, Category: event.Category, Text: event.Text})
		}
	}
}

func (s *wsSession) refreshRoomSubscription(ctx context.Context) {
	player, err := s.deps.Services.Players.Get(ctx, s.playerID)
	if err != nil || player.RoomID == s.roomID {
		return
	}
	b := s.deps.Services.Broadcaster
	old, oldRoom := s.roomCh, s.roomID
	s.roomCh = b.Subscribe(core.RoomStream(player.RoomID))
	s.roomID = player.RoomID
	go s.pump(s.roomCh)
	if old != nil {
		b.Unsubscribe(core.RoomStream(oldRoom), old)
	}
}

func (s *wsSession) unsubscribeAll() {
	if s.stopFwd != nil {
		close(s.stopFwd)
	}
	b := s.deps.Services.Broadcaster
	if s.roomCh != nil {
		b.Unsubscribe(core.RoomStream(s.roomID), s.roomCh)
	}
	if s.worldCh != nil {
		b.Unsubscribe(core.StreamWorld, s.worldCh)
	}
	if s.playerCh != nil {
		b.Unsubscribe(core.PlayerStream(s.playerID), s.playerCh)
	}
}

func (s *wsSession) writeFrame(frame ServerFrame) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	payload, err := json.Marshal(frame)
	if err != nil {
		slog.Error("failed to marshal frame", "error", err)
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Debug("websocket write failed", "error", err)
	}
}
