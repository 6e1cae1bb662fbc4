// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package telnet provides the line-based telnet gateway.
package telnet

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/mossgate/mossgate/internal/auth"
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/observability"
)

// Deps carries everything a connection needs to authenticate and play.
type Deps struct {
	Auth       *auth.Service
	Dispatcher *command.Dispatcher
	Services   *command.Services
	Metrics    *observability.Metrics // optional
}

// Server accepts telnet connections and runs one handler per connection.
type Server struct {
	addr     string
	deps     Deps
	listener net.Listener
	mu       sync.RWMutex
}

// NewServer creates a new telnet server.
func NewServer(addr string, deps Deps) *Server {
	return &Server{addr: addr, deps: deps}
}

// Addr returns the server's listen address, or "" before Run binds it.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.Info("telnet server started", "addr", listener.Addr())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			slog.Debug("error closing listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.Error("accept failed", "error", err)
				continue
			}
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.ConnectionsTotal.WithLabelValues("telnet").Inc()
		}
		handler := NewConnectionHandler(conn, s.deps)
		go handler.Handle(ctx)
	}
}
