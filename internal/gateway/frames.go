// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package gateway provides the websocket gateway for web clients. Frames
// are JSON objects with a type discriminator.
package gateway

import "github.com/mossgate/mossgate/internal/core"

// Client-to-server frame types.
const (
	FrameLogin   = "login"
	FrameCreate  = "create"
	FrameCommand = "command"
)

// Server-to-client frame types.
const (
	FrameLine    = "line"
	FrameError   = "error"
	FrameWelcome = "welcome"
	FrameBye     = "bye"
)

// ClientFrame is a message from the web client.
type ClientFrame struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ServerFrame is a message to the web client.
type ServerFrame struct {
	Type     string        `json:"type"`
	Category core.Category `json:"category,omitempty"`
	Text     string        `json:"text,omitempty"`
	Name     string        `json:"name,omitempty"`
}
