// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "Something went wrong. Try again.",
		},
		{
			name: "plain error",
			err:  errors.New("pq: connection reset"),
			want: "Something went wrong. Try again.",
		},
		{
			name: "not understood",
			err:  ErrNotUnderstood("florble"),
			want: "I don't understand that. Try 'help'.",
		},
		{
			name: "invalid target carries its own text",
			err:  ErrInvalidTarget("You see no dragon here."),
			want: "You see no dragon here.",
		},
		{
			name: "invalid args show usage",
			err:  ErrInvalidArgs("get", "get <item>"),
			want: "Usage: get <item>",
		},
		{
			name: "insufficient funds name the item",
			err:  ErrInsufficientFunds("Potion", 10, 3),
			want: "You cannot afford the Potion.",
		},
		{
			name: "world error hides the cause",
			err:  WorldError("That way leads nowhere. Try again.", errors.New("row not found")),
			want: "That way leads nowhere. Try again.",
		},
		{
			name: "rate limited",
			err:  ErrRateLimited(1500),
			want: "Too many commands. Please slow down.",
		},
		{
			name: "no session",
			err:  ErrNoSession(),
			want: "You are not connected. Log in first.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlayerMessage(tt.err))
		})
	}
}
