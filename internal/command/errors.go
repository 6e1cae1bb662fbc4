// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"errors"

	"github.com/samber/oops"
)

// Construction errors.
var (
	ErrNilRegistry = errors.New("registry must not be nil")
	ErrNilParser   = errors.New("parser must not be nil")
)

// Error codes for command dispatch failures.
const (
	CodeNotUnderstood     = "NOT_UNDERSTOOD"
	CodeInvalidTarget     = "INVALID_TARGET"
	CodeInvalidArgs       = "INVALID_ARGS"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeWorldError        = "WORLD_ERROR"
	CodeRateLimited       = "RATE_LIMITED"
	CodeNoSession         = "NO_SESSION"
	CodeInternal          = "INTERNAL"
)

// ErrNotUnderstood creates an error for input no handler claims.
func ErrNotUnderstood(raw string) error {
	return oops.Code(CodeNotUnderstood).
		With("input", raw).
		Errorf("command not understood")
}

// ErrInvalidTarget creates an error for a target that is not here.
func ErrInvalidTarget(message string) error {
	return oops.Code(CodeInvalidTarget).
		With("message", message).
		Errorf("%s", message)
}

// ErrInvalidArgs creates an error for invalid arguments.
func ErrInvalidArgs(action, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("action", action).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrInsufficientFunds creates an error for a purchase the player cannot
// afford.
func ErrInsufficientFunds(itemName string, cost, money int) error {
	return oops.Code(CodeInsufficientFunds).
		With("item", itemName).
		With("cost", cost).
		With("money", money).
		Errorf("cannot afford %s", itemName)
}

// WorldError creates an error for world state issues with a player-facing
// message.
func WorldError(message string, cause error) error {
	builder := oops.Code(CodeWorldError).With("message", message)
	if cause != nil {
		return builder.Wrap(cause)
	}
	return builder.Errorf("%s", message)
}

// ErrRateLimited creates an error for rate limiting.
func ErrRateLimited(cooldownMs int64) error {
	return oops.Code(CodeRateLimited).
		With("cooldown_ms", cooldownMs).
		Errorf("too many commands")
}

// ErrNoSession creates an error for a command without a connected session.
func ErrNoSession() error {
	return oops.Code(CodeNoSession).
		Errorf("no session associated with command")
}

// ErrCommandPanicked converts a recovered panic into a regular dispatch
// error carrying the generic player message.
func ErrCommandPanicked(v any) error {
	return oops.Code(CodeInternal).
		With("message", "Something went wrong. Try again.").
		Errorf("command panicked: %v", v)
}

// ErrNilServices creates an error for an execution without services wired.
func ErrNilServices() error {
	return oops.Code(CodeWorldError).
		With("message", "Something went wrong. Try again.").
		Errorf("execution services are nil")
}

// PlayerMessage extracts a player-facing message from an error. Gateways
// render this instead of the raw error.
func PlayerMessage(err error) string {
	const fallback = "Something went wrong. Try again."
	if err == nil {
		return fallback
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return fallback
	}

	switch oopsErr.Code() {
	case CodeNotUnderstood:
		return "I don't understand that. Try 'help'."
	case CodeInvalidArgs:
		if usage, ok := oopsErr.Context()["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodeInsufficientFunds:
		if item, ok := oopsErr.Context()["item"].(string); ok && item != "" {
			return "You cannot afford the " + item + "."
		}
		return "You cannot afford that."
	case CodeRateLimited:
		return "Too many commands. Please slow down."
	case CodeNoSession:
		return "You are not connected. Log in first."
	default:
		// Domain errors carry their own player-facing text.
		if msg, ok := oopsErr.Context()["message"].(string); ok && msg != "" {
			return msg
		}
		return fallback
	}
}
