// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package world

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
// Repository implementations wrap it with oops codes for context.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a transaction exhausts its retry budget
// because of concurrent writers. Handlers surface it as a generic
// "try again" message, never as a crash.
var ErrConflict = errors.New("write conflict")
