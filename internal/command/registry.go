// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package command

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mossgate/mossgate/internal/intent"
)

// Registry maps intent actions to handlers. It is thread-safe for
// concurrent access.
type Registry struct {
	entries map[intent.Action]Entry
	mu      sync.RWMutex
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[intent.Action]Entry),
	}
}

// Register adds a command to the registry. A duplicate action overwrites
// the previous entry with a warning.
func (r *Registry) Register(entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[entry.Action]; ok {
		slog.Warn("command conflict: overwriting existing handler",
			"action", string(entry.Action))
	}
	r.entries[entry.Action] = entry
}

// Get retrieves a command by action.
func (r *Registry) Get(action intent.Action) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[action]
	return entry, ok
}

// All returns all registered commands sorted by action, for help output.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Action < entries[j].Action
	})
	return entries
}
