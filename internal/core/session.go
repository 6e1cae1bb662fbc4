// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package core

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// HistoryLimit bounds conversation history to the most recent exchanges:
// three player/NPC round-trips.
const HistoryLimit = 6

// Exchange is one turn of an NPC conversation.
type Exchange struct {
	Speaker string // player name or NPC short name
	Text    string
}

// Conversation tracks which NPC a player is talking to and the recent
// history handed to the text-generation service for context. It lives only
// in the session, never in the store.
type Conversation struct {
	NpcID   string
	History []Exchange
}

// Session is a player's ongoing presence in the game. Each session
// processes one command at a time; the gateways enforce that by reading
// the next input only after the previous command completes.
type Session struct {
	PlayerID     ulid.ULID
	PlayerName   string
	Conversation *Conversation // nil when not talking to anyone
	ConnectedAt  time.Time
	LastActivity time.Time
}

// copySession returns a defensive copy so callers cannot mutate manager
// state. The conversation is deep-copied.
func copySession(s *Session) *Session {
	out := &Session{
		PlayerID:     s.PlayerID,
		PlayerName:   s.PlayerName,
		ConnectedAt:  s.ConnectedAt,
		LastActivity: s.LastActivity,
	}
	if s.Conversation != nil {
		history := make([]Exchange, len(s.Conversation.History))
		copy(history, s.Conversation.History)
		out.Conversation = &Conversation{NpcID: s.Conversation.NpcID, History: history}
	}
	return out
}

// SessionManager tracks active player sessions and owns their per-session
// interaction state (active conversation and its history).
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[ulid.ULID]*Session // keyed by player ID
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[ulid.ULID]*Session),
	}
}

// Connect registers a session for a player, replacing any previous one.
func (sm *SessionManager) Connect(playerID ulid.ULID, playerName string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	session := &Session{
		PlayerID:     playerID,
		PlayerName:   playerName,
		ConnectedAt:  now,
		LastActivity: now,
	}
	sm.sessions[playerID] = session
	return copySession(session)
}

// Disconnect removes a player's session.
func (sm *SessionManager) Disconnect(playerID ulid.ULID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, playerID)
}

// Get returns a copy of a player's session, or nil if none exists.
func (sm *SessionManager) Get(playerID ulid.ULID) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[playerID]
	if !ok {
		return nil
	}
	return copySession(session)
}

// List returns copies of all active sessions.
func (sm *SessionManager) List() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, copySession(s))
	}
	return out
}

// Touch records command activity for a player.
func (sm *SessionManager) Touch(playerID ulid.ULID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[playerID]; ok {
		s.LastActivity = time.Now()
	}
}

// StartConversation resets any active conversation and begins a new one
// with the given NPC.
func (sm *SessionManager) StartConversation(playerID ulid.ULID, npcID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[playerID]; ok {
		s.Conversation = &Conversation{NpcID: npcID}
	}
}

// Conversation returns a copy of the player's active conversation, or nil.
func (sm *SessionManager) Conversation(playerID ulid.ULID) *Conversation {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[playerID]
	if !ok || s.Conversation == nil {
		return nil
	}
	history := make([]Exchange, len(s.Conversation.History))
	copy(history, s.Conversation.History)
	return &Conversation{NpcID: s.Conversation.NpcID, History: history}
}

// AppendExchange records a conversation turn, trimming history to the
// HistoryLimit most recent entries. No-op if no conversation is active.
func (sm *SessionManager) AppendExchange(playerID ulid.ULID, speaker, text string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[playerID]
	if !ok || s.Conversation == nil {
		return
	}
	s.Conversation.History = append(s.Conversation.History, Exchange{Speaker: speaker, Text: text})
	if n := len(s.Conversation.History); n > HistoryLimit {
		s.Conversation.History = s.Conversation.History[n-HistoryLimit:]
	}
}

// EndConversation clears the player's active conversation and history.
// Called by the dispatcher whenever the player does anything other than
// talking; a conversation is implicitly abandoned once you walk away.
func (sm *SessionManager) EndConversation(playerID ulid.ULID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[playerID]; ok {
		s.Conversation = nil
	}
}
