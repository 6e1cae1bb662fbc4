// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_ConnectAndGet(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()

	s := sm.Connect(id, "Wren")
	require.NotNil(t, s)
	assert.Equal(t, "Wren", s.PlayerName)
	assert.False(t, s.ConnectedAt.IsZero())

	got := sm.Get(id)
	require.NotNil(t, got)
	assert.Equal(t, id, got.PlayerID)

	assert.Nil(t, sm.Get(NewULID()))
}

func TestSessionManager_ConnectReplacesSession(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()

	sm.Connect(id, "Wren")
	sm.StartConversation(id, "shopkeeper")
	sm.Connect(id, "Wren")

	assert.Nil(t, sm.Conversation(id), "reconnect starts a fresh session")
	assert.Len(t, sm.List(), 1)
}

func TestSessionManager_Disconnect(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()

	sm.Connect(id, "Wren")
	sm.Disconnect(id)

	assert.Nil(t, sm.Get(id))
	assert.Empty(t, sm.List())

	// Disconnecting an unknown player is a no-op.
	sm.Disconnect(id)
}

func TestSessionManager_GetReturnsCopy(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()
	sm.Connect(id, "Wren")
	sm.StartConversation(id, "shopkeeper")
	sm.AppendExchange(id, "Wren", "hello")

	s := sm.Get(id)
	require.NotNil(t, s.Conversation)
	s.Conversation.NpcID = "ferryman"
	s.Conversation.History[0].Text = "mutated"

	conv := sm.Conversation(id)
	assert.Equal(t, "shopkeeper", conv.NpcID)
	assert.Equal(t, "hello", conv.History[0].Text)
}

func TestSessionManager_Touch(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()
	sm.Connect(id, "Wren")
	before := sm.Get(id).LastActivity

	sm.Touch(id)

	after := sm.Get(id).LastActivity
	assert.False(t, after.Before(before))

	// Touching an unknown player is a no-op.
	sm.Touch(NewULID())
}

func TestSessionManager_ConversationLifecycle(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()
	sm.Connect(id, "Wren")

	assert.Nil(t, sm.Conversation(id))

	sm.StartConversation(id, "shopkeeper")
	conv := sm.Conversation(id)
	require.NotNil(t, conv)
	assert.Equal(t, "shopkeeper", conv.NpcID)
	assert.Empty(t, conv.History)

	sm.AppendExchange(id, "Wren", "got any torches?")
	sm.AppendExchange(id, "shopkeeper", "Freshly dipped this morning.")
	conv = sm.Conversation(id)
	require.Len(t, conv.History, 2)
	assert.Equal(t, "Wren", conv.History[0].Speaker)

	// Talking to someone else discards the old thread.
	sm.StartConversation(id, "ferryman")
	conv = sm.Conversation(id)
	assert.Equal(t, "ferryman", conv.NpcID)
	assert.Empty(t, conv.History)

	sm.EndConversation(id)
	assert.Nil(t, sm.Conversation(id))
}

func TestSessionManager_AppendExchangeTrimsHistory(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()
	sm.Connect(id, "Wren")
	sm.StartConversation(id, "shopkeeper")

	for i := 0; i < HistoryLimit+4; i++ {
		sm.AppendExchange(id, "Wren", fmt.Sprintf("line %d", i))
	}

	conv := sm.Conversation(id)
	require.Len(t, conv.History, HistoryLimit)
	assert.Equal(t, "line 4", conv.History[0].Text)
	assert.Equal(t, fmt.Sprintf("line %d", HistoryLimit+3), conv.History[HistoryLimit-1].Text)
}

func TestSessionManager_AppendExchangeWithoutConversation(t *testing.T) {
	sm := NewSessionManager()
	id := NewULID()
	sm.Connect(id, "Wren")

	sm.AppendExchange(id, "Wren", "talking to nobody")

	assert.Nil(t, sm.Conversation(id))
}
