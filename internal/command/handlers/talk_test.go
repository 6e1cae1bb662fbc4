// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/intent"
)

func TestTalk_FixedDialogue(t *testing.T) {
	w := newTestWorld(t)

	err := TalkHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionTalk, NpcTarget: "shopkeeper",
	}))
	require.NoError(t, err)
	assert.Contains(t, w.sink.text(), `Marta the Shopkeeper says, "Welcome!"`)

	sess := w.services.Sessions.Get(w.player.ID)
	require.NotNil(t, sess)
	conv := w.services.Sessions.Conversation(w.player.ID)
	require.NotNil(t, conv)
	assert.Equal(t, "shopkeeper", conv.NpcID)
}

func TestTalk_NoSuchNpc(t *testing.T) {
	w := newTestWorld(t)

	err := TalkHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionTalk, NpcTarget: "wizard",
	}))
	require.Error(t, err)
}

func TestReply_WithoutConversation(t *testing.T) {
	w := newTestWorld(t)

	err := ReplyHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionReply, Topic: "hello there",
	}))
	require.Error(t, err)
}
