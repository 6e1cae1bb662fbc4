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

func TestLook_DescribesRoom(t *testing.T) {
	w := newTestWorld(t)

	err := LookHandler(context.Background(), w.exec(t, intent.Intent{Action: intent.ActionLook}))
	require.NoError(t, err)

	out := w.sink.text()
	assert.Contains(t, out, "Town Square")
	assert.Contains(t, out, "A mossy square.")
	assert.Contains(t, out, "Exits: north")
	assert.Contains(t, out, "There is a Torch here.")
	assert.Contains(t, out, "Marta the Shopkeeper is here.")
}

func TestExamine_SceneryDetail(t *testing.T) {
	w := newTestWorld(t)

	err := ExamineHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionExamine, Target: "fountain",
	}))
	require.NoError(t, err)
	assert.Contains(t, w.sink.text(), "Water trickles over old stone.")
}

func TestExamine_Item(t *testing.T) {
	w := newTestWorld(t)

	err := ExamineHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionExamine, Target: "torch",
	}))
	require.NoError(t, err)
	assert.Contains(t, w.sink.text(), "Torch")
}

func TestExamine_Unknown(t *testing.T) {
	w := newTestWorld(t)

	err := ExamineHandler(context.Background(), w.exec(t, intent.Intent{
		Action: intent.ActionExamine, Target: "dragon",
	}))
	require.Error(t, err)
}
