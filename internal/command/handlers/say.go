// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
)

// SayHandler broadcasts chat to the room. Pure append, no transaction.
func SayHandler(ctx context.Context, exec *command.Execution) error {
	message := strings.TrimSpace(exec.Intent.Target)
	if message == "" {
		return command.ErrInvalidArgs("say", "say <message>")
	}

	exec.Send(core.CategoryChat, fmt.Sprintf("You say, \"%s\"", message))
	exec.Services.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(exec.Player.RoomID), core.CategoryChat, exec.Player.ID.String(),
		fmt.Sprintf("%s says, \"%s\"", exec.Player.Name, message),
	))
	return nil
}
