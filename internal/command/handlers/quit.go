// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
)

// LogoutHandler says goodbye and tears down the session. The gateway
// observes the disconnect through the session manager.
func LogoutHandler(ctx context.Context, exec *command.Execution) error {
	exec.Send(core.CategorySystem, "Farewell, adventurer.")
	exec.Services.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(exec.Player.RoomID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s fades away.", exec.Player.Name),
	))
	exec.Services.Sessions.Disconnect(exec.Player.ID)
	return nil
}
