// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/intent"
	"github.com/mossgate/mossgate/internal/world"
)

// MoveHandler moves the player through a room exit. First-time visits
// grant the discovery bonus; the read-then-write on visitedRooms is
// intentionally not conflict-checked, so a duplicate bonus under a
// concurrent double move is possible and accepted.
func MoveHandler(ctx context.Context, exec *command.Execution) error {
	dir := world.Direction(exec.Intent.Target)
	if !dir.Valid() {
		return command.ErrInvalidArgs(string(intent.ActionGo), "go <north|south|east|west|up|down>")
	}
	svc := exec.Services

	var (
		from       *world.Room
		dest       *world.Room
		discovered bool
	)
	err := svc.Tx.InTransaction(ctx, func(ctx context.Context) error {
		discovered = false

		p, err := svc.Players.Get(ctx, exec.Player.ID)
		if err != nil {
			return command.WorldError("You seem to be nowhere. Try again.", err)
		}

		from, err = svc.Rooms.Get(ctx, p.RoomID)
		if err != nil {
			return command.WorldError("You seem to be nowhere. Try again.", err)
		}
		destID, ok := from.Exit(dir)
		if !ok {
			return command.ErrInvalidTarget(fmt.Sprintf("You can't go %s from here.", dir))
		}
		dest, err = svc.Rooms.Get(ctx, destID)
		if err != nil {
			return command.WorldError("That way leads nowhere. Try again.", err)
		}

		p.RoomID = dest.ID
		if !p.HasVisited(dest.ID) {
			p.MarkVisited(dest.ID)
			p.XP += svc.DiscoveryBonus
			p.Score += svc.DiscoveryBonus
			discovered = true
		}
		return svc.Players.Update(ctx, p)
	})
	if err != nil {
		return err
	}

	svc.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(from.ID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s leaves %s.", exec.Player.Name, dir),
	))
	svc.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(dest.ID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s arrives from the %s.", exec.Player.Name, dir.Inverse()),
	))

	if discovered && svc.DiscoveryBonus > 0 {
		exec.Send(core.CategoryGame, fmt.Sprintf("You discover a new place! (+%d xp)", svc.DiscoveryBonus))
		if svc.Progression != nil {
			if _, err := svc.Progression.CheckLevelUp(ctx, exec.Player.ID); err != nil {
				return command.WorldError("Something went wrong. Try again.", err)
			}
		}
	}

	// Keep the preloaded player coherent for LookHandler below.
	exec.Player.RoomID = dest.ID

	if err := LookHandler(ctx, exec); err != nil {
		return err
	}

	svc.Spawner.OnRoomEntry(ctx, dest.ID)
	return nil
}
