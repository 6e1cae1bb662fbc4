// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mossgate/mossgate/internal/combat"
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
)

// AttackHandler resolves one combat round against a monster or, when PvP
// is enabled, another player. Target presence is validated here, before
// the resolver opens its transaction.
func AttackHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("attack", "attack <target> [with <verb>]")
	}
	svc := exec.Services

	monsters, err := svc.Monsters.ListByRoom(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("Something went wrong. Try again.", err)
	}
	for _, m := range monsters {
		if m.Matches(target) {
			out, err := svc.Combat.AttackMonster(ctx, exec.Player.ID, m.ID, exec.Intent.Verb)
			if err != nil {
				return err
			}
			narrateRound(exec, out)
			return nil
		}
	}

	others, err := svc.Players.ListByRoom(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("Something went wrong. Try again.", err)
	}
	for _, p := range others {
		if p.ID != exec.Player.ID && strings.EqualFold(p.Name, target) {
			out, err := svc.Combat.AttackPlayer(ctx, exec.Player.ID, p.ID, exec.Intent.Verb)
			if err != nil {
				return err
			}
			narrateRound(exec, out)
			return nil
		}
	}

	return command.ErrInvalidTarget(fmt.Sprintf("There is no %s here to attack.", target))
}

// narrateRound renders a resolved round to the attacker and the room.
func narrateRound(exec *command.Execution, out *combat.Outcome) {
	svc := exec.Services
	roomStream := core.RoomStream(exec.Player.RoomID)
	actor := exec.Player.ID.String()

	exec.Send(core.CategoryCombat,
		fmt.Sprintf("You %s the %s for %d damage.", out.Verb, out.TargetName, out.Damage))
	svc.Broadcaster.Broadcast(core.NewEvent(roomStream, core.CategoryCombat, actor,
		fmt.Sprintf("%s %ss the %s.", out.AttackerName, out.Verb, out.TargetName)))

	if out.TargetDied {
		exec.Send(core.CategoryCombat, fmt.Sprintf("The %s is defeated!", out.TargetName))
		svc.Broadcaster.Broadcast(core.NewEvent(roomStream, core.CategoryCombat, actor,
			fmt.Sprintf("%s defeats the %s!", out.AttackerName, out.TargetName)))

		if out.XPGained > 0 || out.GoldGained > 0 {
			exec.Send(core.CategoryGame,
				fmt.Sprintf("You gain %d xp and %d gold.", out.XPGained, out.GoldGained))
		}
		if out.ItemDropped != "" {
			exec.Send(core.CategoryGame, fmt.Sprintf("The %s drops a %s.", out.TargetName, out.ItemDropped))
		}
		return
	}

	if out.CounterDamage > 0 {
		exec.Send(core.CategoryCombat,
			fmt.Sprintf("The %s strikes back for %d damage.", out.TargetName, out.CounterDamage))
	}
	if out.AttackerDied {
		exec.Send(core.CategoryCombat, "You have been slain!")
		if out.GoldLost > 0 {
			exec.Send(core.CategoryGame, fmt.Sprintf("You lose %d gold.", out.GoldLost))
		}
		exec.Send(core.CategoryGame, "You wake up at home, whole but poorer.")
		svc.Broadcaster.Broadcast(core.NewEvent(roomStream, core.CategoryCombat, actor,
			fmt.Sprintf("%s falls to the %s!", exec.Player.Name, out.TargetName)))
	}
}
