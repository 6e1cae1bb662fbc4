// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
)

// newsLimit bounds how many world events the news command shows.
const newsLimit = 10

// InventoryHandler lists carried items and gold.
func InventoryHandler(ctx context.Context, exec *command.Execution) error {
	if len(exec.Player.Inventory) == 0 {
		exec.Send(core.CategoryGame, "You are carrying nothing.")
	} else {
		exec.Send(core.CategoryGame, "You are carrying:")
		for _, item := range exec.Player.Inventory {
			exec.Send(core.CategoryGame, "  "+item.Name)
		}
	}
	exec.Send(core.CategoryGame, fmt.Sprintf("You have %d gold.", exec.Player.Money))
	return nil
}

// WhoHandler lists players currently online.
func WhoHandler(ctx context.Context, exec *command.Execution) error {
	sessions := exec.Services.Sessions.List()
	exec.Send(core.CategorySystem, fmt.Sprintf("%d adventurer(s) online:", len(sessions)))
	for _, s := range sessions {
		idle := time.Since(s.LastActivity).Round(time.Second)
		exec.Send(core.CategorySystem, fmt.Sprintf("  %s (idle %s)", s.PlayerName, idle))
	}
	return nil
}

// ScoreHandler shows progression at a glance.
func ScoreHandler(ctx context.Context, exec *command.Execution) error {
	p := exec.Player
	next := exec.Services.Progression.Curve().XPForLevel(p.Level + 1)

	exec.Send(core.CategoryGame, fmt.Sprintf("Level %d, %d xp (%d to next), score %d.",
		p.Level, p.XP, max(0, next-p.XP), p.Score))
	exec.Send(core.CategoryGame, fmt.Sprintf("HP %d/%d, %d gold, %d place(s) discovered.",
		p.HP, p.MaxHP, p.Money, len(p.VisitedRooms)))
	return nil
}

// StatsHandler shows the full attribute block.
func StatsHandler(ctx context.Context, exec *command.Execution) error {
	a := exec.Player.Attributes
	exec.Send(core.CategoryGame, fmt.Sprintf("STR %2d  DEX %2d  CON %2d", a.Str, a.Dex, a.Con))
	exec.Send(core.CategoryGame, fmt.Sprintf("INT %2d  WIS %2d  CHA %2d", a.Int, a.Wis, a.Cha))
	return ScoreHandler(ctx, exec)
}

// NewsHandler shows recent world events: newsworthy kills, level-ups.
func NewsHandler(ctx context.Context, exec *command.Execution) error {
	events, err := exec.Services.Events.Recent(ctx, core.StreamWorld, newsLimit)
	if err != nil {
		if errors.Is(err, core.ErrStreamEmpty) {
			exec.Send(core.CategorySystem, "Nothing notable has happened lately.")
			return nil
		}
		return command.WorldError("The town crier is hoarse. Try again.", err)
	}

	exec.Send(core.CategorySystem, "Recent news:")
	for _, ev := range events {
		exec.Send(core.CategorySystem,
			fmt.Sprintf("  [%s] %s", ev.Timestamp.Format("Jan 2 15:04"), ev.Text))
	}
	return nil
}

// HelpHandler lists registered commands.
func HelpHandler(ctx context.Context, exec *command.Execution) error {
	exec.Send(core.CategorySystem, "Commands:")
	for _, entry := range exec.Services.Registry.All() {
		exec.Send(core.CategorySystem, fmt.Sprintf("  %-24s %s", entry.Usage, entry.Help))
	}
	return nil
}
