// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package handlers provides command handler implementations.
package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// LookHandler displays the current room: description, exits, items, NPCs,
// monsters, and other players.
func LookHandler(ctx context.Context, exec *command.Execution) error {
	svc := exec.Services

	room, err := svc.Rooms.Get(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("You can't see anything here.", err)
	}

	exec.Send(core.CategoryGame, room.Name)
	exec.Send(core.CategoryGame, room.Description)

	if len(room.Exits) > 0 {
		dirs := make([]string, 0, len(room.Exits))
		for dir := range room.Exits {
			dirs = append(dirs, string(dir))
		}
		sort.Strings(dirs)
		exec.Send(core.CategoryGame, "Exits: "+strings.Join(dirs, ", "))
	}

	for _, itemID := range room.Items {
		if tpl := svc.Snapshot.Item(itemID); tpl != nil {
			exec.Send(core.CategoryGame, fmt.Sprintf("There is a %s here.", tpl.Name))
		}
	}

	for _, npcID := range room.NPCs {
		if npc := svc.Snapshot.Npc(npcID); npc != nil {
			exec.Send(core.CategoryGame, fmt.Sprintf("%s is here.", npc.Name))
		}
	}

	monsters, err := svc.Monsters.ListByRoom(ctx, room.ID)
	if err != nil {
		return command.WorldError("You can't see anything here.", err)
	}
	for _, m := range monsters {
		exec.Send(core.CategoryCombat, fmt.Sprintf("A %s is here!", m.Name))
	}

	others, err := svc.Players.ListByRoom(ctx, room.ID)
	if err != nil {
		return command.WorldError("You can't see anything here.", err)
	}
	for _, p := range others {
		if p.ID == exec.Player.ID {
			continue
		}
		if svc.Sessions.Get(p.ID) == nil {
			continue
		}
		exec.Send(core.CategoryGame, fmt.Sprintf("%s is here.", p.Name))
	}

	return nil
}

// ExamineHandler inspects a named target: room scenery details, an item in
// the room or inventory, an NPC, or a monster.
func ExamineHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs(string(exec.Intent.Action), "examine <target>")
	}
	svc := exec.Services

	room, err := svc.Rooms.Get(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("You can't see anything here.", err)
	}

	// Scenery details take precedence; they are authored per room.
	for key, text := range room.Details {
		if strings.EqualFold(key, target) {
			exec.Send(core.CategoryGame, text)
			return nil
		}
	}

	if tpl := svc.Snapshot.FindItemByName(room.Items, target); tpl != nil {
		exec.Send(core.CategoryGame, describeItem(tpl))
		return nil
	}
	for _, carried := range exec.Player.Inventory {
		if tpl := svc.Snapshot.Item(carried.ItemID); tpl != nil && tpl.Matches(target) {
			exec.Send(core.CategoryGame, describeItem(tpl))
			return nil
		}
	}

	for _, npcID := range room.NPCs {
		if npc := svc.Snapshot.Npc(npcID); npc != nil && npc.Matches(target) {
			exec.Send(core.CategoryGame, npc.Description)
			return nil
		}
	}

	monsters, err := svc.Monsters.ListByRoom(ctx, room.ID)
	if err != nil {
		return command.WorldError("You can't see anything here.", err)
	}
	for _, m := range monsters {
		if m.Matches(target) {
			if tpl := svc.Snapshot.Monster(m.MonsterID); tpl != nil {
				exec.Send(core.CategoryCombat, tpl.Description)
				exec.Send(core.CategoryCombat, healthReport(m))
				return nil
			}
		}
	}

	return command.ErrInvalidTarget(fmt.Sprintf("You see no %s here.", target))
}

func describeItem(tpl *world.ItemTemplate) string {
	var sb strings.Builder
	if tpl.Description != "" {
		sb.WriteString(tpl.Description)
	} else {
		sb.WriteString(tpl.Name)
	}
	if tpl.Weapon {
		fmt.Fprintf(&sb, " (weapon, +%d damage)", tpl.WeaponDamage)
	}
	if tpl.Consumable && tpl.HPRestore > 0 {
		fmt.Fprintf(&sb, " (restores %d hp)", tpl.HPRestore)
	}
	return sb.String()
}

func healthReport(m *world.MonsterInstance) string {
	switch {
	case m.HP >= m.MaxHP:
		return "It looks unharmed."
	case m.HP > m.MaxHP/2:
		return "It looks wounded."
	default:
		return "It looks close to death."
	}
}
