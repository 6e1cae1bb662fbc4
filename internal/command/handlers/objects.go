// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/world"
)

// GetHandler picks up an item from the room. The room item set and the
// player inventory change in one transaction.
func GetHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("get", "get <item>")
	}
	svc := exec.Services

	var taken *world.ItemTemplate
	err := svc.Tx.InTransaction(ctx, func(ctx context.Context) error {
		taken = nil

		p, err := svc.Players.Get(ctx, exec.Player.ID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		room, err := svc.Rooms.Get(ctx, p.RoomID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}

		tpl := svc.Snapshot.FindItemByName(room.Items, target)
		if tpl == nil {
			return command.ErrInvalidTarget(fmt.Sprintf("There is no %s here.", target))
		}
		if !tpl.Movable {
			return command.ErrInvalidTarget(fmt.Sprintf("The %s won't budge.", tpl.Name))
		}

		room.RemoveItem(tpl.ID)
		if err := svc.Rooms.SetItems(ctx, room.ID, room.Items); err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		p.Inventory = append(p.Inventory, tpl.Snapshot())
		if err := svc.Players.Update(ctx, p); err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		taken = tpl
		return nil
	})
	if err != nil {
		return err
	}

	exec.Send(core.CategoryGame, fmt.Sprintf("You take the %s.", taken.Name))
	svc.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(exec.Player.RoomID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s picks up the %s.", exec.Player.Name, taken.Name),
	))
	return nil
}

// DropHandler leaves a carried item in the room.
func DropHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("drop", "drop <item>")
	}
	svc := exec.Services

	var dropped world.InventoryItem
	err := svc.Tx.InTransaction(ctx, func(ctx context.Context) error {
		p, err := svc.Players.Get(ctx, exec.Player.ID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		idx := p.FindInventoryItem(target)
		if idx < 0 {
			return command.ErrInvalidTarget(fmt.Sprintf("You aren't carrying a %s.", target))
		}
		room, err := svc.Rooms.Get(ctx, p.RoomID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}

		dropped = p.RemoveInventoryItem(idx)
		room.AddItem(dropped.ItemID)
		if err := svc.Rooms.SetItems(ctx, room.ID, room.Items); err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		return svc.Players.Update(ctx, p)
	})
	if err != nil {
		return err
	}

	exec.Send(core.CategoryGame, fmt.Sprintf("You drop the %s.", dropped.Name))
	svc.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(exec.Player.RoomID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s drops the %s.", exec.Player.Name, dropped.Name),
	))
	return nil
}

// UseHandler applies a carried item's effect. Consumables restore HP and
// are destroyed; readable items show their text; anything else has no
// obvious use.
func UseHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs(string(exec.Intent.Action), "use <item>")
	}
	svc := exec.Services

	idx := exec.Player.FindInventoryItem(target)
	if idx < 0 {
		return command.ErrInvalidTarget(fmt.Sprintf("You aren't carrying a %s.", target))
	}
	tpl := svc.Snapshot.Item(exec.Player.Inventory[idx].ItemID)
	if tpl == nil {
		return command.WorldError("Something went wrong. Try again.", world.ErrNotFound)
	}

	switch {
	case tpl.Consumable:
		return consumeItem(ctx, exec, tpl)
	case tpl.Readable:
		exec.Send(core.CategoryGame, tpl.Text)
		return nil
	default:
		return command.ErrInvalidTarget(fmt.Sprintf("You can't think of a way to use the %s.", tpl.Name))
	}
}

// DrinkHandler consumes a drinkable item.
func DrinkHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("drink", "drink <item>")
	}
	svc := exec.Services

	idx := exec.Player.FindInventoryItem(target)
	if idx < 0 {
		return command.ErrInvalidTarget(fmt.Sprintf("You aren't carrying a %s.", target))
	}
	tpl := svc.Snapshot.Item(exec.Player.Inventory[idx].ItemID)
	if tpl == nil || !tpl.Consumable {
		return command.ErrInvalidTarget(fmt.Sprintf("You can't drink the %s.", target))
	}
	return consumeItem(ctx, exec, tpl)
}

// ReadHandler shows a readable item's text. The item may be carried or in
// the room.
func ReadHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("read", "read <item>")
	}
	svc := exec.Services

	var tpl *world.ItemTemplate
	if idx := exec.Player.FindInventoryItem(target); idx >= 0 {
		tpl = svc.Snapshot.Item(exec.Player.Inventory[idx].ItemID)
	}
	if tpl == nil {
		room, err := svc.Rooms.Get(ctx, exec.Player.RoomID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		tpl = svc.Snapshot.FindItemByName(room.Items, target)
	}
	if tpl == nil {
		return command.ErrInvalidTarget(fmt.Sprintf("There is no %s to read.", target))
	}
	if !tpl.Readable {
		return command.ErrInvalidTarget(fmt.Sprintf("There is nothing written on the %s.", tpl.Name))
	}

	exec.Send(core.CategoryGame, tpl.Text)
	return nil
}

// consumeItem removes the consumable from the inventory and applies its HP
// restore, clamped to max, in one transaction.
func consumeItem(ctx context.Context, exec *command.Execution, tpl *world.ItemTemplate) error {
	svc := exec.Services

	var healed int
	err := svc.Tx.InTransaction(ctx, func(ctx context.Context) error {
		p, err := svc.Players.Get(ctx, exec.Player.ID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		idx := p.FindInventoryItem(tpl.Name)
		if idx < 0 {
			return command.ErrInvalidTarget(fmt.Sprintf("You aren't carrying a %s.", tpl.Name))
		}
		p.RemoveInventoryItem(idx)

		before := p.HP
		p.HP += tpl.HPRestore
		p.ClampHP()
		healed = p.HP - before

		return svc.Players.Update(ctx, p)
	})
	if err != nil {
		return err
	}

	if healed > 0 {
		exec.Send(core.CategoryGame, fmt.Sprintf("You consume the %s and recover %d hp.", tpl.Name, healed))
	} else {
		exec.Send(core.CategoryGame, fmt.Sprintf("You consume the %s.", tpl.Name))
	}
	return nil
}
