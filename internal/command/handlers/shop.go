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

// BuyHandler purchases an item from an NPC in the room. Validation (seller
// present, item offered) runs against the snapshot; the funds check and the
// inventory change run inside the transaction against authoritative state.
func BuyHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.Target)
	if target == "" {
		return command.ErrInvalidArgs("buy", "buy <item> [from <npc>]")
	}
	svc := exec.Services

	room, err := svc.Rooms.Get(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("Something went wrong. Try again.", err)
	}

	seller, tpl, err := findSeller(svc.Snapshot, room, exec.Intent.NpcTarget, target)
	if err != nil {
		return err
	}

	err = svc.Tx.InTransaction(ctx, func(ctx context.Context) error {
		p, err := svc.Players.Get(ctx, exec.Player.ID)
		if err != nil {
			return command.WorldError("Something went wrong. Try again.", err)
		}
		if p.Money < tpl.Cost {
			return command.ErrInsufficientFunds(tpl.Name, tpl.Cost, p.Money)
		}
		p.Money -= tpl.Cost
		p.Inventory = append(p.Inventory, tpl.Snapshot())
		return svc.Players.Update(ctx, p)
	})
	if err != nil {
		return err
	}

	exec.Send(core.CategoryGame,
		fmt.Sprintf("You buy the %s from %s for %d gold.", tpl.Name, seller.ShortName, tpl.Cost))
	svc.Broadcaster.Broadcast(core.NewEvent(
		core.RoomStream(exec.Player.RoomID), core.CategoryAction, exec.Player.ID.String(),
		fmt.Sprintf("%s buys something from %s.", exec.Player.Name, seller.ShortName),
	))
	return nil
}

// findSeller locates the NPC to buy from. With an explicit NPC name it must
// be present and sell the item; without one, the first room NPC selling the
// item is used.
func findSeller(snapshot *world.Snapshot, room *world.Room, npcName, itemName string) (*world.NpcTemplate, *world.ItemTemplate, error) {
	if npcName != "" {
		npc := snapshot.FindNpcByName(room.NPCs, npcName)
		if npc == nil {
			return nil, nil, command.ErrInvalidTarget(fmt.Sprintf("There is no %s here.", npcName))
		}
		tpl := snapshot.FindItemByName(npc.Sells, itemName)
		if tpl == nil {
			return nil, nil, command.ErrInvalidTarget(
				fmt.Sprintf("%s doesn't sell a %s.", npc.ShortName, itemName))
		}
		return npc, tpl, nil
	}

	for _, npcID := range room.NPCs {
		npc := snapshot.Npc(npcID)
		if npc == nil {
			continue
		}
		if tpl := snapshot.FindItemByName(npc.Sells, itemName); tpl != nil {
			return npc, tpl, nil
		}
	}
	return nil, nil, command.ErrInvalidTarget(fmt.Sprintf("Nobody here sells a %s.", itemName))
}
