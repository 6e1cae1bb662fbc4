// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/dialogue"
)

// TalkHandler opens a conversation with an NPC in the room.
func TalkHandler(ctx context.Context, exec *command.Execution) error {
	target := strings.TrimSpace(exec.Intent.NpcTarget)
	if target == "" {
		target = strings.TrimSpace(exec.Intent.Target)
	}
	if target == "" {
		return command.ErrInvalidArgs("talk", "talk to <npc>")
	}
	svc := exec.Services

	room, err := svc.Rooms.Get(ctx, exec.Player.RoomID)
	if err != nil {
		return command.WorldError("Something went wrong. Try again.", err)
	}
	npc := svc.Snapshot.FindNpcByName(room.NPCs, target)
	if npc == nil {
		return command.ErrInvalidTarget(fmt.Sprintf("There is no %s here to talk to.", target))
	}

	reply, err := svc.Dialogue.Talk(ctx, exec.Player, npc)
	if err != nil {
		return err
	}
	renderReply(exec, reply)
	return nil
}

// AskHandler asks the NPC you are talking to about a topic.
func AskHandler(ctx context.Context, exec *command.Execution) error {
	topic := strings.TrimSpace(exec.Intent.Topic)
	if topic == "" {
		return command.ErrInvalidArgs("ask", "ask <npc> about <topic>")
	}

	reply, err := exec.Services.Dialogue.Ask(ctx, exec.Player, topic)
	if err != nil {
		return err
	}
	renderReply(exec, reply)
	return nil
}

// ReplyHandler continues the active conversation with free-form text. The
// dispatcher also routes unparseable input here while a conversation is
// open.
func ReplyHandler(ctx context.Context, exec *command.Execution) error {
	text := strings.TrimSpace(exec.Intent.Topic)
	if text == "" {
		text = strings.TrimSpace(exec.Intent.Target)
	}
	if text == "" {
		return command.ErrInvalidArgs("reply", "reply <message>")
	}

	reply, err := exec.Services.Dialogue.ReplyTo(ctx, exec.Player, text)
	if err != nil {
		return err
	}
	renderReply(exec, reply)
	return nil
}

// renderReply writes mediated NPC output: actions as narration, speech
// attributed to the NPC, then any item grants.
func renderReply(exec *command.Execution, reply *dialogue.Reply) {
	for _, seg := range reply.Segments {
		switch seg.Kind {
		case dialogue.SegmentSpeech:
			exec.Send(core.CategoryNpc, fmt.Sprintf("%s says, \"%s\"", reply.NpcName, seg.Text))
		default:
			exec.Send(core.CategoryNpc, fmt.Sprintf("%s %s", reply.NpcName, seg.Text))
		}
	}
	for _, name := range reply.GrantedItems {
		exec.Send(core.CategoryGame, fmt.Sprintf("%s hands you a %s.", reply.NpcName, name))
	}
}
