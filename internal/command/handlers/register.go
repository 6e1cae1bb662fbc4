// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/intent"
)

// RegisterAll registers all command handlers with the registry.
func RegisterAll(reg *command.Registry) {
	reg.Register(command.Entry{
		Action:  intent.ActionLook,
		Handler: LookHandler,
		Help:    "Look at your surroundings",
		Usage:   "look",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionExamine,
		Handler: ExamineHandler,
		Help:    "Examine something closely",
		Usage:   "examine <target>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionGo,
		Handler: MoveHandler,
		Help:    "Travel through an exit",
		Usage:   "go <direction>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionGet,
		Handler: GetHandler,
		Help:    "Pick up an item",
		Usage:   "get <item>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionDrop,
		Handler: DropHandler,
		Help:    "Drop a carried item",
		Usage:   "drop <item>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionUse,
		Handler: UseHandler,
		Help:    "Use a carried item",
		Usage:   "use <item>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionDrink,
		Handler: DrinkHandler,
		Help:    "Drink a potion",
		Usage:   "drink <item>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionRead,
		Handler: ReadHandler,
		Help:    "Read something",
		Usage:   "read <item>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionSay,
		Handler: SayHandler,
		Help:    "Say something to the room",
		Usage:   "say <message>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionBuy,
		Handler: BuyHandler,
		Help:    "Buy an item from an NPC",
		Usage:   "buy <item> [from <npc>]",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionAttack,
		Handler: AttackHandler,
		Help:    "Attack a monster",
		Usage:   "attack <target> [with <verb>]",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionTalk,
		Handler: TalkHandler,
		Help:    "Talk to an NPC",
		Usage:   "talk to <npc>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionAskNpc,
		Handler: AskHandler,
		Help:    "Ask about a topic",
		Usage:   "ask <npc> about <topic>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionReply,
		Handler: ReplyHandler,
		Help:    "Continue a conversation",
		Usage:   "reply <message>",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionInventory,
		Handler: InventoryHandler,
		Help:    "List what you carry",
		Usage:   "inventory",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionWho,
		Handler: WhoHandler,
		Help:    "See who is online",
		Usage:   "who",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionScore,
		Handler: ScoreHandler,
		Help:    "Show level and score",
		Usage:   "score",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionStats,
		Handler: StatsHandler,
		Help:    "Show your attributes",
		Usage:   "stats",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionNews,
		Handler: NewsHandler,
		Help:    "Hear recent world news",
		Usage:   "news",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionHelp,
		Handler: HelpHandler,
		Help:    "Show this list",
		Usage:   "help",
	})
	reg.Register(command.Entry{
		Action:  intent.ActionLogout,
		Handler: LogoutHandler,
		Help:    "Leave the game",
		Usage:   "logout",
	})
}
