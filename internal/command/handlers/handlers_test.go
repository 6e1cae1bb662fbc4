// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mossgate/mossgate/internal/combat"
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/dialogue"
	"github.com/mossgate/mossgate/internal/intent"
	"github.com/mossgate/mossgate/internal/progression"
	"github.com/mossgate/mossgate/internal/spawn"
	"github.com/mossgate/mossgate/internal/world"
	"github.com/mossgate/mossgate/internal/world/worldtest"
)

// captureSink records output lines for assertions.
type captureSink struct {
	lines []core.Line
}

func (s *captureSink) Send(line core.Line) {
	s.lines = append(s.lines, line)
}

func (s *captureSink) text() string {
	var sb strings.Builder
	for _, l := range s.lines {
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

type testWorld struct {
	store    *worldtest.Store
	services *command.Services
	sink     *captureSink
	player   *world.Player
}

// newTestWorld builds a two-room world with a shopkeeper, a potion, a
// torch on the floor, and a rat spawn slot in the cave.
func newTestWorld(t *testing.T) *testWorld {
	t.Helper()

	store := worldtest.NewStore()

	store.AddRoom(&world.Room{
		ID:          "town-square",
		Name:        "Town Square",
		Description: "A mossy square.",
		Exits:       map[world.Direction]string{world.North: "cave"},
		Items:       []string{"torch"},
		NPCs:        []string{"shopkeeper"},
		Details:     map[string]string{"fountain": "Water trickles over old stone."},
	})
	store.AddRoom(&world.Room{
		ID:          "cave",
		Name:        "Dripping Cave",
		Description: "It is dark here.",
		Exits:       map[world.Direction]string{world.South: "town-square"},
		Spawns:      []world.SpawnSlot{{MonsterID: "rat"}},
	})

	store.AddItemTemplate(&world.ItemTemplate{
		ID: "torch", Name: "Torch", Movable: true,
	})
	store.AddItemTemplate(&world.ItemTemplate{
		ID: "potion", Name: "Potion", Cost: 10, Movable: true, Consumable: true, HPRestore: 5,
	})
	store.AddItemTemplate(&world.ItemTemplate{
		ID: "anvil", Name: "Anvil", Movable: false,
	})
	store.AddNpcTemplate(&world.NpcTemplate{
		ID: "shopkeeper", ShortName: "Shopkeeper", Name: "Marta the Shopkeeper",
		Dialogue: []string{"Welcome!"}, Sells: []string{"potion"},
	})
	store.AddMonsterTemplate(&world.MonsterTemplate{
		ID: "rat", Name: "Giant Rat", HP: 10, MinAtk: 1, MaxAtk: 2, XPReward: 25,
	})

	snapshot := world.NewSnapshot(store.Rooms(), store.Templates())
	require.NoError(t, snapshot.Load(context.Background()))

	player := &world.Player{
		ID: core.NewULID(), Name: "Wren", RoomID: "town-square",
		HP: 18, MaxHP: 20, Money: 15, Level: 1,
		VisitedRooms: []string{"town-square"},
		Attributes:   world.Attributes{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10},
	}
	store.AddPlayer(player)

	sessions := core.NewSessionManager()
	sessions.Connect(player.ID, player.Name)

	broadcaster := core.NewBroadcaster()
	prog := progression.NewEngine(store.Players(), store, broadcaster, progression.DefaultCurve())
	resolver := combat.NewResolver(
		store.Players(), store.Monsters(), store.Rooms(), store.Templates(),
		store, prog, broadcaster, nil,
		combat.Config{HomeRoomID: "town-square", DeathGoldPenalty: 0.25},
	)
	scheduler := spawn.NewScheduler(store.Rooms(), store.Monsters(), store.Templates(), store, broadcaster)
	mediator := dialogue.NewMediator(sessions, store.Players(), store.Templates(), store, nil)

	registry := command.NewRegistry()
	RegisterAll(registry)

	services := &command.Services{
		Rooms:          store.Rooms(),
		Players:        store.Players(),
		Monsters:       store.Monsters(),
		Templates:      store.Templates(),
		Snapshot:       snapshot,
		Tx:             store,
		Sessions:       sessions,
		Broadcaster:    broadcaster,
		Combat:         resolver,
		Progression:    prog,
		Spawner:        scheduler,
		Dialogue:       mediator,
		Registry:       registry,
		DiscoveryBonus: 15,
	}

	return &testWorld{store: store, services: services, sink: &captureSink{}, player: player}
}

// exec builds an execution with a freshly loaded player.
func (w *testWorld) exec(t *testing.T, it intent.Intent) *command.Execution {
	t.Helper()
	p, err := w.store.Players().Get(context.Background(), w.player.ID)
	require.NoError(t, err)
	return &command.Execution{
		Player:   p,
		Intent:   it,
		Session:  w.services.Sessions.Get(w.player.ID),
		Sink:     w.sink,
		Services: w.services,
	}
}

func (w *testWorld) reload(t *testing.T) *world.Player {
	t.Helper()
	p, err := w.store.Players().Get(context.Background(), w.player.ID)
	require.NoError(t, err)
	return p
}
