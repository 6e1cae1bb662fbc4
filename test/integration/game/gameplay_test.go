// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

//go:build integration

package game_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/samber/oops"

	"github.com/mossgate/mossgate/internal/auth"
	"github.com/mossgate/mossgate/internal/combat"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/progression"
	"github.com/mossgate/mossgate/internal/seeds"
	"github.com/mossgate/mossgate/internal/spawn"
	"github.com/mossgate/mossgate/internal/world"
)

func cleanupWorld(ctx context.Context, env *testEnv) {
	_, err := env.pool.Exec(ctx,
		`TRUNCATE monster_instances, players, events, rooms,
		 item_templates, npc_templates, monster_templates CASCADE`)
	Expect(err).NotTo(HaveOccurred())
}

func seedArena(ctx context.Context, env *testEnv) {
	Expect(env.Tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := env.Rooms.Upsert(ctx, &world.Room{
			ID:          "town-square",
			Name:        "Town Square",
			Description: "The mossy heart of the town.",
			Exits:       map[world.Direction]string{world.North: "cave"},
		}); err != nil {
			return err
		}
		if err := env.Rooms.Upsert(ctx, &world.Room{
			ID:          "cave",
			Name:        "Dripping Cave",
			Description: "Dark and wet.",
			Exits:       map[world.Direction]string{world.South: "town-square"},
			Spawns: []world.SpawnSlot{
				{MonsterID: "rat", RespawnInterval: time.Hour},
			},
		}); err != nil {
			return err
		}
		return env.Templates.UpsertMonster(ctx, &world.MonsterTemplate{
			ID:         "rat",
			Name:       "Giant Rat",
			HP:         8,
			MinAtk:     1,
			MaxAtk:     3,
			XPReward:   10,
			GoldReward: 2,
			Newsworthy: true,
		})
	})).To(Succeed())
}

var _ = Describe("Content seeding", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupWorld(ctx, env)
	})

	It("applies a content pack and re-applies it idempotently", func() {
		loader := seeds.NewLoader(env.Tx, env.Rooms, env.Templates)
		pack, err := seeds.ParsePack([]byte(`
format: "1.0.0"
name: starter
rooms:
  - id: town-square
    name: Town Square
    description: The mossy heart of the town.
    items: [torch]
items:
  - id: torch
    name: Torch
    cost: 5
    movable: true
`))
		Expect(err).NotTo(HaveOccurred())

		sum, err := loader.Apply(ctx, []*seeds.Pack{pack})
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Rooms).To(Equal(1))
		Expect(sum.Items).To(Equal(1))

		_, err = loader.Apply(ctx, []*seeds.Pack{pack})
		Expect(err).NotTo(HaveOccurred())

		room, err := env.Rooms.Get(ctx, "town-square")
		Expect(err).NotTo(HaveOccurred())
		Expect(room.Items).To(Equal([]string{"torch"}))
	})

	It("rejects a pack referencing unknown content without writing anything", func() {
		loader := seeds.NewLoader(env.Tx, env.Rooms, env.Templates)
		pack, err := seeds.ParsePack([]byte(`
format: "1.0.0"
name: broken
rooms:
  - id: town-square
    name: Town Square
    description: The square.
    items: [no-such-item]
`))
		Expect(err).NotTo(HaveOccurred())

		_, err = loader.Apply(ctx, []*seeds.Pack{pack})
		Expect(err).To(HaveOccurred())

		_, err = env.Rooms.Get(ctx, "town-square")
		Expect(err).To(MatchError(world.ErrNotFound))
	})
})

var _ = Describe("Account lifecycle", func() {
	var (
		ctx context.Context
		svc *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		cleanupWorld(ctx, env)
		seedArena(ctx, env)
		svc = auth.NewService(env.Players, env.Tx, auth.NewArgon2idHasher(), auth.DefaultConfig("town-square"))
	})

	It("signs up a character and logs in with the same password", func() {
		created, err := svc.Signup(ctx, "Wren", "hunter two")
		Expect(err).NotTo(HaveOccurred())
		Expect(created.RoomID).To(Equal("town-square"))
		Expect(created.Level).To(Equal(1))

		got, err := svc.Login(ctx, "wren", "hunter two")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(created.ID))
	})

	It("refuses duplicate names across concurrent signups", func() {
		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Signup(ctx, "Moss Warden", "secret pass")
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			// Losers must hear the name is taken, whether the race
			// surfaced as a serialization failure or a duplicate key.
			oopsErr, ok := oops.AsOops(err)
			Expect(ok).To(BeTrue())
			Expect(oopsErr.Code()).To(Equal(auth.CodeNameTaken))
		}
		Expect(succeeded).To(Equal(1))
	})
})

var _ = Describe("Spawning", func() {
	var (
		ctx       context.Context
		scheduler *spawn.Scheduler
	)

	BeforeEach(func() {
		ctx = context.Background()
		cleanupWorld(ctx, env)
		seedArena(ctx, env)
		scheduler = spawn.NewScheduler(env.Rooms, env.Monsters, env.Templates, env.Tx, core.NewBroadcaster())
	})

	It("spawns at most one instance per slot under concurrent room entry", func() {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				scheduler.OnRoomEntry(ctx, "cave")
			}()
		}
		wg.Wait()

		instances, err := env.Monsters.ListByRoom(ctx, "cave")
		Expect(err).NotTo(HaveOccurred())
		Expect(instances).To(HaveLen(1))
		Expect(instances[0].MonsterID).To(Equal("rat"))
	})

	It("does not re-arm a slot before its respawn interval elapses", func() {
		spawned := scheduler.OnRoomEntry(ctx, "cave")
		Expect(spawned).To(HaveLen(1))

		Expect(env.Monsters.Delete(ctx, spawned[0].ID)).To(Succeed())
		Expect(env.Rooms.StampSpawn(ctx, "cave", "rat", time.Now().UTC())).To(Succeed())

		Expect(scheduler.OnRoomEntry(ctx, "cave")).To(BeEmpty())
	})
})

var _ = Describe("Combat and progression", func() {
	var (
		ctx      context.Context
		resolver *combat.Resolver
		prog     *progression.Engine
		player   *world.Player
		rat      *world.MonsterInstance
	)

	BeforeEach(func() {
		ctx = context.Background()
		cleanupWorld(ctx, env)
		seedArena(ctx, env)

		broadcaster := core.NewBroadcaster()
		prog = progression.NewEngine(env.Players, env.Tx, broadcaster, progression.Curve{
			BaseXP:            10,
			MaxLevel:          5,
			HPPerLevel:        5,
			StatBonusInterval: 4,
		})
		resolver = combat.NewResolver(env.Players, env.Monsters, env.Rooms, env.Templates, env.Tx,
			prog, broadcaster, env.Events, combat.Config{
				HomeRoomID:       "town-square",
				DeathGoldPenalty: 0.25,
			})
		resolver.SetDice(func(n int) int { return n - 1 })

		player = createTestPlayer("Wren", "cave")
		Expect(env.Players.Create(ctx, player)).To(Succeed())

		scheduler := spawn.NewScheduler(env.Rooms, env.Monsters, env.Templates, env.Tx, broadcaster)
		spawned := scheduler.OnRoomEntry(ctx, "cave")
		Expect(spawned).To(HaveLen(1))
		rat = spawned[0]
	})

	It("kills a monster, pays out rewards, and stamps the spawn slot", func() {
		var outcome *combat.Outcome
		Eventually(func() bool {
			var err error
			outcome, err = resolver.AttackMonster(ctx, player.ID, rat.ID, "")
			Expect(err).NotTo(HaveOccurred())
			return outcome.TargetDied
		}).WithTimeout(5 * time.Second).Should(BeTrue())

		Expect(outcome.XPGained).To(Equal(10))
		Expect(outcome.GoldGained).To(Equal(2))

		_, err := env.Monsters.Get(ctx, rat.ID)
		Expect(err).To(MatchError(world.ErrNotFound))

		room, err := env.Rooms.Get(ctx, "cave")
		Expect(err).NotTo(HaveOccurred())
		Expect(room.Spawns[0].LastDefeatedAt).NotTo(BeZero())

		updated, err := env.Players.Get(ctx, player.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Money).To(Equal(52))
		Expect(updated.XP).To(Equal(10))
	})

	It("records newsworthy kills on the world stream", func() {
		Eventually(func() bool {
			outcome, err := resolver.AttackMonster(ctx, player.ID, rat.ID, "")
			Expect(err).NotTo(HaveOccurred())
			return outcome.TargetDied
		}).WithTimeout(5 * time.Second).Should(BeTrue())

		events, err := env.Events.Recent(ctx, core.StreamWorld, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(events).NotTo(BeEmpty())
		Expect(events[0].Text).To(ContainSubstring("Giant Rat"))
	})

	It("levels the player up once their XP crosses the threshold", func() {
		Expect(env.Tx.InTransaction(ctx, func(ctx context.Context) error {
			p, err := env.Players.Get(ctx, player.ID)
			if err != nil {
				return err
			}
			p.XP = 1000
			return env.Players.Update(ctx, p)
		})).To(Succeed())

		gained, err := prog.CheckLevelUp(ctx, player.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(gained).To(BeNumerically(">", 0))

		leveled, err := env.Players.Get(ctx, player.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(leveled.Level).To(Equal(5))
		Expect(leveled.MaxHP).To(BeNumerically(">", player.MaxHP))
		Expect(leveled.HP).To(Equal(leveled.MaxHP))
	})
})
