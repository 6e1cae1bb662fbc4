// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

//go:build integration

package game_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/store"
	"github.com/mossgate/mossgate/internal/world"
	worldpg "github.com/mossgate/mossgate/internal/world/postgres"
)

func TestGame(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Game Engine Integration Suite")
}

// testEnv holds all resources needed for integration tests.
type testEnv struct {
	ctx       context.Context
	container testcontainers.Container
	pool      *pgxpool.Pool
	st        *store.Store

	Rooms     *worldpg.RoomRepository
	Players   *worldpg.PlayerRepository
	Templates *worldpg.TemplateRepository
	Monsters  *worldpg.MonsterRepository
	Tx        *worldpg.Transactor
	Events    *store.EventStore
}

var env *testEnv

var _ = BeforeSuite(func() {
	var err error
	env, err = setupGameTestEnv()
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if env != nil {
		env.cleanup()
	}
})

func setupGameTestEnv() (*testEnv, error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("mossgate_test"),
		postgres.WithUsername("mossgate"),
		postgres.WithPassword("mossgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := migrator.Close(); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	st, err := store.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	pool := st.Pool()
	return &testEnv{
		ctx:       ctx,
		container: container,
		pool:      pool,
		st:        st,
		Rooms:     worldpg.NewRoomRepository(pool),
		Players:   worldpg.NewPlayerRepository(pool),
		Templates: worldpg.NewTemplateRepository(pool),
		Monsters:  worldpg.NewMonsterRepository(pool),
		Tx:        worldpg.NewTransactor(pool),
		Events:    store.NewEventStore(pool),
	}, nil
}

func (e *testEnv) cleanup() {
	if e.st != nil {
		e.st.Close()
	}
	if e.container != nil {
		_ = e.container.Terminate(e.ctx)
	}
}

// Helper functions for creating test fixtures

func createTestPlayer(name, roomID string) *world.Player {
	return &world.Player{
		ID:           core.NewULID(),
		Name:         name,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		RoomID:       roomID,
		Money:        50,
		HP:           12,
		MaxHP:        12,
		Level:        1,
		Attributes:   world.Attributes{Str: 12, Dex: 10, Con: 12, Int: 10, Wis: 10, Cha: 10},
		VisitedRooms: []string{roomID},
		CreatedAt:    time.Now().UTC(),
	}
}
