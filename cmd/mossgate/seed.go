// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/mossgate/mossgate/internal/config"
	"github.com/mossgate/mossgate/internal/seeds"
	"github.com/mossgate/mossgate/internal/store"
	"github.com/mossgate/mossgate/internal/world/postgres"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	dir     string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load world content packs into the database",
		Long: `Loads every YAML content pack from the seeds directory: rooms, items,
NPC templates, and monster templates. The whole run is one transaction and
re-running it is idempotent; existing content is replaced in place.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.dir, "dir", "", "content pack directory (default: seeds_dir from config)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, cfg *seedConfig) error {
	appCfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if appCfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database url is required (set MOSSGATE_DATABASE_URL or database.url)")
	}
	dir := cfg.dir
	if dir == "" {
		dir = appCfg.SeedsDir
	}
	if dir == "" {
		return oops.Code("CONFIG_INVALID").Errorf("no content directory (pass --dir or set seeds_dir)")
	}

	// Bound the run so a wedged database cannot hang the command.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	st, err := store.Connect(ctx, appCfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(appCfg.Database.URL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		return err
	}
	if err := migrator.Close(); err != nil {
		slog.Warn("closing migrator", "error", err)
	}

	pool := st.Pool()
	loader := seeds.NewLoader(
		postgres.NewTransactor(pool),
		postgres.NewRoomRepository(pool),
		postgres.NewTemplateRepository(pool),
	)

	cmd.Printf("Loading content packs from %s...\n", dir)
	sum, err := loader.LoadDir(ctx, dir)
	if err != nil {
		return err
	}

	cmd.Printf("Applied %d packs: %d rooms, %d items, %d npcs, %d monsters\n",
		sum.Packs, sum.Rooms, sum.Items, sum.Npcs, sum.Monsters)
	cmd.Println("World seeding complete!")
	return nil
}
