// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mossgate/mossgate/internal/config"
	"github.com/mossgate/mossgate/internal/seeds"
)

// NewValidateSeedsCmd creates the validate-seeds subcommand.
func NewValidateSeedsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate-seeds",
		Short: "Validate world content packs without starting the server",
		Long: `Parses and cross-checks every YAML content pack in the seeds directory.
Does NOT start the server or require a database connection.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch content errors early:
  mossgate validate-seeds --dir seeds/`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runValidateSeeds(dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "content pack directory (default: seeds_dir from config)")

	return cmd
}

func runValidateSeeds(dir string) error {
	if dir == "" {
		cfg, err := config.Load(configFile, nil)
		if err != nil {
			return err
		}
		dir = cfg.SeedsDir
	}
	if dir == "" {
		return fmt.Errorf("no content directory (pass --dir or set seeds_dir)")
	}

	issues, err := seeds.ValidateDir(dir)
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		for _, issue := range issues {
			slog.Error("content validation failed", "detail", issue.String())
		}
		return fmt.Errorf("validation failed: %d problems in %s", len(issues), dir)
	}

	slog.Info("all content packs valid", "dir", dir)
	return nil
}
