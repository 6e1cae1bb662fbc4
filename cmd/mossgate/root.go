// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Mossgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mossgate",
		Short: "Mossgate - a persistent multiplayer text adventure",
		Long: `Mossgate is a persistent multiplayer text adventure server with
rooms, combat, NPC dialogue, and dual protocol support (telnet + websocket).`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewValidateSeedsCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
