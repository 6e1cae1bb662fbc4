// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/mossgate/mossgate/internal/command"
)

// Server holds listen addresses for the player-facing and operational
// surfaces.
type Server struct {
	TelnetAddr    string `koanf:"telnet_addr"`
	WebSocketAddr string `koanf:"websocket_addr"`
	MetricsAddr   string `koanf:"metrics_addr"`
}

// Database holds the Postgres connection settings.
type Database struct {
	// URL is the pgx connection string. The MOSSGATE_DATABASE_URL
	// environment variable overrides it.
	URL string `koanf:"url"`
}

// Log holds structured logging settings.
type Log struct {
	Format string `koanf:"format"` // "json" or "text"
	Level  string `koanf:"level"`  // debug, info, warn, error
}

// Game holds the world rule knobs.
type Game struct {
	HomeRoomID        string  `koanf:"home_room_id"`
	DiscoveryBonus    int     `koanf:"discovery_bonus"`
	DeathGoldPenalty  float64 `koanf:"death_gold_penalty"`
	PvPEnabled        bool    `koanf:"pvp_enabled"`
	BaseXP            int     `koanf:"base_xp"`
	MaxLevel          int     `koanf:"max_level"`
	HPPerLevel        int     `koanf:"hp_per_level"`
	StatBonusInterval int     `koanf:"stat_bonus_interval"`
}

// AI holds settings for generated NPC dialogue. With an empty APIKey all
// AI-flagged NPCs fall back to their fixed lines.
type AI struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// RateLimit holds the per-player command rate limit.
type RateLimit struct {
	BurstCapacity int     `koanf:"burst_capacity"`
	SustainedRate float64 `koanf:"sustained_rate"`
}

// Config is the complete server configuration.
type Config struct {
	Server    Server              `koanf:"server"`
	Database  Database            `koanf:"database"`
	Log       Log                 `koanf:"log"`
	Game      Game                `koanf:"game"`
	AI        AI                  `koanf:"ai"`
	RateLimit RateLimit           `koanf:"rate_limit"`
	Emotes    []command.EmoteSpec `koanf:"emotes"`
	SeedsDir  string              `koanf:"seeds_dir"`
}

// Default returns the configuration used when no file or flag overrides a
// value.
func Default() *Config {
	return &Config{
		Server: Server{
			TelnetAddr:    ":4000",
			WebSocketAddr: ":4001",
			MetricsAddr:   "127.0.0.1:9100",
		},
		Log: Log{
			Format: "json",
			Level:  "info",
		},
		Game: Game{
			HomeRoomID:        "town-square",
			DiscoveryBonus:    15,
			DeathGoldPenalty:  0.25,
			PvPEnabled:        false,
			BaseXP:            100,
			MaxLevel:          50,
			HPPerLevel:        5,
			StatBonusInterval: 4,
		},
		AI: AI{
			Model: "gemini-2.0-flash",
		},
		RateLimit: RateLimit{
			BurstCapacity: command.DefaultBurstCapacity,
			SustainedRate: command.DefaultSustainedRate,
		},
		Emotes: command.DefaultEmotes(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// it exists, then any set flags. An empty path skips the file layer; a
// named file that is missing is an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE").Wrap(err)
	}

	if url := os.Getenv("MOSSGATE_DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if key := os.Getenv("MOSSGATE_AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log format must be \"json\" or \"text\", got %q", c.Log.Format)
	}
	if c.Game.HomeRoomID == "" {
		return fmt.Errorf("game home_room_id is required")
	}
	if c.Game.DeathGoldPenalty < 0 || c.Game.DeathGoldPenalty > 1 {
		return fmt.Errorf("game death_gold_penalty must be within [0, 1], got %g", c.Game.DeathGoldPenalty)
	}
	if c.Game.DiscoveryBonus < 0 {
		return fmt.Errorf("game discovery_bonus must not be negative")
	}
	if c.Game.BaseXP <= 0 {
		return fmt.Errorf("game base_xp must be positive")
	}
	if c.Game.MaxLevel < 1 {
		return fmt.Errorf("game max_level must be at least 1")
	}
	return nil
}
