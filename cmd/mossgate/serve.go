// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mossgate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/mossgate/mossgate/internal/auth"
	"github.com/mossgate/mossgate/internal/combat"
	"github.com/mossgate/mossgate/internal/command"
	"github.com/mossgate/mossgate/internal/command/handlers"
	"github.com/mossgate/mossgate/internal/config"
	"github.com/mossgate/mossgate/internal/core"
	"github.com/mossgate/mossgate/internal/dialogue"
	"github.com/mossgate/mossgate/internal/gateway"
	"github.com/mossgate/mossgate/internal/intent"
	"github.com/mossgate/mossgate/internal/logging"
	"github.com/mossgate/mossgate/internal/observability"
	"github.com/mossgate/mossgate/internal/progression"
	"github.com/mossgate/mossgate/internal/spawn"
	"github.com/mossgate/mossgate/internal/store"
	"github.com/mossgate/mossgate/internal/telnet"
	"github.com/mossgate/mossgate/internal/world"
	"github.com/mossgate/mossgate/internal/world/postgres"
)

// shutdownTimeout bounds how long graceful shutdown may take.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long: `Start the game server: telnet and websocket listeners, the command
dispatcher, and the metrics endpoint. Pending database migrations are
applied on startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("server.telnet_addr", "", "telnet listen address")
	flags.String("server.websocket_addr", "", "websocket listen address")
	flags.String("server.metrics_addr", "", "metrics/health HTTP address")
	flags.String("log.format", "", "log format (json or text)")
	flags.String("log.level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database url is required (set MOSSGATE_DATABASE_URL or database.url)")
	}

	logging.SetDefault("mossgate", version, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"telnet_addr", cfg.Server.TelnetAddr,
		"websocket_addr", cfg.Server.WebSocketAddr,
		"version", version)

	st, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()
	slog.Info("connected to database")

	migrator, err := store.NewMigrator(cfg.Database.URL)
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
	rooms := postgres.NewRoomRepository(pool)
	players := postgres.NewPlayerRepository(pool)
	templates := postgres.NewTemplateRepository(pool)
	monsters := postgres.NewMonsterRepository(pool)
	tx := postgres.NewTransactor(pool)
	events := store.NewEventStore(pool)

	snapshot := world.NewSnapshot(rooms, templates)
	if err := snapshot.Load(ctx); err != nil {
		return err
	}
	listener := postgres.NewListener(pool, func(ctx context.Context, payload string) {
		if err := snapshot.Refresh(ctx, payload); err != nil {
			slog.Warn("snapshot refresh failed", "payload", payload, "error", err)
		}
	})

	obsServer := observability.NewServer(cfg.Server.MetricsAddr, func() bool { return true })
	metrics := obsServer.Metrics()
	command.RegisterMetrics(obsServer.Registry())

	sessions := core.NewSessionManager()
	broadcaster := core.NewBroadcaster()

	prog := progression.NewEngine(players, tx, broadcaster, progression.Curve{
		BaseXP:            cfg.Game.BaseXP,
		MaxLevel:          cfg.Game.MaxLevel,
		HPPerLevel:        cfg.Game.HPPerLevel,
		StatBonusInterval: cfg.Game.StatBonusInterval,
	})
	resolver := combat.NewResolver(players, monsters, rooms, templates, tx, prog, broadcaster, events, combat.Config{
		HomeRoomID:       cfg.Game.HomeRoomID,
		DeathGoldPenalty: cfg.Game.DeathGoldPenalty,
		PvPEnabled:       cfg.Game.PvPEnabled,
	})
	spawner := spawn.NewScheduler(rooms, monsters, templates, tx, broadcaster)

	var generator dialogue.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := dialogue.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return err
		}
		defer func() {
			if err := gemini.Close(); err != nil {
				slog.Warn("closing dialogue generator", "error", err)
			}
		}()
		generator = gemini
		slog.Info("dialogue generator ready", "model", cfg.AI.Model)
	} else {
		slog.Info("no AI API key configured, AI NPCs use canned responses")
	}
	mediator := dialogue.NewMediator(sessions, players, templates, tx, generator)

	services := &command.Services{
		Rooms:          rooms,
		Players:        players,
		Monsters:       monsters,
		Templates:      templates,
		Snapshot:       snapshot,
		Tx:             tx,
		Sessions:       sessions,
		Broadcaster:    broadcaster,
		Events:         events,
		Combat:         resolver,
		Progression:    prog,
		Spawner:        spawner,
		Dialogue:       mediator,
		DiscoveryBonus: cfg.Game.DiscoveryBonus,
	}

	registry := command.NewRegistry()
	handlers.RegisterAll(registry)
	services.Registry = registry

	emotes, err := command.NewEmoteTable(cfg.Emotes)
	if err != nil {
		return err
	}
	limiter := command.NewRateLimiterWithRegistry(command.RateLimiterConfig{
		BurstCapacity: cfg.RateLimit.BurstCapacity,
		SustainedRate: cfg.RateLimit.SustainedRate,
	}, obsServer.Registry())
	defer limiter.Close()

	dispatcher, err := command.NewDispatcher(registry, intent.NewRuleParser(),
		command.WithEmoteTable(emotes),
		command.WithRateLimiter(limiter))
	if err != nil {
		return err
	}

	authSvc := auth.NewService(players, tx, auth.NewArgon2idHasher(), auth.DefaultConfig(cfg.Game.HomeRoomID))

	telnetSrv := telnet.NewServer(cfg.Server.TelnetAddr, telnet.Deps{
		Auth:       authSvc,
		Dispatcher: dispatcher,
		Services:   services,
		Metrics:    metrics,
	})
	wsSrv := gateway.NewServer(cfg.Server.WebSocketAddr, gateway.Deps{
		Auth:       authSvc,
		Dispatcher: dispatcher,
		Services:   services,
		Metrics:    metrics,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}
	go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	slog.Info("observability server started", "addr", obsServer.Addr())

	errCh := make(chan error, 3)
	go func() {
		if err := listener.Run(ctx); err != nil {
			errCh <- oops.With("server", "world-listener").Wrap(err)
		}
	}()
	go func() {
		if err := telnetSrv.Run(ctx); err != nil {
			errCh <- oops.With("server", "telnet").Wrap(err)
		}
	}()
	go func() {
		if err := wsSrv.Run(ctx); err != nil {
			errCh <- oops.With("server", "websocket").Wrap(err)
		}
	}()

	cmd.Println("Server started")
	slog.Info("server ready",
		"telnet_addr", telnetSrv.Addr(),
		"websocket_addr", wsSrv.Addr())

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		slog.Error("server failed", "error", err)
		cancel()
		drainShutdown(obsServer)
		return err
	}

	drainShutdown(obsServer)
	slog.Info("shutdown complete")
	return nil
}

func drainShutdown(obsServer *observability.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}
}

// monitorServerErrors cancels the serve context when a background server
// reports an error. It exits when the channel closes or ctx is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
