// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command replay watches OBS over its websocket and publishes finished
// recordings to YouTube.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/replay/internal/config"
	"github.com/ManuGH/replay/internal/daemon"
	"github.com/ManuGH/replay/internal/health"
	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/telemetry"
	"github.com/ManuGH/replay/internal/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "auth" {
		os.Exit(runAuthCLI(os.Args[2:]))
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until config is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: config.DefaultLogService,
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = xglog.WithComponent("daemon")
	logger.Info().
		Str(xglog.FieldEvent, "config.loaded").
		Str("path", path).
		Msg("configuration loaded")
	logger.Debug().Interface("config", config.MaskSecrets(cfg)).Msg("effective configuration")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(xglog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed")
	}

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version.Version,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Str(xglog.FieldEvent, "telemetry.init_failed").Msg("failed to initialise tracing")
	}

	c := build(ctx, cfg, version.Version)

	manager, err := daemon.NewManager(daemon.Config{
		ListenAddr:        cfg.ListenAddr,
		ReconnectInterval: cfg.ReconnectInterval,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}, daemon.Deps{
		Logger:     logger,
		Session:    c.tracker,
		Channel:    c.channel,
		Jobs:       c.pipeline,
		APIHandler: c.handler,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create daemon manager")
	}
	manager.RegisterShutdownHook("telemetry", provider.Shutdown)

	if err := manager.Start(ctx); err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		os.Exit(1)
	}
}
