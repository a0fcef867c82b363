// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ManuGH/replay/internal/config"
	"github.com/ManuGH/replay/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the runtime environment before the daemon
// starts. Missing optional pieces are logged as warnings.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if cfg.UploadEnabled {
		bin := strings.TrimSpace(cfg.FFmpeg.Bin)
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("ffmpeg binary not found (%s): %w", bin, err)
		}
		logger.Info().Str("ffmpeg", bin).Msg("ffmpeg available")
	}

	if err := checkTokenDir(logger, cfg.YouTube.TokenFile); err != nil {
		return fmt.Errorf("token file check failed: %w", err)
	}

	if cfg.PathRemapPrefix != "" {
		logger.Info().Str(log.FieldPath, cfg.PathRemapPrefix).Msg("recording paths will be remapped")
	}
	if cfg.ListenAddr == "" {
		logger.Warn().Msg("HTTP surface disabled; recording can only be controlled from OBS")
	}
	return nil
}

func checkTokenDir(logger zerolog.Logger, tokenFile string) error {
	dir := filepath.Dir(tokenFile)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		logger.Warn().Str(log.FieldPath, tokenFile).Msg("no YouTube token yet; run: replay auth")
	}
	return nil
}
