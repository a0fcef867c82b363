// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"
	"time"
)

func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src.OBS != nil {
		if src.OBS.URL != "" {
			dst.SocketURL = expandEnv(src.OBS.URL)
		}
		if src.OBS.NetworkPath != nil {
			dst.PathRemapPrefix = *src.OBS.NetworkPath
		}
	}
	if src.Upload != nil {
		dst.UploadEnabled = *src.Upload
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}

	if s := src.Server; s != nil {
		if s.Listen != nil {
			dst.ListenAddr = *s.Listen
		}
		if err := mergeDuration(&dst.ReconnectInterval, s.ReconnectInterval, "server.reconnectInterval"); err != nil {
			return err
		}
		if err := mergeDuration(&dst.ShutdownTimeout, s.ShutdownTimeout, "server.shutdownTimeout"); err != nil {
			return err
		}
	}

	if f := src.FFmpeg; f != nil {
		if f.Bin != "" {
			dst.FFmpeg.Bin = expandEnv(f.Bin)
		}
		if err := mergeDuration(&dst.FFmpeg.Timeout, f.Timeout, "ffmpeg.timeout"); err != nil {
			return err
		}
	}

	if y := src.YouTube; y != nil {
		setIfNotEmpty(&dst.YouTube.ClientID, expandEnv(y.ClientID))
		setIfNotEmpty(&dst.YouTube.ClientSecret, expandEnv(y.ClientSecret))
		setIfNotEmpty(&dst.YouTube.RedirectURL, y.RedirectURL)
		setIfNotEmpty(&dst.YouTube.TokenFile, expandEnv(y.TokenFile))
		setIfNotEmpty(&dst.YouTube.Privacy, y.Privacy)
		setIfNotEmpty(&dst.YouTube.CategoryID, y.CategoryID)
		setIfNotEmpty(&dst.YouTube.Description, y.Description)
		if y.Tags != nil {
			dst.YouTube.Tags = append([]string(nil), y.Tags...)
		}
		if y.DeleteAfterUpload != nil {
			dst.YouTube.DeleteAfterUpload = *y.DeleteAfterUpload
		}
	}

	if t := src.Telemetry; t != nil {
		if t.Enabled != nil {
			dst.Telemetry.Enabled = *t.Enabled
		}
		setIfNotEmpty(&dst.Telemetry.ServiceName, t.ServiceName)
		setIfNotEmpty(&dst.Telemetry.ExporterType, t.Exporter)
		setIfNotEmpty(&dst.Telemetry.Endpoint, t.Endpoint)
		if t.SamplingRate != nil {
			dst.Telemetry.SamplingRate = *t.SamplingRate
		}
	}
	return nil
}

func mergeDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// mergeEnvConfig applies environment overrides. Each key falls back to the
// value already resolved from defaults and file.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.SocketURL = l.envString(EnvSocketURL, cfg.SocketURL)
	if v, ok := l.envLookup(EnvNetworkPath); ok {
		cfg.PathRemapPrefix = v
	}
	cfg.UploadEnabled = l.envBool(EnvUpload, cfg.UploadEnabled)

	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.LogService = l.envString(EnvLogService, cfg.LogService)

	// An explicitly empty REPLAY_LISTEN disables the HTTP surface.
	if v, ok := l.envLookup(EnvListen); ok {
		cfg.ListenAddr = strings.TrimSpace(v)
	}
	cfg.ReconnectInterval = l.envDuration(EnvReconnectInterval, cfg.ReconnectInterval)
	cfg.ShutdownTimeout = l.envDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)

	cfg.FFmpeg.Bin = l.envString(EnvFFmpegBin, cfg.FFmpeg.Bin)
	cfg.FFmpeg.Timeout = l.envDuration(EnvFFmpegTimeout, cfg.FFmpeg.Timeout)

	cfg.YouTube.ClientID = l.envString(EnvYouTubeClientID, cfg.YouTube.ClientID)
	cfg.YouTube.ClientSecret = l.envString(EnvYouTubeSecret, cfg.YouTube.ClientSecret)
	cfg.YouTube.RedirectURL = l.envString(EnvYouTubeRedirect, cfg.YouTube.RedirectURL)
	cfg.YouTube.Privacy = l.envString(EnvYouTubePrivacy, cfg.YouTube.Privacy)
	cfg.YouTube.TokenFile = l.envString(EnvTokenFile, cfg.YouTube.TokenFile)
	cfg.YouTube.DeleteAfterUpload = l.envBool(EnvDeleteAfterUpload, cfg.YouTube.DeleteAfterUpload)

	cfg.Telemetry.Enabled = l.envBool(EnvOTelEnabled, cfg.Telemetry.Enabled)
	cfg.Telemetry.ServiceName = l.envString(EnvOTelServiceName, cfg.Telemetry.ServiceName)
	cfg.Telemetry.ExporterType = l.envString(EnvOTelExporter, cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString(EnvOTelEndpoint, cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat(EnvOTelSamplingRate, cfg.Telemetry.SamplingRate)
}
