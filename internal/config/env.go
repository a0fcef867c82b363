// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/replay/internal/log"
	"github.com/rs/zerolog"
)

// Environment keys.
const (
	EnvSocketURL         = "OBS_WEBSOCKET_URL"
	EnvNetworkPath       = "NETWORK_PATH"
	EnvUpload            = "UPLOAD"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogService        = "LOG_SERVICE"
	EnvListen            = "REPLAY_LISTEN"
	EnvReconnectInterval = "REPLAY_RECONNECT_INTERVAL"
	EnvShutdownTimeout   = "REPLAY_SHUTDOWN_TIMEOUT"
	EnvFFmpegBin         = "REPLAY_FFMPEG_BIN"
	EnvFFmpegTimeout     = "REPLAY_FFMPEG_TIMEOUT"
	EnvYouTubeClientID   = "YOUTUBE_CLIENT_ID"
	EnvYouTubeSecret     = "YOUTUBE_CLIENT_SECRET"
	EnvYouTubeRedirect   = "YOUTUBE_REDIRECT_URL"
	EnvYouTubePrivacy    = "YOUTUBE_PRIVACY"
	EnvTokenFile         = "REPLAY_TOKEN_FILE"
	EnvDeleteAfterUpload = "REPLAY_DELETE_AFTER_UPLOAD"
	EnvOTelEnabled       = "REPLAY_OTEL_ENABLED"
	EnvOTelServiceName   = "REPLAY_OTEL_SERVICE_NAME"
	EnvOTelExporter      = "REPLAY_OTEL_EXPORTER"
	EnvOTelEndpoint      = "REPLAY_OTEL_ENDPOINT"
	EnvOTelSamplingRate  = "REPLAY_OTEL_SAMPLING_RATE"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	switch {
	case !exists:
		logDefault(logger, key, defaultValue, "using default value")
		return defaultValue
	case value == "":
		logDefault(logger, key, defaultValue, "using default value (environment variable is empty)")
		return defaultValue
	case isSensitiveKey(key):
		// For sensitive vars, just log that it was set
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
	default:
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Str("source", "environment").
			Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	return parseTyped(key, defaultValue, "integer", strconv.Atoi)
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables and logs the choice.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseTyped(key, defaultValue, "duration", time.ParseDuration)
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseTyped(key, defaultValue, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseTyped(key, defaultValue, "boolean", parseBool)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

func parseTyped[T any](key string, defaultValue T, kind string, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		logDefault(logger, key, defaultValue, "using default value")
		return defaultValue
	}
	if v == "" {
		logDefault(logger, key, defaultValue, "using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msgf("invalid %s in environment variable, using default", kind)
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

func logDefault(logger zerolog.Logger, key string, defaultValue any, msg string) {
	logger.Debug().
		Str("key", key).
		Interface("default", defaultValue).
		Str("source", "default").
		Msg(msg)
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}
