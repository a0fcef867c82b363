// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the fully resolved configuration.
type AppConfig struct {
	Version string

	SocketURL       string
	PathRemapPrefix string
	UploadEnabled   bool

	LogLevel   string
	LogService string

	ListenAddr        string
	ReconnectInterval time.Duration
	ShutdownTimeout   time.Duration

	FFmpeg    FFmpegConfig
	YouTube   YouTubeConfig
	Telemetry TelemetryConfig
}

// FFmpegConfig configures frame extraction.
type FFmpegConfig struct {
	Bin     string
	Timeout time.Duration
}

// YouTubeConfig configures the OAuth client and upload metadata.
type YouTubeConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	TokenFile         string
	Privacy           string
	CategoryID        string
	Tags              []string
	Description       string
	DeleteAfterUpload bool
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	ExporterType string // grpc | http
	Endpoint     string
	SamplingRate float64
}

// Core is the resolved subset the session core consumes.
type Core struct {
	SocketURL       string
	PathRemapPrefix string
	UploadEnabled   bool
}

// Core returns the values the session tracker needs.
func (c AppConfig) Core() Core {
	return Core{
		SocketURL:       c.SocketURL,
		PathRemapPrefix: c.PathRemapPrefix,
		UploadEnabled:   c.UploadEnabled,
	}
}

// FileConfig mirrors the YAML file. Pointer fields distinguish "unset" from
// an explicit zero value.
type FileConfig struct {
	OBS        *OBSFileConfig       `yaml:"obs,omitempty"`
	Upload     *bool                `yaml:"upload,omitempty"`
	LogLevel   string               `yaml:"logLevel,omitempty"`
	LogService string               `yaml:"logService,omitempty"`
	Server     *ServerFileConfig    `yaml:"server,omitempty"`
	FFmpeg     *FFmpegFileConfig    `yaml:"ffmpeg,omitempty"`
	YouTube    *YouTubeFileConfig   `yaml:"youtube,omitempty"`
	Telemetry  *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// OBSFileConfig is the obs: block.
type OBSFileConfig struct {
	URL         string  `yaml:"url,omitempty"`
	NetworkPath *string `yaml:"networkPath,omitempty"`
}

// ServerFileConfig is the server: block.
type ServerFileConfig struct {
	Listen            *string `yaml:"listen,omitempty"`
	ReconnectInterval string  `yaml:"reconnectInterval,omitempty"`
	ShutdownTimeout   string  `yaml:"shutdownTimeout,omitempty"`
}

// FFmpegFileConfig is the ffmpeg: block.
type FFmpegFileConfig struct {
	Bin     string `yaml:"bin,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// YouTubeFileConfig is the youtube: block.
type YouTubeFileConfig struct {
	ClientID          string   `yaml:"clientId,omitempty"`
	ClientSecret      string   `yaml:"clientSecret,omitempty"`
	RedirectURL       string   `yaml:"redirectUrl,omitempty"`
	TokenFile         string   `yaml:"tokenFile,omitempty"`
	Privacy           string   `yaml:"privacy,omitempty"`
	CategoryID        string   `yaml:"categoryId,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	Description       string   `yaml:"description,omitempty"`
	DeleteAfterUpload *bool    `yaml:"deleteAfterUpload,omitempty"`
}

// TelemetryFileConfig is the telemetry: block.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	ServiceName  string   `yaml:"serviceName,omitempty"`
	Exporter     string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
