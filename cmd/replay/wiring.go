// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"net/http"

	"github.com/ManuGH/replay/internal/api"
	"github.com/ManuGH/replay/internal/config"
	"github.com/ManuGH/replay/internal/control"
	"github.com/ManuGH/replay/internal/health"
	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/media/ffmpeg"
	"github.com/ManuGH/replay/internal/obsws"
	"github.com/ManuGH/replay/internal/publish"
	"github.com/ManuGH/replay/internal/session"
	"github.com/ManuGH/replay/internal/status"
	"github.com/ManuGH/replay/internal/youtube"
)

const (
	statusYouTubeReady   = "YouTube ready"
	statusYouTubeMissing = "YouTube not authenticated"
)

// components is the fully wired object graph of one daemon process.
type components struct {
	board      *status.Latest
	channel    *obsws.Channel
	tracker    *session.Tracker
	pipeline   *publish.Pipeline
	dispatcher *control.Dispatcher
	health     *health.Manager
	handler    http.Handler
	cred       *youtube.Credential
}

func youtubeConfig(cfg config.AppConfig) youtube.Config {
	return youtube.Config{
		ClientID:     cfg.YouTube.ClientID,
		ClientSecret: cfg.YouTube.ClientSecret,
		RedirectURL:  cfg.YouTube.RedirectURL,
		TokenFile:    cfg.YouTube.TokenFile,
	}
}

// build wires every component from cfg. The credential is loaded exactly once.
func build(ctx context.Context, cfg config.AppConfig, buildVersion string) *components {
	board := status.NewLatest()
	sink := status.Fanout{status.LogSink{Logger: xglog.WithComponent("status")}, board}

	yt := youtube.NewClient(youtubeConfig(cfg))
	cred := yt.LoadCredential(ctx)
	if cred.Present() {
		sink.Publish(statusYouTubeReady)
	} else {
		sink.Publish(statusYouTubeMissing)
	}

	extractor := ffmpeg.NewExtractor(cfg.FFmpeg.Bin, cfg.FFmpeg.Timeout)
	pipeline := publish.New(extractor, yt, yt,
		publish.WithStatusSink(sink),
		publish.WithDeleteSource(cfg.YouTube.DeleteAfterUpload),
		publish.WithMetadata(publish.Metadata{
			Description: cfg.YouTube.Description,
			Tags:        cfg.YouTube.Tags,
			CategoryID:  cfg.YouTube.CategoryID,
			Privacy:     cfg.YouTube.Privacy,
		}),
	)

	channel := obsws.NewChannel(obsws.WithStatusSink(sink))
	core := cfg.Core()
	tracker := session.NewTracker(session.Config{
		SocketURL:       core.SocketURL,
		PathRemapPrefix: core.PathRemapPrefix,
		UploadEnabled:   core.UploadEnabled,
	}, session.ChannelConnector(channel), pipeline, cred, session.WithStatusSink(sink))

	dispatcher := control.NewDispatcher(channel)

	hm := health.NewManager(buildVersion)
	hm.RegisterChecker(health.NewControlPlaneChecker(
		func() string { return tracker.Snapshot().Connection.String() },
		func() bool { return tracker.Snapshot().Connection == session.Identified },
	))
	hm.RegisterChecker(health.NewCredentialChecker(cred.Present))

	c := &components{
		board:      board,
		channel:    channel,
		tracker:    tracker,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		health:     hm,
		cred:       cred,
	}
	if cfg.ListenAddr != "" {
		c.handler = api.New(api.Deps{
			Session:        tracker,
			Commands:       dispatcher,
			Status:         board,
			Health:         hm,
			Version:        buildVersion,
			TracingService: cfg.Telemetry.ServiceName,
		}).Handler()
	}
	return c
}
