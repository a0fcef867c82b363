// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package youtube uploads recordings and sets their thumbnails through the
// YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/publish"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// UploadScope is the only scope requested during authorization.
const UploadScope = yt.YoutubeUploadScope

// Config holds OAuth client settings and the token location.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenFile    string

	// Endpoint overrides the API base URL. Empty means production.
	Endpoint string
	// TokenURL overrides the OAuth token endpoint.
	TokenURL string
	// HTTPClient is the transport underneath the OAuth layer.
	HTTPClient *http.Client
}

// Client implements publish.Uploader and publish.ThumbnailSetter.
type Client struct {
	cfg    Config
	oauth  *oauth2.Config
	logger zerolog.Logger
}

// NewClient creates a client. No network traffic happens until a call.
func NewClient(cfg Config) *Client {
	ep := endpoints.Google
	if cfg.TokenURL != "" {
		ep.TokenURL = cfg.TokenURL
	}
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     ep,
			Scopes:       []string{UploadScope},
		},
		logger: xglog.WithComponent("youtube"),
	}
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	if c.cfg.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.cfg.HTTPClient)
}

func (c *Client) service(ctx context.Context, cred publish.Credential) (*yt.Service, error) {
	yc, ok := cred.(*Credential)
	if !ok || !yc.Present() {
		return nil, errors.New("youtube: not authenticated")
	}
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(c.oauthContext(ctx), yc.ts))}
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}
	return yt.NewService(ctx, opts...)
}

// UploadVideo inserts path as a new video and returns its id.
func (c *Client) UploadVideo(ctx context.Context, cred publish.Credential, path string, meta publish.Metadata) (string, error) {
	logger := xglog.WithContext(ctx, c.logger)

	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrUploadFailed, err)
	}
	f, err := os.Open(path) // #nosec G304 -- path is the recording being published
	if err != nil {
		return "", fmt.Errorf("%w: %v", publish.ErrUploadFailed, err)
	}
	defer func() { _ = f.Close() }()

	size := int64(-1)
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	logger.Info().
		Str(xglog.FieldPath, path).
		Str("file", filepath.Base(path)).
		Int64("size_bytes", size).
		Msg("starting youtube upload")

	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       meta.Title,
			Description: meta.Description,
			Tags:        meta.Tags,
			CategoryId:  meta.CategoryID,
		},
		Status: &yt.VideoStatus{PrivacyStatus: meta.Privacy},
	}
	resp, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		logAPIError(logger, err, "video insert failed")
		return "", fmt.Errorf("%w: %v", publish.ErrUploadFailed, err)
	}
	logger.Info().Str(xglog.FieldRemoteID, resp.Id).Msg("youtube upload completed")
	return resp.Id, nil
}

// SetThumbnail replaces the thumbnail of video remoteID with imagePath.
func (c *Client) SetThumbnail(ctx context.Context, cred publish.Credential, remoteID, imagePath string) error {
	logger := xglog.WithContext(ctx, c.logger)

	svc, err := c.service(ctx, cred)
	if err != nil {
		return fmt.Errorf("%w: %v", publish.ErrThumbnail, err)
	}
	f, err := os.Open(imagePath) // #nosec G304 -- extracted frame
	if err != nil {
		return fmt.Errorf("%w: %v", publish.ErrThumbnail, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := svc.Thumbnails.Set(remoteID).Media(f).Context(ctx).Do(); err != nil {
		logAPIError(logger, err, "thumbnail set failed")
		return fmt.Errorf("%w: %v", publish.ErrThumbnail, err)
	}
	logger.Info().Str(xglog.FieldRemoteID, remoteID).Str(xglog.FieldThumbnailPath, imagePath).Msg("youtube thumbnail set")
	return nil
}

func logAPIError(logger zerolog.Logger, err error, msg string) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		logger.Warn().Err(err).Int("http_status", gerr.Code).Msg(msg)
		return
	}
	logger.Warn().Err(err).Msg(msg)
}
