// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/google/renameio/v2"
	"golang.org/x/oauth2"
)

// Credential is the authorization handle handed to the publish pipeline.
type Credential struct {
	ts oauth2.TokenSource
}

// Present reports whether the credential can authorize API calls.
func (c *Credential) Present() bool {
	return c != nil && c.ts != nil
}

// TokenSource returns the underlying token source.
func (c *Credential) TokenSource() oauth2.TokenSource {
	if c == nil {
		return nil
	}
	return c.ts
}

// NewCredential wraps an existing token source.
func NewCredential(ts oauth2.TokenSource) *Credential {
	return &Credential{ts: ts}
}

// LoadToken reads a token file written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no token", path)
	}
	return &tok, nil
}

// SaveToken writes tok atomically with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := renameio.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write token file %s: %w", path, err)
	}
	return nil
}

// LoadCredential loads the token file once. A missing or unreadable file
// yields nil and the process runs without a credential. Token refreshes keep
// ctx's values but not its cancellation.
func (c *Client) LoadCredential(ctx context.Context) *Credential {
	tok, err := LoadToken(c.cfg.TokenFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Info().Str(xglog.FieldPath, c.cfg.TokenFile).Msg("no youtube token file")
		} else {
			c.logger.Warn().Err(err).Str(xglog.FieldPath, c.cfg.TokenFile).Msg("youtube token file unusable")
		}
		return nil
	}
	// Refreshes outlive ctx: publish jobs still drain after shutdown starts.
	src := &savingSource{
		base:   c.oauth.TokenSource(c.oauthContext(context.WithoutCancel(ctx)), tok),
		path:   c.cfg.TokenFile,
		last:   tok.AccessToken,
		client: c,
	}
	c.logger.Info().Str(xglog.FieldPath, c.cfg.TokenFile).Msg("youtube authentication loaded")
	return NewCredential(oauth2.ReuseTokenSource(tok, src))
}

// savingSource persists refreshed tokens so a restart does not need a new
// consent round.
type savingSource struct {
	base   oauth2.TokenSource
	path   string
	client *Client

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.client.logger.Warn().Err(err).Msg("refreshed token not persisted")
		} else {
			s.client.logger.Debug().Msg("refreshed token persisted")
		}
	}
	return tok, nil
}
