// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package youtube

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// AuthCodeURL returns the consent URL for offline access to UploadScope.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Authorize exchanges an authorization code and saves the token.
func (c *Client) Authorize(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return nil, errors.New("youtube client id and secret are required")
	}
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := SaveToken(c.cfg.TokenFile, tok); err != nil {
		return nil, err
	}
	c.logger.Info().Str("token_file", c.cfg.TokenFile).Msg("youtube tokens saved")
	return tok, nil
}
