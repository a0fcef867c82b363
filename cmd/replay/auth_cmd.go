// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/replay/internal/config"
	"github.com/ManuGH/replay/internal/version"
	"github.com/ManuGH/replay/internal/youtube"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// authorizer is the part of the YouTube client the auth flow needs.
type authorizer interface {
	AuthCodeURL(state string) string
	Authorize(ctx context.Context, code string) (*oauth2.Token, error)
}

func runAuthCLI(args []string) int {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.NewLoader(*configPath, version.Version).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	client := youtube.NewClient(youtubeConfig(cfg))
	if err := runAuth(context.Background(), client, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "auth failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Tokens saved to %s\n", cfg.YouTube.TokenFile)
	return 0
}

// runAuth prints the consent URL, reads one authorization code line from in
// and exchanges it.
func runAuth(ctx context.Context, a authorizer, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Open this URL in your browser and authorize access:")
	fmt.Fprintln(out, a.AuthCodeURL(uuid.NewString()))
	fmt.Fprint(out, "Paste the authorization code: ")

	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read authorization code: %w", err)
		}
		return errors.New("no authorization code entered")
	}
	code := strings.TrimSpace(sc.Text())
	if _, err := a.Authorize(ctx, code); err != nil {
		return err
	}
	return nil
}
