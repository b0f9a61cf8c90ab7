// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile lists a researcher's publications and computes their
// author-level citation metrics. Two providers exist: OpenAlex authors and
// a local YAML file.
package profile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Provider returns an author's profile and publication listing.
type Provider interface {
	Profile(ctx context.Context, id string) (types.AuthorProfile, error)

	// Publications returns at most max publications, most cited first.
	Publications(ctx context.Context, id string, max int) ([]types.Publication, error)
}

// New returns the provider selected by cfg.
func New(cfg types.ProfileConfig, client *httputil.Client, email string, logger zerolog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "", "openalex":
		return &OpenAlexProvider{Client: client, Email: email, Logger: logger}, nil
	case "file":
		fp, err := LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		return fp, nil
	default:
		return nil, fmt.Errorf("unknown profile provider %q", cfg.Provider)
	}
}
