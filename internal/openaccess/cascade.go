// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openaccess decides whether a paper is open access by running a
// fixed, precedence-ordered chain of stages. The first stage that does not
// abstain decides the verdict; later stages are never consulted.
//
// Default order:
//
//  1. directory  (DOAJ journal search by venue)
//  2. repository (DOI prefix allow-list)
//  3. registry   (Unpaywall by DOI)
//  4. license    (CrossRef license metadata by DOI)
//  5. preprint   (DOI-less paper on a preprint-server venue)
//  6. linkfinder (OA.Works link finder by DOI)
//
// A network failure or malformed response makes a stage abstain. It never
// produces a negative verdict.
package openaccess

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Input is what a stage sees of a paper. DOI is bare and may be empty.
// Venue may be empty or types.NotAvailable.
type Input struct {
	DOI   string
	Venue string
}

// Stage is one step of the cascade. Check returns false to abstain.
type Stage interface {
	Name() string
	Check(ctx context.Context, in Input) (types.Verdict, bool)
}

// Cascade runs Stages in order.
type Cascade struct {
	Stages  []Stage
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Resolve returns the verdict of the first non-abstaining stage, or a
// closed verdict with unknown provenance when every stage abstains.
func (c *Cascade) Resolve(ctx context.Context, doi, venue string) types.Verdict {
	in := Input{DOI: doi, Venue: venue}
	for _, s := range c.Stages {
		v, ok := s.Check(ctx, in)
		if !ok {
			c.Metrics.Stage(s.Name(), "abstain")
			continue
		}
		outcome := "closed"
		if v.Open {
			outcome = "open"
		}
		c.Metrics.Stage(s.Name(), outcome)
		c.Logger.Debug().
			Str("doi", doi).
			Str("stage", s.Name()).
			Bool("open", v.Open).
			Str("provenance", v.Provenance).
			Msg("open-access verdict")
		return v
	}
	return types.Verdict{Provenance: types.ProvenanceUnknown}
}

// Options configures DefaultStages.
type Options struct {
	Client *httputil.Client
	Logger zerolog.Logger

	// Email is required by Unpaywall and sent to CrossRef as mailto.
	Email string

	types.OpenAccessConfig
}

// DefaultStages builds the six stages in their fixed order.
func DefaultStages(opts Options) []Stage {
	if opts.Email == "" {
		opts.Logger.Warn().Msg("no contact email configured; the registry stage will abstain")
	}
	return []Stage{
		&DirectoryStage{Client: opts.Client, Logger: opts.Logger, RequireMatch: opts.DirectoryRequireMatch},
		&RepositoryStage{Prefixes: opts.RepositoryPrefixes},
		&RegistryStage{Client: opts.Client, Logger: opts.Logger, Email: opts.Email},
		&LicenseStage{Client: opts.Client, Logger: opts.Logger, Email: opts.Email},
		&PreprintStage{Sources: opts.PreprintSources},
		&LinkFinderStage{Client: opts.Client, Logger: opts.Logger},
	}
}
