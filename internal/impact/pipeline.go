// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package impact runs the per-author enrichment pipeline: list publications,
// resolve identifiers, fetch attention, decide open access, classify, and
// write the author's output tables.
package impact

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/research-impact/internal/attention"
	"github.com/pdiddy/research-impact/internal/classify"
	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/internal/profile"
	"github.com/pdiddy/research-impact/pkg/types"
)

// IdentifierResolver resolves a publication's DOI and PMID.
type IdentifierResolver interface {
	Resolve(ctx context.Context, pub types.Publication, author string) types.Identifiers
}

// AttentionFetcher returns a publication's attention summary or nil.
type AttentionFetcher interface {
	Fetch(ctx context.Context, ids types.Identifiers, title string) *types.AttentionSummary
}

// OpenAccessResolver decides the open-access verdict of a DOI and venue.
type OpenAccessResolver interface {
	Resolve(ctx context.Context, doi, venue string) types.Verdict
}

// Pipeline processes one author at a time and one paper at a time.
type Pipeline struct {
	Provider   profile.Provider
	Resolver   IdentifierResolver
	Attention  AttentionFetcher
	OpenAccess OpenAccessResolver
	Classify   classify.Config

	// Misses is the log the attention fetcher appends to. The titles added
	// during a run are attached to that run's Report.
	Misses *attention.MissLog

	MaxPublications int
	SinceYear       int

	// PaperDelay is the minimum spacing between consecutive processed papers.
	PaperDelay time.Duration

	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// Out receives human-readable progress lines. Nil discards them.
	Out io.Writer
}

// Run processes every publication of author and returns the report. An
// error means the author's listing could not be retrieved at all; failures
// on individual papers only reduce what the records contain.
func (p *Pipeline) Run(ctx context.Context, author types.AuthorSpec) (*Report, error) {
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	log := p.Logger.With().Str("author", author.Name).Logger()

	prof, err := p.Provider.Profile(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("retrieving profile for %s: %w", author.Name, err)
	}
	pubs, err := p.Provider.Publications(ctx, author.ID, p.MaxPublications)
	if err != nil {
		return nil, fmt.Errorf("retrieving publications for %s: %w", author.Name, err)
	}
	log.Info().Int("publications", len(pubs)).Str("profile", prof.DisplayName).Msg("retrieved publication listing")

	metrics := profile.ComputeMetrics(author.Name, pubs, p.SinceYear)
	if prof.CitedBy > metrics.CitationsAll {
		metrics.CitationsAll = prof.CitedBy
	}

	missStart := 0
	if p.Misses != nil {
		missStart = p.Misses.Len()
	}

	pacer := rate.NewLimiter(rate.Inf, 1)
	if p.PaperDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(p.PaperDelay), 1)
	}

	report := &Report{Author: author.Name, Metrics: metrics}
	for _, pub := range pubs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ids := p.Resolver.Resolve(ctx, pub, author.Name)
		if ids.Empty() {
			log.Info().Str("title", pub.Title).Msg("skipping: no DOI or PMID found")
			p.Metrics.Paper("skipped")
			continue
		}

		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Processing: %s (%s)\n", pub.Title, orDefault(ids.DOI, "No DOI"))

		report.Records = append(report.Records, p.process(ctx, author.Name, pub, ids))
		p.Metrics.Paper("processed")
	}

	if p.Misses != nil {
		report.Misses = p.Misses.Titles()[missStart:]
	}
	return report, nil
}

// process builds the output record for one resolved publication.
func (p *Pipeline) process(ctx context.Context, author string, pub types.Publication, ids types.Identifiers) types.ImpactRecord {
	summary := p.Attention.Fetch(ctx, ids, pub.Title)
	verdict := p.OpenAccess.Resolve(ctx, ids.DOI, pub.Venue)
	publicHealth, capacity := p.Classify.TagTopics(pub.Title)

	rec := types.ImpactRecord{
		Author:             author,
		Title:              pub.Title,
		Year:               pub.Year,
		Citations:          pub.Citations,
		DOI:                types.NotAvailable,
		PMID:               ids.PMID,
		Authors:            pub.Authors,
		Journal:            pub.Venue,
		MediaMentioned:     classify.MediaMentioned(summary),
		OpenAccess:         verdict.Open,
		OAStatus:           verdict.Provenance,
		OAType:             classify.TierLabel(verdict),
		Preprint:           p.Classify.IsPreprint(pub.Venue, ids.DOI),
		PublicationType:    p.Classify.PublicationType(ids.DOI, pub.Venue, verdict.Open),
		PublicHealthImpact: publicHealth,
		CapacityBuilding:   capacity,
	}
	if ids.DOI != "" {
		rec.DOI = "https://doi.org/" + ids.DOI
	}
	if summary != nil {
		c := summary.Counts
		rec.AltmetricScore = summary.Score
		rec.TwitterMentions = c.Twitter
		rec.RedditMentions = c.Reddit
		rec.NewsMentions = c.News
		rec.BlogMentions = c.Blogs
		rec.FacebookMentions = c.Facebook
		rec.WikipediaMentions = c.Wikipedia
		rec.PolicyMentions = c.PolicyDocs
	}
	return rec
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
