// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attention fetches Altmetric attention summaries by DOI, falling
// back to PMID, and keeps the titles whose DOI lookup came back not found.
package attention

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/pkg/types"
)

// altmetricBase is the Altmetric v1 API root. Declared as a var so tests can
// substitute an httptest server.
var altmetricBase = "https://api.altmetric.com/v1"

// MissLog records titles whose DOI had no Altmetric record. It is safe for
// concurrent use.
type MissLog struct {
	mu     sync.Mutex
	titles []string
}

// Add appends title.
func (l *MissLog) Add(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.titles = append(l.titles, title)
}

// Titles returns a copy of the recorded titles in insertion order.
func (l *MissLog) Titles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.titles))
	copy(out, l.titles)
	return out
}

// Len returns the number of recorded titles.
func (l *MissLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.titles)
}

// Fetcher retrieves attention summaries.
type Fetcher struct {
	Client  *httputil.Client
	Logger  zerolog.Logger
	Metrics *observability.Metrics

	// APIKey is sent as the key parameter when set.
	APIKey string

	// Misses receives titles whose DOI lookup returned not found.
	Misses *MissLog
}

// Fetch returns the attention summary for ids, or nil when no record exists
// or the lookup failed. A DOI that is not found is recorded in Misses and,
// when a PMID is known, the PMID endpoint is tried once. Without a DOI the
// PMID endpoint is queried directly.
func (f *Fetcher) Fetch(ctx context.Context, ids types.Identifiers, title string) *types.AttentionSummary {
	if ids.DOI == "" {
		if ids.PMID == "" {
			return nil
		}
		return f.lookup(ctx, "pmid", ids.PMID)
	}

	summary, err := f.get(ctx, "doi", ids.DOI)
	if err == nil {
		return summary
	}
	if !errors.Is(err, httputil.ErrNotFound) {
		f.Logger.Error().Err(err).Str("doi", ids.DOI).Msg("Altmetric lookup failed")
		return nil
	}

	if f.Misses != nil {
		f.Misses.Add(title)
	}
	f.Metrics.AttentionMiss()
	f.Logger.Debug().Str("doi", ids.DOI).Str("title", title).Msg("no Altmetric record for DOI")

	if ids.PMID == "" {
		return nil
	}
	return f.lookup(ctx, "pmid", ids.PMID)
}

// lookup is get with failures logged and mapped to nil.
func (f *Fetcher) lookup(ctx context.Context, kind, id string) *types.AttentionSummary {
	summary, err := f.get(ctx, kind, id)
	if err != nil {
		if errors.Is(err, httputil.ErrNotFound) {
			f.Logger.Debug().Str(kind, id).Msg("no Altmetric record")
		} else {
			f.Logger.Error().Err(err).Str(kind, id).Msg("Altmetric lookup failed")
		}
		return nil
	}
	return summary
}

func (f *Fetcher) get(ctx context.Context, kind, id string) (*types.AttentionSummary, error) {
	reqURL := altmetricBase + "/" + kind + "/" + httputil.EscapePath(id)
	if f.APIKey != "" {
		reqURL += "?" + url.Values{"key": {f.APIKey}}.Encode()
	}

	var resp altmetricResponse
	if err := f.Client.GetJSON(ctx, "altmetric", reqURL, &resp); err != nil {
		return nil, err
	}
	return resp.summary(), nil
}

// altmetricResponse holds the subset of the Altmetric record we keep.
// Absent counters and score decode as zero.
type altmetricResponse struct {
	ID        int     `json:"altmetric_id"`
	Score     float64 `json:"score"`
	Tweeters  int     `json:"cited_by_tweeters_count"`
	Reddit    int     `json:"cited_by_rdts_count"`
	Feeds     int     `json:"cited_by_feeds_count"`
	News      int     `json:"cited_by_msm_count"`
	FBWalls   int     `json:"cited_by_fbwalls_count"`
	Wikipedia int     `json:"cited_by_wikipedia_count"`
	Policy    int     `json:"cited_by_policy_count"`
}

func (r altmetricResponse) summary() *types.AttentionSummary {
	return &types.AttentionSummary{
		AltmetricID: r.ID,
		Score:       r.Score,
		Counts: types.MentionCounts{
			Twitter:    r.Tweeters,
			Reddit:     r.Reddit,
			Blogs:      r.Feeds,
			News:       r.News,
			Facebook:   r.FBWalls,
			Wikipedia:  r.Wikipedia,
			PolicyDocs: r.Policy,
		},
	}
}
