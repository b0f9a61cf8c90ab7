// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify derives the human-facing labels of an impact record from
// already resolved data. Nothing here performs I/O.
package classify

import (
	"strings"

	"github.com/pdiddy/research-impact/pkg/types"
)

// Publication type labels.
const (
	TypePreprint   = "Preprint"
	TypeOpenAccess = "Open Access"
	TypePublished  = "Published"
	TypeUnknown    = "Unknown"
)

// Open-access tier labels.
const (
	TierClosed    = "Closed"
	TierGold      = "Gold OA"
	TierGreen     = "Green OA"
	TierHybrid    = "Hybrid OA"
	TierBronze    = "Bronze OA"
	TierUnknownOA = "Unknown OA"
)

var tierLabels = map[string]string{
	"gold":   TierGold,
	"green":  TierGreen,
	"hybrid": TierHybrid,
	"bronze": TierBronze,
}

// Config holds the keyword and venue lists. All entries are lower-cased by
// NewConfig so matching is case-insensitive on both sides.
type Config struct {
	PublicHealth     []string
	CapacityBuilding []string
	PreprintSources  []string
}

// NewConfig builds a Config from the configured keyword and preprint lists.
func NewConfig(kw types.KeywordConfig, preprintSources []string) Config {
	return Config{
		PublicHealth:     lowerAll(kw.PublicHealth),
		CapacityBuilding: lowerAll(kw.CapacityBuilding),
		PreprintSources:  lowerAll(preprintSources),
	}
}

// PreprintSource returns the first source in sources contained in venue,
// case-insensitively. A publication with a DOI is never a preprint.
func PreprintSource(venue, doi string, sources []string) (string, bool) {
	if doi != "" || venue == "" {
		return "", false
	}
	v := strings.ToLower(venue)
	for _, src := range sources {
		if src != "" && strings.Contains(v, strings.ToLower(src)) {
			return src, true
		}
	}
	return "", false
}

// IsPreprint reports whether a DOI-less publication sits on a preprint server.
func (c Config) IsPreprint(venue, doi string) bool {
	_, ok := PreprintSource(venue, doi, c.PreprintSources)
	return ok
}

// PublicationType labels a publication from its DOI, venue, and OA verdict.
func (c Config) PublicationType(doi, venue string, open bool) string {
	switch {
	case c.IsPreprint(venue, doi):
		return TypePreprint
	case doi != "" && open:
		return TypeOpenAccess
	case doi != "":
		return TypePublished
	default:
		return TypeUnknown
	}
}

// TagTopics matches title against both keyword lists. The flags are
// independent.
func (c Config) TagTopics(title string) (publicHealth, capacityBuilding bool) {
	t := strings.ToLower(title)
	return containsAny(t, c.PublicHealth), containsAny(t, c.CapacityBuilding)
}

// TierLabel maps a verdict to its OA tier label. Only registry verdicts
// carry a tier; other open verdicts map to Unknown OA.
func TierLabel(v types.Verdict) string {
	tier := strings.ToLower(v.Tier)
	if !v.Open || tier == "closed" {
		return TierClosed
	}
	if label, ok := tierLabels[tier]; ok {
		return label
	}
	return TierUnknownOA
}

// MediaMentioned reports whether news, blog, policy, Facebook, or Wikipedia
// counters are positive. Twitter and Reddit do not count.
func MediaMentioned(a *types.AttentionSummary) bool {
	if a == nil {
		return false
	}
	c := a.Counts
	return c.News > 0 || c.Blogs > 0 || c.PolicyDocs > 0 || c.Facebook > 0 || c.Wikipedia > 0
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
