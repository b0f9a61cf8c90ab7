// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
)

// MentionCounts is the fixed set of attention counters tracked per paper.
type MentionCounts struct {
	Twitter    int `json:"Twitter" yaml:"twitter"`
	Reddit     int `json:"Reddit" yaml:"reddit"`
	Blogs      int `json:"Blogs" yaml:"blogs"`
	News       int `json:"News" yaml:"news"`
	Facebook   int `json:"Facebook" yaml:"facebook"`
	Wikipedia  int `json:"Wikipedia" yaml:"wikipedia"`
	PolicyDocs int `json:"Policy Docs" yaml:"policy_docs"`
}

// AttentionSummary is the attention-tracking record for one paper. A nil
// *AttentionSummary means no record exists.
type AttentionSummary struct {
	AltmetricID int           `json:"altmetric_id" yaml:"altmetric_id"`
	Score       float64       `json:"score" yaml:"score"`
	Counts      MentionCounts `json:"counts" yaml:"counts"`
}

// ProvenanceUnknown is the provenance of a verdict when every stage abstained.
const ProvenanceUnknown = "unknown"

// Verdict is the open-access decision for a paper and the stage that made it.
type Verdict struct {
	Open       bool   `json:"open" yaml:"open"`
	Provenance string `json:"provenance" yaml:"provenance"`

	// Tier is the registry status tier (gold, green, hybrid, bronze, closed).
	// Only the registry stage sets it.
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`
}

// ImpactRecord is one row of the per-paper impact output. JSON keys match
// the tabular column headers so both files describe the same fields.
type ImpactRecord struct {
	Author             string  `json:"Author" yaml:"author"`
	Title              string  `json:"Paper Title" yaml:"paper_title"`
	Year               string  `json:"Year" yaml:"year"`
	Citations          int     `json:"Citations" yaml:"citations"`
	DOI                string  `json:"DOI" yaml:"doi"`
	PMID               string  `json:"PMID" yaml:"pmid"`
	Authors            string  `json:"Authors" yaml:"authors"`
	Journal            string  `json:"Journal" yaml:"journal"`
	AltmetricScore     float64 `json:"Altmetric Score" yaml:"altmetric_score"`
	TwitterMentions    int     `json:"Twitter Mentions" yaml:"twitter_mentions"`
	RedditMentions     int     `json:"Reddit Mentions" yaml:"reddit_mentions"`
	NewsMentions       int     `json:"News Mentions" yaml:"news_mentions"`
	BlogMentions       int     `json:"Blog Mentions" yaml:"blog_mentions"`
	FacebookMentions   int     `json:"Facebook Mentions" yaml:"facebook_mentions"`
	WikipediaMentions  int     `json:"Wikipedia Mentions" yaml:"wikipedia_mentions"`
	PolicyMentions     int     `json:"Policy Mentions" yaml:"policy_mentions"`
	MediaMentioned     bool    `json:"Media Mentioned" yaml:"media_mentioned"`
	OpenAccess         bool    `json:"Open Access" yaml:"open_access"`
	OAStatus           string  `json:"OA Status" yaml:"oa_status"`
	OAType             string  `json:"OA Type" yaml:"oa_type"`
	Preprint           bool    `json:"Preprint" yaml:"preprint"`
	PublicationType    string  `json:"Publication Type" yaml:"publication_type"`
	PublicHealthImpact bool    `json:"Public Health Impact" yaml:"public_health_impact"`
	CapacityBuilding   bool    `json:"Capacity Building" yaml:"capacity_building"`
}

// ImpactColumns lists the tabular headers in output order.
var ImpactColumns = []string{
	"Author", "Paper Title", "Year", "Citations", "DOI", "PMID", "Authors", "Journal",
	"Altmetric Score", "Twitter Mentions", "Reddit Mentions", "News Mentions",
	"Blog Mentions", "Facebook Mentions", "Wikipedia Mentions", "Policy Mentions",
	"Media Mentioned", "Open Access", "OA Status", "OA Type", "Preprint",
	"Publication Type", "Public Health Impact", "Capacity Building",
}

// Row renders the record in ImpactColumns order.
func (r ImpactRecord) Row() []string {
	return []string{
		r.Author,
		r.Title,
		r.Year,
		strconv.Itoa(r.Citations),
		r.DOI,
		r.PMID,
		r.Authors,
		r.Journal,
		strconv.FormatFloat(r.AltmetricScore, 'f', -1, 64),
		strconv.Itoa(r.TwitterMentions),
		strconv.Itoa(r.RedditMentions),
		strconv.Itoa(r.NewsMentions),
		strconv.Itoa(r.BlogMentions),
		strconv.Itoa(r.FacebookMentions),
		strconv.Itoa(r.WikipediaMentions),
		strconv.Itoa(r.PolicyMentions),
		strconv.FormatBool(r.MediaMentioned),
		strconv.FormatBool(r.OpenAccess),
		r.OAStatus,
		r.OAType,
		strconv.FormatBool(r.Preprint),
		r.PublicationType,
		strconv.FormatBool(r.PublicHealthImpact),
		strconv.FormatBool(r.CapacityBuilding),
	}
}

// AuthorMetrics summarizes citation metrics for one author, all-time and
// since SinceYear.
type AuthorMetrics struct {
	Author         string `json:"Author" yaml:"author"`
	SinceYear      int    `json:"-" yaml:"since_year"`
	CitationsAll   int    `json:"Citations_All" yaml:"citations_all"`
	CitationsSince int    `json:"Citations_Since" yaml:"citations_since"`
	HIndexAll      int    `json:"h_index_All" yaml:"h_index_all"`
	HIndexSince    int    `json:"h_index_Since" yaml:"h_index_since"`
	I10IndexAll    int    `json:"i10_index_All" yaml:"i10_index_all"`
	I10IndexSince  int    `json:"i10_index_Since" yaml:"i10_index_since"`
}

// Columns returns the tabular headers; the since-year is part of the name.
func (m AuthorMetrics) Columns() []string {
	since := fmt.Sprintf("Since%d", m.SinceYear)
	return []string{
		"Author",
		"Citations_All", "Citations_" + since,
		"h_index_All", "h_index_" + since,
		"i10_index_All", "i10_index_" + since,
	}
}

// Row renders the metrics in Columns order.
func (m AuthorMetrics) Row() []string {
	return []string{
		m.Author,
		strconv.Itoa(m.CitationsAll), strconv.Itoa(m.CitationsSince),
		strconv.Itoa(m.HIndexAll), strconv.Itoa(m.HIndexSince),
		strconv.Itoa(m.I10IndexAll), strconv.Itoa(m.I10IndexSince),
	}
}
