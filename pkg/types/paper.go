// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-impact tools.
// Covers the publication listing (Publication, AuthorProfile), resolved
// identifiers, attention summaries, open-access verdicts, the per-paper
// output record, and funding opportunities.
package types

// NotAvailable is the sentinel written for missing year, venue, and DOI values.
const NotAvailable = "N/A"

// Publication is one entry of a researcher's publication listing, as
// returned by a profile provider. It is never modified after it is fetched.
type Publication struct {
	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, or NotAvailable.
	Year string `json:"year" yaml:"year"`

	// Authors is the author list as a single display string.
	Authors string `json:"authors" yaml:"authors"`

	// Venue is the journal, conference, or repository name, or NotAvailable.
	Venue string `json:"venue" yaml:"venue"`

	// Citations is the all-time citation count.
	Citations int `json:"citations" yaml:"citations"`

	// DOI is the raw identifier field from the listing. It may be a
	// resolver URL, a bare DOI, an unrelated link, or empty.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// PMID is the PubMed identifier when the listing carries one.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// CountsByYear maps a year to the citations received in that year.
	// Only used for since-year author metrics.
	CountsByYear map[int]int `json:"counts_by_year,omitempty" yaml:"counts_by_year,omitempty"`
}

// AuthorSpec names a researcher and the provider identifier of their profile.
type AuthorSpec struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
}

// AuthorProfile is the profile half of a publication listing.
type AuthorProfile struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	CitedBy     int    `json:"cited_by" yaml:"cited_by"`
}

// Identifiers holds the DOI and PMID resolved for a publication. Either,
// both, or neither may be set. The DOI is always the bare identifier.
type Identifiers struct {
	DOI  string `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`
}

// Empty reports whether neither identifier was resolved. Such a
// publication is dropped from further processing.
func (ids Identifiers) Empty() bool {
	return ids.DOI == "" && ids.PMID == ""
}
