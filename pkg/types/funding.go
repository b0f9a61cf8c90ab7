// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Sentinels used by funding sources for missing fields.
const (
	NotSpecified = "Not specified"
	NotListed    = "Not listed"
)

// Opportunity is one funding opportunity or awarded project from a
// funding source. JSON keys match the tabular column headers.
type Opportunity struct {
	Title            string `json:"Title" yaml:"title"`
	URL              string `json:"URL" yaml:"url"`
	Deadline         string `json:"Deadline" yaml:"deadline"`
	CallFor          string `json:"Call For" yaml:"call_for"`
	Status           string `json:"Opportunity Status" yaml:"status"`
	EstimatedFunding string `json:"Estimated Funding" yaml:"estimated_funding"`
	Source           string `json:"Source" yaml:"source"`
	Year             string `json:"Year" yaml:"year"`
}

// OpportunityColumns lists the tabular headers in output order.
var OpportunityColumns = []string{
	"Title", "URL", "Deadline", "Call For", "Opportunity Status",
	"Estimated Funding", "Source", "Year",
}

// Row renders the opportunity in OpportunityColumns order.
func (o Opportunity) Row() []string {
	return []string{o.Title, o.URL, o.Deadline, o.CallFor, o.Status, o.EstimatedFunding, o.Source, o.Year}
}

// DedupKey identifies an opportunity across sources: lower-cased title
// plus the exact source string.
func (o Opportunity) DedupKey() OpportunityKey {
	return OpportunityKey{Title: strings.ToLower(o.Title), Source: o.Source}
}

// OpportunityKey is the deduplication key of an Opportunity.
type OpportunityKey struct {
	Title  string
	Source string
}
