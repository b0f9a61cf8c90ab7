// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funding

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

var (
	grantsGovSearchURL = "https://api.grants.gov/v1/api/search2"
	grantsGovDetail    = "https://www.grants.gov/search-results-detail/"
)

// GrantsGovClient queries the Grants.gov search2 API.
type GrantsGovClient struct {
	Client             *httputil.Client
	FundingCategories  string
	FundingInstruments string
	OppStatuses        string
}

// Count returns the number of opportunities matching the filters.
func (c *GrantsGovClient) Count(ctx context.Context) (int, error) {
	resp, err := c.search(ctx, 1, 1)
	if err != nil {
		return 0, err
	}
	return resp.Data.HitCount, nil
}

// FetchPage returns rows opportunities starting at the 1-based startRecord.
// Records are returned in page order and are not deduplicated.
func (c *GrantsGovClient) FetchPage(ctx context.Context, startRecord, rows int) ([]types.Opportunity, error) {
	resp, err := c.search(ctx, startRecord, rows)
	if err != nil {
		return nil, err
	}
	out := make([]types.Opportunity, 0, len(resp.Data.OppHits))
	for _, hit := range resp.Data.OppHits {
		out = append(out, hit.opportunity())
	}
	return out, nil
}

func (c *GrantsGovClient) search(ctx context.Context, startRecord, rows int) (*grantsGovResponse, error) {
	payload := grantsGovRequest{
		StartRecord:        startRecord,
		Rows:               rows,
		FundingCategories:  c.FundingCategories,
		FundingInstruments: c.FundingInstruments,
		OppStatuses:        c.OppStatuses,
	}
	var resp grantsGovResponse
	if err := c.Client.PostJSON(ctx, "grants_gov", grantsGovSearchURL, payload, &resp); err != nil {
		return nil, fmt.Errorf("Grants.gov at record %d: %w", startRecord, err)
	}
	return &resp, nil
}

type grantsGovRequest struct {
	StartRecord        int    `json:"startRecord"`
	Rows               int    `json:"rows"`
	FundingCategories  string `json:"fundingCategories"`
	FundingInstruments string `json:"fundingInstruments"`
	OppStatuses        string `json:"oppStatuses"`
}

type grantsGovResponse struct {
	Data struct {
		HitCount int            `json:"hitCount"`
		OppHits  []grantsGovHit `json:"oppHits"`
	} `json:"data"`
}

type grantsGovHit struct {
	ID         flexID `json:"id"`
	Title      string `json:"title"`
	AgencyName string `json:"agencyName"`
	CloseDate  string `json:"closeDate"`
	DocType    string `json:"docType"`
	OppStatus  string `json:"oppStatus"`
}

// flexID accepts an opportunity id sent either as a JSON string or number.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	*id = flexID(strings.Trim(string(b), `"`))
	if *id == "null" {
		*id = ""
	}
	return nil
}

func (h grantsGovHit) opportunity() types.Opportunity {
	deadline := FormatDate(h.CloseDate)
	return types.Opportunity{
		Title:            strings.TrimSpace(h.Title),
		URL:              grantsGovDetail + string(h.ID),
		Deadline:         deadline,
		CallFor:          capitalize(orDefault(h.DocType, "Grant")),
		Status:           capitalize(orDefault(h.OppStatus, "Unknown")),
		EstimatedFunding: types.NotListed,
		Source:           "Grants.gov (" + orDefault(h.AgencyName, "Grants.gov") + ")",
		Year:             yearOf(deadline),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
