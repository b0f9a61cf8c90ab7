// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funding

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

var (
	nihSearchURL     = "https://api.reporter.nih.gov/v2/projects/search"
	nihProjectDetail = "https://reporter.nih.gov/project-details/"
)

// NIHSource is the Source value of NIH RePORTER records.
const NIHSource = "NIH RePORTER"

// NIHClient pages through NIH RePORTER project search results.
type NIHClient struct {
	Client     *httputil.Client
	Logger     zerolog.Logger
	TextSearch string
	PageSize   int
}

// FetchYear returns every project matching the text search in one fiscal
// year. Paging stops at the first empty page or once meta.total records
// have been read. On error the records read so far are returned with it.
func (c *NIHClient) FetchYear(ctx context.Context, year int) ([]types.Opportunity, error) {
	size := c.PageSize
	if size <= 0 {
		size = 500
	}

	var records []types.Opportunity
	for offset := 0; ; offset += size {
		payload := nihSearchRequest{
			Criteria: nihCriteria{TextSearch: c.TextSearch, FiscalYears: []int{year}},
			IncludeFields: []string{
				"project_title", "project_num", "project_start_date", "project_end_date", "award_amount",
			},
			Offset: offset,
			Limit:  size,
		}

		var resp nihSearchResponse
		if err := c.Client.PostJSON(ctx, "nih_reporter", nihSearchURL, payload, &resp); err != nil {
			return records, fmt.Errorf("NIH year %d offset %d: %w", year, offset, err)
		}
		if len(resp.Results) == 0 {
			break
		}
		for _, p := range resp.Results {
			records = append(records, p.opportunity(year))
		}
		if resp.Meta.Total > 0 && offset+len(resp.Results) >= resp.Meta.Total {
			break
		}
	}

	c.Logger.Info().Int("year", year).Int("records", len(records)).Msg("fetched NIH records")
	return records, nil
}

type nihSearchRequest struct {
	Criteria      nihCriteria `json:"criteria"`
	IncludeFields []string    `json:"includeFields"`
	Offset        int         `json:"offset"`
	Limit         int         `json:"limit"`
}

type nihCriteria struct {
	TextSearch  string `json:"textSearch"`
	FiscalYears []int  `json:"fiscalYears"`
}

type nihSearchResponse struct {
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
	Results []nihProject `json:"results"`
}

type nihProject struct {
	Title       string  `json:"project_title"`
	ProjectNum  string  `json:"project_num"`
	EndDate     string  `json:"project_end_date"`
	AwardAmount float64 `json:"award_amount"`
}

func (p nihProject) opportunity(year int) types.Opportunity {
	return types.Opportunity{
		Title:            p.Title,
		URL:              nihProjectDetail + p.ProjectNum,
		Deadline:         FormatDate(p.EndDate),
		CallFor:          "Research Grant",
		Status:           "Awarded",
		EstimatedFunding: FormatUSD(p.AwardAmount),
		Source:           NIHSource,
		Year:             strconv.Itoa(year),
	}
}
