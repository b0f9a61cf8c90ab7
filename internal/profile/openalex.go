// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

// OpenAlex endpoints. Declared as vars so tests can substitute an httptest
// server.
var (
	openAlexAuthorsBase = "https://api.openalex.org/authors"
	openAlexWorksBase   = "https://api.openalex.org/works"
)

const openAlexPageSize = 200

// OpenAlexProvider reads author profiles and works from OpenAlex. Author
// ids are OpenAlex ids such as A5023888391.
type OpenAlexProvider struct {
	Client *httputil.Client
	Logger zerolog.Logger

	// Email is sent as mailto for polite pool access.
	Email string
}

// Profile fetches the author record.
func (p *OpenAlexProvider) Profile(ctx context.Context, id string) (types.AuthorProfile, error) {
	reqURL := openAlexAuthorsBase + "/" + url.PathEscape(shortID(id))
	if p.Email != "" {
		reqURL += "?" + url.Values{"mailto": {p.Email}}.Encode()
	}

	var a openAlexAuthor
	if err := p.Client.GetJSON(ctx, "openalex", reqURL, &a); err != nil {
		return types.AuthorProfile{}, fmt.Errorf("fetching OpenAlex author %s: %w", id, err)
	}
	return types.AuthorProfile{
		ID:          shortID(a.ID),
		DisplayName: a.DisplayName,
		CitedBy:     a.CitedByCount,
	}, nil
}

// Publications pages through the author's works, most cited first, using
// cursor pagination. A page failure after the first ends the listing with
// what was collected so far.
func (p *OpenAlexProvider) Publications(ctx context.Context, id string, max int) ([]types.Publication, error) {
	var pubs []types.Publication
	cursor := "*"

	for cursor != "" && (max <= 0 || len(pubs) < max) {
		perPage := openAlexPageSize
		if max > 0 && max-len(pubs) < perPage {
			perPage = max - len(pubs)
		}
		params := url.Values{
			"filter":   {"author.id:" + shortID(id)},
			"sort":     {"cited_by_count:desc"},
			"per-page": {strconv.Itoa(perPage)},
			"cursor":   {cursor},
		}
		if p.Email != "" {
			params.Set("mailto", p.Email)
		}

		var page openAlexWorksPage
		if err := p.Client.GetJSON(ctx, "openalex", openAlexWorksBase+"?"+params.Encode(), &page); err != nil {
			if len(pubs) == 0 {
				return nil, fmt.Errorf("listing OpenAlex works for %s: %w", id, err)
			}
			p.Logger.Warn().Err(err).Str("author_id", id).Int("collected", len(pubs)).Msg("OpenAlex works page failed; keeping partial listing")
			break
		}
		if len(page.Results) == 0 {
			break
		}
		for _, w := range page.Results {
			pubs = append(pubs, w.publication())
		}
		cursor = page.Meta.NextCursor
	}

	if max > 0 && len(pubs) > max {
		pubs = pubs[:max]
	}
	return pubs, nil
}

// shortID strips the https://openalex.org/ prefix from an OpenAlex id.
func shortID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func (w openAlexWork) publication() types.Publication {
	pub := types.Publication{
		Title:     w.DisplayName,
		Year:      types.NotAvailable,
		Venue:     types.NotAvailable,
		Citations: w.CitedByCount,
		DOI:       w.DOI,
	}
	if pub.Title == "" {
		pub.Title = "Untitled"
	}
	if w.PublicationYear > 0 {
		pub.Year = strconv.Itoa(w.PublicationYear)
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil && w.PrimaryLocation.Source.DisplayName != "" {
		pub.Venue = w.PrimaryLocation.Source.DisplayName
	}

	names := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
	}
	pub.Authors = strings.Join(names, " and ")

	if w.IDs.PMID != "" {
		pub.PMID = shortID(w.IDs.PMID)
	}
	if len(w.CountsByYear) > 0 {
		pub.CountsByYear = make(map[int]int, len(w.CountsByYear))
		for _, c := range w.CountsByYear {
			pub.CountsByYear[c.Year] = c.CitedByCount
		}
	}
	return pub
}

type openAlexAuthor struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	CitedByCount int    `json:"cited_by_count"`
}

type openAlexWorksPage struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	DisplayName     string `json:"display_name"`
	PublicationYear int    `json:"publication_year"`
	DOI             string `json:"doi"`
	CitedByCount    int    `json:"cited_by_count"`
	IDs             struct {
		PMID string `json:"pmid"`
	} `json:"ids"`
	PrimaryLocation *struct {
		Source *struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	CountsByYear []struct {
		Year         int `json:"year"`
		CitedByCount int `json:"cited_by_count"`
	} `json:"counts_by_year"`
}
