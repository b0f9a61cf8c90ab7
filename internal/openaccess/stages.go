// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package openaccess

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/classify"
	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Endpoints. Declared as vars so tests can substitute an httptest server.
var (
	doajJournalsBase  = "https://doaj.org/api/search/journals"
	unpaywallBase     = "https://api.unpaywall.org/v2"
	crossRefWorksBase = "https://api.crossref.org/works"
	linkFinderBase    = "https://api.openaccessbutton.org/find"
)

// DirectoryStage looks the venue up in the DOAJ journal index.
type DirectoryStage struct {
	Client *httputil.Client
	Logger zerolog.Logger

	// RequireMatch abstains when the search returns no journals. When
	// false, any well-formed response counts as open.
	RequireMatch bool
}

func (s *DirectoryStage) Name() string { return "directory" }

func (s *DirectoryStage) Check(ctx context.Context, in Input) (types.Verdict, bool) {
	venue := strings.TrimSpace(in.Venue)
	if venue == "" || venue == types.NotAvailable {
		return types.Verdict{}, false
	}

	query := fmt.Sprintf("bibjson.title:\"%s\"", strings.ReplaceAll(venue, `"`, ""))
	reqURL := doajJournalsBase + "/" + url.PathEscape(query) + "?pageSize=1"

	var resp doajSearchResponse
	if err := s.Client.GetJSON(ctx, "doaj", reqURL, &resp); err != nil {
		s.Logger.Warn().Err(err).Str("venue", venue).Msg("DOAJ lookup failed")
		return types.Verdict{}, false
	}
	if resp.Total == nil {
		return types.Verdict{}, false
	}
	if s.RequireMatch && *resp.Total == 0 {
		return types.Verdict{}, false
	}
	return types.Verdict{Open: true, Provenance: "directory"}, true
}

// RepositoryStage treats DOIs minted by known repositories as open.
type RepositoryStage struct {
	Prefixes []types.RepositoryPrefix
}

func (s *RepositoryStage) Name() string { return "repository" }

func (s *RepositoryStage) Check(_ context.Context, in Input) (types.Verdict, bool) {
	if in.DOI == "" {
		return types.Verdict{}, false
	}
	for _, p := range s.Prefixes {
		if strings.HasPrefix(in.DOI, p.Prefix+"/") {
			return types.Verdict{Open: true, Provenance: "repository:" + p.Name}, true
		}
	}
	return types.Verdict{}, false
}

// RegistryStage asks Unpaywall for the OA flag and status tier.
type RegistryStage struct {
	Client *httputil.Client
	Logger zerolog.Logger
	Email  string
}

func (s *RegistryStage) Name() string { return "registry" }

func (s *RegistryStage) Check(ctx context.Context, in Input) (types.Verdict, bool) {
	if in.DOI == "" || s.Email == "" {
		return types.Verdict{}, false
	}

	reqURL := unpaywallBase + "/" + httputil.EscapePath(in.DOI) + "?" + url.Values{"email": {s.Email}}.Encode()

	var resp unpaywallResponse
	if err := s.Client.GetJSON(ctx, "unpaywall", reqURL, &resp); err != nil {
		s.Logger.Warn().Err(err).Str("doi", in.DOI).Msg("Unpaywall lookup failed")
		return types.Verdict{}, false
	}
	if resp.IsOA == nil {
		return types.Verdict{}, false
	}
	tier := strings.ToLower(strings.TrimSpace(resp.OAStatus))
	if tier == "" {
		tier = types.ProvenanceUnknown
	}
	return types.Verdict{Open: *resp.IsOA, Provenance: "registry:" + tier, Tier: tier}, true
}

// LicenseStage treats a DOI whose CrossRef record lists a license as open.
type LicenseStage struct {
	Client *httputil.Client
	Logger zerolog.Logger
	Email  string
}

func (s *LicenseStage) Name() string { return "license" }

func (s *LicenseStage) Check(ctx context.Context, in Input) (types.Verdict, bool) {
	if in.DOI == "" {
		return types.Verdict{}, false
	}

	reqURL := crossRefWorksBase + "/" + httputil.EscapePath(in.DOI)
	if s.Email != "" {
		reqURL += "?" + url.Values{"mailto": {s.Email}}.Encode()
	}

	var resp crossRefWorkResponse
	if err := s.Client.GetJSON(ctx, "crossref", reqURL, &resp); err != nil {
		s.Logger.Warn().Err(err).Str("doi", in.DOI).Msg("CrossRef license lookup failed")
		return types.Verdict{}, false
	}
	if len(resp.Message.License) == 0 {
		return types.Verdict{}, false
	}
	return types.Verdict{Open: true, Provenance: "license:" + resp.Message.License[0].URL}, true
}

// PreprintStage treats a DOI-less paper on a preprint-server venue as open.
type PreprintStage struct {
	Sources []string
}

func (s *PreprintStage) Name() string { return "preprint" }

func (s *PreprintStage) Check(_ context.Context, in Input) (types.Verdict, bool) {
	src, ok := classify.PreprintSource(in.Venue, in.DOI, s.Sources)
	if !ok {
		return types.Verdict{}, false
	}
	return types.Verdict{Open: true, Provenance: "preprint:" + src}, true
}

// LinkFinderStage asks the OA.Works link finder for a free full-text link.
type LinkFinderStage struct {
	Client *httputil.Client
	Logger zerolog.Logger
}

func (s *LinkFinderStage) Name() string { return "linkfinder" }

func (s *LinkFinderStage) Check(ctx context.Context, in Input) (types.Verdict, bool) {
	if in.DOI == "" {
		return types.Verdict{}, false
	}

	reqURL := linkFinderBase + "?" + url.Values{"id": {"https://doi.org/" + in.DOI}}.Encode()

	var resp linkFinderResponse
	if err := s.Client.GetJSON(ctx, "linkfinder", reqURL, &resp); err != nil {
		s.Logger.Warn().Err(err).Str("doi", in.DOI).Msg("link finder lookup failed")
		return types.Verdict{}, false
	}
	link := resp.Data.URL
	if link == "" {
		link = resp.URL
	}
	if link == "" {
		return types.Verdict{}, false
	}
	return types.Verdict{Open: true, Provenance: "linkfinder:" + link}, true
}

type doajSearchResponse struct {
	Total *int `json:"total"`
}

type unpaywallResponse struct {
	IsOA     *bool  `json:"is_oa"`
	OAStatus string `json:"oa_status"`
}

type crossRefWorkResponse struct {
	Message struct {
		License []struct {
			URL string `json:"URL"`
		} `json:"license"`
	} `json:"message"`
}

// linkFinderResponse accepts both the legacy {"data":{"url":...}} shape and
// the current top-level {"url":...} shape.
type linkFinderResponse struct {
	URL  string `json:"url"`
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}
