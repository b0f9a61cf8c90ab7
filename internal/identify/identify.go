// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identify resolves the DOI and PubMed identifier of a publication.
// The DOI comes from the listing when it carries a usable one, else from
// OpenAlex, else from CrossRef. The PMID comes from OpenAlex, the listing,
// or an NCBI E-utilities title search, in that order.
package identify

import (
	"context"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Endpoints. Declared as vars so tests can substitute an httptest server.
var (
	openAlexWorksBase = "https://api.openalex.org/works"
	crossRefWorksBase = "https://api.crossref.org/works"
	pubMedSearchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
)

const maxTitleRunes = 200

// doiPrefixes are the resolver forms stripped from a listing DOI, lower-cased.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// CleanDOI extracts a bare DOI from a listing identifier. Resolver URLs and
// the doi: scheme are stripped and the remainder returned unchanged; a bare
// 10.x/... identifier is accepted as is. Anything else, such as a publisher
// landing page, is rejected.
func CleanDOI(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			doi := s[len(p):]
			return doi, doi != ""
		}
	}
	if strings.HasPrefix(s, "10.") && strings.Contains(s, "/") {
		return s, true
	}
	return "", false
}

// NormalizeTitle lower-cases a title, drops punctuation, and caps it at
// 200 runes for use in a search filter.
func NormalizeTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(title) {
		if n == maxTitleRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
			n++
		}
	}
	return strings.TrimSpace(b.String())
}

// Resolver looks up identifiers with one attempt per upstream API. Lookup
// failures are logged and treated as absent values.
type Resolver struct {
	Client *httputil.Client
	Logger zerolog.Logger

	// Email is sent as mailto for the OpenAlex and CrossRef polite pools.
	Email string

	// NCBIKey is the optional E-utilities api_key.
	NCBIKey string
}

// Resolve returns the identifiers of pub. author narrows the OpenAlex title
// search and may be empty. An empty result means the publication cannot be
// processed further.
func (r *Resolver) Resolve(ctx context.Context, pub types.Publication, author string) types.Identifiers {
	var ids types.Identifiers

	if doi, ok := CleanDOI(pub.DOI); ok {
		ids.DOI = doi
	} else {
		ids.DOI, ids.PMID = r.fromOpenAlex(ctx, pub.Title, author)
		if ids.DOI == "" {
			ids.DOI = r.fromCrossRef(ctx, pub.Title)
		}
	}

	if ids.PMID == "" {
		ids.PMID = strings.TrimSpace(pub.PMID)
	}
	if ids.PMID == "" {
		ids.PMID = r.fromPubMed(ctx, pub.Title)
	}
	return ids
}

func (r *Resolver) fromOpenAlex(ctx context.Context, title, author string) (doi, pmid string) {
	norm := NormalizeTitle(title)
	if norm == "" {
		return "", ""
	}
	filter := "title.search:" + norm
	if a := filterValue(author); a != "" {
		filter += ",raw_author_name.search:" + a
	}
	params := url.Values{
		"filter":   {filter},
		"per-page": {"1"},
	}
	if r.Email != "" {
		params.Set("mailto", r.Email)
	}

	var resp openAlexWorksResponse
	if err := r.Client.GetJSON(ctx, "openalex", openAlexWorksBase+"?"+params.Encode(), &resp); err != nil {
		r.Logger.Warn().Err(err).Str("title", title).Msg("OpenAlex DOI lookup failed")
		return "", ""
	}
	if len(resp.Results) == 0 {
		return "", ""
	}
	work := resp.Results[0]
	if d, ok := CleanDOI(work.DOI); ok {
		doi = d
	}
	return doi, normalizePMID(work.IDs.PMID)
}

func (r *Resolver) fromCrossRef(ctx context.Context, title string) string {
	params := url.Values{
		"query.title": {title},
		"rows":        {"1"},
	}
	if r.Email != "" {
		params.Set("mailto", r.Email)
	}

	var resp crossRefSearchResponse
	if err := r.Client.GetJSON(ctx, "crossref", crossRefWorksBase+"?"+params.Encode(), &resp); err != nil {
		r.Logger.Warn().Err(err).Str("title", title).Msg("CrossRef DOI lookup failed")
		return ""
	}
	if len(resp.Message.Items) == 0 {
		return ""
	}
	return resp.Message.Items[0].DOI
}

func (r *Resolver) fromPubMed(ctx context.Context, title string) string {
	params := url.Values{
		"db":      {"pubmed"},
		"retmode": {"json"},
		"term":    {title},
	}
	if r.NCBIKey != "" {
		params.Set("api_key", r.NCBIKey)
	}

	var resp pubMedSearchResponse
	if err := r.Client.GetJSON(ctx, "pubmed", pubMedSearchBase+"?"+params.Encode(), &resp); err != nil {
		r.Logger.Warn().Err(err).Str("title", title).Msg("PubMed PMID lookup failed")
		return ""
	}
	if len(resp.Result.IDList) == 0 {
		return ""
	}
	return resp.Result.IDList[0]
}

// normalizePMID reduces an OpenAlex PubMed URL to its numeric id.
func normalizePMID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return path.Base(strings.TrimRight(s, "/"))
}

// filterValue removes the characters OpenAlex uses as filter separators.
func filterValue(s string) string {
	return strings.TrimSpace(strings.NewReplacer(",", " ", ":", " ", "|", " ").Replace(s))
}

type openAlexWorksResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	DOI string `json:"doi"`
	IDs struct {
		PMID string `json:"pmid"`
	} `json:"ids"`
}

type crossRefSearchResponse struct {
	Message struct {
		Items []struct {
			DOI string `json:"DOI"`
		} `json:"items"`
	} `json:"message"`
}

type pubMedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}
