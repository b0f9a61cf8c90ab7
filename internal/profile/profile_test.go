// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

// --- ComputeMetrics ---

func TestHIndex(t *testing.T) {
	tests := []struct {
		counts []int
		want   int
	}{
		{nil, 0},
		{[]int{0, 0}, 0},
		{[]int{1}, 1},
		{[]int{10, 8, 5, 4, 3}, 4},
		{[]int{3, 0, 6, 1, 5}, 3},
		{[]int{100}, 1},
		{[]int{2, 2, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.counts), func(t *testing.T) {
			assert.Equal(t, tt.want, hIndex(tt.counts))
		})
	}
}

func TestComputeMetrics(t *testing.T) {
	pubs := []types.Publication{
		{Citations: 25, CountsByYear: map[int]int{2018: 10, 2020: 5, 2023: 10}},
		{Citations: 12, CountsByYear: map[int]int{2019: 12}},
		{Citations: 3, CountsByYear: map[int]int{2021: 3}},
		{Citations: 0},
	}

	got := ComputeMetrics("Jude Kong", pubs, 2020)

	assert.Equal(t, types.AuthorMetrics{
		Author:         "Jude Kong",
		SinceYear:      2020,
		CitationsAll:   40,
		CitationsSince: 18,
		HIndexAll:      3,
		HIndexSince:    2,
		I10IndexAll:    2,
		I10IndexSince:  1,
	}, got)
	assert.Equal(t, []string{
		"Author", "Citations_All", "Citations_Since2020", "h_index_All",
		"h_index_Since2020", "i10_index_All", "i10_index_Since2020",
	}, got.Columns())
	assert.Equal(t, []string{"Jude Kong", "40", "18", "3", "2", "2", "1"}, got.Row())
}

func TestComputeMetrics_Empty(t *testing.T) {
	got := ComputeMetrics("Nobody", nil, 2020)
	assert.Zero(t, got.CitationsAll)
	assert.Zero(t, got.HIndexAll)
}

// --- OpenAlexProvider ---

const sampleAuthorJSON = `{"id": "https://openalex.org/A5023888391", "display_name": "Jude Dzevela Kong", "cited_by_count": 1234}`

func pageJSON(next string, titles ...string) string {
	results := ""
	for i, title := range titles {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{
		  "display_name": %q,
		  "publication_year": 2021,
		  "doi": "https://doi.org/10.1/%d",
		  "cited_by_count": %d,
		  "ids": {"pmid": "https://pubmed.ncbi.nlm.nih.gov/4242"},
		  "primary_location": {"source": {"display_name": "Infectious Disease Modelling"}},
		  "authorships": [{"author": {"display_name": "A. One"}}, {"author": {"display_name": "B. Two"}}],
		  "counts_by_year": [{"year": 2022, "cited_by_count": 3}, {"year": 2021, "cited_by_count": 1}]
		}`, title, i, 10-i)
	}
	nextJSON := "null"
	if next != "" {
		nextJSON = fmt.Sprintf("%q", next)
	}
	return fmt.Sprintf(`{"meta": {"count": 3, "next_cursor": %s}, "results": [%s]}`, nextJSON, results)
}

func setupOpenAlex(t *testing.T, handler http.HandlerFunc) *OpenAlexProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	origA, origW := openAlexAuthorsBase, openAlexWorksBase
	openAlexAuthorsBase = ts.URL + "/authors"
	openAlexWorksBase = ts.URL + "/works"
	t.Cleanup(func() { openAlexAuthorsBase, openAlexWorksBase = origA, origW })

	return &OpenAlexProvider{
		Client: httputil.New(types.HTTPConfig{Timeout: 2 * time.Second}, nil),
		Logger: zerolog.Nop(),
		Email:  "me@example.org",
	}
}

func TestOpenAlexProvider_Profile(t *testing.T) {
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors/A5023888391", r.URL.Path)
		assert.Equal(t, "me@example.org", r.URL.Query().Get("mailto"))
		fmt.Fprint(w, sampleAuthorJSON)
	})

	got, err := p.Profile(context.Background(), "https://openalex.org/A5023888391")
	require.NoError(t, err)
	assert.Equal(t, types.AuthorProfile{ID: "A5023888391", DisplayName: "Jude Dzevela Kong", CitedBy: 1234}, got)
}

func TestOpenAlexProvider_ProfileNotFound(t *testing.T) {
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := p.Profile(context.Background(), "A0")
	require.Error(t, err)
	assert.ErrorIs(t, err, httputil.ErrNotFound)
}

func TestOpenAlexProvider_PublicationsPaginates(t *testing.T) {
	var cursors []string
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "author.id:A1", q.Get("filter"))
		assert.Equal(t, "cited_by_count:desc", q.Get("sort"))
		cursors = append(cursors, q.Get("cursor"))
		switch q.Get("cursor") {
		case "*":
			fmt.Fprint(w, pageJSON("c2", "First", "Second"))
		case "c2":
			fmt.Fprint(w, pageJSON("", "Third"))
		default:
			t.Errorf("unexpected cursor %q", q.Get("cursor"))
		}
	})

	pubs, err := p.Publications(context.Background(), "A1", 300)
	require.NoError(t, err)

	assert.Equal(t, []string{"*", "c2"}, cursors)
	require.Len(t, pubs, 3)
	assert.Equal(t, types.Publication{
		Title:        "First",
		Year:         "2021",
		Authors:      "A. One and B. Two",
		Venue:        "Infectious Disease Modelling",
		Citations:    10,
		DOI:          "https://doi.org/10.1/0",
		PMID:         "4242",
		CountsByYear: map[int]int{2022: 3, 2021: 1},
	}, pubs[0])
	assert.Equal(t, "Third", pubs[2].Title)
}

func TestOpenAlexProvider_PublicationsRespectsMax(t *testing.T) {
	var perPage string
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query().Get("per-page")
		fmt.Fprint(w, pageJSON("more", "First", "Second"))
	})

	pubs, err := p.Publications(context.Background(), "A1", 2)
	require.NoError(t, err)
	assert.Len(t, pubs, 2)
	assert.Equal(t, "2", perPage)
}

func TestOpenAlexProvider_PublicationsSentinels(t *testing.T) {
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta": {}, "results": [{"display_name": "", "primary_location": null}]}`)
	})

	pubs, err := p.Publications(context.Background(), "A1", 10)
	require.NoError(t, err)
	require.Len(t, pubs, 1)
	assert.Equal(t, "Untitled", pubs[0].Title)
	assert.Equal(t, types.NotAvailable, pubs[0].Year)
	assert.Equal(t, types.NotAvailable, pubs[0].Venue)
}

func TestOpenAlexProvider_PartialListingOnLaterFailure(t *testing.T) {
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "*" {
			fmt.Fprint(w, pageJSON("c2", "First"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	pubs, err := p.Publications(context.Background(), "A1", 10)
	require.NoError(t, err)
	assert.Len(t, pubs, 1)
}

func TestOpenAlexProvider_FirstPageFailure(t *testing.T) {
	p := setupOpenAlex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := p.Publications(context.Background(), "A1", 10)
	assert.Error(t, err)
}

// --- FileProvider ---

const sampleListing = `
authors:
  - id: jkong
    display_name: Jude Kong
    cited_by: 99
    publications:
      - title: Modelling cholera outbreaks
        year: "2021"
        authors: J Kong and A Other
        venue: Infectious Disease Modelling
        citations: 12
        doi: https://doi.org/10.1016/j.idm.2021.01.001
        counts_by_year: {2021: 5, 2022: 7}
      - title: A preprint
        venue: medRxiv
      - title: Third
`

func writeListing(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileProvider(t *testing.T) {
	fp, err := LoadFile(writeListing(t, sampleListing))
	require.NoError(t, err)

	prof, err := fp.Profile(context.Background(), "jkong")
	require.NoError(t, err)
	assert.Equal(t, types.AuthorProfile{ID: "jkong", DisplayName: "Jude Kong", CitedBy: 99}, prof)

	pubs, err := fp.Publications(context.Background(), "jkong", 2)
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, "Modelling cholera outbreaks", pubs[0].Title)
	assert.Equal(t, map[int]int{2021: 5, 2022: 7}, pubs[0].CountsByYear)
	assert.Equal(t, types.NotAvailable, pubs[1].Year)
	assert.Equal(t, "medRxiv", pubs[1].Venue)

	_, err = fp.Profile(context.Background(), "nobody")
	assert.Error(t, err)
	_, err = fp.Publications(context.Background(), "nobody", 1)
	assert.Error(t, err)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeListing(t, "authors: [[["))
	assert.Error(t, err)

	_, err = LoadFile(writeListing(t, "authors:\n  - display_name: No Id\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no id")
}

func TestNew(t *testing.T) {
	p, err := New(types.ProfileConfig{Provider: "openalex"}, nil, "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAlexProvider{}, p)

	p, err = New(types.ProfileConfig{Provider: "file", File: writeListing(t, sampleListing)}, nil, "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FileProvider{}, p)

	p, err = New(types.ProfileConfig{Provider: "file", File: "/does/not/exist.yaml"}, nil, "", zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, p)

	_, err = New(types.ProfileConfig{Provider: "scholar"}, nil, "", zerolog.Nop())
	assert.Error(t, err)
}
