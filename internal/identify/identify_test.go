// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

func TestCleanDOI(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://doi.org/10.1371/journal.pone.0123456", "10.1371/journal.pone.0123456", true},
		{"http://doi.org/10.1000/xyz", "10.1000/xyz", true},
		{"https://dx.doi.org/10.1000/ABC", "10.1000/ABC", true},
		{"HTTPS://DOI.ORG/10.1000/Mixed", "10.1000/Mixed", true},
		{"doi:10.5281/zenodo.1234", "10.5281/zenodo.1234", true},
		{"10.1101/2020.01.01.123456", "10.1101/2020.01.01.123456", true},
		{"  https://doi.org/10.1/x  ", "10.1/x", true},
		{"https://www.sciencedirect.com/science/article/pii/S0001", "", false},
		{"https://scholar.google.com/citations?view_op=view_citation", "", false},
		{"https://doi.org/", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanDOI(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "covid19 modelling in africa a review", NormalizeTitle("COVID-19: Modelling in Africa, a Review!"))
	assert.Equal(t, "", NormalizeTitle("?!"))

	long := strings.Repeat("é", 250)
	assert.Equal(t, 200, len([]rune(NormalizeTitle(long))))
}

func TestNormalizePMID(t *testing.T) {
	assert.Equal(t, "33284736", normalizePMID("https://pubmed.ncbi.nlm.nih.gov/33284736"))
	assert.Equal(t, "33284736", normalizePMID("https://pubmed.ncbi.nlm.nih.gov/33284736/"))
	assert.Equal(t, "123", normalizePMID("123"))
	assert.Equal(t, "", normalizePMID(""))
}

// --- Mock upstream APIs ---

type mockAPIs struct {
	openAlex, crossRef, pubMed int32
	lastFilter                 atomic.Value
}

func setupResolver(t *testing.T, openAlexBody, crossRefBody, pubMedBody string) (*Resolver, *mockAPIs) {
	t.Helper()
	m := &mockAPIs{}
	mux := http.NewServeMux()
	mux.HandleFunc("/openalex/works", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.openAlex, 1)
		m.lastFilter.Store(r.URL.Query().Get("filter"))
		serve(w, openAlexBody)
	})
	mux.HandleFunc("/crossref/works", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.crossRef, 1)
		serve(w, crossRefBody)
	})
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.pubMed, 1)
		assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
		serve(w, pubMedBody)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	origOA, origCR, origPM := openAlexWorksBase, crossRefWorksBase, pubMedSearchBase
	openAlexWorksBase = ts.URL + "/openalex/works"
	crossRefWorksBase = ts.URL + "/crossref/works"
	pubMedSearchBase = ts.URL + "/esearch.fcgi"
	t.Cleanup(func() { openAlexWorksBase, crossRefWorksBase, pubMedSearchBase = origOA, origCR, origPM })

	r := &Resolver{
		Client: httputil.New(types.HTTPConfig{Timeout: 2 * time.Second}, nil),
		Logger: zerolog.Nop(),
	}
	return r, m
}

// serve writes body, or a 500 when body is empty.
func serve(w http.ResponseWriter, body string) {
	if body == "" {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, body)
}

const (
	openAlexHit   = `{"results":[{"doi":"https://doi.org/10.1016/j.idm.2021.01.001","ids":{"pmid":"https://pubmed.ncbi.nlm.nih.gov/33500000"}}]}`
	openAlexNoHit = `{"results":[]}`
	crossRefHit   = `{"message":{"items":[{"DOI":"10.3390/ijerph18010001"}]}}`
	crossRefNoHit = `{"message":{"items":[]}}`
	pubMedHit     = `{"esearchresult":{"idlist":["34000001","34000002"]}}`
	pubMedNoHit   = `{"esearchresult":{"idlist":[]}}`
)

func TestResolve_ListingDOISkipsDOILookups(t *testing.T) {
	r, m := setupResolver(t, openAlexHit, crossRefHit, pubMedHit)

	ids := r.Resolve(context.Background(), types.Publication{
		Title: "Some paper",
		DOI:   "https://doi.org/10.1234/abc.5678",
	}, "Jude Kong")

	assert.Equal(t, "10.1234/abc.5678", ids.DOI)
	assert.Equal(t, "34000001", ids.PMID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.openAlex))
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.crossRef))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.pubMed))
}

func TestResolve_OpenAlexSuppliesBoth(t *testing.T) {
	r, m := setupResolver(t, openAlexHit, crossRefHit, pubMedHit)

	ids := r.Resolve(context.Background(), types.Publication{
		Title: "Modelling, Cholera: Outbreaks",
		DOI:   "https://www.example.com/landing/page",
	}, "Jude Kong")

	assert.Equal(t, types.Identifiers{DOI: "10.1016/j.idm.2021.01.001", PMID: "33500000"}, ids)
	assert.Equal(t, "title.search:modelling cholera outbreaks,raw_author_name.search:Jude Kong", m.lastFilter.Load())
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.crossRef))
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.pubMed))
}

func TestResolve_CrossRefFallback(t *testing.T) {
	r, m := setupResolver(t, openAlexNoHit, crossRefHit, pubMedNoHit)

	ids := r.Resolve(context.Background(), types.Publication{Title: "A study"}, "")

	assert.Equal(t, types.Identifiers{DOI: "10.3390/ijerph18010001"}, ids)
	assert.Equal(t, "title.search:a study", m.lastFilter.Load())
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.crossRef))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.pubMed))
}

func TestResolve_ListingPMIDPreferredOverSearch(t *testing.T) {
	r, m := setupResolver(t, openAlexNoHit, crossRefNoHit, pubMedHit)

	ids := r.Resolve(context.Background(), types.Publication{Title: "A study", PMID: "999"}, "")

	assert.Equal(t, types.Identifiers{PMID: "999"}, ids)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.pubMed))
}

func TestResolve_FailuresDowngradeToAbsent(t *testing.T) {
	r, m := setupResolver(t, "", "", "")

	ids := r.Resolve(context.Background(), types.Publication{Title: "Unfindable"}, "Someone")

	assert.True(t, ids.Empty())
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.openAlex))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.crossRef))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.pubMed))
}

func TestResolve_MalformedBodiesDowngradeToAbsent(t *testing.T) {
	r, _ := setupResolver(t, `{"results":`, `not json`, `{"esearchresult":{}}`)

	ids := r.Resolve(context.Background(), types.Publication{Title: "Broken"}, "")
	require.True(t, ids.Empty())
}
