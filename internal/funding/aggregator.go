// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funding

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-impact/internal/export"
	"github.com/pdiddy/research-impact/internal/observability"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Output file stems inside the funding output directory. Each is written
// as <stem>.csv and <stem>.json.
const (
	NIHFile       = "nih_funding"
	GrantsGovFile = "grantsgov_funding"
	IDRCFile      = "idrc_funding"
	CombinedFile  = "combined_funding_opportunities"

	// ScrapeFile is written by the stand-alone IDRC scrape.
	ScrapeFile = "idrc_funding_opportunities"
)

// Result holds the records of one aggregation run.
type Result struct {
	NIH       []types.Opportunity
	GrantsGov []types.Opportunity
	IDRC      []types.Opportunity

	// Combined is every record deduplicated by lower-cased title and source.
	Combined []types.Opportunity
}

// Aggregator fetches all three sources and writes per-source and combined
// tables. A failing source is logged and contributes no records.
type Aggregator struct {
	NIH       *NIHClient
	GrantsGov *GrantsGovClient
	IDRC      *IDRCScraper

	FromYear, ToYear int
	NIHWorkers       int
	GrantsGovWorkers int
	GrantsGovRows    int

	OutputDir string
	Logger    zerolog.Logger
	Metrics   *observability.Metrics

	// Out receives human-readable progress lines. Nil discards them.
	Out io.Writer
}

// Run fetches every source, writes the output files, and returns the
// records. Only cancellation and write failures are returned as errors.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	out := a.Out
	if out == nil {
		out = io.Discard
	}

	res := &Result{}
	res.NIH = a.fetchNIH(ctx)
	fmt.Fprintf(out, "NIH RePORTER: %d records\n", len(res.NIH))
	res.GrantsGov = a.fetchGrantsGov(ctx)
	fmt.Fprintf(out, "Grants.gov: %d records\n", len(res.GrantsGov))
	res.IDRC = a.fetchIDRC(ctx)
	fmt.Fprintf(out, "IDRC: %d records\n", len(res.IDRC))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Combined = Combine(res.NIH, res.GrantsGov, res.IDRC)

	for _, f := range []struct {
		stem    string
		records []types.Opportunity
	}{
		{NIHFile, res.NIH},
		{GrantsGovFile, res.GrantsGov},
		{IDRCFile, res.IDRC},
		{CombinedFile, res.Combined},
	} {
		if err := WriteOpportunities(a.OutputDir, f.stem, f.records); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(out, "Saved %d unique funding opportunities.\n", len(res.Combined))
	return res, nil
}

// fetchNIH runs one task per fiscal year. Each task fills its own slot and
// the slots are concatenated in year order.
func (a *Aggregator) fetchNIH(ctx context.Context) []types.Opportunity {
	if a.NIH == nil || a.FromYear > a.ToYear {
		return []types.Opportunity{}
	}
	years := make([]int, 0, a.ToYear-a.FromYear+1)
	for y := a.FromYear; y <= a.ToYear; y++ {
		years = append(years, y)
	}

	slots := make([][]types.Opportunity, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(a.NIHWorkers))
	for i, year := range years {
		g.Go(func() error {
			recs, err := a.NIH.FetchYear(gctx, year)
			if err != nil {
				a.Logger.Warn().Err(err).Int("year", year).Int("kept", len(recs)).Msg("NIH fetch stopped early")
			}
			slots[i] = recs
			return nil
		})
	}
	g.Wait()

	recs := flatten(slots)
	a.Metrics.Fetched("nih", len(recs))
	return recs
}

// fetchGrantsGov counts the matches, fetches every page in parallel, and
// keeps the first record seen per title and agency in page order.
func (a *Aggregator) fetchGrantsGov(ctx context.Context) []types.Opportunity {
	if a.GrantsGov == nil {
		return []types.Opportunity{}
	}
	total, err := a.GrantsGov.Count(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("failed to fetch Grants.gov record count")
		return []types.Opportunity{}
	}

	rows := a.GrantsGovRows
	if rows <= 0 {
		rows = 1000
	}
	pages := (total + rows - 1) / rows

	slots := make([][]types.Opportunity, pages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(a.GrantsGovWorkers))
	for page := range pages {
		g.Go(func() error {
			recs, err := a.GrantsGov.FetchPage(gctx, page*rows+1, rows)
			if err != nil {
				a.Logger.Warn().Err(err).Int("page", page).Msg("Grants.gov page failed")
				return nil
			}
			slots[page] = recs
			return nil
		})
	}
	g.Wait()

	recs := dedupFirst(flatten(slots))
	a.Metrics.Fetched("grants_gov", len(recs))
	return recs
}

func (a *Aggregator) fetchIDRC(ctx context.Context) []types.Opportunity {
	if a.IDRC == nil {
		return []types.Opportunity{}
	}
	recs, err := a.IDRC.Scrape(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("IDRC scrape failed")
		return []types.Opportunity{}
	}
	a.Metrics.Fetched("idrc", len(recs))
	return recs
}

// Combine concatenates sets in order and collapses records with the same
// lower-cased title and source. The last duplicate's fields win and the
// record keeps the position of its first occurrence.
func Combine(sets ...[]types.Opportunity) []types.Opportunity {
	index := make(map[types.OpportunityKey]int)
	out := []types.Opportunity{}
	for _, set := range sets {
		for _, o := range set {
			key := o.DedupKey()
			if i, ok := index[key]; ok {
				out[i] = o
				continue
			}
			index[key] = len(out)
			out = append(out, o)
		}
	}
	return out
}

// dedupFirst keeps the first record per dedup key.
func dedupFirst(recs []types.Opportunity) []types.Opportunity {
	seen := make(map[types.OpportunityKey]bool, len(recs))
	out := make([]types.Opportunity, 0, len(recs))
	for _, o := range recs {
		key := o.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

// WriteOpportunities writes records to dir/<stem>.csv and dir/<stem>.json.
func WriteOpportunities(dir, stem string, records []types.Opportunity) error {
	if records == nil {
		records = []types.Opportunity{}
	}
	if err := export.WriteCSV(filepath.Join(dir, stem+".csv"), types.OpportunityColumns, records); err != nil {
		return err
	}
	return export.WriteJSON(filepath.Join(dir, stem+".json"), records)
}

func flatten(slots [][]types.Opportunity) []types.Opportunity {
	out := []types.Opportunity{}
	for _, s := range slots {
		out = append(out, s...)
	}
	return out
}

func workers(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
