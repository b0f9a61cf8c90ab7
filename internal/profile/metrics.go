// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"sort"

	"github.com/pdiddy/research-impact/pkg/types"
)

// ComputeMetrics derives citation totals, h-index, and i10-index from a
// publication listing, all-time and for citations received in sinceYear
// or later. Since-year counts come from each publication's CountsByYear.
func ComputeMetrics(author string, pubs []types.Publication, sinceYear int) types.AuthorMetrics {
	all := make([]int, 0, len(pubs))
	since := make([]int, 0, len(pubs))
	for _, p := range pubs {
		all = append(all, p.Citations)
		n := 0
		for year, c := range p.CountsByYear {
			if year >= sinceYear {
				n += c
			}
		}
		since = append(since, n)
	}

	return types.AuthorMetrics{
		Author:         author,
		SinceYear:      sinceYear,
		CitationsAll:   sum(all),
		CitationsSince: sum(since),
		HIndexAll:      hIndex(all),
		HIndexSince:    hIndex(since),
		I10IndexAll:    atLeast(all, 10),
		I10IndexSince:  atLeast(since, 10),
	}
}

// hIndex is the largest h such that h publications have at least h
// citations each.
func hIndex(counts []int) int {
	sorted := append([]int(nil), counts...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	h := 0
	for i, c := range sorted {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

func atLeast(counts []int, n int) int {
	k := 0
	for _, c := range counts {
		if c >= n {
			k++
		}
	}
	return k
}

func sum(counts []int) int {
	t := 0
	for _, c := range counts {
		t += c
	}
	return t
}
