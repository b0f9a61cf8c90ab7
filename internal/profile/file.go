// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-impact/pkg/types"
)

// ListingFile is the on-disk form read by FileProvider.
//
//	authors:
//	  - id: jkong
//	    display_name: Jude Kong
//	    cited_by: 1200
//	    publications:
//	      - title: ...
//	        year: "2021"
//	        venue: PLOS ONE
//	        citations: 10
//	        doi: https://doi.org/10.1371/...
//	        counts_by_year: {2021: 4, 2022: 6}
type ListingFile struct {
	Authors []AuthorListing `yaml:"authors"`
}

// AuthorListing is one author entry of a ListingFile.
type AuthorListing struct {
	types.AuthorProfile `yaml:",inline"`
	Publications        []types.Publication `yaml:"publications"`
}

// FileProvider serves profiles from a ListingFile loaded in memory.
type FileProvider struct {
	authors map[string]AuthorListing
}

// LoadFile reads a ListingFile from path.
func LoadFile(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading listing file: %w", err)
	}

	var lf ListingFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing listing file %s: %w", path, err)
	}

	fp := &FileProvider{authors: make(map[string]AuthorListing, len(lf.Authors))}
	for _, a := range lf.Authors {
		if a.ID == "" {
			return nil, fmt.Errorf("listing file %s: author %q has no id", path, a.DisplayName)
		}
		fp.authors[a.ID] = normalizeListing(a)
	}
	return fp, nil
}

// Profile returns the profile stored under id.
func (f *FileProvider) Profile(_ context.Context, id string) (types.AuthorProfile, error) {
	a, ok := f.authors[id]
	if !ok {
		return types.AuthorProfile{}, fmt.Errorf("author %s not in listing file", id)
	}
	return a.AuthorProfile, nil
}

// Publications returns up to max publications in file order.
func (f *FileProvider) Publications(_ context.Context, id string, max int) ([]types.Publication, error) {
	a, ok := f.authors[id]
	if !ok {
		return nil, fmt.Errorf("author %s not in listing file", id)
	}
	pubs := a.Publications
	if max > 0 && len(pubs) > max {
		pubs = pubs[:max]
	}
	out := make([]types.Publication, len(pubs))
	copy(out, pubs)
	return out, nil
}

// normalizeListing fills the sentinels a hand-written file tends to omit.
func normalizeListing(a AuthorListing) AuthorListing {
	for i := range a.Publications {
		p := &a.Publications[i]
		if p.Title == "" {
			p.Title = "Untitled"
		}
		if p.Year == "" {
			p.Year = types.NotAvailable
		}
		if p.Venue == "" {
			p.Venue = types.NotAvailable
		}
	}
	return a
}
