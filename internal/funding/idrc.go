// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funding

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jinzhu/now"

	"github.com/pdiddy/research-impact/internal/httputil"
	"github.com/pdiddy/research-impact/pkg/types"
)

var idrcHost = "https://idrc-crdi.ca"

// IDRCSource is the Source value of IDRC records.
const IDRCSource = "IDRC - CRDI"

const idrcDeadlineLayout = "January 2, 2006"

// IDRCScraper reads the IDRC funding listing page.
type IDRCScraper struct {
	Client *httputil.Client

	// URL is the listing page, e.g. https://idrc-crdi.ca/en/funding.
	URL string

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Scrape fetches the listing page and returns one record per listing row.
// A row whose deadline reads as "January 2, 2006" is Open until the end of
// that day and Closed afterwards. Any other deadline gives Unknown.
func (s *IDRCScraper) Scrape(ctx context.Context) ([]types.Opportunity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating IDRC request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(ctx, "idrc", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing IDRC page: %w", err)
	}
	return s.parse(doc), nil
}

func (s *IDRCScraper) parse(doc *goquery.Document) []types.Opportunity {
	clock := s.Now
	if clock == nil {
		clock = time.Now
	}
	today := now.With(clock()).BeginningOfDay()

	out := []types.Opportunity{}
	doc.Find("div.views-row").Each(func(_ int, row *goquery.Selection) {
		rec := types.Opportunity{
			Title:            types.NotAvailable,
			URL:              types.NotAvailable,
			Deadline:         types.NotAvailable,
			CallFor:          types.NotAvailable,
			Status:           "Unknown",
			EstimatedFunding: types.NotListed,
			Source:           IDRCSource,
			Year:             types.NotSpecified,
		}

		if link := row.Find("div.views-field-title span.field-content a").First(); link.Length() > 0 {
			rec.Title = strings.TrimSpace(link.Text())
			if href, ok := link.Attr("href"); ok {
				rec.URL = absoluteURL(href)
			}
		}
		if t := row.Find("div.views-field-field-award-deadline time").First(); t.Length() > 0 {
			rec.Deadline = strings.TrimSpace(t.Text())
		}
		if c := row.Find("div.views-field-field-award-call-for span.field-content").First(); c.Length() > 0 {
			rec.CallFor = strings.TrimSpace(c.Text())
		}

		if deadline, err := time.ParseInLocation(idrcDeadlineLayout, rec.Deadline, today.Location()); err == nil {
			rec.Status = "Closed"
			if !deadline.Before(today) {
				rec.Status = "Open"
			}
			rec.Year = strconv.Itoa(deadline.Year())
		}
		out = append(out, rec)
	})
	return out
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return idrcHost + href
}
