// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package funding collects funding opportunities from NIH RePORTER,
// Grants.gov, and the IDRC funding page, and merges them into one
// deduplicated table.
package funding

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/research-impact/pkg/types"
)

// dateLayouts are tried in order before falling back to dateparse.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
}

// ParseDate parses a deadline in one of the known layouts or any layout
// dateparse recognizes.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate normalizes a date string to YYYY-MM-DD, or returns
// types.NotSpecified when it cannot be parsed.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return types.NotSpecified
	}
	return t.Format("2006-01-02")
}

// yearOf returns the year of a formatted date, or types.NotSpecified.
func yearOf(formatted string) string {
	if formatted == types.NotSpecified || len(formatted) < 4 {
		return types.NotSpecified
	}
	return formatted[:4]
}

var usd = message.NewPrinter(language.English)

// FormatUSD renders an award amount as "$1,234.56". Zero renders as
// types.NotListed.
func FormatUSD(amount float64) string {
	if amount == 0 {
		return types.NotListed
	}
	return usd.Sprintf("$%.2f", amount)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
