// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package impact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-impact/internal/export"
	"github.com/pdiddy/research-impact/pkg/types"
)

// Output file names inside an author directory.
const (
	MetricsFile       = "metrics.csv"
	RecordsCSVFile    = "impact_metrics.csv"
	RecordsJSONFile   = "impact_metrics.json"
	RecordsYAMLFile   = "impact_metrics.yaml"
	AttentionMissFile = "altmetric_404.csv"
)

// Report is the result of one author run.
type Report struct {
	Author  string
	Metrics types.AuthorMetrics
	Records []types.ImpactRecord

	// Misses are the titles whose DOI had no attention record.
	Misses []string
}

// SafeName turns an author name into a directory name: lower-cased with
// spaces replaced by underscores.
func SafeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(s)
}

// Write stores the report under baseDir/<safe name>/ and returns that
// directory. The metrics table is always written. Record tables are written
// only when records exist, and the miss table only when misses exist.
func (r *Report) Write(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, SafeName(r.Author))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := export.WriteCSV(filepath.Join(dir, MetricsFile), r.Metrics.Columns(), []types.AuthorMetrics{r.Metrics}); err != nil {
		return "", err
	}

	if len(r.Records) > 0 {
		if err := export.WriteCSV(filepath.Join(dir, RecordsCSVFile), types.ImpactColumns, r.Records); err != nil {
			return "", err
		}
		if err := export.WriteJSON(filepath.Join(dir, RecordsJSONFile), r.Records); err != nil {
			return "", err
		}
		if err := export.WriteYAML(filepath.Join(dir, RecordsYAMLFile), r.Records); err != nil {
			return "", err
		}
	}

	if len(r.Misses) > 0 {
		if err := export.WriteColumn(filepath.Join(dir, AttentionMissFile), "Title", r.Misses); err != nil {
			return "", err
		}
	}
	return dir, nil
}
