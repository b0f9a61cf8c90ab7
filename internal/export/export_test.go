// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-impact/pkg/types"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleRecords() []types.ImpactRecord {
	return []types.ImpactRecord{
		{
			Author:             "Jude Kong",
			Title:              `Modelling "COVID-19", cholera & malaria`,
			Year:               "2021",
			Citations:          12,
			DOI:                "https://doi.org/10.1016/j.idm.2021.01.001",
			PMID:               "33500000",
			Authors:            "J Kong and A Other",
			Journal:            "Infectious Disease Modelling",
			AltmetricScore:     42.25,
			TwitterMentions:    5,
			PolicyMentions:     1,
			MediaMentioned:     true,
			OpenAccess:         true,
			OAStatus:           "registry:gold",
			OAType:             "Gold OA",
			PublicationType:    "Open Access",
			PublicHealthImpact: true,
		},
		{
			Author:          "Jude Kong",
			Title:           "A preprint, with commas",
			Year:            "N/A",
			DOI:             "N/A",
			PMID:            "",
			Journal:         "medRxiv",
			OpenAccess:      true,
			OAStatus:        "preprint:medrxiv",
			OAType:          "Unknown OA",
			Preprint:        true,
			PublicationType: "Preprint",
		},
	}
}

// jsonRow renders a decoded JSON record in ImpactColumns order using the
// same formatting as the CSV writer.
func jsonRow(t *testing.T, m map[string]any) []string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	var rec types.ImpactRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	return rec.Row()
}

func TestImpactRecords_CSVAndJSONAgree(t *testing.T) {
	dir := t.TempDir()
	records := sampleRecords()
	csvPath := filepath.Join(dir, "impact_metrics.csv")
	jsonPath := filepath.Join(dir, "impact_metrics.json")

	require.NoError(t, WriteCSV(csvPath, types.ImpactColumns, records))
	require.NoError(t, WriteJSON(jsonPath, records))

	rows := readCSV(t, csvPath)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, types.ImpactColumns, rows[0])

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(records))

	for i := range records {
		// Every column header is a JSON key.
		for _, col := range types.ImpactColumns {
			assert.Contains(t, decoded[i], col)
		}
		assert.Equal(t, rows[i+1], jsonRow(t, decoded[i]), "record %d", i)
	}
	assert.Contains(t, string(data), "cholera & malaria", "JSON must not HTML-escape")
}

func TestWriteCSV_CreatesDirectoryAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "funding.csv")

	first := []types.Opportunity{{Title: "A"}, {Title: "B"}}
	require.NoError(t, WriteCSV(path, types.OpportunityColumns, first))
	second := []types.Opportunity{{Title: "C", Source: "IDRC - CRDI", Year: "2025"}}
	require.NoError(t, WriteCSV(path, types.OpportunityColumns, second))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"C", "", "", "", "", "", "IDRC - CRDI", "2025"}, rows[1])
}

func TestWriteColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "altmetric_404.csv")
	require.NoError(t, WriteColumn(path, "Title", []string{"First, paper", `Second "paper"`}))

	assert.Equal(t, [][]string{{"Title"}, {"First, paper"}, {`Second "paper"`}}, readCSV(t, path))
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "impact_metrics.yaml")
	require.NoError(t, WriteYAML(path, sampleRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []types.ImpactRecord
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, sampleRecords(), got)
	assert.True(t, strings.Contains(string(data), "oa_type: Gold OA"))
}

func TestWriteJSON_EmptySlice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(path, []types.Opportunity{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteFile_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteJSON(filepath.Join(blocker, "sub", "x.json"), 1)
	assert.Error(t, err)
}
