// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-impact/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research_impact_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	logger, closer, err := NewLogger(types.LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	logger.Info().Msg("hello")
	logger.Debug().Msg("hidden")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "previous run\n"), "existing content must be kept")
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"run_id":`)
	assert.NotContains(t, out, "hidden")
}

func TestNewLogger_BadPath(t *testing.T) {
	_, _, err := NewLogger(types.LoggingConfig{Output: filepath.Join(t.TempDir(), "missing", "log.txt")})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Request("openalex", "ok")
	m.Request("openalex", "ok")
	m.Stage("registry", "open")
	m.Paper("skipped")
	m.AttentionMiss()
	m.Fetched("NIH RePORTER", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("openalex", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageOutcomes.WithLabelValues("registry", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Papers.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttentionMisses))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Opportunities.WithLabelValues("NIH RePORTER")))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "research_impact_http_requests_total")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Request("x", "ok")
	m.Stage("x", "open")
	m.Paper("processed")
	m.AttentionMiss()
	m.Fetched("x", 1)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "never")))
}
