// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters for one CLI run. They live on a private
// registry so tests and repeated runs never collide with the default one.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTPRequests counts outbound calls by source and outcome
	// (ok, not_found, http_error, network_error, decode_error).
	HTTPRequests *prometheus.CounterVec

	// StageOutcomes counts open-access cascade stage results by stage and
	// outcome (open, closed, abstain).
	StageOutcomes *prometheus.CounterVec

	// Papers counts papers by outcome (processed, skipped).
	Papers *prometheus.CounterVec

	// AttentionMisses counts attention lookups that returned not-found by DOI.
	AttentionMisses prometheus.Counter

	// Opportunities counts funding records fetched per source.
	Opportunities *prometheus.CounterVec
}

// NewMetrics registers all counters on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_impact",
			Name:      "http_requests_total",
			Help:      "Outbound HTTP requests by source and outcome.",
		}, []string{"source", "outcome"}),
		StageOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_impact",
			Name:      "oa_stage_outcomes_total",
			Help:      "Open-access cascade stage results by stage and outcome.",
		}, []string{"stage", "outcome"}),
		Papers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_impact",
			Name:      "papers_total",
			Help:      "Papers seen by the impact pipeline by outcome.",
		}, []string{"outcome"}),
		AttentionMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "research_impact",
			Name:      "attention_misses_total",
			Help:      "Attention lookups that found no record for the DOI.",
		}),
		Opportunities: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "research_impact",
			Name:      "funding_opportunities_total",
			Help:      "Funding records fetched by source.",
		}, []string{"source"}),
	}
}

// Request records one outbound HTTP call.
func (m *Metrics) Request(source, outcome string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(source, outcome).Inc()
}

// Stage records one cascade stage result.
func (m *Metrics) Stage(stage, outcome string) {
	if m == nil {
		return
	}
	m.StageOutcomes.WithLabelValues(stage, outcome).Inc()
}

// Paper records a processed or skipped paper.
func (m *Metrics) Paper(outcome string) {
	if m == nil {
		return
	}
	m.Papers.WithLabelValues(outcome).Inc()
}

// AttentionMiss records a not-found attention lookup.
func (m *Metrics) AttentionMiss() {
	if m == nil {
		return
	}
	m.AttentionMisses.Inc()
}

// Fetched records n funding records from source.
func (m *Metrics) Fetched(source string, n int) {
	if m == nil {
		return
	}
	m.Opportunities.WithLabelValues(source).Add(float64(n))
}

// WriteTextfile writes the registry in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
