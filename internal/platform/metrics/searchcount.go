package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeCached = "cached"

	// OutcomeConflict marks a recording lost to a concurrent create.
	OutcomeConflict = "conflict"
)

// SearchCountMetrics counts aggregator and catalog outcomes.
// A nil receiver is valid and records nothing.
type SearchCountMetrics struct {
	records  *prometheus.CounterVec
	trending *prometheus.CounterVec
	catalog  *prometheus.CounterVec
}

// NewSearchCountMetrics registers the collectors on reg.
func NewSearchCountMetrics(reg prometheus.Registerer) *SearchCountMetrics {
	m := &SearchCountMetrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_records_total",
			Help:      "Search recordings by outcome. Failures never reach the caller.",
		}, []string{"outcome"}),
		trending: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trending_requests_total",
			Help:      "Top-searches reads by outcome.",
		}, []string{"outcome"}),
		catalog: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.records, m.trending, m.catalog)
	}
	return m
}

// ObserveRecord counts one RecordSearch attempt.
func (m *SearchCountMetrics) ObserveRecord(err error) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(outcome(err, false)).Inc()
}

// ObserveRecordConflict counts one recording lost to a concurrent create.
func (m *SearchCountMetrics) ObserveRecordConflict() {
	if m == nil {
		return
	}
	m.records.WithLabelValues(OutcomeConflict).Inc()
}

// ObserveTrending counts one TopSearches call.
func (m *SearchCountMetrics) ObserveTrending(cached bool, err error) {
	if m == nil {
		return
	}
	m.trending.WithLabelValues(outcome(err, cached)).Inc()
}

// ObserveCatalog counts one catalog lookup. kind is "search" or "popular".
func (m *SearchCountMetrics) ObserveCatalog(kind string, cached bool, err error) {
	if m == nil {
		return
	}
	m.catalog.WithLabelValues(kind, outcome(err, cached)).Inc()
}

func outcome(err error, cached bool) string {
	switch {
	case err != nil:
		return OutcomeFailed
	case cached:
		return OutcomeCached
	default:
		return OutcomeOK
	}
}
