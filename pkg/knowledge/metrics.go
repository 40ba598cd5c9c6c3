package knowledge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	sourceSummary = "summary"
	sourceSearch  = "search"

	outcomeAnswered  = "answered"
	outcomeCacheHit  = "cache_hit"
	outcomeNotFound  = "not_found"
	outcomeAmbiguous = "ambiguous"
	outcomeEmpty     = "empty"
	outcomeError     = "error"
)

var (
	lookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_knowledge_lookups_total",
		Help: "External knowledge lookups by source and outcome",
	}, []string{"source", "outcome"})

	lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_knowledge_lookup_seconds",
		Help:    "Latency of external knowledge provider calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})
)
