package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for reportsProcessed.
const (
	outcomeParsed    = "parsed"
	outcomeDuplicate = "duplicate"
	outcomeDrift     = "drift"
	outcomeError     = "error"
)

var (
	reportsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campaign_finance",
		Name:      "reports_processed_total",
		Help:      "Reports processed, by outcome.",
	}, []string{"outcome"})

	recordsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campaign_finance",
		Name:      "records_parsed_total",
		Help:      "Normalized records produced, by kind.",
	}, []string{"kind"})

	parseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campaign_finance",
		Name:      "parse_errors_total",
		Help:      "Parse failures, by error kind.",
	}, []string{"kind"})

	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "campaign_finance",
		Name:      "parse_duration_seconds",
		Help:      "Time spent parsing extracted report text.",
		Buckets:   prometheus.DefBuckets,
	})
)
