package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	triggerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fms_trigger_runs_total",
			Help: "Trigger executions by outcome",
		},
		[]string{"trigger", "outcome"},
	)

	triggerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fms_trigger_duration_seconds",
			Help:    "Trigger execution latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"trigger"},
	)
)
