// Package metrics defines the Prometheus instruments of the sync core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueLength is the current length of each device-local queue.
	QueueLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dreamjournal_queue_length",
		Help: "Items waiting in a device-local queue",
	}, []string{"queue"})

	// Online is 1 while the connectivity observer reports reachability.
	Online = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dreamjournal_online",
		Help: "1 when the remote store is reachable",
	})

	// Reconnects counts offline→online transitions.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dreamjournal_reconnects_total",
		Help: "Offline to online transitions",
	})

	// Replays counts operation replay outcomes: applied, failed, evicted.
	Replays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamjournal_operation_replays_total",
		Help: "Offline operation replay attempts by outcome",
	}, []string{"outcome"})

	// Captures counts capture pipeline outcomes: persisted, failed.
	Captures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamjournal_captures_total",
		Help: "Capture pipeline runs by outcome",
	}, []string{"outcome"})

	// AnalysisDuration tracks external analysis latency per call.
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dreamjournal_analysis_duration_seconds",
		Help:    "Latency of analysis service calls",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"call"})

	// Enrichments counts background enrichment outcomes: enriched, failed.
	Enrichments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamjournal_enrichments_total",
		Help: "Background deep analysis runs by outcome",
	}, []string{"outcome"})

	// Reports counts weekly report checks by outcome.
	Reports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dreamjournal_weekly_reports_total",
		Help: "Weekly aggregate checks by outcome",
	}, []string{"outcome"})
)

// Queue label values.
const (
	QueueCaptures   = "pending_captures"
	QueueOperations = "offline_operations"
)

// SetOnline records the connectivity state.
func SetOnline(online bool) {
	if online {
		Online.Set(1)
		return
	}
	Online.Set(0)
}
