// Package metrics exposes Prometheus counters for the scoring pipeline
// and the scan ingest path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TrainingRuns counts model training attempts by outcome.
	TrainingRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolmaint_training_runs_total",
		Help: "Number of model training runs by outcome.",
	}, []string{"outcome"})

	// ScoringPasses counts completed scoring passes.
	ScoringPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolmaint_scoring_passes_total",
		Help: "Number of completed scoring passes.",
	})

	// PredictionsStored counts predictions persisted across all passes.
	PredictionsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toolmaint_predictions_stored_total",
		Help: "Number of predictions written to storage.",
	})

	// NotificationsSent counts alert emails by kind.
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolmaint_notifications_sent_total",
		Help: "Number of alert notifications sent by kind.",
	}, []string{"kind"})

	// ScansProcessed counts MQTT scan events by result.
	ScansProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toolmaint_scans_processed_total",
		Help: "Number of QR scan events processed by result.",
	}, []string{"result"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
