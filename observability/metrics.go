// Package observability exposes pipeline health as Prometheus metrics on
// a side port, scraped by the operations dashboard.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Pipeline executions by outcome.",
		},
		[]string{"outcome"},
	)

	ListingsScored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "listings_scored",
			Help: "Listings scored in the latest run.",
		},
	)

	AccumulatedRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_accumulated_rows",
			Help: "Rows in the accumulated training set after the latest merge.",
		},
	)

	PredictionDrift = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prediction_drift_score",
			Help: "Prediction drift against the reference distribution.",
		},
	)

	DriftedColumns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "num_drifted_columns",
			Help: "Feature columns that drifted in the latest run.",
		},
	)

	GoodDeals = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "good_deals_found",
			Help: "Listings priced under the model estimate in the latest run.",
		},
	)
)

// Start registers the collectors and serves /metrics on the given port.
func Start(port string) {
	prometheus.MustRegister(PipelineRuns, ListingsScored, AccumulatedRows,
		PredictionDrift, DriftedColumns, GoodDeals)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
