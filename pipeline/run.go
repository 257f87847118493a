// Package pipeline orchestrates the daily prediction run: pull listings,
// clean and enrich them, score, monitor drift and quality, persist metrics,
// fold the day's observations into the training set, and notify operators.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matthew-michal/apartment-rental-nj-2025/alert"
	"github.com/matthew-michal/apartment-rental-nj-2025/config"
	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/notify"
	"github.com/matthew-michal/apartment-rental-nj-2025/observability"
	"github.com/matthew-michal/apartment-rental-nj-2025/services"
	"github.com/matthew-michal/apartment-rental-nj-2025/source"
	"github.com/matthew-michal/apartment-rental-nj-2025/storage"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// Runner wires the collaborators of one daily run. Metrics and Mailer may
// be nil; those stages are skipped with a warning instead of failing the run.
type Runner struct {
	Cfg         *config.Config
	Logger      *utils.Logger
	Provider    *source.Provider
	Cleaner     *services.Cleaner
	Stations    *services.StationFinder
	Scorer      *services.Scorer
	Drift       *services.DriftMonitor
	Quality     *services.QualityService
	Deals       *services.DealService
	Store       dataset.Store
	Accumulator *dataset.Accumulator
	Predictions storage.PredictionWriter
	Metrics     storage.MetricsSink
	Mailer      *notify.Mailer
	Thresholds  alert.Thresholds
}

// Run executes the daily prediction pipeline. Scoring and accumulation
// failures abort the run; delivery stages (metrics store, email) only log.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := time.Now()
	r.Logger.Info("=== Daily prediction run %s starting ===", runID)

	raw, sourceName, err := r.Provider.Listings(ctx)
	if err != nil {
		return r.fail(runID, "pull", err)
	}
	r.Logger.Info("Pulled %d raw listings from source %q", len(raw), sourceName)

	listings := r.Cleaner.Clean(raw)
	if len(listings) == 0 {
		return r.fail(runID, "clean", fmt.Errorf("pipeline: all %d listings dropped during cleaning", len(raw)))
	}

	r.Stations.Enrich(listings)
	r.Scorer.Score(listings)
	observability.ListingsScored.Set(float64(len(listings)))

	snapshotPath, err := r.Predictions.Write(listings)
	if err != nil {
		return r.fail(runID, "snapshot", err)
	}
	r.Logger.Info("Predictions snapshot saved to %s", snapshotPath)

	frame := services.ScoredFrame(listings)
	quality := r.Quality.Generate(frame)

	var driftReport *models.DriftReport
	reference, err := services.EnsureReference(r.Store, r.Cfg.ReferencePath, r.Cfg.BaseTrainingPath, r.Logger)
	if err != nil {
		r.Logger.Warn("Reference data unavailable, skipping drift detection: %v", err)
	} else {
		driftReport = r.Drift.Compare(frame, reference)
		observability.PredictionDrift.Set(driftReport.PredictionDrift)
		observability.DriftedColumns.Set(float64(driftReport.NumDriftedColumns))
	}

	dealsReport := r.Deals.Generate(listings)
	observability.GoodDeals.Set(float64(dealsReport.GoodDealsCount))

	r.storeMetrics(listings, quality, driftReport, dealsReport)

	summary, err := r.Accumulator.Merge(ctx, frame)
	if err != nil {
		return r.fail(runID, "accumulate", err)
	}
	observability.AccumulatedRows.Set(float64(summary.FinalSize))

	accStats, err := r.Accumulator.Stats()
	if err != nil {
		r.Logger.Warn("Could not read accumulation stats: %v", err)
	}

	r.dispatchAlerts(quality, driftReport, accStats)
	r.emailPredictions(snapshotPath, dealsReport)

	r.Deals.Print(dealsReport)

	observability.PipelineRuns.WithLabelValues("success").Inc()
	r.Logger.Info("=== Run %s completed in %v — %d scored, training set at %d rows ===",
		runID, time.Since(startedAt).Round(time.Millisecond), len(listings), summary.FinalSize)
	return nil
}

// fail records the failed run, alerts operators, and wraps the cause.
func (r *Runner) fail(runID, stage string, err error) error {
	observability.PipelineRuns.WithLabelValues("failure").Inc()
	r.Logger.Error("Run %s failed at stage %q: %v", runID, stage, err)

	if r.Mailer != nil && r.Mailer.Configured() {
		a := alert.Failure(runID, stage, err)
		if sendErr := r.Mailer.SendAlert(r.Cfg.Recipients, a.Subject, a.Body); sendErr != nil {
			r.Logger.Warn("Could not send failure alert: %v", sendErr)
		}
	}
	return fmt.Errorf("pipeline: stage %s: %w", stage, err)
}

func (r *Runner) storeMetrics(listings []*models.Listing, quality *models.QualityReport, drift *models.DriftReport, deals *models.DealsReport) {
	if r.Metrics == nil {
		r.Logger.Warn("No metrics store configured — skipping metrics persistence")
		return
	}

	row := &models.MetricsRow{
		Timestamp:         time.Now(),
		DataPoints:        quality.TotalRows,
		AvgPredictedPrice: deals.AvgPredicted,
		AvgActualPrice:    deals.AvgActual,
		PriceDiffStdDev:   priceDiffStdDev(listings),
		GoodDealsCount:    deals.GoodDealsCount,
	}
	if drift != nil {
		row.PredictionDrift = drift.PredictionDrift
		row.TargetDrift = drift.TargetDrift
		row.NumDriftedColumns = drift.NumDriftedColumns
		row.ShareMissingValues = drift.ShareMissingValues
		row.PredictionMAE = drift.PredictionMAE
		row.PredictionRMSE = drift.PredictionRMSE
	}

	if err := r.Metrics.WriteMetrics(row); err != nil {
		r.Logger.Warn("Could not persist metrics row: %v", err)
		return
	}
	r.Logger.Info("Metrics stored for %s", row.Timestamp.Format(time.RFC3339))
}

func (r *Runner) dispatchAlerts(quality *models.QualityReport, drift *models.DriftReport, acc *dataset.AccumulationStats) {
	alerts := r.Thresholds.Evaluate(quality, drift, acc)
	if len(alerts) == 0 {
		return
	}

	for _, a := range alerts {
		r.Logger.Warn("ALERT [%s] %s", a.Severity, a.Subject)
		if r.Mailer == nil || !r.Mailer.Configured() {
			continue
		}
		if err := r.Mailer.SendAlert(r.Cfg.Recipients, a.Subject, a.Body); err != nil {
			r.Logger.Warn("Could not send alert %q: %v", a.Subject, err)
		}
	}
}

func (r *Runner) emailPredictions(snapshotPath string, deals *models.DealsReport) {
	if r.Mailer == nil || !r.Mailer.Configured() {
		r.Logger.Warn("SMTP not configured — skipping predictions email")
		return
	}
	if err := r.Mailer.SendPredictions(r.Cfg.Recipients, snapshotPath, deals.TotalScored, deals.AvgPredicted); err != nil {
		// Email failure never fails the run.
		r.Logger.Warn("Could not send predictions email: %v", err)
	}
}

func priceDiffStdDev(listings []*models.Listing) float64 {
	if len(listings) == 0 {
		return 0
	}
	var mean float64
	for _, l := range listings {
		mean += l.PriceDiff
	}
	mean /= float64(len(listings))

	var sq float64
	for _, l := range listings {
		sq += (l.PriceDiff - mean) * (l.PriceDiff - mean)
	}
	return math.Sqrt(sq / float64(len(listings)))
}
