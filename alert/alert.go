// Package alert evaluates monitoring reports against operator-configured
// thresholds and produces the notifications the pipeline sends out.
package alert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

// Severity classifies an alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is one actionable finding from a pipeline run.
type Alert struct {
	Severity Severity
	Subject  string
	Body     string
}

// Thresholds holds the operator-tuned alerting limits, loaded from YAML.
type Thresholds struct {
	MaxMissingShare     float64 `yaml:"max_missing_share"`
	MinRows             int     `yaml:"min_rows"`
	MaxRMSE             float64 `yaml:"max_rmse"`
	MaxPredictionDrift  float64 `yaml:"max_prediction_drift"`
	MaxDriftedColumns   int     `yaml:"max_drifted_columns"`
	RetrainGrowthPct    float64 `yaml:"retrain_growth_pct"`
	GoodDealMinDiscount float64 `yaml:"good_deal_min_discount"`
	TopDeals            int     `yaml:"top_deals"`
}

// DefaultThresholds mirrors the limits the pipeline shipped with before
// they became configurable.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxMissingShare:     0.2,
		MinRows:             50,
		MaxRMSE:             500,
		MaxPredictionDrift:  0.5,
		MaxDriftedColumns:   3,
		RetrainGrowthPct:    25,
		GoodDealMinDiscount: 100,
		TopDeals:            10,
	}
}

// LoadThresholds reads the YAML thresholds file; a missing file yields the
// defaults rather than an error so local runs need no config.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("alert: read thresholds %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("alert: parse thresholds %q: %w", path, err)
	}
	return t, nil
}

// Evaluate turns the run's reports into alerts. All inputs are optional;
// nil reports contribute nothing.
func (t Thresholds) Evaluate(quality *models.QualityReport, drift *models.DriftReport, acc *dataset.AccumulationStats) []Alert {
	var alerts []Alert

	if quality != nil {
		if quality.MissingShare > t.MaxMissingShare {
			alerts = append(alerts, Alert{
				Severity: SeverityWarning,
				Subject:  "Data Quality Issue - predictions",
				Body: fmt.Sprintf("High missing values: %.1f%% of cells are empty (limit %.1f%%).\nPlease investigate data sources and processing pipeline.",
					quality.MissingShare*100, t.MaxMissingShare*100),
			})
		}
		if quality.TotalRows < t.MinRows {
			alerts = append(alerts, Alert{
				Severity: SeverityWarning,
				Subject:  "Data Quality Issue - predictions",
				Body: fmt.Sprintf("Low data volume: only %d rows pulled (minimum %d).\nPlease investigate data sources and processing pipeline.",
					quality.TotalRows, t.MinRows),
			})
		}
	}

	if drift != nil {
		if drift.NumDriftedColumns > t.MaxDriftedColumns {
			alerts = append(alerts, Alert{
				Severity: SeverityCritical,
				Subject:  "Data Drift Alert - Apartment ML Pipeline",
				Body: fmt.Sprintf("Significant data drift detected: %d drifted columns (limit %d).\nConsider retraining the model or investigating data sources.",
					drift.NumDriftedColumns, t.MaxDriftedColumns),
			})
		}
		if drift.PredictionDrift > t.MaxPredictionDrift {
			alerts = append(alerts, Alert{
				Severity: SeverityCritical,
				Subject:  "Data Drift Alert - Apartment ML Pipeline",
				Body: fmt.Sprintf("High prediction drift detected: score %.4f (limit %.4f).\nConsider retraining the model or investigating data sources.",
					drift.PredictionDrift, t.MaxPredictionDrift),
			})
		}
		if drift.PredictionRMSE > t.MaxRMSE {
			alerts = append(alerts, Alert{
				Severity: SeverityCritical,
				Subject:  "Model Performance Alert",
				Body: fmt.Sprintf("High RMSE detected: %.2f (limit %.2f).\nModel performance has degraded. Consider retraining with fresh data.",
					drift.PredictionRMSE, t.MaxRMSE),
			})
		}
	}

	if acc != nil && acc.GrowthPercentage > t.RetrainGrowthPct {
		alerts = append(alerts, Alert{
			Severity: SeverityWarning,
			Subject:  "Retrain Recommended - Apartment ML Pipeline",
			Body: fmt.Sprintf("Accumulated training set has grown %.1f%% over base (%d rows, threshold %.1f%%).\nA training run would pick up %d new observations.",
				acc.GrowthPercentage, acc.AccumulatedSize, t.RetrainGrowthPct, acc.Growth),
		})
	}

	return alerts
}

// Failure builds the alert for an aborted pipeline run.
func Failure(runID string, stage string, err error) Alert {
	return Alert{
		Severity: SeverityCritical,
		Subject:  "Apartment ML Pipeline Failure - daily_predictions",
		Body: fmt.Sprintf("Pipeline run %s failed at stage %q.\nError: %v\n\nPlease check the run logs for more details.",
			runID, stage, err),
	}
}
