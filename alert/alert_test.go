package alert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

func TestLoadThresholdsMissingFileUsesDefaults(t *testing.T) {
	got, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != DefaultThresholds() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestLoadThresholdsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	content := "max_rmse: 350\nmin_rows: 10\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadThresholds(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.MaxRMSE != 350 || got.MinRows != 10 {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.MaxPredictionDrift != 0.5 {
		t.Errorf("unset field lost its default: %+v", got)
	}
}

func TestEvaluateQuietWhenHealthy(t *testing.T) {
	th := DefaultThresholds()
	alerts := th.Evaluate(
		&models.QualityReport{TotalRows: 200, MissingShare: 0.01},
		&models.DriftReport{NumDriftedColumns: 1, PredictionDrift: 0.1, PredictionRMSE: 120},
		&dataset.AccumulationStats{GrowthPercentage: 5},
	)
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d: %+v", len(alerts), alerts)
	}
}

func TestEvaluateFiresPerViolation(t *testing.T) {
	th := DefaultThresholds()
	alerts := th.Evaluate(
		&models.QualityReport{TotalRows: 10, MissingShare: 0.4},
		&models.DriftReport{NumDriftedColumns: 5, PredictionDrift: 0.9, PredictionRMSE: 800},
		&dataset.AccumulationStats{GrowthPercentage: 40, AccumulatedSize: 1400, Growth: 400},
	)

	if len(alerts) != 6 {
		t.Fatalf("expected 6 alerts, got %d", len(alerts))
	}

	critical := 0
	for _, a := range alerts {
		if a.Severity == SeverityCritical {
			critical++
		}
	}
	if critical != 3 {
		t.Errorf("critical alerts: got %d, want 3", critical)
	}
}

func TestFailureAlert(t *testing.T) {
	a := Failure("run-123", "scoring", os.ErrDeadlineExceeded)
	if a.Severity != SeverityCritical {
		t.Errorf("severity: got %s", a.Severity)
	}
	if !strings.Contains(a.Body, "run-123") || !strings.Contains(a.Body, "scoring") {
		t.Errorf("body missing context: %s", a.Body)
	}
}
