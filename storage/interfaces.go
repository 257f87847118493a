package storage

import "github.com/matthew-michal/apartment-rental-nj-2025/models"

// PredictionWriter is the interface any predictions-snapshot backend must satisfy.
type PredictionWriter interface {
	Write(listings []*models.Listing) (string, error)
}

// MetricsSink persists monitoring observations for dashboards and the
// stats subcommand.
type MetricsSink interface {
	WriteMetrics(row *models.MetricsRow) error
	FetchRecent(limit int) ([]*models.MetricsRow, error)
	Close() error
}
