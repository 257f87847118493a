package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

// MetricsWriter persists monitoring observations to PostgreSQL.
type MetricsWriter struct {
	db *sql.DB
}

// NewMetricsWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use MetricsWriter.
func NewMetricsWriter(dsn string) (*MetricsWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	mw := &MetricsWriter{db: db}
	if err := mw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return mw, nil
}

func (mw *MetricsWriter) migrate() error {
	_, err := mw.db.Exec(`
		CREATE TABLE IF NOT EXISTS apartment_metrics (
			timestamp            TIMESTAMPTZ NOT NULL,
			prediction_drift     DOUBLE PRECISION NOT NULL DEFAULT 0,
			num_drifted_columns  INTEGER NOT NULL DEFAULT 0,
			share_missing_values DOUBLE PRECISION NOT NULL DEFAULT 0,
			target_drift         DOUBLE PRECISION NOT NULL DEFAULT 0,
			prediction_mae       DOUBLE PRECISION NOT NULL DEFAULT 0,
			prediction_rmse      DOUBLE PRECISION NOT NULL DEFAULT 0,
			data_points          INTEGER NOT NULL DEFAULT 0,
			avg_predicted_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_actual_price     DOUBLE PRECISION NOT NULL DEFAULT 0,
			price_diff_std       DOUBLE PRECISION NOT NULL DEFAULT 0,
			good_deals_count     INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_apartment_metrics_ts ON apartment_metrics(timestamp);
	`)
	return err
}

// WriteMetrics inserts one monitoring observation.
func (mw *MetricsWriter) WriteMetrics(row *models.MetricsRow) error {
	_, err := mw.db.Exec(`
		INSERT INTO apartment_metrics
			(timestamp, prediction_drift, num_drifted_columns, share_missing_values,
			 target_drift, prediction_mae, prediction_rmse, data_points,
			 avg_predicted_price, avg_actual_price, price_diff_std, good_deals_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		row.Timestamp, row.PredictionDrift, row.NumDriftedColumns, row.ShareMissingValues,
		row.TargetDrift, row.PredictionMAE, row.PredictionRMSE, row.DataPoints,
		row.AvgPredictedPrice, row.AvgActualPrice, row.PriceDiffStdDev, row.GoodDealsCount,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert metrics: %w", err)
	}
	return nil
}

// FetchRecent retrieves the latest observations, newest first — used by
// the stats subcommand.
func (mw *MetricsWriter) FetchRecent(limit int) ([]*models.MetricsRow, error) {
	rows, err := mw.db.Query(`
		SELECT timestamp, prediction_drift, num_drifted_columns, share_missing_values,
		       target_drift, prediction_mae, prediction_rmse, data_points,
		       avg_predicted_price, avg_actual_price, price_diff_std, good_deals_count
		FROM apartment_metrics
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch recent metrics: %w", err)
	}
	defer rows.Close()

	var out []*models.MetricsRow
	for rows.Next() {
		r := &models.MetricsRow{}
		if err := rows.Scan(
			&r.Timestamp, &r.PredictionDrift, &r.NumDriftedColumns, &r.ShareMissingValues,
			&r.TargetDrift, &r.PredictionMAE, &r.PredictionRMSE, &r.DataPoints,
			&r.AvgPredictedPrice, &r.AvgActualPrice, &r.PriceDiffStdDev, &r.GoodDealsCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan metrics row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (mw *MetricsWriter) Close() error {
	return mw.db.Close()
}
