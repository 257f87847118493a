package models

import "time"

// RawListing holds an unprocessed listing exactly as it came from the
// listings API or the browser fallback, before any cleaning.
type RawListing struct {
	ID           string
	Latitude     float64
	Longitude    float64
	PropertyType string
	Bedrooms     float64
	Bathrooms    float64
	YearBuilt    int
	LotSize      float64
	RawPrice     string
	Price        float64
	PulledAt     time.Time
	Source       string
}

// Listing is the cleaned, validated record ready for scoring.
type Listing struct {
	ID           string
	Latitude     float64
	Longitude    float64
	PropertyType string
	Bedrooms     float64
	Bathrooms    float64
	YearBuilt    int
	LotSize      float64
	Station      string
	Price        float64

	// Filled in by the scorer.
	PredictedPrice float64
	PriceDiff      float64
}

// DriftReport holds the monitoring comparison of the current scored batch
// against the reference distribution.
type DriftReport struct {
	PredictionDrift    float64
	TargetDrift        float64
	NumDriftedColumns  int
	ShareMissingValues float64
	PredictionMAE      float64
	PredictionRMSE     float64
	ColumnScores       map[string]float64
}

// QualityReport summarizes data quality of a single pull.
type QualityReport struct {
	TotalRows     int
	MissingShare  float64
	DuplicateRows int
	AvgPrice      float64
	MedianPrice   float64
	PriceStdDev   float64
	MinPrice      float64
	MaxPrice      float64
}

// MetricsRow is one persisted monitoring observation, matching the
// apartment_metrics table schema.
type MetricsRow struct {
	Timestamp          time.Time
	PredictionDrift    float64
	NumDriftedColumns  int
	ShareMissingValues float64
	TargetDrift        float64
	PredictionMAE      float64
	PredictionRMSE     float64
	DataPoints         int
	AvgPredictedPrice  float64
	AvgActualPrice     float64
	PriceDiffStdDev    float64
	GoodDealsCount     int
}

// DealsReport holds the listings priced furthest under their prediction.
type DealsReport struct {
	TotalScored    int
	GoodDealsCount int
	AvgPredicted   float64
	AvgActual      float64
	TopDeals       []*Listing
}
