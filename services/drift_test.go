package services

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

func syntheticFrame(t *testing.T, n int, bedroomShift float64, station string) *dataset.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	f := dataset.NewFrame([]string{"id", "bedrooms", "station", "price", "predicted_price"})
	for i := 0; i < n; i++ {
		bedrooms := 1 + float64(rng.Intn(4)) + bedroomShift
		price := 1500 + bedrooms*400 + rng.Float64()*100
		predicted := price + rng.Float64()*50 - 25
		if err := f.AppendRow([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.1f", bedrooms),
			station,
			fmt.Sprintf("%.2f", price),
			fmt.Sprintf("%.2f", predicted),
		}); err != nil {
			t.Fatalf("append row: %v", err)
		}
	}
	return f
}

func TestDriftIdenticalDistributions(t *testing.T) {
	m := NewDriftMonitor(newTestLogger())
	ref := syntheticFrame(t, 500, 0, "Hoboken Terminal")

	report := m.Compare(ref, ref)

	if report.NumDriftedColumns != 0 {
		t.Errorf("identical frames drifted: %d columns, scores %v",
			report.NumDriftedColumns, report.ColumnScores)
	}
	if report.PredictionDrift > 0.01 {
		t.Errorf("prediction drift on identical frames: %.4f", report.PredictionDrift)
	}
}

func TestDriftShiftedNumericColumn(t *testing.T) {
	m := NewDriftMonitor(newTestLogger())
	ref := syntheticFrame(t, 500, 0, "Hoboken Terminal")
	cur := syntheticFrame(t, 500, 3, "Hoboken Terminal")

	report := m.Compare(cur, ref)

	if report.ColumnScores["bedrooms"] <= driftThreshold {
		t.Errorf("expected bedrooms to drift, PSI %.4f", report.ColumnScores["bedrooms"])
	}
	if report.NumDriftedColumns == 0 {
		t.Error("expected at least one drifted column")
	}
}

func TestDriftCategoricalSwap(t *testing.T) {
	m := NewDriftMonitor(newTestLogger())
	ref := syntheticFrame(t, 300, 0, "Hoboken Terminal")
	cur := syntheticFrame(t, 300, 0, "Newark Penn")

	report := m.Compare(cur, ref)

	if report.ColumnScores["station"] != 1 {
		t.Errorf("disjoint categories: TV distance %.4f, want 1", report.ColumnScores["station"])
	}
}

func TestRegressionQuality(t *testing.T) {
	f := dataset.NewFrame([]string{"price", "predicted_price"})
	_ = f.AppendRow([]string{"2000", "1900"})
	_ = f.AppendRow([]string{"1500", "1700"})

	mae, rmse := regressionQuality(f)
	if mae != 150 {
		t.Errorf("MAE: got %.2f, want 150", mae)
	}
	// sqrt((100^2 + 200^2)/2) = sqrt(25000)
	if rmse < 158.1 || rmse > 158.2 {
		t.Errorf("RMSE: got %.4f, want ~158.11", rmse)
	}
}

func TestQualityReport(t *testing.T) {
	q := NewQualityService(newTestLogger())
	f := dataset.NewFrame([]string{"id", "price", "station"})
	_ = f.AppendRow([]string{"1", "1000", "Hoboken Terminal"})
	_ = f.AppendRow([]string{"2", "2000", ""})
	_ = f.AppendRow([]string{"1", "1000", "Hoboken Terminal"})
	_ = f.AppendRow([]string{"1", "1000", "Hoboken Terminal"})

	report := q.Generate(f)

	if report.TotalRows != 4 {
		t.Errorf("rows: got %d, want 4", report.TotalRows)
	}
	if report.DuplicateRows != 2 {
		t.Errorf("duplicates: got %d, want 2", report.DuplicateRows)
	}
	if report.MinPrice != 1000 || report.MaxPrice != 2000 {
		t.Errorf("price range: got %.0f..%.0f", report.MinPrice, report.MaxPrice)
	}
	wantMissing := 1.0 / 12.0
	if diff := report.MissingShare - wantMissing; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("missing share: got %.4f, want %.4f", report.MissingShare, wantMissing)
	}
}

func TestDealServiceRanking(t *testing.T) {
	d := NewDealService(100, 3, newTestLogger())
	listings := []*models.Listing{
		{ID: "fair", Price: 2000, PredictedPrice: 2010, PriceDiff: -10},
		{ID: "best", Price: 1500, PredictedPrice: 2000, PriceDiff: -500},
		{ID: "over", Price: 2500, PredictedPrice: 2200, PriceDiff: 300},
		{ID: "good", Price: 1800, PredictedPrice: 1950, PriceDiff: -150},
	}

	report := d.Generate(listings)

	if report.GoodDealsCount != 2 {
		t.Errorf("good deals: got %d, want 2", report.GoodDealsCount)
	}
	if len(report.TopDeals) != 3 {
		t.Fatalf("top deals: got %d, want 3", len(report.TopDeals))
	}
	if report.TopDeals[0].ID != "best" {
		t.Errorf("top deal: got %s, want best", report.TopDeals[0].ID)
	}
}

func TestScoredFrameSchema(t *testing.T) {
	listings := []*models.Listing{
		{ID: "L-1", Latitude: 40.73, Longitude: -74.02, PropertyType: "Apartment",
			Bedrooms: 2, Bathrooms: 1, YearBuilt: 1999, LotSize: 900,
			Station: "Hoboken Terminal", Price: 2400, PredictedPrice: 2500, PriceDiff: -100},
	}

	f := ScoredFrame(listings)

	if f.Len() != 1 {
		t.Fatalf("rows: got %d, want 1", f.Len())
	}
	if !f.HasColumn("id") || !f.HasColumn("predicted_price") || !f.HasColumn("price_diff") {
		t.Errorf("schema missing expected columns: %v", f.Columns())
	}
	diff, _ := f.Value(0, "price_diff")
	if diff != "-100" {
		t.Errorf("price_diff cell: got %s, want -100", diff)
	}
}
