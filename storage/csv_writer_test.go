package storage

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

func TestCSVWriterDatedSnapshot(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.now = func() time.Time {
		return time.Date(2025, 8, 30, 7, 5, 0, 0, time.UTC)
	}

	path, err := w.Write([]*models.Listing{
		{ID: "L-1", Latitude: 40.73, Longitude: -74.02, PropertyType: "Apartment",
			Bedrooms: 2, Bathrooms: 1, YearBuilt: 1999, LotSize: 900,
			Station: "Hoboken Terminal", Price: 2400, PredictedPrice: 2500, PriceDiff: -100},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if !strings.HasSuffix(path, "predictions_20250830_0705.csv") {
		t.Errorf("snapshot path: got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "predicted_price") {
		t.Error("header missing predicted_price column")
	}
	if !strings.Contains(content, "L-1") || !strings.Contains(content, "-100.00") {
		t.Errorf("row content missing, got:\n%s", content)
	}
}
