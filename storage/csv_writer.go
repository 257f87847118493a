package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

// CSVWriter writes the scored listings of one run to a dated CSV snapshot,
// the same file that goes out as the email attachment.
type CSVWriter struct {
	dir string
	now func() time.Time
}

// NewCSVWriter creates a writer for the given output directory.
// Intermediate directories are created automatically.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir, now: time.Now}, nil
}

var predictionHeader = []string{
	"id", "latitude", "longitude", "propertyType", "bedrooms", "bathrooms",
	"yearBuilt", "lotSize", "station", "price", "predicted_price", "price_diff",
}

// Write creates predictions_YYYYMMDD_HHMM.csv and returns its path.
func (c *CSVWriter) Write(listings []*models.Listing) (string, error) {
	path := filepath.Join(c.dir, fmt.Sprintf("predictions_%s.csv", c.now().Format("20060102_1504")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(predictionHeader); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.ID,
			strconv.FormatFloat(l.Latitude, 'f', -1, 64),
			strconv.FormatFloat(l.Longitude, 'f', -1, 64),
			l.PropertyType,
			strconv.FormatFloat(l.Bedrooms, 'f', -1, 64),
			strconv.FormatFloat(l.Bathrooms, 'f', -1, 64),
			strconv.Itoa(l.YearBuilt),
			strconv.FormatFloat(l.LotSize, 'f', -1, 64),
			l.Station,
			strconv.FormatFloat(l.Price, 'f', 2, 64),
			strconv.FormatFloat(l.PredictedPrice, 'f', 2, 64),
			strconv.FormatFloat(l.PriceDiff, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}
