package services

import (
	"math"
	"sort"
	"strings"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// QualityService computes data-quality metrics over a frame before it is
// scored or accumulated.
type QualityService struct {
	logger *utils.Logger
}

// NewQualityService creates a QualityService with the given logger.
func NewQualityService(logger *utils.Logger) *QualityService {
	return &QualityService{logger: logger}
}

// Generate summarizes row count, missing cells, exact-duplicate rows and
// the price distribution of the frame.
func (s *QualityService) Generate(f *dataset.Frame) *models.QualityReport {
	report := &models.QualityReport{TotalRows: f.Len()}
	if f.Len() == 0 {
		return report
	}

	if cells := f.Len() * len(f.Columns()); cells > 0 {
		report.MissingShare = float64(f.MissingCells()) / float64(cells)
	}
	report.DuplicateRows = duplicateRows(f)

	prices, _ := f.Floats("price")
	if len(prices) > 0 {
		sort.Float64s(prices)
		report.MinPrice = prices[0]
		report.MaxPrice = prices[len(prices)-1]
		report.MedianPrice = prices[len(prices)/2]

		var total float64
		for _, p := range prices {
			total += p
		}
		mean := total / float64(len(prices))
		report.AvgPrice = mean

		var sq float64
		for _, p := range prices {
			sq += (p - mean) * (p - mean)
		}
		report.PriceStdDev = math.Sqrt(sq / float64(len(prices)))
	}

	s.logger.Info("[quality] %d rows, %.1f%% missing cells, %d duplicate rows, avg price $%.2f",
		report.TotalRows, report.MissingShare*100, report.DuplicateRows, report.AvgPrice)
	return report
}

func duplicateRows(f *dataset.Frame) int {
	seen := make(map[string]struct{}, f.Len())
	cols := f.Columns()
	dups := 0
	for i := 0; i < f.Len(); i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j], _ = f.Value(i, c)
		}
		key := strings.Join(cells, "\x1f")
		if _, dup := seen[key]; dup {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}
