package services

import (
	"strconv"

	"github.com/matthew-michal/apartment-rental-nj-2025/dataset"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
)

// scoredColumns is the frame schema of a scored batch. The two prediction
// columns come last; the accumulator strips them before merging.
var scoredColumns = []string{
	"id", "latitude", "longitude", "propertyType", "bedrooms", "bathrooms",
	"yearBuilt", "lotSize", "station", "price", "predicted_price", "price_diff",
}

// ScoredFrame converts scored listings into the tabular form the drift
// monitor, quality service and accumulator operate on.
func ScoredFrame(listings []*models.Listing) *dataset.Frame {
	f := dataset.NewFrame(scoredColumns)
	for _, l := range listings {
		// Row matches scoredColumns ordering.
		_ = f.AppendRow([]string{
			l.ID,
			formatFloat(l.Latitude),
			formatFloat(l.Longitude),
			l.PropertyType,
			formatFloat(l.Bedrooms),
			formatFloat(l.Bathrooms),
			strconv.Itoa(l.YearBuilt),
			formatFloat(l.LotSize),
			l.Station,
			formatFloat(l.Price),
			formatFloat(l.PredictedPrice),
			formatFloat(l.PriceDiff),
		})
	}
	return f
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
