package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// DealService ranks scored listings by how far under the model's estimate
// they are priced.
type DealService struct {
	threshold float64
	topN      int
	logger    *utils.Logger
}

// NewDealService creates a DealService. A listing is a "good deal" when it
// is priced at least threshold dollars under its predicted rent.
func NewDealService(threshold float64, topN int, logger *utils.Logger) *DealService {
	return &DealService{threshold: threshold, topN: topN, logger: logger}
}

// Generate computes the deals report over scored listings.
func (s *DealService) Generate(listings []*models.Listing) *models.DealsReport {
	report := &models.DealsReport{TotalScored: len(listings)}
	if len(listings) == 0 {
		return report
	}

	var predTotal, actualTotal float64
	var deals []*models.Listing
	for _, l := range listings {
		predTotal += l.PredictedPrice
		actualTotal += l.Price
		if l.PredictedPrice-l.Price >= s.threshold {
			report.GoodDealsCount++
		}
		if l.PriceDiff < 0 {
			deals = append(deals, l)
		}
	}
	report.AvgPredicted = round2(predTotal / float64(len(listings)))
	report.AvgActual = round2(actualTotal / float64(len(listings)))

	// Most underpriced first.
	sort.Slice(deals, func(i, j int) bool {
		return deals[i].PriceDiff < deals[j].PriceDiff
	})
	if len(deals) > s.topN {
		deals = deals[:s.topN]
	}
	report.TopDeals = deals

	s.logger.Info("[deals] %d good deals out of %d scored listings", report.GoodDealsCount, report.TotalScored)
	return report
}

// Print renders the report to the terminal.
func (s *DealService) Print(r *models.DealsReport) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 APARTMENT RENT PREDICTIONS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings scored        : \033[1m%d\033[0m\n", r.TotalScored)
	fmt.Printf("  Good deals (≥ $%.0f under) : \033[1m%d\033[0m\n", s.threshold, r.GoodDealsCount)
	fmt.Printf("  Avg predicted rent     : \033[1;32m$%.2f\033[0m\n", r.AvgPredicted)
	fmt.Printf("  Avg asking rent        : \033[1;32m$%.2f\033[0m\n", r.AvgActual)
	fmt.Println()

	fmt.Printf("\033[1;33m  Top %d Underpriced Listings\033[0m\n", s.topN)
	fmt.Printf("  %s\n", thin)
	if len(r.TopDeals) == 0 {
		fmt.Printf("  No underpriced listings today\n")
	} else {
		for i, l := range r.TopDeals {
			fmt.Printf("  \033[1m%d.\033[0m %-14s %-18s ask \033[1;32m$%7.0f\033[0m  est \033[1;31m$%7.0f\033[0m  (%+.0f)\n",
				i+1, truncate(l.ID, 14), truncate(l.Station, 18), l.Price, l.PredictedPrice, l.PriceDiff)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
