package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

var (
	// rentRegexp captures numeric rent values
	rentRegexp = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	// perWeekRegexp catches weekly rents that must be normalized to monthly
	perWeekRegexp = regexp.MustCompile(`(?:/|per\s*)w(?:ee)?k`)
)

// Cleaner transforms RawListings into clean, validated Listings ready for
// scoring and accumulation.
type Cleaner struct {
	logger *utils.Logger
	seen   *utils.IDSet
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger, seen: utils.NewIDSet()}
}

// Clean processes raw listings and returns cleaned records. Listings
// without an id are dropped — the accumulator cannot deduplicate them —
// and ids repeated within the pull keep only their first occurrence.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty id (%s, %.4f/%.4f)",
				r.PropertyType, r.Latitude, r.Longitude)
			continue
		}

		if !c.seen.Add(id) {
			c.logger.Debug("[cleaner] Duplicate id skipped within pull: %s", id)
			continue
		}

		price := r.Price
		if price == 0 {
			price = c.parseRent(r.RawPrice)
		}
		if price <= 0 {
			c.logger.Warn("[cleaner] Dropping listing %s with no usable rent (%q)", id, r.RawPrice)
			continue
		}

		listing := &models.Listing{
			ID:           id,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			PropertyType: normalisePropertyType(r.PropertyType),
			Bedrooms:     r.Bedrooms,
			Bathrooms:    r.Bathrooms,
			YearBuilt:    r.YearBuilt,
			LotSize:      r.LotSize,
			Price:        price,
		}

		result = append(result, listing)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parseRent extracts a monthly rent from a raw price string.
// Examples:
//
//	"$2,500/mo" → 2500
//	"2100"      → 2100
//	"$600/wk"   → 2600 (weekly rent × 52 / 12)
func (c *Cleaner) parseRent(raw string) float64 {
	raw = strings.ToLower(raw)

	cleaned := strings.ReplaceAll(raw, ",", "")
	match := rentRegexp.FindString(cleaned)
	if match == "" {
		return 0
	}

	rent, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}

	if perWeekRegexp.MatchString(raw) {
		monthly := rent * 52 / 12
		c.logger.Debug("[cleaner] Weekly rent detected: $%.2f/wk = $%.2f/mo", rent, monthly)
		return monthly
	}

	return rent
}

// normalisePropertyType collapses whitespace and fills a default type.
func normalisePropertyType(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	s = strings.Join(fields, " ")
	if s == "" {
		return "Apartment"
	}
	return s
}
