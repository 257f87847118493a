package services

import (
	"testing"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func TestCleanerParseRent(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw  string
		want float64
	}{
		{"$2,500/mo", 2500},
		{"2100", 2100},
		{"", 0},
		{"call for price", 0},
		{"$1,850.50 per month", 1850.50},
		{"USD 1900", 1900},
	}

	for _, tt := range tests {
		got := c.parseRent(tt.raw)
		if got != tt.want {
			t.Errorf("parseRent(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerWeeklyRentNormalized(t *testing.T) {
	c := NewCleaner(newTestLogger())

	got := c.parseRent("$600/wk")
	want := 600.0 * 52 / 12
	if got != want {
		t.Errorf("parseRent($600/wk) = %.2f; want %.2f", got, want)
	}
}

func TestCleanerDropsEmptyID(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{ID: "", RawPrice: "$2,000", PropertyType: "Apartment", PulledAt: time.Now()},
		{ID: "L-1", RawPrice: "$2,200", PropertyType: "Apartment", PulledAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 listing after dropping empty id, got %d", len(cleaned))
	}
}

func TestCleanerDeduplicatesID(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{ID: "L-1", Price: 2000, PulledAt: time.Now()},
		{ID: "L-1", Price: 2100, PulledAt: time.Now()},
	}

	cleaned := c.Clean(raw)
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Price != 2000 {
		t.Errorf("dedup should keep first occurrence within a pull, got price %.0f", cleaned[0].Price)
	}
}

func TestCleanerDropsUnpricedListings(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{ID: "L-1", RawPrice: "contact agent", PulledAt: time.Now()},
	}

	if cleaned := c.Clean(raw); len(cleaned) != 0 {
		t.Errorf("expected unpriced listing to be dropped, got %d", len(cleaned))
	}
}
