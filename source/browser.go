package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matthew-michal/apartment-rental-nj-2025/config"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// BrowserSource scrapes a listings search-results page with a headless
// browser. It is the last-resort source, used only when both the API and
// the cached pull are unavailable.
type BrowserSource struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// NewBrowserSource creates a ready-to-use BrowserSource.
func NewBrowserSource(cfg *config.Config, logger *utils.Logger) *BrowserSource {
	return &BrowserSource{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// cardData mirrors the attributes the search page embeds on each card.
type cardData struct {
	ID           string `json:"id"`
	Lat          string `json:"lat"`
	Lng          string `json:"lng"`
	PropertyType string `json:"propertyType"`
	Beds         string `json:"beds"`
	Baths        string `json:"baths"`
	Price        string `json:"price"`
}

// Pull scrapes the configured search page and returns the raw listings.
func (b *BrowserSource) Pull(ctx context.Context) ([]*models.RawListing, error) {
	if b.cfg.SearchPageURL == "" {
		return nil, fmt.Errorf("source: no search page URL configured")
	}

	chromeBin := findChromeBinary(b.cfg.ChromeBin)
	b.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()

	var cards []cardData
	err := b.retry.Do("browser-scrape", func() error {
		runCtx, cancel := chromedp.NewContext(silentCtx)
		defer cancel()

		runCtx, cancelTimeout := context.WithTimeout(runCtx, 90*time.Second)
		defer cancelTimeout()

		return chromedp.Run(runCtx,
			chromedp.Navigate(b.cfg.SearchPageURL),
			chromedp.Sleep(5*time.Second),

			// Scroll to force lazy cards to render
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('[data-listing-id]');
					for (var i = 0; i < cards.length; i++) {
						var c = cards[i];
						var priceEl = c.querySelector('[data-test="property-card-price"], .property-pricing, .price');
						var bedsEl = c.querySelector('[data-test="property-card-beds"], .bed-range, .beds');
						var bathsEl = c.querySelector('[data-test="property-card-baths"], .bath-range, .baths');
						results.push({
							id: c.getAttribute('data-listing-id') || '',
							lat: c.getAttribute('data-latitude') || c.getAttribute('data-lat') || '',
							lng: c.getAttribute('data-longitude') || c.getAttribute('data-lng') || '',
							propertyType: c.getAttribute('data-property-type') || 'Apartment',
							beds: bedsEl ? bedsEl.textContent.trim() : '',
							baths: bathsEl ? bathsEl.textContent.trim() : '',
							price: priceEl ? priceEl.textContent.trim() : ''
						});
					}
					return results;
				})()
			`, &cards),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("source: browser scrape: %w", err)
	}

	now := time.Now()
	listings := make([]*models.RawListing, 0, len(cards))
	for _, c := range cards {
		lat, _ := strconv.ParseFloat(c.Lat, 64)
		lng, _ := strconv.ParseFloat(c.Lng, 64)
		listings = append(listings, &models.RawListing{
			ID:           c.ID,
			Latitude:     lat,
			Longitude:    lng,
			PropertyType: c.PropertyType,
			Bedrooms:     leadingNumber(c.Beds),
			Bathrooms:    leadingNumber(c.Baths),
			RawPrice:     c.Price,
			PulledAt:     now,
			Source:       "browser",
		})
	}

	b.logger.Info("[browser] Scrape complete — %d raw listings", len(listings))
	return listings, nil
}

// leadingNumber extracts the first numeric value from card text like
// "2 bds" or "1.5 ba".
func leadingNumber(s string) float64 {
	start := -1
	end := len(s)
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			end = i
			break
		}
	}
	if start == -1 {
		return 0
	}
	v, _ := strconv.ParseFloat(s[start:end], 64)
	return v
}

// findChromeBinary locates the Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
