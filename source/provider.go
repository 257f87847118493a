package source

import (
	"context"
	"fmt"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// Puller is anything that can produce a batch of raw listings.
type Puller interface {
	Pull(ctx context.Context) ([]*models.RawListing, error)
}

// Provider chains the listing sources: fresh API pull first, the cached
// previous pull second, the browser scrape last. A fresh pull refreshes
// the cache; a cache-refresh failure is logged but never fails the run.
type Provider struct {
	API     Puller
	Cache   *PullCache
	Browser Puller
	Logger  *utils.Logger
}

// Listings returns the day's raw listings and the name of the source that
// produced them. It fails only when every source is exhausted.
func (p *Provider) Listings(ctx context.Context) ([]*models.RawListing, string, error) {
	listings, apiErr := p.API.Pull(ctx)
	if apiErr == nil {
		if p.Cache != nil {
			if err := p.Cache.Store(ctx, listings); err != nil {
				p.Logger.Warn("[source] Could not refresh pull cache: %v", err)
			}
		}
		return listings, "api", nil
	}
	p.Logger.Warn("[source] API pull failed: %v — trying cached pull", apiErr)

	if p.Cache != nil {
		cached, cacheErr := p.Cache.Load(ctx)
		if cacheErr == nil {
			p.Logger.Info("[source] Using cached pull: %d listings", len(cached))
			return cached, "cache", nil
		}
		p.Logger.Warn("[source] Cached pull unavailable: %v — trying browser scrape", cacheErr)
	}

	if p.Browser != nil {
		scraped, scrapeErr := p.Browser.Pull(ctx)
		if scrapeErr == nil {
			return scraped, "browser", nil
		}
		p.Logger.Error("[source] Browser scrape failed: %v", scrapeErr)
	}

	return nil, "", fmt.Errorf("source: all listing sources failed: %w", apiErr)
}
