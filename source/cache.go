package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

const cacheKey = "listings:last_pull"

// PullCache keeps the last successful pull in redis so a run can still
// proceed when the listings API is down.
type PullCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *utils.Logger
}

// Store replaces the cached pull with the given listings.
func (p *PullCache) Store(ctx context.Context, listings []*models.RawListing) error {
	b, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("source: marshal cached pull: %w", err)
	}

	if err := p.Client.Set(ctx, cacheKey, b, p.TTL).Err(); err != nil {
		return fmt.Errorf("source: store cached pull: %w", err)
	}
	p.Logger.Debug("[source] Cached %d listings for %v", len(listings), p.TTL)
	return nil
}

// Load returns the cached pull, or an error when none exists or it expired.
func (p *PullCache) Load(ctx context.Context) ([]*models.RawListing, error) {
	val, err := p.Client.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("source: no cached pull available")
	}
	if err != nil {
		return nil, fmt.Errorf("source: load cached pull: %w", err)
	}

	var listings []*models.RawListing
	if err := json.Unmarshal([]byte(val), &listings); err != nil {
		return nil, fmt.Errorf("source: decode cached pull: %w", err)
	}

	for _, l := range listings {
		l.Source = "cache"
	}
	return listings, nil
}
