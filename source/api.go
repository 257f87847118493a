package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/matthew-michal/apartment-rental-nj-2025/config"
	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// apiListing is one record of the listings API response.
type apiListing struct {
	ID           string  `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	PropertyType string  `json:"propertyType"`
	Bedrooms     float64 `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	YearBuilt    int     `json:"yearBuilt"`
	LotSize      float64 `json:"lotSize"`
	Price        float64 `json:"price"`
}

type apiResponse struct {
	Listings []apiListing `json:"listings"`
}

// APIClient pulls fresh listings from the rental listings API.
type APIClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// NewAPIClient creates an APIClient from config.
func NewAPIClient(cfg *config.Config, logger *utils.Logger) *APIClient {
	return &APIClient{
		baseURL: cfg.ListingsAPIURL,
		apiKey:  cfg.ListingsAPIKey,
		client:  &http.Client{Timeout: 60 * time.Second},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// Pull fetches the current listings snapshot, retrying transient failures.
func (c *APIClient) Pull(ctx context.Context) ([]*models.RawListing, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("source: no listings API URL configured")
	}

	var listings []*models.RawListing
	err := c.retry.Do("listings-api-pull", func() error {
		got, err := c.pullOnce(ctx)
		if err != nil {
			return err
		}
		listings = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("[source] Fresh data pulled from API: %d listings", len(listings))
	return listings, nil
}

func (c *APIClient) pullOnce(ctx context.Context) ([]*models.RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source: api status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("source: decode api response: %w", err)
	}

	now := time.Now()
	listings := make([]*models.RawListing, 0, len(body.Listings))
	for _, a := range body.Listings {
		listings = append(listings, &models.RawListing{
			ID:           a.ID,
			Latitude:     a.Latitude,
			Longitude:    a.Longitude,
			PropertyType: a.PropertyType,
			Bedrooms:     a.Bedrooms,
			Bathrooms:    a.Bathrooms,
			YearBuilt:    a.YearBuilt,
			LotSize:      a.LotSize,
			Price:        a.Price,
			PulledAt:     now,
			Source:       "api",
		})
	}
	return listings, nil
}
