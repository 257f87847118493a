package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matthew-michal/apartment-rental-nj-2025/models"
	"github.com/matthew-michal/apartment-rental-nj-2025/utils"
)

// ModelArtifact is the serialized regression pipeline produced by the
// training job: an intercept, per-feature coefficients for the numeric
// features, and per-level effects for the categorical ones. Training
// itself happens elsewhere; the scorer only applies the artifact.
type ModelArtifact struct {
	RunID       string                        `json:"run_id"`
	TrainedAt   string                        `json:"trained_at"`
	Intercept   float64                       `json:"intercept"`
	Numeric     map[string]float64            `json:"numeric_coefficients"`
	Categorical map[string]map[string]float64 `json:"categorical_effects"`
}

// Scorer applies a loaded regression artifact to cleaned listings.
type Scorer struct {
	model  *ModelArtifact
	logger *utils.Logger
}

// NewScorer loads the model artifact from path.
func NewScorer(path string, logger *utils.Logger) (*Scorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scorer: read model artifact %q: %w", path, err)
	}

	var model ModelArtifact
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("scorer: parse model artifact %q: %w", path, err)
	}
	if model.Intercept == 0 && len(model.Numeric) == 0 && len(model.Categorical) == 0 {
		return nil, fmt.Errorf("scorer: model artifact %q is empty", path)
	}

	logger.Info("[scorer] Loaded model run_id=%s (%d numeric, %d categorical features)",
		model.RunID, len(model.Numeric), len(model.Categorical))
	return &Scorer{model: &model, logger: logger}, nil
}

// NewScorerFromModel wraps an already-parsed artifact; used by tests.
func NewScorerFromModel(model *ModelArtifact, logger *utils.Logger) *Scorer {
	return &Scorer{model: model, logger: logger}
}

// RunID returns the training run that produced the loaded artifact.
func (s *Scorer) RunID() string { return s.model.RunID }

// Score fills PredictedPrice and PriceDiff on every listing in place.
// PriceDiff is actual minus predicted, so a positive diff means the
// listing is priced above the model's estimate and a negative diff marks
// a potential deal.
func (s *Scorer) Score(listings []*models.Listing) {
	for _, l := range listings {
		l.PredictedPrice = s.predict(l)
		l.PriceDiff = l.Price - l.PredictedPrice
	}
	s.logger.Info("[scorer] Scored %d listings with model run_id=%s", len(listings), s.model.RunID)
}

func (s *Scorer) predict(l *models.Listing) float64 {
	pred := s.model.Intercept

	numeric := map[string]float64{
		"latitude":  l.Latitude,
		"longitude": l.Longitude,
		"bedrooms":  l.Bedrooms,
		"bathrooms": l.Bathrooms,
		"yearBuilt": float64(l.YearBuilt),
		"lotSize":   l.LotSize,
	}
	for feature, value := range numeric {
		if coef, ok := s.model.Numeric[feature]; ok {
			pred += coef * value
		}
	}

	categorical := map[string]string{
		"station":      l.Station,
		"propertyType": l.PropertyType,
	}
	for feature, level := range categorical {
		effects, ok := s.model.Categorical[feature]
		if !ok {
			continue
		}
		if effect, ok := effects[level]; ok {
			pred += effect
		} else if effect, ok := effects["_default"]; ok {
			pred += effect
		}
	}

	return pred
}
