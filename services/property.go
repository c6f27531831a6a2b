package services

import (
	"context"
	"fmt"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/storage"
)

// PropertyService normalizes scraped listings into stored properties and
// keeps value scores current.
type PropertyService struct {
	store    *storage.PostgresStore
	ranker   *RankingService
	defaults config.DefaultsConfig
}

func NewPropertyService(store *storage.PostgresStore, ranker *RankingService, defaults config.DefaultsConfig) *PropertyService {
	return &PropertyService{
		store:    store,
		ranker:   ranker,
		defaults: defaults,
	}
}

// IngestResult reports what one listing ingest did.
type IngestResult struct {
	PropertyID string
	IsNew      bool
}

// Ingest converts a raw listing from one source into a Property and
// upserts it. Same composite ID replaces the prior snapshot wholesale.
// Distance from the search origin is computed when both sides have
// coordinates.
func (s *PropertyService) Ingest(ctx context.Context, raw *models.RawListing, source string, cfg *models.SearchConfig) (*IngestResult, error) {
	if raw.ExternalID == "" {
		return nil, fmt.Errorf("listing from %s has no external ID", source)
	}

	p := &models.Property{
		ID:               models.CompositeID(source, raw.ExternalID),
		Source:           source,
		Name:             raw.Name,
		URL:              raw.URL,
		Address:          raw.Address,
		Latitude:         raw.Latitude,
		Longitude:        raw.Longitude,
		Region:           raw.Region,
		BeachWalkMinutes: raw.BeachWalkMinutes,
		Bedrooms:         raw.Bedrooms,
		Bathrooms:        raw.Bathrooms,
		MaxGuests:        raw.MaxGuests,
		PricePerWeek:     raw.PricePerWeek,
		CleaningFee:      raw.CleaningFee,
		ReviewScore:      raw.ReviewScore,
		ReviewCount:      raw.ReviewCount,
		Amenities:        raw.Amenities,
		Photos:           raw.Photos,
		Verified:         true,
	}
	p.DeriveTotalPrice()

	if cfg != nil && cfg.OriginLatitude != nil && cfg.OriginLongitude != nil &&
		raw.Latitude != nil && raw.Longitude != nil {
		miles := HaversineMiles(*cfg.OriginLatitude, *cfg.OriginLongitude, *raw.Latitude, *raw.Longitude)
		p.DistanceFromOriginMiles = &miles
	}

	if cfg != nil {
		score := s.ranker.Score(p, cfg)
		p.ValueScore = &score
	}

	isNew := false
	if _, err := s.store.GetProperty(ctx, p.ID); err == models.ErrNotFound {
		isNew = true
	} else if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}

	if err := s.store.UpsertProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert property: %w", err)
	}

	return &IngestResult{PropertyID: p.ID, IsNew: isNew}, nil
}

// RescoreAll recomputes every stored value score using the supplied
// weights. Thresholds for the sub-score scales come from the current
// config, falling back to the built-in defaults when none is saved.
func (s *PropertyService) RescoreAll(ctx context.Context, weights models.ScoringWeights) (int, error) {
	if err := weights.Validate(); err != nil {
		return 0, err
	}

	cfg, err := s.ActiveConfig(ctx)
	if err != nil {
		return 0, err
	}
	cfg.ScoringWeights = weights

	props, err := s.store.AllProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("load properties: %w", err)
	}

	updated := 0
	for i := range props {
		score := s.ranker.Score(&props[i], cfg)
		if err := s.store.UpdateValueScore(ctx, props[i].ID, &score); err != nil {
			return updated, fmt.Errorf("update score for %s: %w", props[i].ID, err)
		}
		updated++
	}
	return updated, nil
}

// ActiveConfig resolves the current search config, or the environment
// defaults when the store has none. Never returns nil without error.
func (s *PropertyService) ActiveConfig(ctx context.Context) (*models.SearchConfig, error) {
	cfg, err := s.store.CurrentSearchConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("current config: %w", err)
	}
	if cfg == nil {
		cfg = s.defaults.SearchConfig()
	}
	return cfg, nil
}
