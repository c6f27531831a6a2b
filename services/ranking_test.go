package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charleshall888/Vacation-Finder/models"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func baseConfig() *models.SearchConfig {
	return &models.SearchConfig{
		MaxDistanceMiles:    400,
		MinBedrooms:         7,
		MaxBedrooms:         9,
		MaxPricePerWeek:     15000,
		MaxBeachWalkMinutes: 10,
		ScoringWeights:      models.DefaultScoringWeights(),
	}
}

func passingProperty() models.Property {
	return models.Property{
		ID:                      "vrbo:1",
		Bedrooms:                8,
		TotalPrice:              10000,
		BeachWalkMinutes:        intPtr(5),
		DistanceFromOriginMiles: floatPtr(200),
	}
}

func TestPassesBedroomsRange(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()

	p := passingProperty()
	assert.True(t, r.Passes(&p, cfg))

	p.Bedrooms = 6
	assert.False(t, r.Passes(&p, cfg))

	p.Bedrooms = 10
	assert.False(t, r.Passes(&p, cfg))
}

func TestPassesPriceOnlyWhenKnown(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()

	p := passingProperty()
	p.TotalPrice = 20000
	assert.False(t, r.Passes(&p, cfg), "over budget should fail")

	// Zero price means the source withheld it; price is not constrained.
	p.TotalPrice = 0
	assert.True(t, r.Passes(&p, cfg))
}

func TestPassesUnknownValuesFailActiveThresholds(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()

	p := passingProperty()
	p.BeachWalkMinutes = nil
	assert.False(t, r.Passes(&p, cfg), "unknown beach walk should fail an active threshold")

	p = passingProperty()
	p.DistanceFromOriginMiles = nil
	assert.False(t, r.Passes(&p, cfg), "unknown distance should fail an active threshold")

	// With the thresholds off, unknowns pass.
	cfg.MaxBeachWalkMinutes = 0
	cfg.MaxDistanceMiles = 0
	p = passingProperty()
	p.BeachWalkMinutes = nil
	p.DistanceFromOriginMiles = nil
	assert.True(t, r.Passes(&p, cfg))
}

func TestPassesRequiredAmenities(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()
	cfg.RequiredAmenities = []string{"full_kitchen", "parking_3plus"}

	p := passingProperty()
	assert.False(t, r.Passes(&p, cfg))

	p.Amenities = models.Amenities{HasFullKitchen: true, ParkingSpots: 2}
	assert.False(t, r.Passes(&p, cfg), "two spots should not satisfy parking_3plus")

	p.Amenities.ParkingSpots = 3
	assert.True(t, r.Passes(&p, cfg))
}

func TestScoreCheaperRanksHigher(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()
	cfg.ScoringWeights = models.ScoringWeights{Price: 0.5, Reviews: 0.5}

	cheap := passingProperty()
	cheap.TotalPrice = 1000
	pricey := passingProperty()
	pricey.TotalPrice = 2000

	assert.Greater(t, r.Score(&cheap, cfg), r.Score(&pricey, cfg))
}

func TestScoreRenormalizesWeights(t *testing.T) {
	r := NewRankingService()
	p := passingProperty()
	p.ReviewScore = floatPtr(4.5)

	cfg := baseConfig()
	cfg.ScoringWeights = models.ScoringWeights{Price: 0.3, Reviews: 0.2}

	scaled := baseConfig()
	scaled.ScoringWeights = models.ScoringWeights{Price: 0.6, Reviews: 0.4}

	assert.InDelta(t, r.Score(&p, cfg), r.Score(&p, scaled), 1e-9,
		"weights are relative: scaling all of them must not change the score")
}

func TestScoreAllZeroWeights(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()
	cfg.ScoringWeights = models.ScoringWeights{}

	p := passingProperty()
	assert.Zero(t, r.Score(&p, cfg))
}

func TestScoreStaysInUnitInterval(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()

	p := passingProperty()
	p.ReviewScore = floatPtr(4.9)
	p.Amenities = models.Amenities{HasFullKitchen: true, HasPool: true, HasHotTub: true, PetFriendly: true, ParkingSpots: 4}

	score := r.Score(&p, cfg)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestRankFiltersScoresAndPaginates(t *testing.T) {
	r := NewRankingService()
	cfg := baseConfig()

	props := []models.Property{}
	prices := []float64{12000, 8000, 14000, 20000}
	for i, price := range prices {
		p := passingProperty()
		p.ID = models.CompositeID("vrbo", string(rune('a'+i)))
		p.TotalPrice = price
		props = append(props, p)
	}

	ranked, total := r.Rank(props, cfg, models.SortValueScore, 0, 100)
	assert.Equal(t, 3, total, "the 20000 property is over budget")
	assert.Len(t, ranked, 3)
	for _, p := range ranked {
		assert.NotNil(t, p.ValueScore)
	}
	// Cheapest first under the default weights here: everything else is equal.
	assert.Equal(t, 8000.0, ranked[0].TotalPrice)

	page, total := r.Rank(props, cfg, models.SortValueScore, 1, 1)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
	assert.Equal(t, 12000.0, page[0].TotalPrice)

	empty, total := r.Rank(props, cfg, models.SortValueScore, 10, 5)
	assert.Equal(t, 3, total)
	assert.Empty(t, empty)

	none, total := r.Rank(props, cfg, models.SortValueScore, 0, -1)
	assert.Equal(t, 3, total)
	assert.Empty(t, none, "negative limit clamps to zero")
}

func TestSortPropertiesNullsLast(t *testing.T) {
	props := []models.Property{
		{ID: "a", ReviewScore: nil},
		{ID: "b", ReviewScore: floatPtr(4.2)},
		{ID: "c", ReviewScore: floatPtr(4.9)},
	}

	SortProperties(props, models.SortReviews)
	assert.Equal(t, "c", props[0].ID)
	assert.Equal(t, "b", props[1].ID)
	assert.Equal(t, "a", props[2].ID, "missing review score sorts last")

	props = []models.Property{
		{ID: "a", BeachWalkMinutes: nil},
		{ID: "b", BeachWalkMinutes: intPtr(12)},
		{ID: "c", BeachWalkMinutes: intPtr(3)},
	}

	SortProperties(props, models.SortBeach)
	assert.Equal(t, "c", props[0].ID)
	assert.Equal(t, "b", props[1].ID)
	assert.Equal(t, "a", props[2].ID)
}

func TestSortPropertiesByPrice(t *testing.T) {
	props := []models.Property{
		{ID: "a", TotalPrice: 3000},
		{ID: "b", TotalPrice: 1000},
		{ID: "c", TotalPrice: 2000},
	}

	SortProperties(props, models.SortPrice)
	assert.Equal(t, []string{"b", "c", "a"}, []string{props[0].ID, props[1].ID, props[2].ID})
}
