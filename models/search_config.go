package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScoringWeights are the five relative-importance weights of the value
// score. Each must be in [0,1]; they do not have to sum to 1 - the ranking
// service renormalizes by the sum at scoring time.
type ScoringWeights struct {
	Price     float64 `json:"price"`
	Reviews   float64 `json:"reviews"`
	Beach     float64 `json:"beach"`
	Amenities float64 `json:"amenities"`
	Distance  float64 `json:"distance"`
}

// DefaultScoringWeights returns the stock weighting.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Price:     0.30,
		Reviews:   0.25,
		Beach:     0.20,
		Amenities: 0.15,
		Distance:  0.10,
	}
}

// Sum returns the total of all five weights.
func (w ScoringWeights) Sum() float64 {
	return w.Price + w.Reviews + w.Beach + w.Amenities + w.Distance
}

// Validate checks that each weight is within [0,1].
func (w ScoringWeights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"price", w.Price},
		{"reviews", w.Reviews},
		{"beach", w.Beach},
		{"amenities", w.Amenities},
		{"distance", w.Distance},
	}
	for _, f := range named {
		if f.value < 0 || f.value > 1 {
			return &ValidationError{
				Field:   "scoring_weights." + f.name,
				Message: fmt.Sprintf("weight must be between 0 and 1, got %g", f.value),
			}
		}
	}
	return nil
}

// SearchConfig is an immutable snapshot of search criteria. Every save
// produces a new row; the most recently updated row is the current config.
type SearchConfig struct {
	ID int64 `json:"id" db:"id"`

	// Origin location
	OriginCity      string   `json:"origin_city" db:"origin_city"`
	OriginState     string   `json:"origin_state" db:"origin_state"`
	OriginLatitude  *float64 `json:"origin_latitude" db:"origin_latitude"`
	OriginLongitude *float64 `json:"origin_longitude" db:"origin_longitude"`

	MaxDistanceMiles int `json:"max_distance_miles" db:"max_distance_miles"`

	// Property requirements
	MinBedrooms int  `json:"min_bedrooms" db:"min_bedrooms"`
	MaxBedrooms int  `json:"max_bedrooms" db:"max_bedrooms"`
	MinGuests   *int `json:"min_guests" db:"min_guests"`

	MaxPricePerWeek float64 `json:"max_price_per_week" db:"max_price_per_week"`

	// Stay window
	DateStart Date `json:"date_start" db:"date_start"`
	DateEnd   Date `json:"date_end" db:"date_end"`

	MaxBeachWalkMinutes int `json:"max_beach_walk_minutes" db:"max_beach_walk_minutes"`

	// Tags like "full_kitchen", "pool", "parking_3plus"
	RequiredAmenities []string `json:"required_amenities" db:"required_amenities"`

	ScoringWeights ScoringWeights `json:"scoring_weights" db:"scoring_weights"`

	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks cross-field constraints before the config is persisted.
func (c *SearchConfig) Validate() error {
	if c.MinBedrooms < 0 {
		return &ValidationError{Field: "min_bedrooms", Message: "must not be negative"}
	}
	if c.MinBedrooms > c.MaxBedrooms {
		return &ValidationError{
			Field:   "min_bedrooms",
			Message: fmt.Sprintf("min_bedrooms %d exceeds max_bedrooms %d", c.MinBedrooms, c.MaxBedrooms),
		}
	}
	if c.MaxPricePerWeek <= 0 {
		return &ValidationError{Field: "max_price_per_week", Message: "must be positive"}
	}
	if !c.DateStart.Before(c.DateEnd) {
		return &ValidationError{Field: "date_start", Message: "date_start must be before date_end"}
	}
	return c.ScoringWeights.Validate()
}

// Satisfies reports whether a property's amenity mapping satisfies one
// required-amenity tag. Unknown tags are never satisfied.
func (a Amenities) Satisfies(tag string) bool {
	switch tag {
	case "full_kitchen":
		return a.HasFullKitchen
	case "pool":
		return a.HasPool
	case "hot_tub":
		return a.HasHotTub
	case "pet_friendly":
		return a.PetFriendly
	}
	// parking_Nplus requires at least N parking spots
	if n, ok := parseParkingTag(tag); ok {
		return a.ParkingSpots >= n
	}
	return false
}

func parseParkingTag(tag string) (int, bool) {
	rest, ok := strings.CutPrefix(tag, "parking_")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "plus")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
