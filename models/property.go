package models

import (
	"fmt"
	"time"
)

// Property is one scraped listing, keyed by source + the source's own ID.
type Property struct {
	ID     string `json:"id" db:"id"`
	Source string `json:"source" db:"source"` // airbnb, vrbo, vacasa, local
	Name   string `json:"name" db:"name"`
	URL    string `json:"url" db:"url"`

	// Location
	Address                 string   `json:"address" db:"address"`
	Latitude                *float64 `json:"latitude" db:"latitude"`
	Longitude               *float64 `json:"longitude" db:"longitude"`
	BeachWalkMinutes        *int     `json:"beach_walk_minutes" db:"beach_walk_minutes"`
	DistanceFromOriginMiles *float64 `json:"distance_from_origin_miles" db:"distance_from_origin_miles"`
	Region                  string   `json:"region" db:"region"` // Gulf Coast FL, SC Coast, etc.

	// Specs
	Bedrooms  int      `json:"bedrooms" db:"bedrooms"`
	Bathrooms *float64 `json:"bathrooms" db:"bathrooms"`
	MaxGuests *int     `json:"max_guests" db:"max_guests"`

	// Pricing
	PricePerWeek float64 `json:"price_per_week" db:"price_per_week"`
	CleaningFee  float64 `json:"cleaning_fee" db:"cleaning_fee"`
	TotalPrice   float64 `json:"total_price" db:"total_price"`

	// Quality
	ReviewScore *float64 `json:"review_score" db:"review_score"` // 0-5 scale
	ReviewCount int      `json:"review_count" db:"review_count"`

	Amenities Amenities `json:"amenities" db:"amenities"`
	Photos    []string  `json:"photos" db:"photos"`

	Verified       bool      `json:"verified" db:"verified"`
	PhotosArchived bool      `json:"photos_archived" db:"photos_archived"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`

	// Recomputed whenever scoring weights change
	ValueScore *float64 `json:"value_score" db:"value_score"`
}

// Amenities holds the amenity flags and counts tracked per listing.
type Amenities struct {
	HasFullKitchen bool `json:"has_full_kitchen"`
	ParkingSpots   int  `json:"parking_spots"`
	HasPool        bool `json:"has_pool"`
	HasHotTub      bool `json:"has_hot_tub"`
	PetFriendly    bool `json:"pet_friendly"`
}

// CompositeID builds the property primary key from a source and that
// source's native listing ID.
func CompositeID(source, externalID string) string {
	return fmt.Sprintf("%s:%s", source, externalID)
}

// DeriveTotalPrice sets TotalPrice from the weekly price and cleaning fee.
func (p *Property) DeriveTotalPrice() {
	p.TotalPrice = p.PricePerWeek + p.CleaningFee
}

// SortKey selects the ordering for property listings.
type SortKey string

const (
	SortValueScore SortKey = "value_score" // descending, nulls last
	SortPrice      SortKey = "price"       // total price ascending
	SortReviews    SortKey = "reviews"     // review score descending, nulls last
	SortBeach      SortKey = "beach"       // beach walk minutes ascending, nulls last
)

// ParseSortKey maps a query parameter to a SortKey, defaulting to value score.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortPrice, SortReviews, SortBeach:
		return SortKey(s)
	default:
		return SortValueScore
	}
}

// PropertyFilter narrows a listing query. Zero values mean no constraint.
type PropertyFilter struct {
	Source      string
	MinBedrooms int
	MaxPrice    float64
}

// PropertyPage is one page of filtered results plus the unpaginated total
// and the freshness timestamp across the whole store.
type PropertyPage struct {
	Properties    []Property `json:"properties"`
	Total         int        `json:"total"`
	LastRefreshed *time.Time `json:"last_refreshed"`
}
