package models

// RawListing is a scraper's output before normalization into a Property.
type RawListing struct {
	ExternalID       string    `json:"external_id"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	Address          string    `json:"address"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	Region           string    `json:"region"`
	BeachWalkMinutes *int      `json:"beach_walk_minutes"`
	Bedrooms         int       `json:"bedrooms"`
	Bathrooms        *float64  `json:"bathrooms"`
	MaxGuests        *int      `json:"max_guests"`
	PricePerWeek     float64   `json:"price_per_week"`
	CleaningFee      float64   `json:"cleaning_fee"`
	ReviewScore      *float64  `json:"review_score"`
	ReviewCount      int       `json:"review_count"`
	Amenities        Amenities `json:"amenities"`
	Photos           []string  `json:"photos"`
}
