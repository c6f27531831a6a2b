package scraper

import (
	"bytes"
	"testing"

	"github.com/charleshall888/Vacation-Finder/models"
)

func TestParseListingCards_Basic(t *testing.T) {
	data := loadFixture(t, "vacasa_results_basic.html")

	listings, err := parseListingCards(bytes.NewReader(data), "AL Gulf Coast")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (card without an id is skipped), got %d", len(listings))
	}

	l := listings[0]
	if l.ExternalID != "FL-2201" {
		t.Fatalf("expected listing ID FL-2201, got %s", l.ExternalID)
	}
	if l.Name != "Beachside Retreat with Hot Tub" {
		t.Fatalf("unexpected name %q", l.Name)
	}
	if l.URL != "https://www.vacasa.com/unit/FL-2201" {
		t.Fatalf("unexpected URL %s", l.URL)
	}
	if l.Address != "Orange Beach, AL" {
		t.Fatalf("unexpected address %q", l.Address)
	}
	if l.Region != "AL Gulf Coast" {
		t.Fatalf("unexpected region %q", l.Region)
	}
	if l.Bedrooms != 8 {
		t.Fatalf("expected 8 bedrooms, got %d", l.Bedrooms)
	}
	if l.Bathrooms == nil || *l.Bathrooms != 7 {
		t.Fatalf("unexpected bathrooms %v", l.Bathrooms)
	}
	if l.MaxGuests == nil || *l.MaxGuests != 18 {
		t.Fatalf("unexpected max guests %v", l.MaxGuests)
	}
	if l.PricePerWeek != 980*7 {
		t.Fatalf("expected weekly price %d, got %f", 980*7, l.PricePerWeek)
	}
	if l.ReviewScore == nil || *l.ReviewScore != 4.6 {
		t.Fatalf("unexpected review score %v", l.ReviewScore)
	}
	if l.ReviewCount != 134 {
		t.Fatalf("expected 134 reviews, got %d", l.ReviewCount)
	}
	if !l.Amenities.HasFullKitchen || !l.Amenities.HasHotTub || !l.Amenities.PetFriendly {
		t.Fatalf("unexpected amenities %+v", l.Amenities)
	}
	if l.Amenities.ParkingSpots != 3 {
		t.Fatalf("expected 3 parking spots, got %d", l.Amenities.ParkingSpots)
	}
	if len(l.Photos) != 2 {
		t.Fatalf("expected 2 photos (empty src dropped), got %d", len(l.Photos))
	}
	if l.Latitude == nil || *l.Latitude != 30.2766 {
		t.Fatalf("unexpected latitude %v", l.Latitude)
	}
}

func TestParseListingCards_SparseCard(t *testing.T) {
	data := loadFixture(t, "vacasa_results_basic.html")

	listings, err := parseListingCards(bytes.NewReader(data), "SC Coast")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	l := listings[1]
	if l.ExternalID != "SC-0405" {
		t.Fatalf("expected listing ID SC-0405, got %s", l.ExternalID)
	}
	if l.PricePerWeek != 1150*7 {
		t.Fatalf("expected weekly price %d, got %f", 1150*7, l.PricePerWeek)
	}
	if l.Latitude != nil || l.Longitude != nil {
		t.Fatalf("expected nil geo for card without coordinates")
	}
	if l.Bathrooms != nil || l.MaxGuests != nil || l.ReviewScore != nil {
		t.Fatalf("expected nil optionals on sparse card")
	}
	if !l.Amenities.HasPool {
		t.Fatal("expected pool amenity")
	}
}

func TestApplyAmenityLabel(t *testing.T) {
	var a models.Amenities

	applyAmenityLabel(&a, "Full Kitchen")
	applyAmenityLabel(&a, "Hot Tub")
	applyAmenityLabel(&a, "Parking for 5")
	if !a.HasFullKitchen || !a.HasHotTub {
		t.Fatalf("unexpected amenities %+v", a)
	}
	if a.ParkingSpots != 5 {
		t.Fatalf("expected 5 parking spots, got %d", a.ParkingSpots)
	}

	// A parking label without a count still means parking exists.
	var b models.Amenities
	applyAmenityLabel(&b, "Free parking on premises")
	if b.ParkingSpots != 1 {
		t.Fatalf("expected 1 parking spot, got %d", b.ParkingSpots)
	}

	// "hot tub" must not be mistaken for a pool.
	var c models.Amenities
	applyAmenityLabel(&c, "Hot Tub")
	if c.HasPool {
		t.Fatal("hot tub label set the pool flag")
	}
}
