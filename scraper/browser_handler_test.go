package scraper

import (
	"testing"
)

func TestParseStaysResponse_Basic(t *testing.T) {
	data := loadFixture(t, "airbnb_stays_basic.json")

	listings, err := parseStaysResponse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing (entry without an id is skipped), got %d", len(listings))
	}

	l := listings[0]
	if l.ExternalID != "stay-881203" {
		t.Fatalf("expected listing ID stay-881203, got %s", l.ExternalID)
	}
	if l.Name != "Grand Dune House - Steps to Beach" {
		t.Fatalf("unexpected name %q", l.Name)
	}
	if l.URL != "https://www.airbnb.com/rooms/881203" {
		t.Fatalf("unexpected URL %s", l.URL)
	}
	if l.Bedrooms != 9 {
		t.Fatalf("expected 9 bedrooms, got %d", l.Bedrooms)
	}
	if l.PricePerWeek != 1500*7 {
		t.Fatalf("expected weekly price %d, got %f", 1500*7, l.PricePerWeek)
	}
	if l.CleaningFee != 600 {
		t.Fatalf("expected cleaning fee 600, got %f", l.CleaningFee)
	}
	if l.Latitude == nil || *l.Latitude != 30.246 {
		t.Fatalf("unexpected latitude %v", l.Latitude)
	}
	if l.MaxGuests == nil || *l.MaxGuests != 20 {
		t.Fatalf("unexpected max guests %v", l.MaxGuests)
	}
	if l.ReviewScore == nil || *l.ReviewScore != 4.92 {
		t.Fatalf("unexpected review score %v", l.ReviewScore)
	}
	if l.ReviewCount != 310 {
		t.Fatalf("expected 310 reviews, got %d", l.ReviewCount)
	}
	if !l.Amenities.HasFullKitchen || !l.Amenities.HasPool {
		t.Fatalf("unexpected amenities %+v", l.Amenities)
	}
	if l.Amenities.ParkingSpots != 1 {
		t.Fatalf("expected 1 parking spot from the preview label, got %d", l.Amenities.ParkingSpots)
	}
}

func TestParseStaysResponse_Invalid(t *testing.T) {
	if _, err := parseStaysResponse([]byte("{")); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}
