package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/models"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func TestParseSearchResponse_Basic(t *testing.T) {
	data := loadFixture(t, "vrbo_search_basic.json")

	listings, err := parseSearchResponse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	l := listings[0]
	if l.ExternalID != "4481234" {
		t.Fatalf("expected listing ID 4481234, got %s", l.ExternalID)
	}
	if l.Name != "Oceanfront 8BR with Private Pool" {
		t.Fatalf("unexpected name %s", l.Name)
	}
	if l.Bedrooms != 8 {
		t.Fatalf("expected 8 bedrooms, got %d", l.Bedrooms)
	}
	if l.PricePerWeek != 1200*7 {
		t.Fatalf("expected weekly price %d, got %f", 1200*7, l.PricePerWeek)
	}
	if l.CleaningFee != 450 {
		t.Fatalf("expected cleaning fee 450, got %f", l.CleaningFee)
	}
	if l.Latitude == nil || *l.Latitude != 30.3935 {
		t.Fatalf("unexpected latitude %v", l.Latitude)
	}
	if l.Bathrooms == nil || *l.Bathrooms != 6.5 {
		t.Fatalf("unexpected bathrooms %v", l.Bathrooms)
	}
	if l.MaxGuests == nil || *l.MaxGuests != 16 {
		t.Fatalf("unexpected max guests %v", l.MaxGuests)
	}
	if l.BeachWalkMinutes == nil || *l.BeachWalkMinutes != 4 {
		t.Fatalf("unexpected beach walk minutes %v", l.BeachWalkMinutes)
	}
	if l.ReviewScore == nil || *l.ReviewScore != 4.8 {
		t.Fatalf("unexpected review score %v", l.ReviewScore)
	}
	if l.ReviewCount != 212 {
		t.Fatalf("expected 212 reviews, got %d", l.ReviewCount)
	}
	if !l.Amenities.HasFullKitchen || !l.Amenities.HasPool || !l.Amenities.PetFriendly {
		t.Fatalf("unexpected amenities %+v", l.Amenities)
	}
	if l.Amenities.ParkingSpots != 4 {
		t.Fatalf("expected 4 parking spots, got %d", l.Amenities.ParkingSpots)
	}
	if len(l.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(l.Photos))
	}
}

func TestParseSearchResponse_MissingOptionalFields(t *testing.T) {
	data := loadFixture(t, "vrbo_search_basic.json")

	listings, err := parseSearchResponse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	l := listings[1]
	if l.Latitude != nil || l.Longitude != nil {
		t.Fatalf("expected nil geo, got %v/%v", l.Latitude, l.Longitude)
	}
	if l.Bathrooms != nil {
		t.Fatalf("expected nil bathrooms, got %v", l.Bathrooms)
	}
	if l.MaxGuests != nil {
		t.Fatalf("expected nil max guests, got %v", l.MaxGuests)
	}
	if l.BeachWalkMinutes != nil {
		t.Fatalf("expected nil beach walk minutes, got %v", l.BeachWalkMinutes)
	}
	if l.ReviewScore != nil {
		t.Fatalf("expected nil review score, got %v", l.ReviewScore)
	}
	if l.CleaningFee != 0 {
		t.Fatalf("expected zero cleaning fee, got %f", l.CleaningFee)
	}
}

func TestParseSearchResponse_Invalid(t *testing.T) {
	if _, err := parseSearchResponse([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}

func fullSerpPage(t *testing.T) []byte {
	t.Helper()
	var resp serpResponse
	for i := 0; i < resultsPerPage; i++ {
		resp.Results = append(resp.Results, serpListing{
			ListingID: fmt.Sprintf("44%04d", i),
			Headline:  "Beach House",
			Bedrooms:  8,
		})
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal page: %v", err)
	}
	return data
}

func TestSearchStopsAtPageCap(t *testing.T) {
	page := fullSerpPage(t)
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		w.Header().Set("Content-Type", "application/json")
		w.Write(page)
	}))
	defer srv.Close()

	h := NewAPIHandler(&config.SiteConfig{
		ID:        "vrbo",
		Handler:   "api",
		Endpoints: map[string]string{"search": srv.URL},
	}, nil)

	listings, err := h.Search(context.Background(), &models.SearchConfig{MinBedrooms: 7, MaxBedrooms: 9})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if pages != maxAPIPages {
		t.Fatalf("expected %d page fetches, got %d", maxAPIPages, pages)
	}
	if len(listings) != maxAPIPages*resultsPerPage {
		t.Fatalf("expected %d listings, got %d", maxAPIPages*resultsPerPage, len(listings))
	}
}

func TestSearchStopsWhenContextExpires(t *testing.T) {
	page := fullSerpPage(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(page)
	}))
	defer srv.Close()

	h := NewAPIHandler(&config.SiteConfig{
		ID:          "vrbo",
		Handler:     "api",
		RateLimitMS: 500,
		Endpoints:   map[string]string{"search": srv.URL},
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := h.Search(ctx, &models.SearchConfig{MinBedrooms: 7, MaxBedrooms: 9})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
