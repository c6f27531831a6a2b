package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/httputil"
	"github.com/charleshall888/Vacation-Finder/models"
)

// APIHandler drives sites that expose a JSON search endpoint (Vrbo-style
// serp API). Pages until the site returns a short page, up to a hard cap.
type APIHandler struct {
	cfg    *config.SiteConfig
	client *http.Client
}

func NewAPIHandler(cfg *config.SiteConfig, clients *httputil.Clients) *APIHandler {
	client := &http.Client{Timeout: 30 * time.Second}
	if clients != nil {
		client = clients.Scraping
	}
	return &APIHandler{cfg: cfg, client: client}
}

func (h *APIHandler) ID() string {
	return h.cfg.ID
}

const (
	resultsPerPage = 50
	maxAPIPages    = 40
)

func (h *APIHandler) Search(ctx context.Context, cfg *models.SearchConfig) ([]models.RawListing, error) {
	var all []models.RawListing

	for page := 1; page <= maxAPIPages; page++ {
		log.Printf("API %s: fetching page %d", h.cfg.ID, page)

		listings, err := h.fetchPage(ctx, cfg, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if len(listings) == 0 {
			break
		}

		all = append(all, listings...)
		log.Printf("API %s: page %d: %d listings (total: %d)", h.cfg.ID, page, len(listings), len(all))

		if len(listings) < resultsPerPage {
			break
		}

		if h.cfg.RateLimitMS > 0 {
			select {
			case <-time.After(time.Duration(h.cfg.RateLimitMS) * time.Millisecond):
			case <-ctx.Done():
				return all, ctx.Err()
			}
		}
	}

	return all, nil
}

func (h *APIHandler) fetchPage(ctx context.Context, cfg *models.SearchConfig, page int) ([]models.RawListing, error) {
	endpoint := h.cfg.Endpoints["search"]

	reqBody := map[string]interface{}{
		"region":         h.cfg.Region,
		"minBedrooms":    cfg.MinBedrooms,
		"maxBedrooms":    cfg.MaxBedrooms,
		"checkIn":        cfg.DateStart.Format("2006-01-02"),
		"checkOut":       cfg.DateEnd.Format("2006-01-02"),
		"resultsPerPage": resultsPerPage,
		"currentPage":    page,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s API error %d: %s", h.cfg.ID, resp.StatusCode, string(respBody))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return parseSearchResponse(data)
}

// parseSearchResponse converts one serp API page into raw listings.
func parseSearchResponse(data []byte) ([]models.RawListing, error) {
	var result serpResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	var listings []models.RawListing
	for _, r := range result.Results {
		listing := models.RawListing{
			ExternalID:   r.ListingID,
			Name:         r.Headline,
			URL:          r.DetailPageURL,
			Address:      r.Address,
			Bedrooms:     r.Bedrooms,
			PricePerWeek: r.Price.Nightly * 7,
			CleaningFee:  r.Price.CleaningFee,
			ReviewCount:  r.ReviewCount,
			Region:       r.Region,
			Amenities: models.Amenities{
				HasFullKitchen: r.Amenities.Kitchen,
				ParkingSpots:   r.Amenities.ParkingSpots,
				HasPool:        r.Amenities.Pool,
				HasHotTub:      r.Amenities.HotTub,
				PetFriendly:    r.Amenities.PetsAllowed,
			},
			Photos: r.Photos,
		}

		if r.Geo != nil {
			lat, lng := r.Geo.Lat, r.Geo.Lng
			listing.Latitude = &lat
			listing.Longitude = &lng
		}
		if r.Bathrooms > 0 {
			baths := r.Bathrooms
			listing.Bathrooms = &baths
		}
		if r.Sleeps > 0 {
			sleeps := r.Sleeps
			listing.MaxGuests = &sleeps
		}
		if r.ReviewAverage > 0 {
			avg := r.ReviewAverage
			listing.ReviewScore = &avg
		}
		if r.BeachWalkMinutes > 0 {
			mins := r.BeachWalkMinutes
			listing.BeachWalkMinutes = &mins
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

type serpResponse struct {
	Results []serpListing `json:"results"`
	Paging  struct {
		CurrentPage  int `json:"currentPage"`
		TotalPages   int `json:"totalPages"`
		TotalResults int `json:"totalResults"`
	} `json:"paging"`
}

type serpListing struct {
	ListingID     string `json:"listingId"`
	Headline      string `json:"headline"`
	DetailPageURL string `json:"detailPageUrl"`
	Address       string `json:"address"`
	Region        string `json:"region"`
	Geo           *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geo"`
	Bedrooms         int     `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	Sleeps           int     `json:"sleeps"`
	BeachWalkMinutes int     `json:"beachWalkMinutes"`
	Price            struct {
		Nightly     float64 `json:"nightly"`
		CleaningFee float64 `json:"cleaningFee"`
	} `json:"price"`
	ReviewAverage float64 `json:"reviewAverage"`
	ReviewCount   int     `json:"reviewCount"`
	Amenities     struct {
		Kitchen      bool `json:"kitchen"`
		ParkingSpots int  `json:"parkingSpots"`
		Pool         bool `json:"pool"`
		HotTub       bool `json:"hotTub"`
		PetsAllowed  bool `json:"petsAllowed"`
	} `json:"amenities"`
	Photos []string `json:"photos"`
}
