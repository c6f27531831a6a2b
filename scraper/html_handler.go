package scraper

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/httputil"
	"github.com/charleshall888/Vacation-Finder/models"
)

// HTMLHandler scrapes sites that render listing cards server-side
// (Vacasa-style search result pages). Follows the page parameter until
// a page comes back empty.
type HTMLHandler struct {
	cfg    *config.SiteConfig
	client *http.Client
}

func NewHTMLHandler(cfg *config.SiteConfig, clients *httputil.Clients) *HTMLHandler {
	client := &http.Client{Timeout: 30 * time.Second}
	if clients != nil {
		client = clients.Scraping
	}
	return &HTMLHandler{cfg: cfg, client: client}
}

func (h *HTMLHandler) ID() string {
	return h.cfg.ID
}

const maxHTMLPages = 20

func (h *HTMLHandler) Search(ctx context.Context, cfg *models.SearchConfig) ([]models.RawListing, error) {
	var all []models.RawListing

	for page := 1; page <= maxHTMLPages; page++ {
		log.Printf("HTML %s: fetching page %d", h.cfg.ID, page)

		listings, err := h.fetchPage(ctx, cfg, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		if len(listings) == 0 {
			break
		}

		all = append(all, listings...)
		log.Printf("HTML %s: page %d: %d listings (total: %d)", h.cfg.ID, page, len(listings), len(all))

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

func (h *HTMLHandler) fetchPage(ctx context.Context, cfg *models.SearchConfig, page int) ([]models.RawListing, error) {
	endpoint, err := url.Parse(h.cfg.Endpoints["search"])
	if err != nil {
		return nil, fmt.Errorf("bad search endpoint: %w", err)
	}

	q := endpoint.Query()
	q.Set("min_bedrooms", strconv.Itoa(cfg.MinBedrooms))
	q.Set("max_bedrooms", strconv.Itoa(cfg.MaxBedrooms))
	q.Set("check_in", cfg.DateStart.Format("2006-01-02"))
	q.Set("check_out", cfg.DateEnd.Format("2006-01-02"))
	q.Set("page", strconv.Itoa(page))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return parseListingCards(resp.Body, h.cfg.Region)
}

// parseListingCards extracts raw listings from one search result page.
func parseListingCards(r io.Reader, region string) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var listings []models.RawListing

	doc.Find(".listing-card").Each(func(i int, card *goquery.Selection) {
		id, _ := card.Attr("data-listing-id")
		if id == "" {
			return
		}

		listing := models.RawListing{
			ExternalID: id,
			Name:       strings.TrimSpace(card.Find(".listing-card__title").Text()),
			Address:    strings.TrimSpace(card.Find(".listing-card__location").Text()),
			Region:     region,
		}

		if href, ok := card.Find("a.listing-card__link").Attr("href"); ok {
			listing.URL = href
		}

		listing.Bedrooms = extractCount(card, ".listing-card__bedrooms")
		if baths := extractFloat(card, ".listing-card__bathrooms"); baths > 0 {
			listing.Bathrooms = &baths
		}
		if sleeps := extractCount(card, ".listing-card__sleeps"); sleeps > 0 {
			listing.MaxGuests = &sleeps
		}

		// Cards show a nightly rate ("$450 / night")
		if nightly := extractPrice(card.Find(".listing-card__price").Text()); nightly > 0 {
			listing.PricePerWeek = nightly * 7
		}

		if rating := extractFloat(card, ".listing-card__rating"); rating > 0 {
			listing.ReviewScore = &rating
		}
		listing.ReviewCount = extractCount(card, ".listing-card__review-count")

		card.Find(".listing-card__amenities li").Each(func(_ int, s *goquery.Selection) {
			applyAmenityLabel(&listing.Amenities, s.Text())
		})

		card.Find(".listing-card__photos img").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok && src != "" {
				listing.Photos = append(listing.Photos, src)
			}
		})

		if lat, lng, ok := extractGeo(card); ok {
			listing.Latitude = &lat
			listing.Longitude = &lng
		}

		listings = append(listings, listing)
	})

	return listings, nil
}

// applyAmenityLabel maps a card amenity label onto the amenity flags.
func applyAmenityLabel(a *models.Amenities, label string) {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(label, "kitchen"):
		a.HasFullKitchen = true
	case strings.Contains(label, "hot tub"):
		a.HasHotTub = true
	case strings.Contains(label, "pool"):
		a.HasPool = true
	case strings.Contains(label, "pet"):
		a.PetFriendly = true
	case strings.Contains(label, "parking"):
		var spots int
		fmt.Sscanf(label, "parking for %d", &spots)
		if spots == 0 {
			spots = 1
		}
		a.ParkingSpots = spots
	}
}

var numberRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

func extractCount(s *goquery.Selection, selector string) int {
	match := numberRe.FindString(s.Find(selector).Text())
	if match == "" {
		return 0
	}
	n, _ := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	return n
}

func extractFloat(s *goquery.Selection, selector string) float64 {
	match := numberRe.FindString(s.Find(selector).Text())
	if match == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	return f
}

func extractPrice(text string) float64 {
	match := numberRe.FindString(text)
	if match == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	return f
}

func extractGeo(card *goquery.Selection) (lat, lng float64, ok bool) {
	latStr, hasLat := card.Attr("data-lat")
	lngStr, hasLng := card.Attr("data-lng")
	if !hasLat || !hasLng {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
