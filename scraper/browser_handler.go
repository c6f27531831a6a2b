package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/models"
)

const (
	browserListingsPerPage = 18
	minPageDelay           = 4 * time.Second
	maxPageDelay           = 9 * time.Second
)

// BrowserHandler drives sites that render search results client-side
// (Airbnb-style). It loads the search page in Chromium and intercepts
// the internal StaysSearch JSON responses instead of scraping the DOM.
type BrowserHandler struct {
	cfg *config.SiteConfig

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	initialized bool
}

func NewBrowserHandler(cfg *config.SiteConfig) *BrowserHandler {
	return &BrowserHandler{cfg: cfg}
}

func (h *BrowserHandler) ID() string {
	return h.cfg.ID
}

func (h *BrowserHandler) Search(ctx context.Context, cfg *models.SearchConfig) ([]models.RawListing, error) {
	if err := h.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := h.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
	})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	responses := make(chan []byte, 8)
	page.OnResponse(func(resp playwright.Response) {
		if !strings.Contains(resp.URL(), "/api/v3/StaysSearch") || resp.Status() != 200 {
			return
		}
		go func() {
			body, err := resp.Body()
			if err != nil || len(body) < 100 {
				return
			}
			select {
			case responses <- body:
			default:
			}
		}()
	})

	var all []models.RawListing
	seen := make(map[string]bool)

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		searchURL := h.searchURL(cfg, pageNum)
		log.Printf("Browser %s: navigating to page %d", h.cfg.ID, pageNum)

		if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
			Timeout:   playwright.Float(60000),
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		}); err != nil {
			return all, fmt.Errorf("page %d: %w", pageNum, err)
		}

		body, err := waitForResponse(ctx, responses, 30*time.Second)
		if err != nil {
			log.Printf("Browser %s: no search response on page %d: %v", h.cfg.ID, pageNum, err)
			break
		}

		listings, err := parseStaysResponse(body)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", pageNum, err)
		}

		added := 0
		for _, l := range listings {
			if seen[l.ExternalID] {
				continue
			}
			seen[l.ExternalID] = true
			all = append(all, l)
			added++
		}
		log.Printf("Browser %s: page %d: %d listings (total: %d)", h.cfg.ID, pageNum, added, len(all))

		if added == 0 || len(listings) < browserListingsPerPage {
			break
		}

		// Human-like delay between pages
		delay := minPageDelay + time.Duration(rand.Int63n(int64(maxPageDelay-minPageDelay)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return all, ctx.Err()
		}
	}

	return all, nil
}

func (h *BrowserHandler) searchURL(cfg *models.SearchConfig, page int) string {
	q := url.Values{}
	q.Set("query", h.cfg.Region)
	q.Set("checkin", cfg.DateStart.Format("2006-01-02"))
	q.Set("checkout", cfg.DateEnd.Format("2006-01-02"))
	q.Set("min_bedrooms", strconv.Itoa(cfg.MinBedrooms))
	if cfg.MinGuests != nil {
		q.Set("adults", strconv.Itoa(*cfg.MinGuests))
	}
	q.Set("page", strconv.Itoa(page))
	return h.cfg.Endpoints["search"] + "?" + q.Encode()
}

func (h *BrowserHandler) ensureBrowser() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return nil
	}

	var err error
	h.pw, err = playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	h.browser, err = h.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		h.pw.Stop()
		h.pw = nil
		return fmt.Errorf("launch browser: %w", err)
	}

	h.initialized = true
	return nil
}

func (h *BrowserHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.browser != nil {
		h.browser.Close()
		h.browser = nil
	}
	if h.pw != nil {
		h.pw.Stop()
		h.pw = nil
	}
	h.initialized = false
}

func waitForResponse(ctx context.Context, responses <-chan []byte, timeout time.Duration) ([]byte, error) {
	select {
	case body := <-responses:
		return body, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timed out after %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// parseStaysResponse converts one intercepted StaysSearch payload into
// raw listings.
func parseStaysResponse(data []byte) ([]models.RawListing, error) {
	var resp staysResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse stays response: %w", err)
	}

	var listings []models.RawListing
	for _, r := range resp.Results {
		if r.ID == "" {
			continue
		}

		listing := models.RawListing{
			ExternalID:   r.ID,
			Name:         r.Title,
			URL:          r.ListingURL,
			Address:      r.Location,
			Region:       r.Location,
			Bedrooms:     r.Bedrooms,
			PricePerWeek: r.Pricing.NightlyRate * 7,
			CleaningFee:  r.Pricing.CleaningFee,
			ReviewCount:  r.ReviewsCount,
			Photos:       r.Images,
		}

		if r.Lat != 0 || r.Lng != 0 {
			lat, lng := r.Lat, r.Lng
			listing.Latitude = &lat
			listing.Longitude = &lng
		}
		if r.Bathrooms > 0 {
			baths := r.Bathrooms
			listing.Bathrooms = &baths
		}
		if r.PersonCapacity > 0 {
			guests := r.PersonCapacity
			listing.MaxGuests = &guests
		}
		if r.AvgRating > 0 {
			rating := r.AvgRating
			listing.ReviewScore = &rating
		}

		for _, label := range r.PreviewAmenities {
			applyAmenityLabel(&listing.Amenities, label)
		}

		listings = append(listings, listing)
	}

	return listings, nil
}

type staysResponse struct {
	Results []staysListing `json:"results"`
}

type staysListing struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ListingURL       string   `json:"listingUrl"`
	Location         string   `json:"location"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        float64  `json:"bathrooms"`
	PersonCapacity   int      `json:"personCapacity"`
	AvgRating        float64  `json:"avgRating"`
	ReviewsCount     int      `json:"reviewsCount"`
	PreviewAmenities []string `json:"previewAmenities"`
	Images           []string `json:"images"`
	Pricing          struct {
		NightlyRate float64 `json:"nightlyRate"`
		CleaningFee float64 `json:"cleaningFee"`
	} `json:"pricing"`
}
