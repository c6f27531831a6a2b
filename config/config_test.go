package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Server.CORSOrigins)

	assert.Equal(t, "Athens", cfg.Defaults.OriginCity)
	assert.Equal(t, "GA", cfg.Defaults.OriginState)
	assert.Equal(t, 400, cfg.Defaults.MaxDistanceMiles)
	assert.Equal(t, 7, cfg.Defaults.MinBedrooms)
	assert.Equal(t, 9, cfg.Defaults.MaxBedrooms)
	assert.Equal(t, 15000.0, cfg.Defaults.MaxPricePerWeek)
	assert.Equal(t, 10, cfg.Defaults.MaxBeachWalkMinutes)

	assert.False(t, cfg.S3.Enabled())
	assert.Empty(t, cfg.Sites)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())
	t.Setenv("API_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://other.example.com")
	t.Setenv("REFRESH_INTERVAL", "45m")
	t.Setenv("DEFAULT_MAX_PRICE_PER_WEEK", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://other.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "45m0s", cfg.Scheduler.Interval.String())
	assert.Equal(t, 9000.0, cfg.Defaults.MaxPricePerWeek)
}

func TestLoadSiteConfigs(t *testing.T) {
	dir := t.TempDir()
	site := `id: vrbo
name: Vrbo
handler: api
rate_limit_ms: 1500
region: Gulf Coast FL
endpoints:
  search: https://www.vrbo.com/serp/api/search
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vrbo.yaml"), []byte(site), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	t.Setenv("SITES_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Sites, 1)
	vrbo := cfg.Sites["vrbo"]
	require.NotNil(t, vrbo)
	assert.Equal(t, "Vrbo", vrbo.Name)
	assert.Equal(t, "api", vrbo.Handler)
	assert.Equal(t, 1500, vrbo.RateLimitMS)
	assert.Equal(t, "https://www.vrbo.com/serp/api/search", vrbo.Endpoints["search"])
}

func TestSiteConfigInheritsDefaultDelay(t *testing.T) {
	dir := t.TempDir()
	site := `id: vacasa
name: Vacasa
handler: html
endpoints:
  search: https://www.vacasa.com/vacation-rentals/search
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vacasa.yaml"), []byte(site), 0644))
	t.Setenv("SITES_DIR", dir)
	t.Setenv("SCRAPE_DELAY_MS", "750")

	cfg, err := Load()
	require.NoError(t, err)

	vacasa := cfg.Sites["vacasa"]
	require.NotNil(t, vacasa)
	assert.Equal(t, 750, vacasa.RateLimitMS, "site without rate_limit_ms uses the scraper default delay")
}

func TestDefaultsSearchConfig(t *testing.T) {
	d := DefaultsConfig{
		OriginCity:          "Athens",
		OriginState:         "GA",
		MaxDistanceMiles:    400,
		MinBedrooms:         7,
		MaxBedrooms:         9,
		MinGuests:           12,
		MaxPricePerWeek:     15000,
		MaxBeachWalkMinutes: 10,
	}

	cfg := d.SearchConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Athens", cfg.OriginCity)
	require.NotNil(t, cfg.MinGuests)
	assert.Equal(t, 12, *cfg.MinGuests)
	assert.True(t, cfg.DateStart.Before(cfg.DateEnd))
	assert.Contains(t, cfg.RequiredAmenities, "full_kitchen")
	assert.InDelta(t, 1.0, cfg.ScoringWeights.Sum(), 1e-9)
}
