package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/charleshall888/Vacation-Finder/models"
)

type Config struct {
	DatabaseURL string
	OpsDBPath   string
	LogPath     string
	Server      ServerConfig
	Proxy       ProxyConfig
	Scheduler   SchedulerConfig
	Scraper     ScraperConfig
	S3          S3Config
	Defaults    DefaultsConfig
	Sites       map[string]*SiteConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type ProxyConfig struct {
	URL string
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

type ScraperConfig struct {
	DelayMS int
	Timeout time.Duration
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether photo archival to S3 is configured at all.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != ""
}

// DefaultsConfig is the fallback search configuration used when the store
// holds no config rows yet.
type DefaultsConfig struct {
	OriginCity          string
	OriginState         string
	MaxDistanceMiles    int
	MinBedrooms         int
	MaxBedrooms         int
	MinGuests           int
	MaxPricePerWeek     float64
	MaxBeachWalkMinutes int
}

// SearchConfig expands the defaults into a full in-memory config with the
// stock weights and a stay window starting a week out.
func (d DefaultsConfig) SearchConfig() *models.SearchConfig {
	minGuests := d.MinGuests
	start := time.Now().AddDate(0, 0, 7)
	end := start.AddDate(0, 0, 7)
	return &models.SearchConfig{
		OriginCity:          d.OriginCity,
		OriginState:         d.OriginState,
		MaxDistanceMiles:    d.MaxDistanceMiles,
		MinBedrooms:         d.MinBedrooms,
		MaxBedrooms:         d.MaxBedrooms,
		MinGuests:           &minGuests,
		MaxPricePerWeek:     d.MaxPricePerWeek,
		DateStart:           models.NewDate(start.Year(), start.Month(), start.Day()),
		DateEnd:             models.NewDate(end.Year(), end.Month(), end.Day()),
		MaxBeachWalkMinutes: d.MaxBeachWalkMinutes,
		RequiredAmenities:   []string{"full_kitchen", "parking_3plus"},
		ScoringWeights:      models.DefaultScoringWeights(),
	}
}

type SiteConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Handler     string            `yaml:"handler"` // api, html, browser
	RateLimitMS int               `yaml:"rate_limit_ms"`
	Endpoints   map[string]string `yaml:"endpoints"`
	Region      string            `yaml:"region"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/vacation_finder"),
		OpsDBPath:   getEnv("OPS_DB_PATH", "vacation_finder_ops.db"),
		LogPath:     getEnv("LOG_PATH", "daemon.log"),
		Server: ServerConfig{
			Host:        getEnv("API_HOST", "0.0.0.0"),
			Port:        getEnvInt("API_PORT", 8000),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("REFRESH_CRON"),
		},
		Scraper: ScraperConfig{
			DelayMS: getEnvInt("SCRAPE_DELAY_MS", 500),
			Timeout: getEnvDuration("SCRAPE_TIMEOUT", 10*time.Minute),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Defaults: DefaultsConfig{
			OriginCity:          getEnv("DEFAULT_ORIGIN_CITY", "Athens"),
			OriginState:         getEnv("DEFAULT_ORIGIN_STATE", "GA"),
			MaxDistanceMiles:    getEnvInt("DEFAULT_MAX_DISTANCE_MILES", 400),
			MinBedrooms:         getEnvInt("DEFAULT_MIN_BEDROOMS", 7),
			MaxBedrooms:         getEnvInt("DEFAULT_MAX_BEDROOMS", 9),
			MinGuests:           getEnvInt("DEFAULT_MIN_GUESTS", 12),
			MaxPricePerWeek:     getEnvFloat("DEFAULT_MAX_PRICE_PER_WEEK", 15000),
			MaxBeachWalkMinutes: getEnvInt("DEFAULT_MAX_BEACH_WALK_MINUTES", 10),
		},
		Sites: make(map[string]*SiteConfig),
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfigs() error {
	configDir := getEnv("SITES_DIR", "config/sites")
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return err
		}
		if site.RateLimitMS == 0 {
			site.RateLimitMS = c.Scraper.DelayMS
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
