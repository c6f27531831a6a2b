package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/services"
)

// SearchController serves config management, ranked search, refresh and
// rescore.
type SearchController struct {
	props     PropertyStore
	configs   ConfigStore
	ranker    *services.RankingService
	rescorer  Rescorer
	refresher Refresher
	commands  CommandQueue
	defaults  config.DefaultsConfig
}

func NewSearchController(props PropertyStore, configs ConfigStore, ranker *services.RankingService, rescorer Rescorer, refresher Refresher, commands CommandQueue, defaults config.DefaultsConfig) *SearchController {
	return &SearchController{
		props:     props,
		configs:   configs,
		ranker:    ranker,
		rescorer:  rescorer,
		refresher: refresher,
		commands:  commands,
		defaults:  defaults,
	}
}

// GetConfig returns the current search config, or JSON null when none has
// been saved yet.
func (sc *SearchController) GetConfig(c echo.Context) error {
	cfg, err := sc.configs.CurrentSearchConfig(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch config"})
	}
	return c.JSON(http.StatusOK, cfg)
}

func (sc *SearchController) CreateConfig(c echo.Context) error {
	var cfg models.SearchConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := cfg.Validate(); err != nil {
		return validationResponse(c, err)
	}

	if err := sc.configs.CreateSearchConfig(c.Request().Context(), &cfg); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save config"})
	}

	return c.JSON(http.StatusCreated, cfg)
}

// searchRequest selects the config for one search. Resolution order:
// inline config, then config_id, then the current saved config, then the
// built-in defaults.
type searchRequest struct {
	Config   *models.SearchConfig `json:"config"`
	ConfigID *int64               `json:"config_id"`
	UseCache *bool                `json:"use_cached"`
}

func (sc *SearchController) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	cfg, err := sc.resolveConfig(ctx, &req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Config not found"})
		}
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, err)
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to resolve config"})
	}

	// A stale-tolerant refresh: serve the stored snapshot now, let the
	// scheduler pick up the refresh in the background.
	if req.UseCache != nil && !*req.UseCache {
		if err := sc.commands.EnqueueCommand(models.CmdRefreshNow, nil); err != nil {
			log.Printf("Failed to enqueue refresh: %v", err)
		}
	}

	skip, err := intParam(c, "skip", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	limit, err := intParam(c, "limit", 50)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	sort := models.ParseSortKey(c.QueryParam("sort_by"))

	props, err := sc.props.AllProperties(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load properties"})
	}

	ranked, total := sc.ranker.Rank(props, cfg, sort, skip, limit)

	lastRefreshed, err := sc.props.LastRefreshed(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read freshness"})
	}

	return c.JSON(http.StatusOK, models.PropertyPage{
		Properties:    ranked,
		Total:         total,
		LastRefreshed: lastRefreshed,
	})
}

func (sc *SearchController) resolveConfig(ctx context.Context, req *searchRequest) (*models.SearchConfig, error) {
	if req.Config != nil {
		if err := req.Config.Validate(); err != nil {
			return nil, err
		}
		return req.Config, nil
	}
	if req.ConfigID != nil {
		return sc.configs.GetSearchConfig(ctx, *req.ConfigID)
	}
	cfg, err := sc.configs.CurrentSearchConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = sc.defaults.SearchConfig()
	}
	return cfg, nil
}

// Refresh starts a full scrape run in the background and returns
// immediately.
func (sc *SearchController) Refresh(c echo.Context) error {
	refreshID := uuid.NewString()
	sources := sc.refresher.SiteIDs()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := sc.refresher.RunAll(ctx); err != nil {
			log.Printf("Refresh %s failed: %v", refreshID, err)
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message":    "Refresh started",
		"refresh_id": refreshID,
		"sources":    sources,
	})
}

// Score synchronously rescores all stored properties with the supplied
// weights.
func (sc *SearchController) Score(c echo.Context) error {
	var weights models.ScoringWeights
	if err := c.Bind(&weights); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := weights.Validate(); err != nil {
		return validationResponse(c, err)
	}

	updated, err := sc.rescorer.RescoreAll(c.Request().Context(), weights)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to rescore properties"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Rescore complete",
		"updated": updated,
		"weights": weights,
	})
}

func validationResponse(c echo.Context, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
	}
	return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}
