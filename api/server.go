package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/models"
)

// PropertyStore is the slice of the property store the API layer reads
// and deletes through.
type PropertyStore interface {
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	ListProperties(ctx context.Context, filter models.PropertyFilter, sort models.SortKey, skip, limit int) (*models.PropertyPage, error)
	AllProperties(ctx context.Context) ([]models.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	DeleteAllProperties(ctx context.Context) error
	LastRefreshed(ctx context.Context) (*time.Time, error)
}

// ConfigStore persists search config snapshots.
type ConfigStore interface {
	CurrentSearchConfig(ctx context.Context) (*models.SearchConfig, error)
	GetSearchConfig(ctx context.Context, id int64) (*models.SearchConfig, error)
	CreateSearchConfig(ctx context.Context, c *models.SearchConfig) error
}

// Refresher kicks off scrape runs.
type Refresher interface {
	RunAll(ctx context.Context) error
	SiteIDs() []string
}

// CommandQueue enqueues operator commands for the scheduler poll loop.
type CommandQueue interface {
	EnqueueCommand(cmd models.CommandType, params *models.CommandParams) error
}

// Rescorer recomputes stored value scores.
type Rescorer interface {
	RescoreAll(ctx context.Context, weights models.ScoringWeights) (int, error)
	ActiveConfig(ctx context.Context) (*models.SearchConfig, error)
}

// Server is the HTTP front of the daemon.
type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
}

func NewServer(cfg config.ServerConfig, props *PropertyController, search *SearchController) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
		}))
	} else {
		e.Use(middleware.CORS())
	}

	registerRoutes(e, props, search)

	return &Server{echo: e, cfg: cfg}
}

func registerRoutes(e *echo.Echo, props *PropertyController, search *SearchController) {
	e.GET("/", root)
	e.GET("/health", health)

	g := e.Group("/api")

	g.GET("/properties", props.List)
	g.GET("/properties/:id", props.Get)
	g.DELETE("/properties/:id", props.Delete)
	g.DELETE("/properties", props.DeleteAll)

	g.GET("/search/config", search.GetConfig)
	g.POST("/search/config", search.CreateConfig)
	g.POST("/search", search.Search)
	g.POST("/search/refresh", search.Refresh)
	g.POST("/search/score", search.Score)
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "vacation-finder",
		"docs":    "/api",
	})
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
