package scraper

import (
	"context"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/httputil"
	"github.com/charleshall888/Vacation-Finder/models"
)

// Handler fetches listings from one rental site for a search config.
type Handler interface {
	ID() string
	Search(ctx context.Context, cfg *models.SearchConfig) ([]models.RawListing, error)
}

func NewHandler(siteCfg *config.SiteConfig, clients *httputil.Clients) Handler {
	switch siteCfg.Handler {
	case "html":
		return NewHTMLHandler(siteCfg, clients)
	case "browser":
		return NewBrowserHandler(siteCfg)
	default:
		return NewAPIHandler(siteCfg, clients)
	}
}
