package scraper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/httputil"
	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/services"
	"github.com/charleshall888/Vacation-Finder/storage"
)

// Orchestrator runs refresh cycles across all configured sites, records
// run history in the ops store, and feeds listings into the property
// service. Runs are serialized: a refresh triggered while one is in
// flight waits its turn.
type Orchestrator struct {
	cfg      *config.Config
	ops      *storage.OpsStore
	propSvc  *services.PropertyService
	handlers map[string]Handler

	runMu  sync.Mutex
	mu     sync.Mutex
	paused bool
}

func NewOrchestrator(cfg *config.Config, ops *storage.OpsStore, propSvc *services.PropertyService, clients *httputil.Clients) *Orchestrator {
	handlers := make(map[string]Handler)
	for id, siteCfg := range cfg.Sites {
		handlers[id] = NewHandler(siteCfg, clients)
	}

	return &Orchestrator{
		cfg:      cfg,
		ops:      ops,
		propSvc:  propSvc,
		handlers: handlers,
	}
}

// RunAll refreshes every configured site. A failing site does not stop
// the others.
func (o *Orchestrator) RunAll(ctx context.Context) error {
	if o.IsPaused() {
		log.Println("Refresh is paused, skipping run")
		return nil
	}

	for _, siteID := range o.SiteIDs() {
		if err := o.RunSite(ctx, siteID); err != nil {
			log.Printf("Error refreshing site %s: %v", siteID, err)
		}
	}

	return nil
}

// RunSite runs one full refresh for a single site against the active
// search config. The run is bounded by the configured scrape timeout so a
// stuck source cannot hold the run lock indefinitely.
func (o *Orchestrator) RunSite(ctx context.Context, siteID string) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	ctx, cancel := o.runContext(ctx)
	defer cancel()

	siteCfg, ok := o.cfg.Sites[siteID]
	if !ok {
		return fmt.Errorf("unknown site: %s", siteID)
	}

	handler, ok := o.handlers[siteID]
	if !ok {
		return fmt.Errorf("no handler for site: %s", siteID)
	}

	searchCfg, err := o.propSvc.ActiveConfig(ctx)
	if err != nil {
		return fmt.Errorf("resolve search config: %w", err)
	}

	run := &models.ScrapeRun{
		SiteID:    siteID,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}

	runID, err := o.ops.CreateRun(run)
	if err != nil {
		return err
	}
	run.ID = runID

	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Starting refresh for %s", siteCfg.Name), siteID)

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if run.Status == models.RunStatusRunning {
			run.Status = models.RunStatusCompleted
		}
		if err := o.ops.UpdateRun(run); err != nil {
			log.Printf("Failed to finalize run %d: %v", run.ID, err)
		}
	}()

	listings, err := handler.Search(ctx, searchCfg)
	if err != nil {
		o.log(run.ID, models.LogLevelError, fmt.Sprintf("Search error: %v", err), siteID)
		run.ErrorsCount++
		run.Status = models.RunStatusFailed
		return err
	}

	run.ListingsFound = len(listings)
	o.log(run.ID, models.LogLevelInfo, fmt.Sprintf("Found %d listings", len(listings)), siteID)

	for i := range listings {
		result, err := o.propSvc.Ingest(ctx, &listings[i], siteID, searchCfg)
		if err != nil {
			o.log(run.ID, models.LogLevelError, fmt.Sprintf("Ingest error for %s: %v", listings[i].ExternalID, err), siteID)
			run.ErrorsCount++
			continue
		}
		if result.IsNew {
			run.ListingsNew++
		}
	}

	o.log(run.ID, models.LogLevelInfo,
		fmt.Sprintf("Completed: %d found, %d new, %d errors",
			run.ListingsFound, run.ListingsNew, run.ErrorsCount), siteID)

	return nil
}

// HandleCommand executes one queued operator command.
func (o *Orchestrator) HandleCommand(cmd *models.Command) error {
	params, err := o.ops.ParseCommandParams(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch cmd.Command {
	case models.CmdRefreshNow:
		return o.RunAll(ctx)
	case models.CmdRefreshSource:
		if params.Site != "" {
			return o.RunSite(ctx, params.Site)
		}
		return o.RunAll(ctx)
	case models.CmdRescore:
		cfg, err := o.propSvc.ActiveConfig(ctx)
		if err != nil {
			return err
		}
		n, err := o.propSvc.RescoreAll(ctx, cfg.ScoringWeights)
		if err != nil {
			return err
		}
		log.Printf("Rescored %d properties", n)
	case models.CmdPause:
		o.setPaused(true)
		log.Println("Refresh paused")
	case models.CmdResume:
		o.setPaused(false)
		log.Println("Refresh resumed")
	}

	return nil
}

func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

func (o *Orchestrator) setPaused(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paused = v
}

// SiteIDs returns the configured site IDs in a stable order.
func (o *Orchestrator) SiteIDs() []string {
	ids := make([]string, 0, len(o.cfg.Sites))
	for id := range o.cfg.Sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// runContext bounds a single site refresh by the configured scrape timeout.
func (o *Orchestrator) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := o.cfg.Scraper.Timeout; t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) log(runID int64, level models.LogLevel, message, siteID string) {
	log.Printf("[%s] %s: %s", level, siteID, message)
	if err := o.ops.Log(&runID, level, message, siteID); err != nil {
		log.Printf("Failed to persist log: %v", err)
	}
}

// Close releases any browser sessions held by handlers.
func (o *Orchestrator) Close() {
	for _, h := range o.handlers {
		if bh, ok := h.(*BrowserHandler); ok {
			bh.Close()
		}
	}
}
