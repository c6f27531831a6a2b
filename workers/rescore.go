package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/services"
)

// RescoreWorker periodically recomputes stored value scores against the
// active search config, so scores stay consistent after config changes
// and refreshes.
type RescoreWorker struct {
	propSvc   *services.PropertyService
	triggerCh chan struct{}
	logFunc   LogFunc
}

func NewRescoreWorker(propSvc *services.PropertyService) *RescoreWorker {
	return &RescoreWorker{
		propSvc:   propSvc,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *RescoreWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *RescoreWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the rescore loop
func (w *RescoreWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Rescore worker stopping")
			return
		case <-ticker.C:
			w.rescore(ctx)
		case <-w.triggerCh:
			w.rescore(ctx)
		}
	}
}

func (w *RescoreWorker) rescore(ctx context.Context) {
	cfg, err := w.propSvc.ActiveConfig(ctx)
	if err != nil {
		log.Printf("Rescore worker: config error: %v", err)
		w.logFunc(models.LogLevelError, "rescore", fmt.Sprintf("config error: %v", err))
		return
	}

	n, err := w.propSvc.RescoreAll(ctx, cfg.ScoringWeights)
	if err != nil {
		log.Printf("Rescore worker: error after %d updates: %v", n, err)
		w.logFunc(models.LogLevelError, "rescore", fmt.Sprintf("error after %d updates: %v", n, err))
		return
	}

	if n > 0 {
		log.Printf("Rescore worker: updated %d properties", n)
	}
}
