package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleshall888/Vacation-Finder/api"
	"github.com/charleshall888/Vacation-Finder/config"
	"github.com/charleshall888/Vacation-Finder/httputil"
	"github.com/charleshall888/Vacation-Finder/logging"
	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/scheduler"
	"github.com/charleshall888/Vacation-Finder/scraper"
	"github.com/charleshall888/Vacation-Finder/services"
	"github.com/charleshall888/Vacation-Finder/storage"
	"github.com/charleshall888/Vacation-Finder/workers"
)

var (
	refreshNow = flag.Bool("refresh", false, "Run a full refresh once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting vacation-finder...")
	log.Printf("Loaded %d site configs", len(cfg.Sites))
	for id, site := range cfg.Sites {
		log.Printf("  - %s (%s)", site.Name, id)
	}

	clients := httputil.NewClients(&cfg.Proxy)
	if cfg.Proxy.URL != "" {
		log.Printf("Proxy: %s", cfg.Proxy.URL)
	}

	ctx := context.Background()

	pgStore, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	opsStore, err := storage.NewOpsStore(cfg.OpsDBPath)
	if err != nil {
		log.Fatalf("Failed to open ops database: %v", err)
	}
	defer opsStore.Close()
	log.Printf("Ops database: %s", cfg.OpsDBPath)

	ranker := services.NewRankingService()
	propSvc := services.NewPropertyService(pgStore, ranker, cfg.Defaults)

	orchestrator := scraper.NewOrchestrator(cfg, opsStore, propSvc, clients)
	defer orchestrator.Close()

	if *refreshNow {
		log.Println("Running refresh...")
		if err := orchestrator.RunAll(ctx); err != nil {
			log.Fatalf("Refresh failed: %v", err)
		}
		log.Println("Refresh complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(cfg, orchestrator, opsStore)

	workerLog := func(level models.LogLevel, source, message string) {
		if err := opsStore.Log(nil, level, message, source); err != nil {
			log.Printf("Failed to persist worker log: %v", err)
		}
	}

	rescoreWorker := workers.NewRescoreWorker(propSvc)
	rescoreWorker.SetLogger(workerLog)
	go rescoreWorker.Run(ctx, time.Hour)
	log.Println("Rescore worker started")

	var uploader workers.Uploader = &workers.NoOpUploader{}
	if cfg.S3.Enabled() {
		s3Uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("Failed to set up S3 uploader: %v", err)
		}
		uploader = s3Uploader
		log.Printf("Photo archival to s3://%s enabled", cfg.S3.Bucket)
	} else {
		log.Println("S3 not configured, photo archival disabled")
	}

	photoWorker := workers.NewPhotoWorker(pgStore, clients.Scraping, uploader)
	photoWorker.SetLogger(workerLog)
	go photoWorker.Run(ctx, 20, 10*time.Minute)
	log.Println("Photo worker started")

	sched.SetWorkers(rescoreWorker, photoWorker)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	propsCtl := api.NewPropertyController(pgStore)
	searchCtl := api.NewSearchController(pgStore, pgStore, ranker, propSvc, orchestrator, opsStore, cfg.Defaults)
	server := api.NewServer(cfg.Server, propsCtl, searchCtl)

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()
	log.Printf("API listening on %s:%d", cfg.Server.Host, cfg.Server.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	sched.Stop()
	log.Println("Goodbye!")
}
