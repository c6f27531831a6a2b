package workers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/charleshall888/Vacation-Finder/models"
	"github.com/charleshall888/Vacation-Finder/storage"
)

// Uploader pushes photo bytes to S3-compatible storage
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string) error
}

// PhotoWorker archives listing photos: downloads each photo URL and
// uploads a copy to object storage, so listings stay browsable after
// the source site takes them down.
type PhotoWorker struct {
	store      *storage.PostgresStore
	httpClient *http.Client
	uploader   Uploader
	triggerCh  chan struct{}
	logFunc    LogFunc
}

func NewPhotoWorker(store *storage.PostgresStore, client *http.Client, uploader Uploader) *PhotoWorker {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &PhotoWorker{
		store:      store,
		httpClient: client,
		uploader:   uploader,
		triggerCh:  make(chan struct{}, 1),
		logFunc:    NoOpLogger,
	}
}

func (w *PhotoWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *PhotoWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the photo archive loop
func (w *PhotoWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Photo worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.triggerCh:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *PhotoWorker) processBatch(ctx context.Context, batchSize int) {
	props, err := w.store.PropertiesWithUnarchivedPhotos(ctx, batchSize)
	if err != nil {
		log.Printf("Photo worker: query error: %v", err)
		return
	}

	if len(props) == 0 {
		return
	}

	log.Printf("Photo worker: archiving photos for %d properties", len(props))

	var archived, failed int
	for i := range props {
		p := &props[i]

		if err := w.archiveProperty(ctx, p); err != nil {
			log.Printf("Photo worker: failed %s: %v", p.ID, err)
			w.logFunc(models.LogLevelError, p.Source, fmt.Sprintf("photo archive failed for %s: %v", p.ID, err))
			failed++
			continue
		}

		if err := w.store.MarkPhotosArchived(ctx, p.ID); err != nil {
			log.Printf("Photo worker: failed to mark %s: %v", p.ID, err)
			failed++
			continue
		}
		archived++
	}

	if archived > 0 || failed > 0 {
		log.Printf("Photo worker: archived %d, failed %d", archived, failed)
	}
}

func (w *PhotoWorker) archiveProperty(ctx context.Context, p *models.Property) error {
	for i, photoURL := range p.Photos {
		data, contentType, err := w.download(ctx, photoURL)
		if err != nil {
			return fmt.Errorf("photo %d: %w", i, err)
		}

		key := storage.PhotoKey(p.ID, i, contentType)
		if err := w.uploader.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
			return fmt.Errorf("upload photo %d: %w", i, err)
		}

		// Rate limit between downloads
		select {
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

const maxPhotoBytes = 20 * 1024 * 1024

func (w *PhotoWorker) download(ctx context.Context, photoURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", photoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

// NoOpUploader skips the actual upload, for running without S3 configured
type NoOpUploader struct{}

func (u *NoOpUploader) Upload(ctx context.Context, key string, data io.Reader, contentType string) error {
	io.Copy(io.Discard, data)
	return nil
}
