package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tikaparse/internal/config"
	"tikaparse/internal/domain"
	"tikaparse/internal/port"
)

// parseTimeout bounds a single dispatched parse.
const parseTimeout = 5 * time.Minute

// ParseQueueConfig holds settings for the parse queue worker.
type ParseQueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ParseQueueConfigFrom converts the queue section of the configuration.
func ParseQueueConfigFrom(cfg *config.QueueConfig) ParseQueueConfig {
	return ParseQueueConfig{
		PollInterval: time.Duration(cfg.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.MaxRetries,
		Concurrency:  cfg.Concurrency,
	}
}

// ParseQueueWorker polls for queued documents and dispatches them for parsing.
type ParseQueueWorker struct {
	docRepo    port.DocumentRepository
	docService DocumentService
	cfg        ParseQueueConfig
	logger     zerolog.Logger
	wg         sync.WaitGroup
}

// NewParseQueueWorker creates a new ParseQueueWorker.
func NewParseQueueWorker(docRepo port.DocumentRepository, docService DocumentService, cfg ParseQueueConfig, logger zerolog.Logger) *ParseQueueWorker {
	return &ParseQueueWorker{
		docRepo:    docRepo,
		docService: docService,
		cfg:        cfg,
		logger:     logger.With().Str("component", "parseQueueWorker").Logger(),
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight parse goroutines have finished.
func (w *ParseQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.logger.Info().
		Dur("poll", w.cfg.PollInterval).
		Int("concurrency", w.cfg.Concurrency).
		Int("max_retries", w.cfg.MaxRetries).
		Msg("parseQueueWorker: started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("parseQueueWorker: shutting down, waiting for in-flight parses")
			w.wg.Wait()
			w.logger.Info().Msg("parseQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.docRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.Error().Err(err).Msg("parseQueueWorker: ClaimQueued failed")
				continue
			}

			for i := range docs {
				w.dispatch(sem, docs[i])
			}
		}
	}
}

func (w *ParseQueueWorker) dispatch(sem chan struct{}, doc domain.Document) {
	sem <- struct{}{}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-sem }()

		// Detached from the poll context so in-flight parses finish during shutdown.
		parseCtx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		w.logger.Debug().
			Str("document_id", doc.ID.String()).
			Int("attempt", doc.ParseAttempts).
			Msg("parseQueueWorker: dispatching")
		w.docService.ParseDocument(parseCtx, &doc, w.cfg.MaxRetries)
	}()
}
