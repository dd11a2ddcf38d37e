package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tikaparse/internal/auth"
	"tikaparse/internal/config"
	"tikaparse/internal/handler"
	"tikaparse/internal/logging"
	"tikaparse/internal/repository/postgres"
	"tikaparse/internal/router"
	"tikaparse/internal/service"
	s3storage "tikaparse/internal/storage/s3"
	"tikaparse/internal/tika"
)

// @title tikaparse API
// @version 1.0
// @description Parses documents with Apache Tika and stores normalized results.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	storage, err := s3storage.NewStorage(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize the Tika client
	tikaClient := tika.NewClientFromConfig(&cfg.Tika, logger)

	// Initialize services
	parseSvc := service.NewParseService(tikaClient, &cfg.S3, logger)
	docSvc := service.NewDocumentService(docRepo, storage, tikaClient, &cfg.S3, logger)
	worker := service.NewParseQueueWorker(docRepo, docSvc, service.ParseQueueConfigFrom(&cfg.Queue), logger)
	tokens := auth.NewTokenManager(&cfg.JWT)

	// Initialize handlers
	parseH := handler.NewParseHandler(parseSvc, cfg.S3.MaxFileSizeMB*1024*1024)
	docH := handler.NewDocumentHandler(docSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(logger, cfg.CORS.AllowedOrigins, tokens, parseH, docH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker.Start(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.Port).Str("tika", cfg.Tika.Endpoint).Msg("server: starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server: stopped")
	return nil
}
