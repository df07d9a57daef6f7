package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rjdelrosario/gastos/internal/api/handlers"
	"github.com/rjdelrosario/gastos/internal/api/middleware"
	"github.com/rjdelrosario/gastos/internal/config"
	"github.com/rjdelrosario/gastos/internal/gemini"
	"github.com/rjdelrosario/gastos/internal/jobs"
	"github.com/rjdelrosario/gastos/internal/jobs/inmemory"
	"github.com/rjdelrosario/gastos/internal/logger"
	"github.com/rjdelrosario/gastos/internal/objectstore"
	"github.com/rjdelrosario/gastos/internal/pipeline"
	"github.com/rjdelrosario/gastos/internal/storage/postgres"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - receipt image storage is disabled")
	}

	ctx := context.Background()

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer store.Close()

	// Pipeline wiring: model parser, image store, ingestor.
	parser := gemini.New(cfg.GeminiAPIKey, log)
	images := objectstore.NewGCS(cfg.GCSBucket)
	ingestor := pipeline.NewIngestor(parser, images, log)

	// Batch upload infrastructure.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.ParseWorkers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ParseReceiptJob) error {
		log.Info().
			Str("upload_id", job.UploadID).
			Str("filename", job.Filename).
			Msg("Processing receipt upload")

		draft, err := ingestor.ParseReceipt(ctx, job.Upload, job.Options)
		if err != nil {
			log.Error().Err(err).Str("upload_id", job.UploadID).Msg("Receipt parse failed")
			return err
		}

		job.Draft = &draft
		return nil
	}

	log.Info().Int("workers", cfg.ParseWorkers).Msg("Starting receipt parse workers")
	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	// Initialize handlers
	receiptsHandler := handlers.NewReceiptsHandler(ingestor, store, store, jobQueue, jobStore, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, store, log)
	summaryHandler := handlers.NewSummaryHandler(store, store, log)
	profileHandler := handlers.NewProfileHandler(store, log)
	promptsHandler := handlers.NewPromptsHandler(store, store, log)

	webhookHandler, err := handlers.NewWebhookHandler(cfg.ClerkWebhookSecret, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid webhook secret")
	}

	auth, err := middleware.NewAuthenticator(cfg.ClerkJWTPublicKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid JWT public key")
	}

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/receipts/parse", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Parse(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receiptsHandler.Batch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/uploads/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			uploadID := strings.TrimPrefix(r.URL.Path, "/api/receipts/uploads/")
			if uploadID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Upload ID is required")
				return
			}
			receiptsHandler.UploadStatus(w, r, uploadID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		case http.MethodGet:
			transactionsHandler.List(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			summaryHandler.Get(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			profileHandler.Get(w, r)
		case http.MethodPut:
			profileHandler.Update(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/prompts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			promptsHandler.List(w, r)
		case http.MethodPost:
			promptsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/prompts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/activate") {
			promptID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/prompts/"), "/activate")
			if promptID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Prompt ID is required")
				return
			}
			promptsHandler.Activate(w, r, promptID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/webhooks/clerk", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhookHandler.HandleClerk(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					auth.Middleware(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight parses
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
