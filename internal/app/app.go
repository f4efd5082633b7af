package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nsqio/go-nsq"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/features/document"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/features/search"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/features/stats"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/gemini"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/config"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/ingest"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/middleware"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/retrieval"
)

// App owns the full object graph. Everything is wired here so no package
// reaches for globals.
type App struct {
	cfg *config.Config

	db        *sql.DB
	store     *qdrant.Client
	embedder  *gemini.Embedder
	generator *gemini.Generator

	transcriptQueue *ingest.Queue
	chatQueue       *ingest.Queue

	transcriptWorker *ingest.Worker
	chatWorker       *ingest.Worker

	nsqConsumer *nsq.Consumer
	server      *http.Server
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.db = db

	store, err := connectVectorStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	a.embedder, err = gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating gemini embedder: %w", err)
	}
	a.generator, err = gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GenerationModel)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating gemini generator: %w", err)
	}

	// Ingestion pipeline
	a.transcriptQueue = ingest.NewQueue("transcripts", cfg.QueueCapacity)
	a.chatQueue = ingest.NewQueue("chats", cfg.QueueCapacity)
	a.transcriptWorker = ingest.NewWorker(a.transcriptQueue, a.embedder, a.store, qdrant.CollectionTranscripts)
	a.chatWorker = ingest.NewWorker(a.chatQueue, a.embedder, a.store, qdrant.CollectionChat)

	if cfg.EnableNSQ {
		intake := ingest.NewIntakeConsumer(a.transcriptQueue, a.chatQueue)
		a.nsqConsumer, err = startIntake(cfg, intake)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	// Feature: Search
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(a.embedder, a.store, a.generator, queryLogger)
	searchHandler := search.NewHandler(retrievalService)

	// Feature: Document
	documentRepo := document.NewPostgresRepo(a.db)
	documentService := document.NewService(a.embedder, a.store, documentRepo)
	documentHandler := document.NewHandler(documentService)

	// Feature: Stats
	statsHandler := stats.NewHandler(
		[]stats.QueueStats{a.transcriptQueue, a.chatQueue},
		map[string]stats.WorkerStats{
			"transcripts": a.transcriptWorker,
			"chats":       a.chatWorker,
		},
		documentRepo,
		a.store,
	)

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           a.routes(searchHandler, documentHandler, statsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) routes(searchHandler *search.Handler, documentHandler *document.Handler, statsHandler *stats.Handler) http.Handler {
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/rag/search", middleware.CorrelationID(enableCORS(searchHandler.Search)))
	mux.Handle("POST /api/embedding/document", middleware.CorrelationID(enableCORS(documentHandler.Ingest)))
	mux.Handle("GET /api/embedding/documents", middleware.CorrelationID(enableCORS(documentHandler.List)))
	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}

// Run starts the embedding workers and the HTTP server, then blocks until
// ctx is cancelled and the server has drained.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go a.transcriptWorker.Run(workerCtx)
	go a.chatWorker.Run(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", a.cfg.ServerPort)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	if a.nsqConsumer != nil {
		a.nsqConsumer.Stop()
		<-a.nsqConsumer.StopChan
	}
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.embedder != nil {
		a.embedder.Close()
	}
	if a.generator != nil {
		a.generator.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
