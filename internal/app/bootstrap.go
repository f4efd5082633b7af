package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/adapter/qdrant"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/config"
	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/internal/ingest"
)

// openDatabase connects to Postgres and applies pending migrations. The ping
// retries cover the container-orchestration window where the database is
// still starting.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	delay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetryAttempts)
		time.Sleep(delay)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging db after retries: %w", err)
	}

	if err := runMigrations(db, cfg.MigrationPath); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations applied successfully")
	return nil
}

// connectVectorStore builds the Qdrant client and idempotently creates the
// three collections plus their payload indexes, retrying while the store
// comes up.
func connectVectorStore(ctx context.Context, cfg *config.Config) (*qdrant.Client, error) {
	client := qdrant.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey)

	delay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	var err error
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err = qdrant.EnsureCollections(ctx, client, cfg.EmbeddingDim); err == nil {
			slog.Info("qdrant collections ensured", "dimension", cfg.EmbeddingDim)
			return client, nil
		}
		slog.Warn("failed to ensure qdrant collections, retrying...", "attempt", i+1, "error", err)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("ensuring qdrant collections after retries: %w", err)
}

// startIntake attaches the NSQ consumer that feeds the ingestion queues.
func startIntake(cfg *config.Config, intake *ingest.IntakeConsumer) (*nsq.Consumer, error) {
	consumer, err := nsq.NewConsumer(cfg.IngestTopic, "bridge-ai", nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("creating NSQ consumer: %w", err)
	}
	consumer.AddHandler(intake)

	if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
		return nil, fmt.Errorf("connecting to NSQLookupd: %w", err)
	}
	slog.Info("NSQ intake consumer connected", "topic", cfg.IngestTopic)
	return consumer, nil
}
