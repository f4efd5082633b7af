package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"bridge"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"bridge"`

	QdrantURL    string `envconfig:"QDRANT_URL" default:"http://localhost:6333"`
	QdrantAPIKey string `envconfig:"QDRANT_API_KEY"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	EmbeddingDim    int    `envconfig:"EMBEDDING_DIM" default:"768"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`

	NSQLookupd  string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	IngestTopic string `envconfig:"INGEST_TOPIC" default:"meeting.ingest"`
	EnableNSQ   bool   `envconfig:"ENABLE_NSQ_INTAKE" default:"false"`

	// Each ingestion queue holds at most this many messages. When full,
	// the oldest queued message is dropped to admit the new one.
	QueueCapacity int `envconfig:"QUEUE_CAPACITY" default:"1024"`

	ServerPort    int    `envconfig:"SERVER_PORT" default:"8010"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	QueryLogPath  string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead; a missing .env is not an error.
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.QdrantURL == "" {
		return fmt.Errorf("%w: QDRANT_URL", ErrMissingRequired)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIM", ErrMissingRequired)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: QUEUE_CAPACITY", ErrMissingRequired)
	}
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	return nil
}
