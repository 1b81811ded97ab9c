// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.professor-gemini/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: generation/evaluation/embedder models, request pacing
//   - Storage: PostgreSQL connection for the pgvector index
//   - Sources: content roots the syncer walks (markdown + TypeScript data)
//   - Pipeline: worker counts, retry bounds, confidence threshold
//   - Retrieval: top-K, context character budget, fallback minimum
//
// Validation is comprehensive and fail-fast: Load returns an error before any
// capability call can happen. Sentinel errors support errors.Is checks.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model name is empty or malformed.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidThreshold indicates the confidence threshold is out of range.
	ErrInvalidThreshold = errors.New("invalid confidence threshold")

	// ErrInvalidWorkers indicates a worker count is out of range.
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidRetries indicates the retry bound is out of range.
	ErrInvalidRetries = errors.New("invalid retry count")

	// ErrInvalidTopK indicates the retrieval top-K is out of range.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidCharBudget indicates the context character budget is invalid.
	ErrInvalidCharBudget = errors.New("invalid context char budget")

	// ErrInvalidTimeout indicates the capability timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid capability timeout")

	// ErrInvalidSynthesisMode indicates an unknown synthesis mode.
	ErrInvalidSynthesisMode = errors.New("invalid synthesis mode")

	// ErrMissingKBPath indicates the knowledge-base directory is not set.
	ErrMissingKBPath = errors.New("missing knowledge base path")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")
)

// Synthesis modes for the final pipeline stage.
const (
	// SynthesisGenerate asks the model to merge deep-dive sections into a
	// cohesive guide.
	SynthesisGenerate = "generate"

	// SynthesisConcat concatenates sections locally in topic order, no model
	// call.
	SynthesisConcat = "concat"
)

const (
	// DefaultGenerationModel drafts base knowledge and deep-dive sections.
	DefaultGenerationModel = "gemini-3-pro-preview"

	// DefaultEvaluationModel reviews drafts. A cheaper model is fine here;
	// the rubric does the heavy lifting.
	DefaultEvaluationModel = "gemini-2.5-flash"

	// DefaultEmbedderModel is the embedding model. gemini-embedding-001
	// supports truncation to 768 dimensions, which the pgvector schema uses.
	DefaultEmbedderModel = "gemini-embedding-001"

	// EmbeddingDimension is the fixed dimensionality of stored vectors.
	// Must match the vector(N) column in db/migrations.
	EmbeddingDimension = 768
)

// Config stores application configuration.
type Config struct {
	// AI model configuration
	GenerationModel string `mapstructure:"generation_model" json:"generation_model"`
	EvaluationModel string `mapstructure:"evaluation_model" json:"evaluation_model"`
	EmbedderModel   string `mapstructure:"embedder_model" json:"embedder_model"`

	// RequestsPerMinute paces calls to the generation/embedding APIs.
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute"`

	// CapabilityTimeout bounds every generation, embedding and vector search
	// call. No capability call is silently infinite.
	CapabilityTimeout time.Duration `mapstructure:"capability_timeout" json:"capability_timeout"`

	// Storage configuration (pgvector index)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"-"`
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Document sources
	KBPath         string `mapstructure:"kb_path" json:"kb_path"`                 // generated guides (markdown)
	ScratchPath    string `mapstructure:"scratch_path" json:"scratch_path"`       // optional extra markdown source
	QuestionsFile  string `mapstructure:"questions_file" json:"questions_file"`   // TypeScript data file
	BlindspotsFile string `mapstructure:"blindspots_file" json:"blindspots_file"` // TypeScript data file
	WikiFile       string `mapstructure:"wiki_file" json:"wiki_file"`             // TypeScript data file (nested)

	// Pipeline configuration
	BatchWorkers        int     `mapstructure:"batch_workers" json:"batch_workers"`
	DeepDiveWorkers     int     `mapstructure:"deep_dive_workers" json:"deep_dive_workers"`
	MaxRetries          int     `mapstructure:"max_retries" json:"max_retries"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" json:"confidence_threshold"`
	SynthesisMode       string  `mapstructure:"synthesis_mode" json:"synthesis_mode"`

	// Retrieval configuration
	RAGTopK         int `mapstructure:"rag_top_k" json:"rag_top_k"`
	ContextBudget   int `mapstructure:"context_char_budget" json:"context_char_budget"`
	MinContextChars int `mapstructure:"min_context_chars" json:"min_context_chars"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".professor-gemini")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults carry the day.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fail-fast: validate before any capability call can happen.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// AI defaults
	v.SetDefault("generation_model", DefaultGenerationModel)
	v.SetDefault("evaluation_model", DefaultEvaluationModel)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("requests_per_minute", 60)
	v.SetDefault("capability_timeout", 120*time.Second)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "professor")
	v.SetDefault("postgres_password", "professor_dev_password")
	v.SetDefault("postgres_db_name", "professor_gemini")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Source defaults
	v.SetDefault("kb_path", "./gemini-responses")
	v.SetDefault("scratch_path", "")
	v.SetDefault("questions_file", "")
	v.SetDefault("blindspots_file", "")
	v.SetDefault("wiki_file", "")

	// Pipeline defaults. Retry/threshold values are tunables, not algorithmic
	// constants; override freely.
	v.SetDefault("batch_workers", 5)
	v.SetDefault("deep_dive_workers", 10)
	v.SetDefault("max_retries", 2)
	v.SetDefault("confidence_threshold", 0.7)
	v.SetDefault("synthesis_mode", SynthesisGenerate)

	// Retrieval defaults
	v.SetDefault("rag_top_k", 5)
	v.SetDefault("context_char_budget", 24000)
	v.SetDefault("min_context_chars", 200)
}

// bindEnvVariables binds environment variable overrides explicitly.
// GEMINI_API_KEY is read directly by the gemini client, not via viper;
// Validate only checks its presence.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("generation_model", "PG_GENERATION_MODEL")
	mustBind("evaluation_model", "PG_EVALUATION_MODEL")
	mustBind("embedder_model", "PG_EMBEDDER_MODEL")

	mustBind("postgres_host", "PG_POSTGRES_HOST")
	mustBind("postgres_port", "PG_POSTGRES_PORT")
	mustBind("postgres_user", "PG_POSTGRES_USER")
	mustBind("postgres_password", "PG_POSTGRES_PASSWORD")
	mustBind("postgres_db_name", "PG_POSTGRES_DB_NAME")

	mustBind("kb_path", "PG_KB_PATH")
	mustBind("scratch_path", "PG_SCRATCH_PATH")
	mustBind("questions_file", "PG_QUESTIONS_FILE")
	mustBind("blindspots_file", "PG_BLINDSPOTS_FILE")
	mustBind("wiki_file", "PG_WIKI_FILE")

	mustBind("batch_workers", "PG_BATCH_WORKERS")
	mustBind("deep_dive_workers", "PG_DEEP_DIVE_WORKERS")
	mustBind("max_retries", "PG_MAX_RETRIES")
	mustBind("confidence_threshold", "PG_CONFIDENCE_THRESHOLD")
	mustBind("synthesis_mode", "PG_SYNTHESIS_MODE")
}

// DSN returns the PostgreSQL connection string for pgx.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword,
		c.PostgresHost, c.PostgresPort,
		c.PostgresDBName, c.PostgresSSLMode)
}
