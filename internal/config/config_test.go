package config

import (
	"errors"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate (given GEMINI_API_KEY).
func validConfig() *Config {
	return &Config{
		GenerationModel:     DefaultGenerationModel,
		EvaluationModel:     DefaultEvaluationModel,
		EmbedderModel:       DefaultEmbedderModel,
		RequestsPerMinute:   60,
		CapabilityTimeout:   120 * time.Second,
		PostgresHost:        "localhost",
		PostgresPort:        5432,
		PostgresUser:        "professor",
		PostgresPassword:    "x",
		PostgresDBName:      "professor_gemini",
		PostgresSSLMode:     "disable",
		KBPath:              "./gemini-responses",
		BatchWorkers:        5,
		DeepDiveWorkers:     10,
		MaxRetries:          2,
		ConfidenceThreshold: 0.7,
		SynthesisMode:       SynthesisGenerate,
		RAGTopK:             5,
		ContextBudget:       24000,
		MinContextChars:     200,
	}
}

func TestValidateOK(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	err := validConfig().Validate()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() = %v, want ErrMissingAPIKey", err)
	}
}

func TestValidateRanges(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }, ErrInvalidThreshold},
		{"threshold negative", func(c *Config) { c.ConfidenceThreshold = -0.1 }, ErrInvalidThreshold},
		{"zero batch workers", func(c *Config) { c.BatchWorkers = 0 }, ErrInvalidWorkers},
		{"too many deep dive workers", func(c *Config) { c.DeepDiveWorkers = 100 }, ErrInvalidWorkers},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, ErrInvalidRetries},
		{"unbounded retries", func(c *Config) { c.MaxRetries = 50 }, ErrInvalidRetries},
		{"zero top-k", func(c *Config) { c.RAGTopK = 0 }, ErrInvalidTopK},
		{"tiny char budget", func(c *Config) { c.ContextBudget = 10 }, ErrInvalidCharBudget},
		{"min chars above budget", func(c *Config) { c.MinContextChars = 100000 }, ErrInvalidCharBudget},
		{"timeout too short", func(c *Config) { c.CapabilityTimeout = time.Second }, ErrInvalidTimeout},
		{"unknown synthesis mode", func(c *Config) { c.SynthesisMode = "magic" }, ErrInvalidSynthesisMode},
		{"empty generation model", func(c *Config) { c.GenerationModel = "" }, ErrInvalidModelName},
		{"empty kb path", func(c *Config) { c.KBPath = "" }, ErrMissingKBPath},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"postgres port out of range", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() on nil = %v, want ErrConfigNil", err)
	}
}

func TestDSN(t *testing.T) {
	cfg := validConfig()
	want := "postgres://professor:x@localhost:5432/professor_gemini?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
