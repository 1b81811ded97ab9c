package config

import (
	"fmt"
	"os"
	"time"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// API key is required for every capability call; fail before any work.
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	if c.GenerationModel == "" {
		return fmt.Errorf("%w: generation_model cannot be empty", ErrInvalidModelName)
	}
	if c.EvaluationModel == "" {
		return fmt.Errorf("%w: evaluation_model cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidModelName)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: must be between 0.0 and 1.0, got %.2f",
			ErrInvalidThreshold, c.ConfidenceThreshold)
	}

	if c.BatchWorkers < 1 || c.BatchWorkers > 20 {
		return fmt.Errorf("%w: batch_workers must be between 1 and 20, got %d",
			ErrInvalidWorkers, c.BatchWorkers)
	}
	if c.DeepDiveWorkers < 1 || c.DeepDiveWorkers > 20 {
		return fmt.Errorf("%w: deep_dive_workers must be between 1 and 20, got %d",
			ErrInvalidWorkers, c.DeepDiveWorkers)
	}

	if c.MaxRetries < 0 || c.MaxRetries > 5 {
		return fmt.Errorf("%w: must be between 0 and 5, got %d", ErrInvalidRetries, c.MaxRetries)
	}

	if c.RAGTopK < 1 || c.RAGTopK > 20 {
		return fmt.Errorf("%w: must be between 1 and 20, got %d", ErrInvalidTopK, c.RAGTopK)
	}

	if c.ContextBudget < 1000 {
		return fmt.Errorf("%w: must be at least 1000, got %d", ErrInvalidCharBudget, c.ContextBudget)
	}
	if c.MinContextChars < 0 || c.MinContextChars > c.ContextBudget {
		return fmt.Errorf("%w: min_context_chars %d out of range [0, %d]",
			ErrInvalidCharBudget, c.MinContextChars, c.ContextBudget)
	}

	if c.CapabilityTimeout < 5*time.Second || c.CapabilityTimeout > 10*time.Minute {
		return fmt.Errorf("%w: must be between 5s and 10m, got %s",
			ErrInvalidTimeout, c.CapabilityTimeout)
	}

	switch c.SynthesisMode {
	case SynthesisGenerate, SynthesisConcat:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)",
			ErrInvalidSynthesisMode, c.SynthesisMode, SynthesisGenerate, SynthesisConcat)
	}

	if c.KBPath == "" {
		return fmt.Errorf("%w: kb_path cannot be empty", ErrMissingKBPath)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d",
			ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
