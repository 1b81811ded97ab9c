// Package gemini implements the generation and embedding capabilities over
// the Google Gemini API.
//
// The rest of the system never touches the SDK directly: the pipeline sees
// small Generate/Embed interfaces (defined by their consumers) and this
// package provides the production implementation with rate limiting,
// per-call timeouts and bounded exponential-backoff retries. Failures
// surface as *CapabilityError.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/udaytamma/ProfessorGemini/internal/config"
)

// Client wraps the genai SDK for all capability calls. One Client is shared
// across concurrent pipeline runs; the rate limiter paces requests globally.
//
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	genai      *genai.Client
	genModel   string
	evalModel  string
	embedModel string
	timeout    time.Duration
	limiter    *rate.Limiter
	retry      RetryConfig
	logger     *slog.Logger
}

// NewClient creates a capability client from configuration. The API key is
// read from GEMINI_API_KEY; config.Validate has already checked its
// presence.
func NewClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Client{
		genai:      gc,
		genModel:   cfg.GenerationModel,
		evalModel:  cfg.EvaluationModel,
		embedModel: cfg.EmbedderModel,
		timeout:    cfg.CapabilityTimeout,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		retry:      DefaultRetryConfig(),
		logger:     logger.With("component", "gemini"),
	}, nil
}

// Generate produces text with the drafting model.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.genModel, prompt)
}

// Reviewer returns a generator bound to the evaluation model. The quality
// gate uses it so review strictness is decoupled from drafting quality.
func (c *Client) Reviewer() *ModelGenerator {
	return &ModelGenerator{client: c, model: c.evalModel}
}

// ModelGenerator is a Generate-capable view of the Client pinned to one
// model.
type ModelGenerator struct {
	client *Client
	model  string
}

// Generate produces text with the bound model.
func (m *ModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.client.generate(ctx, m.model, prompt)
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	var text string
	err := c.withRetry(ctx, "generate", func(ctx context.Context) error {
		resp, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return err
		}
		text = resp.Text()
		if text == "" {
			return fmt.Errorf("empty response from model %s", model)
		}
		return nil
	})
	if err != nil {
		return "", &CapabilityError{Op: "generate", Model: model, Err: err}
	}
	return text, nil
}

// EmbedDocument embeds text for indexing.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

// EmbedQuery embeds text for searching.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, text, "RETRIEVAL_QUERY")
}

func (c *Client) embed(ctx context.Context, text, taskType string) ([]float32, error) {
	dim := int32(config.EmbeddingDimension)
	var values []float32

	err := c.withRetry(ctx, "embed", func(ctx context.Context) error {
		resp, err := c.genai.Models.EmbedContent(ctx, c.embedModel,
			genai.Text(text),
			&genai.EmbedContentConfig{
				TaskType:             taskType,
				OutputDimensionality: &dim,
			})
		if err != nil {
			return err
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return fmt.Errorf("empty embedding response from model %s", c.embedModel)
		}
		values = resp.Embeddings[0].Values
		return nil
	})
	if err != nil {
		return nil, &CapabilityError{Op: "embed", Model: c.embedModel, Err: err}
	}
	return values, nil
}
