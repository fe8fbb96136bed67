package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"complyforge/internal/models"
)

// OracleRequest is a single structured-generation call: one prompt, one
// expected output schema, stage-specific token budget and temperature.
type OracleRequest struct {
	Stage           models.StageName
	Prompt          string
	Schema          *genai.Schema
	MaxOutputTokens int32
	Temperature     float32
}

// Generator performs one raw generation round trip. Implementations return
// models.ErrOracleUnavailable for transient failures and
// models.ErrSchemaViolation when the payload is not valid structured output.
type Generator interface {
	Generate(ctx context.Context, req OracleRequest) (json.RawMessage, error)
}

// Embedder produces embedding vectors for supplemental context retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OracleClient wraps a Generator with the pipeline's retry policy: transient
// failures are retried with exponential backoff (base delay doubled per
// attempt, no jitter), schema violations are fatal and never retried.
type OracleClient interface {
	Invoke(ctx context.Context, req OracleRequest) (json.RawMessage, error)
}

type oracleClient struct {
	gen         Generator
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

func NewOracleClient(gen Generator, maxAttempts int, baseDelay time.Duration) OracleClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &oracleClient{
		gen:         gen,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       time.Sleep,
	}
}

// Invoke implements OracleClient.
func (c *oracleClient) Invoke(ctx context.Context, req OracleRequest) (json.RawMessage, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.gen.Generate(ctx, req)
		if err == nil {
			return result, nil
		}

		// A malformed structured response indicates a prompt/schema mismatch
		// that will not self-correct.
		if errors.Is(err, models.ErrSchemaViolation) {
			return nil, err
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: context cancelled: %v", models.ErrOracleUnavailable, ctx.Err())
		default:
		}

		if attempt < c.maxAttempts {
			delay := c.baseDelay << (attempt - 1)
			log.Printf("⚠️ Oracle call for stage %s failed (attempt %d/%d): %v. Retrying in %s...\n",
				req.Stage, attempt, c.maxAttempts, err, delay)
			c.sleep(delay)
		}
	}

	return nil, fmt.Errorf("oracle call for stage %s failed after %d attempts: %w",
		req.Stage, c.maxAttempts, lastErr)
}

// GeminiClient is the production Generator and Embedder backed by the Gemini
// API.
type GeminiClient struct {
	client     *genai.Client
	model      string
	embedModel string
	timeout    time.Duration
}

func NewGeminiClient(apiKey, model, embedModel string, timeout time.Duration) (*GeminiClient, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		embedModel: embedModel,
		timeout:    timeout,
	}, nil
}

// Generate implements Generator. The expected schema is enforced twice: the
// API is asked for schema-constrained JSON output, and the returned payload
// is still checked to be a JSON object before acceptance.
func (g *GeminiClient) Generate(ctx context.Context, req OracleRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  req.MaxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrOracleUnavailable, err)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", models.ErrOracleUnavailable)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", models.ErrOracleUnavailable)
	}

	raw := json.RawMessage(text)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: response is not valid JSON", models.ErrSchemaViolation)
	}

	return raw, nil
}

// Embed implements Embedder.
func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	// Bound input size, the embedding model has a modest context window.
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
