// Package jina provides an embedding service adapter using the Jina AI
// embeddings API.
//
// Texts are clipped to a fixed token budget with the cl100k_base
// tokenizer before sending, so documents and queries truncate the same
// way. Transient API failures are retried with exponential backoff and
// requests are rate limited client-side.
package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.jina.ai/v1"
	DefaultModel     = "jina-embeddings-v3"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 2048
	DefaultBatchSize = 2048

	// encodingName is the tokenizer used for clipping. It is not the
	// model's own tokenizer, but truncation only needs to be
	// deterministic and roughly proportional, not exact.
	encodingName = "cl100k_base"

	// maxAttempts bounds total calls per batch, the first try included.
	maxAttempts  = 3
	retryBackoff = time.Second

	requestsPerSecond = 2
)

// modelDimensions maps known models to their vector sizes.
var modelDimensions = map[string]int{
	"jina-embeddings-v3":          1024,
	"jina-embeddings-v2-base-en":  768,
	"jina-embeddings-v2-small-en": 512,
	"jina-clip-v2":                1024,
}

// Config holds configuration for the Jina embedding service.
type Config struct {
	// APIKey authenticates against the Jina API. Required.
	APIKey string

	// BaseURL is the API base URL (default: https://api.jina.ai/v1).
	BaseURL string

	// Model is the embedding model to use (default: jina-embeddings-v3).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// MaxTokens clips each input text (default: 2048).
	MaxTokens int
}

// EmbeddingService generates embeddings using the Jina API.
type EmbeddingService struct {
	client    *http.Client
	limiter   *rate.Limiter
	tokenizer *tiktoken.Tiktoken
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
}

// embedRequest is the Jina API request format.
type embedRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Input []string `json:"input"`
}

// embedResponse is the Jina API response format.
type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingService creates a new Jina embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: jina API key is required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	tokenizer, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", encodingName, err)
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		tokenizer: tokenizer,
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// EmbedDocuments generates embeddings for the given texts, batched to
// the provider's input limit. The result preserves input order.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += DefaultBatchSize {
		end := start + DefaultBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// EmbedQuery generates a single embedding for a query string.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// embedBatch clips, submits and decodes one API call with retries.
func (s *EmbeddingService) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	clipped := make([]string, len(texts))
	for i, text := range texts {
		clipped[i] = s.clip(text)
	}

	var result [][]float32
	err := retry.Do(ctx, retryPolicy(retryBackoff), func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		embeddings, err := s.call(ctx, clipped)
		if err != nil {
			logger.Debug("Jina embed attempt failed: %v", err)
			return retry.RetryableError(err)
		}
		result = embeddings
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: jina embeddings: %v", domain.ErrProviderFailure, err)
	}
	return result, nil
}

func (s *EmbeddingService) call(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embedRequest{
		Model: s.model,
		Task:  "text-matching",
		Input: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("jina error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("jina error (status %d): %s", resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(embedResp.Data) != len(texts) {
		return nil, fmt.Errorf("jina returned %d embeddings for %d inputs", len(embedResp.Data), len(texts))
	}

	// The API documents results in input order, but sort by index to be
	// strict about it.
	sort.Slice(embedResp.Data, func(i, j int) bool {
		return embedResp.Data[i].Index < embedResp.Data[j].Index
	})

	embeddings := make([][]float32, len(embedResp.Data))
	for i, d := range embedResp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

// retryPolicy caps an exponential backoff so a batch is attempted at
// most maxAttempts times in total.
func retryPolicy(base time.Duration) retry.Backoff {
	return retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(base))
}

// clip truncates text to the configured token budget.
func (s *EmbeddingService) clip(text string) string {
	tokens := s.tokenizer.Encode(text, nil, nil)
	if len(tokens) <= s.maxTokens {
		return text
	}
	return s.tokenizer.Decode(tokens[:s.maxTokens])
}

// Dimensions returns the embedding vector size for the configured model.
func (s *EmbeddingService) Dimensions() int {
	if dim, ok := modelDimensions[s.model]; ok {
		return dim
	}
	return modelDimensions[DefaultModel]
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key with a minimal embedding request.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.call(ctx, []string{"ping"})
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
