package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPRerankerOptions configures an HTTPReranker.
type HTTPRerankerOptions struct {
	// URL is the rerank endpoint, e.g. "http://reranker:8080/rerank".
	URL string

	// Model is the cross-encoder model name reported in metadata and
	// forwarded to servers that multiplex models. Optional.
	Model string

	// Client is the HTTP client to use. If nil, a client with a
	// 30 second timeout is used.
	Client *http.Client
}

// HTTPReranker implements Reranker against a text-embeddings-inference
// style rerank endpoint: POST {query, texts} -> [{index, score}, …].
type HTTPReranker struct {
	url    string
	model  string
	client *http.Client
}

// NewHTTPReranker creates a reranker client for the given endpoint.
func NewHTTPReranker(opts HTTPRerankerOptions) (*HTTPReranker, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: endpoint URL required", ErrInvalidReranker)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPReranker{
		url:    opts.URL,
		model:  opts.Model,
		client: client,
	}, nil
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
	Model string   `json:"model,omitempty"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score implements Reranker.
func (r *HTTPReranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts, Model: r.model})
	if err != nil {
		return nil, fmt.Errorf("encode rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("rerank endpoint returned %d: %s", resp.StatusCode, snippet)
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d pairs, got %d scores",
			ErrCountMismatch, len(texts), len(results))
	}

	scores := make([]float64, len(texts))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(scores) {
			return nil, fmt.Errorf("rerank response index %d out of range", res.Index)
		}
		scores[res.Index] = res.Score
	}
	return scores, nil
}

// ModelName implements Reranker.
func (r *HTTPReranker) ModelName() string {
	return r.model
}
