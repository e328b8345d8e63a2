package semantic

import (
	"context"
	"fmt"
	"sort"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOptions configures an OpenAIEmbedder.
type OpenAIOptions struct {
	// BaseURL points at any OpenAI-compatible embeddings endpoint
	// (vLLM, Ollama, TEI, or api.openai.com when empty).
	BaseURL string

	// APIKey authenticates against the endpoint. May be empty for
	// local inference servers.
	APIKey string

	// Model is the embedding model name, e.g. "intfloat/multilingual-e5-base".
	Model string
}

// OpenAIEmbedder implements Embedder against an OpenAI-compatible
// embeddings API. Batching is handled by the caller; a single Embed call
// maps to a single API request.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for the given endpoint and model.
func NewOpenAIEmbedder(opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("%w: model name required", ErrInvalidEmbedder)
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  opts.Model,
	}, nil
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyEmbedding
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d texts, got %d vectors",
			ErrCountMismatch, len(texts), len(resp.Data))
	}

	// The API reports an Index per vector; order by it so the i-th
	// output vector matches the i-th input text.
	data := make([]openai.Embedding, len(resp.Data))
	copy(data, resp.Data)
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		if len(d.Embedding) == 0 {
			return nil, ErrEmptyEmbedding
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// ModelName implements Embedder.
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}
