package semantic

import (
	"context"
	"errors"
	"strings"
)

// Error values for semantic operations.
var (
	ErrInvalidEmbedder = errors.New("embedder is nil or misconfigured")
	ErrEmptyEmbedding  = errors.New("embedding gateway returned no vectors")
	ErrCountMismatch   = errors.New("embedding gateway returned wrong vector count")
	ErrInvalidReranker = errors.New("reranker is nil or misconfigured")
)

// Embedder generates fixed-length vector embeddings from text.
// Implementations must be order-preserving: the i-th output vector
// corresponds to the i-th input text. Implementations must be safe for
// concurrent use.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the embedding model. Together with the vector
	// dimensionality it forms the model identity used for snapshot and
	// cache validation.
	ModelName() string
}

// Reranker scores (query, candidate) text pairs with a pairwise relevance
// model. Implementations must be order-preserving: the i-th score
// corresponds to the i-th candidate text.
type Reranker interface {
	// Score returns one relevance score per candidate text.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName identifies the reranking model for response metadata.
	ModelName() string
}

// isE5 reports whether the model follows the E5 instruction convention,
// which expects "query: " / "passage: " prefixes on embedded texts.
func isE5(model string) bool {
	return strings.Contains(strings.ToLower(model), "e5")
}

// QueryText applies the model's query-side prefix convention.
func QueryText(model, text string) string {
	if isE5(model) {
		return "query: " + text
	}
	return text
}

// PassageText applies the model's passage-side prefix convention.
// Catalog canonical texts are embedded (and persisted) in this form.
func PassageText(model, text string) string {
	if isE5(model) {
		return "passage: " + text
	}
	return text
}
