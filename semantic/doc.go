// Package semantic provides the model-facing contracts and text
// normalization for tag suggestion.
//
// It defines the two narrow inference contracts the engine consumes:
//
//   - [Embedder]: text → fixed-length vector, order-preserving, batchable
//   - [Reranker]: (query, candidate) pairs → relevance scores
//
// plus production implementations for both:
//
//   - [OpenAIEmbedder]: any OpenAI-compatible embeddings endpoint
//     (vLLM, Ollama, TEI, api.openai.com)
//   - [HTTPReranker]: a text-embeddings-inference style rerank endpoint
//
// # Text Preprocessing
//
// [Preprocessor] renders raw article text into the normalized form used
// for both embedding and lexical comparison: optional Arabic
// normalization, transliteration of mixed scripts, and removal of URLs,
// markup, and punctuation. Preprocessing is deterministic; the same input
// always yields the same output, which the cache layer relies on for
// fingerprint stability.
//
// # Lexical Overlap
//
// [SignificantTokens], [SharedTerms], [OverlapSignal] and [Reason]
// implement the bounded lexical-overlap signal blended into the hybrid
// score, and the human-readable reason strings attached to suggestions:
//
//	shared := semantic.SharedTerms(queryText, tagText)
//	overlap := semantic.OverlapSignal(len(shared))
//	reason := semantic.Reason(shared)
//
// # Model Identity Conventions
//
// E5-family models expect asymmetric prefixes on embedded text.
// [QueryText] and [PassageText] apply the convention based on the model
// name so callers never hand-build prefixed strings.
//
// # Error Handling
//
// The package defines these sentinel errors, checked with errors.Is:
//   - [ErrInvalidEmbedder]: embedder missing or misconfigured
//   - [ErrInvalidReranker]: reranker missing or misconfigured
//   - [ErrEmptyEmbedding]: gateway returned no vectors
//   - [ErrCountMismatch]: gateway returned the wrong number of results
package semantic
