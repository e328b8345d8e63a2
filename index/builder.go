package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/tagsuggest/catalog"
	"github.com/jonwraymond/tagsuggest/semantic"
)

// embedBatchSize is the number of texts sent per embedding request.
const embedBatchSize = 64

// Error values for snapshot building.
var (
	ErrNilEmbedder = errors.New("builder requires an embedder")
)

// Builder turns a catalog load result into a published-ready Snapshot:
// it renders canonical texts, embeds them in parallel batches, and packs
// the unit-normalized vectors into the snapshot matrix.
type Builder struct {
	embedder semantic.Embedder
	logger   *slog.Logger
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default().
func NewBuilder(embedder semantic.Embedder, logger *slog.Logger) (*Builder, error) {
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, logger: logger}, nil
}

// Model returns the embedding model name builds will carry.
func (b *Builder) Model() string {
	return b.embedder.ModelName()
}

// Build embeds every record in the load result and returns the snapshot.
// The catalog order of records is preserved. An empty catalog yields a
// valid zero-length snapshot.
func (b *Builder) Build(ctx context.Context, loaded catalog.LoadResult) (*Snapshot, error) {
	model := b.embedder.ModelName()

	texts := make([]string, len(loaded.Records))
	for i, rec := range loaded.Records {
		texts[i] = semantic.PassageText(model, rec.CanonicalText())
	}

	snap := &Snapshot{
		Records:           loaded.Records,
		Texts:             texts,
		Model:             model,
		SourceFingerprint: loaded.Fingerprint,
		BuiltAt:           time.Now().UTC(),
	}

	if len(texts) == 0 {
		b.logger.Warn("built empty snapshot", "source_fingerprint", loaded.Fingerprint)
		return snap, nil
	}

	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			batch, err := b.embedder.Embed(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, semantic.ErrCountMismatch)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, semantic.ErrEmptyEmbedding
	}

	matrix := make([]float32, len(vectors)*dim)
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d has dim %d, expected %d", i, len(vec), dim)
		}
		row := matrix[i*dim : (i+1)*dim]
		copy(row, vec)
		normalize(row)
	}

	snap.Dim = dim
	snap.matrix = matrix

	b.logger.Info("built snapshot",
		"tags", snap.Len(),
		"model", model,
		"dim", dim,
		"dropped_rows", loaded.Dropped,
	)
	return snap, nil
}
