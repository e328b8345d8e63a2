package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemStrategy answers similarity queries through an in-process
// chromem-go collection built from the snapshot. Vectors are inserted
// pre-normalized, so chromem's cosine similarity matches the dense
// scan's inner product. Document IDs carry the catalog position, which
// keeps result ordering fully deterministic after re-sorting.
type ChromemStrategy struct {
	snap       *Snapshot
	collection *chromem.Collection
}

// NewChromemStrategy builds a chromem-go collection over the snapshot
// vectors. Embeddings are supplied directly; the collection never calls
// an embedding function of its own.
func NewChromemStrategy(snap *Snapshot) (Strategy, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("tags", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if n := snap.Len(); n > 0 {
		docs := make([]chromem.Document, n)
		for i := 0; i < n; i++ {
			docs[i] = chromem.Document{
				ID:        positionID(i),
				Content:   snap.Texts[i],
				Embedding: snap.Vector(i),
				Metadata:  map[string]string{"slug": snap.Records[i].Slug},
			}
		}
		if err := collection.AddDocuments(context.Background(), docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("add documents: %w", err)
		}
	}

	return &ChromemStrategy{snap: snap, collection: collection}, nil
}

// Name implements Strategy.
func (c *ChromemStrategy) Name() string {
	return "chromem"
}

// Search implements Strategy.
func (c *ChromemStrategy) Search(ctx context.Context, query []float32, topN int) ([]Hit, error) {
	n := c.snap.Len()
	if n == 0 || topN <= 0 {
		return nil, nil
	}
	if len(query) != c.snap.Dim {
		return nil, fmt.Errorf("%w: query dim %d, snapshot dim %d",
			ErrDimensionMismatch, len(query), c.snap.Dim)
	}
	if topN > n {
		topN = n
	}

	results, err := c.collection.QueryEmbedding(ctx, query, topN, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		pos, err := strconv.Atoi(res.ID)
		if err != nil || pos < 0 || pos >= n {
			return nil, fmt.Errorf("unexpected document id %q", res.ID)
		}
		// Recompute in float64 so scores and tie-breaks are identical
		// across strategies.
		hits = append(hits, Hit{Pos: pos, Score: dot(query, c.snap.Vector(pos))})
	}
	sortHits(hits)
	return hits, nil
}

// positionID formats a catalog position as a fixed-width document ID.
func positionID(pos int) string {
	return fmt.Sprintf("%08d", pos)
}
