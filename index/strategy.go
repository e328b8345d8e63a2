package index

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Error values for search strategies.
var (
	ErrDimensionMismatch = errors.New("query dimensionality does not match snapshot")
)

// Strategy performs exact top-N inner-product search over one snapshot.
// A strategy is bound to its snapshot at construction time and is safe
// for concurrent Search calls. All strategies must produce the same
// ranking for identical inputs: score descending, catalog position
// ascending on ties.
type Strategy interface {
	// Name identifies the strategy in response metadata ("dense",
	// "chromem").
	Name() string

	// Search returns the topN highest-scoring records for a
	// unit-normalized query vector.
	Search(ctx context.Context, query []float32, topN int) ([]Hit, error)
}

// StrategyBuilder constructs a Strategy for a freshly built snapshot.
// The store invokes it once per publish.
type StrategyBuilder func(snap *Snapshot) (Strategy, error)

// DenseStrategy is the hand-rolled exact scan: one inner product per
// record, full ranking, no index structure. It is the fallback used when
// no native similarity-search backend is configured, and the reference
// ranking the other strategies must reproduce.
type DenseStrategy struct {
	snap *Snapshot
}

// NewDenseStrategy creates the dense-scan strategy for a snapshot.
func NewDenseStrategy(snap *Snapshot) (Strategy, error) {
	if snap == nil {
		return nil, errors.New("nil snapshot")
	}
	return &DenseStrategy{snap: snap}, nil
}

// Name implements Strategy.
func (d *DenseStrategy) Name() string {
	return "dense"
}

// Search implements Strategy.
func (d *DenseStrategy) Search(ctx context.Context, query []float32, topN int) ([]Hit, error) {
	n := d.snap.Len()
	if n == 0 || topN <= 0 {
		return nil, nil
	}
	if len(query) != d.snap.Dim {
		return nil, fmt.Errorf("%w: query dim %d, snapshot dim %d",
			ErrDimensionMismatch, len(query), d.snap.Dim)
	}

	hits := make([]Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = Hit{Pos: i, Score: dot(query, d.snap.Vector(i))}
	}

	sortHits(hits)

	if topN < len(hits) {
		hits = hits[:topN]
	}
	return hits, nil
}

// sortHits orders hits by score descending, then catalog position
// ascending so ties resolve to catalog order.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Pos < hits[j].Pos
	})
}
