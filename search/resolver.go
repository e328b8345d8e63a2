package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/jonwraymond/tagsuggest/index"
	"github.com/jonwraymond/tagsuggest/semantic"
)

// Default tuning values, overridable through Options.
const (
	DefaultAlpha               = 0.8
	DefaultRerankMeanThreshold = 0.6
	DefaultWidenOffset         = 0.15
	DefaultTopK                = 100
)

// Error values for query resolution.
var (
	ErrNilStore = errors.New("resolver requires an index store")
)

// Item is one scored suggestion in a candidate pool.
type Item struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
	Reason      string  `json:"reason"`
}

// ResolveMeta describes the index and models that produced a pool.
type ResolveMeta struct {
	// Model is the embedding model name.
	Model string `json:"model"`

	// Dim is the embedding dimensionality.
	Dim int `json:"dim"`

	// Count is the number of items in the full pool.
	Count int `json:"count"`

	// Reranker is the reranking model name when reranking was applied,
	// empty otherwise.
	Reranker string `json:"reranker,omitempty"`

	// Engine is the similarity-search strategy that served the query.
	Engine string `json:"engine"`
}

// Query is one resolution request. Text must already be preprocessed;
// use Resolver.PreprocessText.
type Query struct {
	// Text is the preprocessed query text.
	Text string

	// MinScore is the hybrid-score admission threshold.
	MinScore float64

	// Widen relaxes MinScore by the configured offset.
	Widen bool

	// Rerank overrides the server-side rerank default when non-nil.
	Rerank *bool
}

// Options configures a Resolver.
type Options struct {
	// Store serves similarity searches and reloads.
	Store *index.Store

	// Embedder embeds query text. Required.
	Embedder semantic.Embedder

	// Reranker optionally re-scores shortlisted pairs. Nil disables
	// reranking regardless of request overrides.
	Reranker semantic.Reranker

	// RerankByDefault applies the reranker when a request carries no
	// explicit override.
	RerankByDefault bool

	// Preprocessor normalizes raw query text.
	Preprocessor semantic.Preprocessor

	// Alpha is the semantic weight in the hybrid score. Zero means
	// DefaultAlpha.
	Alpha float64

	// RerankMeanThreshold gates reranking: only pools whose mean hybrid
	// score falls below it are re-scored. Zero means the default.
	RerankMeanThreshold float64

	// WidenOffset is subtracted from MinScore in widen mode. Zero means
	// the default.
	WidenOffset float64

	// TopK is the shortlist size retrieved before filtering. Zero means
	// DefaultTopK.
	TopK int

	// Logger receives resolution events. Nil uses slog.Default().
	Logger *slog.Logger
}

// Resolver turns preprocessed query text into a scored, filtered
// candidate pool: embed, oversampled similarity search, hybrid
// semantic+lexical scoring, threshold filtering, and optional pairwise
// reranking. It holds no per-request state and is safe for concurrent
// use.
type Resolver struct {
	store           *index.Store
	embedder        semantic.Embedder
	reranker        semantic.Reranker
	rerankByDefault bool
	pre             semantic.Preprocessor
	alpha           float64
	rerankThreshold float64
	widenOffset     float64
	topK            int
	logger          *slog.Logger
}

// NewResolver creates a Resolver from options, filling in defaults for
// zero-valued tuning knobs.
func NewResolver(opts Options) (*Resolver, error) {
	if opts.Store == nil {
		return nil, ErrNilStore
	}
	if opts.Embedder == nil {
		return nil, semantic.ErrInvalidEmbedder
	}
	if opts.Alpha == 0 {
		opts.Alpha = DefaultAlpha
	}
	if opts.RerankMeanThreshold == 0 {
		opts.RerankMeanThreshold = DefaultRerankMeanThreshold
	}
	if opts.WidenOffset == 0 {
		opts.WidenOffset = DefaultWidenOffset
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver{
		store:           opts.Store,
		embedder:        opts.Embedder,
		reranker:        opts.Reranker,
		rerankByDefault: opts.RerankByDefault,
		pre:             opts.Preprocessor,
		alpha:           opts.Alpha,
		rerankThreshold: opts.RerankMeanThreshold,
		widenOffset:     opts.WidenOffset,
		topK:            opts.TopK,
		logger:          opts.Logger,
	}, nil
}

// PreprocessText normalizes raw input text into the form used for
// embedding, lexical comparison, and cache fingerprinting.
func (r *Resolver) PreprocessText(text string) string {
	return r.pre.Preprocess(text)
}

// Resolve computes the full scored candidate pool for a query. The pool
// is not truncated to a page size; windowing belongs to the paginator.
// Empty query text yields an empty pool without error.
func (r *Resolver) Resolve(ctx context.Context, q Query) ([]Item, ResolveMeta, error) {
	if q.Text == "" {
		return nil, ResolveMeta{}, nil
	}

	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, ResolveMeta{}, err
	}
	meta := ResolveMeta{
		Model:  snap.Model,
		Dim:    snap.Dim,
		Engine: r.store.Engine(),
	}
	if snap.Len() == 0 {
		return nil, meta, nil
	}

	vec, err := r.embedQuery(ctx, snap.Model, q.Text)
	if err != nil {
		return nil, ResolveMeta{}, err
	}

	// A vector that does not fit the snapshot means the embedding model
	// changed after the snapshot was built. Rebuild once and re-embed.
	if len(vec) != snap.Dim {
		r.logger.Warn("query dimensionality mismatch, reloading index",
			"query_dim", len(vec), "snapshot_dim", snap.Dim)
		if err := r.store.Reload(ctx); err != nil {
			return nil, ResolveMeta{}, fmt.Errorf("reload after dim mismatch: %w", err)
		}
		if snap, err = r.store.Snapshot(); err != nil {
			return nil, ResolveMeta{}, err
		}
		meta.Model, meta.Dim, meta.Engine = snap.Model, snap.Dim, r.store.Engine()
		if vec, err = r.embedQuery(ctx, snap.Model, q.Text); err != nil {
			return nil, ResolveMeta{}, err
		}
	}
	index.Normalize(vec)

	topN := r.topK
	if snap.Len() < topN {
		topN = snap.Len()
	}
	matches, err := r.store.Search(ctx, vec, topN)
	if err != nil {
		return nil, ResolveMeta{}, fmt.Errorf("similarity search: %w", err)
	}

	threshold := q.MinScore
	if q.Widen {
		threshold -= r.widenOffset
	}

	items := make([]Item, 0, len(matches))
	texts := make([]string, 0, len(matches))
	var sum float64
	for _, m := range matches {
		if !m.Record.Validate() {
			continue
		}
		shared := semantic.SharedTerms(q.Text, m.Text)
		hybrid := r.alpha*m.Score + (1-r.alpha)*semantic.OverlapSignal(len(shared))
		if hybrid < threshold {
			continue
		}
		items = append(items, Item{
			Slug:        m.Record.Slug,
			Name:        m.Record.Name,
			URL:         m.Record.URL,
			Description: m.Record.Description,
			Score:       hybrid,
			Reason:      semantic.Reason(shared),
		})
		texts = append(texts, m.Text)
		sum += hybrid
	}

	if r.shouldRerank(q.Rerank, sum, len(items)) {
		if err := r.rerank(ctx, q.Text, items, texts); err != nil {
			r.logger.Warn("rerank failed, keeping hybrid order", "error", err)
		} else {
			meta.Reranker = r.reranker.ModelName()
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	for i := range items {
		items[i].Score = round4(items[i].Score)
	}

	meta.Count = len(items)
	return items, meta, nil
}

// snapshot returns the published snapshot, performing the initial load
// when none has been published yet.
func (r *Resolver) snapshot(ctx context.Context) (*index.Snapshot, error) {
	snap, err := r.store.Snapshot()
	if errors.Is(err, index.ErrNoSnapshot) {
		if err := r.store.LoadOrBuild(ctx, false); err != nil {
			return nil, err
		}
		return r.store.Snapshot()
	}
	return snap, err
}

func (r *Resolver) embedQuery(ctx context.Context, model, text string) ([]float32, error) {
	vecs, err := r.embedder.Embed(ctx, []string{semantic.QueryText(model, text)})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return nil, semantic.ErrEmptyEmbedding
	}
	return vecs[0], nil
}

// shouldRerank applies the rerank gate: a reranker must be configured,
// the request override (or server default) must enable it, and the mean
// hybrid score of the pool must fall below the confidence threshold.
// High-confidence pools skip the extra inference round trip.
func (r *Resolver) shouldRerank(override *bool, sum float64, count int) bool {
	if r.reranker == nil || count == 0 {
		return false
	}
	enabled := r.rerankByDefault
	if override != nil {
		enabled = *override
	}
	return enabled && sum/float64(count) < r.rerankThreshold
}

// rerank replaces every item's score with the pairwise relevance score.
// Membership is unchanged; the caller re-sorts.
func (r *Resolver) rerank(ctx context.Context, query string, items []Item, texts []string) error {
	scores, err := r.reranker.Score(ctx, query, texts)
	if err != nil {
		return err
	}
	if len(scores) != len(items) {
		return semantic.ErrCountMismatch
	}
	for i := range items {
		items[i].Score = scores[i]
	}
	return nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
