package suggest

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonwraymond/tagsuggest/catalog"
	"github.com/jonwraymond/tagsuggest/index"
	"github.com/jonwraymond/tagsuggest/pool"
	"github.com/jonwraymond/tagsuggest/search"
	"github.com/jonwraymond/tagsuggest/semantic"
)

// Request defaults applied when fields are zero-valued.
const (
	DefaultLimit    = 5
	DefaultMinScore = 0.2
)

// Options configures an Engine.
type Options struct {
	// Source is the tag catalog. Required.
	Source catalog.Source

	// StorageDir persists index snapshots across restarts. Empty
	// disables persistence.
	StorageDir string

	// Embedder is the embedding gateway. Required.
	Embedder semantic.Embedder

	// Reranker optionally re-scores low-confidence pools.
	Reranker semantic.Reranker

	// RerankByDefault applies the reranker when requests carry no
	// explicit override.
	RerankByDefault bool

	// Cache backs the candidate pool cache. Nil disables caching.
	Cache pool.Store

	// CacheTTL bounds cached pool lifetime. Zero means pool.DefaultTTL.
	CacheTTL time.Duration

	// NormalizeArabic enables Arabic-specific preprocessing.
	NormalizeArabic bool

	// Strategy selects the similarity-search backend per snapshot.
	// Nil means the dense exact scan.
	Strategy index.StrategyBuilder

	// TopK, HybridAlpha, RerankMeanThreshold, and WidenOffset tune
	// resolution. Zero values take the search package defaults.
	TopK                int
	HybridAlpha         float64
	RerankMeanThreshold float64
	WidenOffset         float64

	// Preload builds or loads the index eagerly during New instead of
	// on the first suggestion.
	Preload bool

	// Logger receives engine events. Nil uses slog.Default().
	Logger *slog.Logger
}

// Request asks for tag suggestions for a piece of text.
type Request struct {
	// Text is the raw input text.
	Text string

	// Limit is the page size. Zero means DefaultLimit.
	Limit int

	// MinScore is the admission threshold. Nil means DefaultMinScore;
	// an explicit zero admits everything.
	MinScore *float64

	// Rerank overrides the server-side rerank default when non-nil.
	Rerank *bool

	// Cursor resumes paging from a previous response.
	Cursor string

	// Offset is the window start when no cursor is supplied.
	Offset int

	// Exclude lists slugs that must never be suggested.
	Exclude []string

	// Widen relaxes the threshold to avoid empty results.
	Widen bool
}

// Meta is the full response metadata: pool identity, pagination, and
// the engine-measured elapsed time.
type Meta struct {
	pool.Meta
	ElapsedMS int64 `json:"elapsed_ms"`
}

// Response is one page of suggestions.
type Response struct {
	Suggestions []search.Item `json:"suggestions"`
	Meta        Meta          `json:"meta"`
}

// Stats summarizes the published index.
type Stats struct {
	Tags              int       `json:"tags"`
	Model             string    `json:"model"`
	Dim               int       `json:"dim"`
	SourceFingerprint string    `json:"source_fingerprint"`
	Engine            string    `json:"engine"`
	BuiltAt           time.Time `json:"built_at"`
}

// Engine is the tag suggestion facade. It wires the catalog, the vector
// index, the query resolver, and the pool paginator behind three
// operations: Suggest, Reload, and Stats. An Engine is safe for
// concurrent use.
type Engine struct {
	store    *index.Store
	resolver *search.Resolver
	pager    *pool.Pager
	logger   *slog.Logger
}

// New creates an Engine from options. With Preload set the index is
// loaded or built before New returns, so the first suggestion never
// pays the build cost.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	builder, err := index.NewBuilder(opts.Embedder, opts.Logger)
	if err != nil {
		return nil, err
	}
	store, err := index.NewStore(index.StoreOptions{
		Source:      opts.Source,
		Dir:         opts.StorageDir,
		Builder:     builder,
		NewStrategy: opts.Strategy,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	resolver, err := search.NewResolver(search.Options{
		Store:               store,
		Embedder:            opts.Embedder,
		Reranker:            opts.Reranker,
		RerankByDefault:     opts.RerankByDefault,
		Preprocessor:        semantic.Preprocessor{NormalizeArabic: opts.NormalizeArabic},
		Alpha:               opts.HybridAlpha,
		RerankMeanThreshold: opts.RerankMeanThreshold,
		WidenOffset:         opts.WidenOffset,
		TopK:                opts.TopK,
		Logger:              opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:    store,
		resolver: resolver,
		pager:    pool.NewPager(opts.Cache, opts.CacheTTL, opts.Logger),
		logger:   opts.Logger,
	}

	if opts.Preload {
		if err := store.LoadOrBuild(ctx, false); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Suggest returns one page of tag suggestions for the request text.
// Suggestion is best-effort: resolution and cache failures degrade to
// an empty page rather than an error.
func (e *Engine) Suggest(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	minScore := DefaultMinScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	processed := e.resolver.PreprocessText(req.Text)
	if processed == "" {
		return Response{Meta: Meta{ElapsedMS: elapsedMS(start)}}, nil
	}

	snap, err := e.snapshot(ctx)
	if err != nil {
		e.logger.Warn("index unavailable, serving empty page", "error", err)
		return Response{Meta: Meta{ElapsedMS: elapsedMS(start)}}, nil
	}

	key := search.Fingerprint(snap.Model, snap.Dim, processed, req.Widen, minScore)
	items, meta, err := e.pager.Page(ctx, pool.Request{
		Key:     key,
		Cursor:  req.Cursor,
		Offset:  req.Offset,
		Limit:   limit,
		Exclude: req.Exclude,
	}, func(ctx context.Context) ([]search.Item, search.ResolveMeta, error) {
		return e.resolver.Resolve(ctx, search.Query{
			Text:     processed,
			MinScore: minScore,
			Widen:    req.Widen,
			Rerank:   req.Rerank,
		})
	})
	if err != nil {
		return Response{}, err
	}

	return Response{
		Suggestions: items,
		Meta:        Meta{Meta: meta, ElapsedMS: elapsedMS(start)},
	}, nil
}

// Reload forces an index rebuild from the catalog source and returns
// the stats of the freshly published snapshot.
func (e *Engine) Reload(ctx context.Context) (Stats, error) {
	if err := e.store.Reload(ctx); err != nil {
		return Stats{}, err
	}
	return e.Stats()
}

// Stats reports the published index.
func (e *Engine) Stats() (Stats, error) {
	snap, err := e.store.Snapshot()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Tags:              snap.Len(),
		Model:             snap.Model,
		Dim:               snap.Dim,
		SourceFingerprint: snap.SourceFingerprint,
		Engine:            e.store.Engine(),
		BuiltAt:           snap.BuiltAt,
	}, nil
}

// snapshot returns the published snapshot, performing the initial load
// when none is published yet.
func (e *Engine) snapshot(ctx context.Context) (*index.Snapshot, error) {
	snap, err := e.store.Snapshot()
	if err == nil {
		return snap, nil
	}
	if err := e.store.LoadOrBuild(ctx, false); err != nil {
		return nil, err
	}
	return e.store.Snapshot()
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
