package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/tagsuggest/catalog"
)

// Error values for the index store.
var (
	ErrNoSnapshot = errors.New("no snapshot has been published")
)

// StoreOptions configures an index Store.
type StoreOptions struct {
	// Source is the catalog the index is built from.
	Source catalog.Source

	// Dir is the directory snapshots are persisted under. Empty disables
	// persistence; every load becomes a build.
	Dir string

	// Builder embeds catalog records into snapshots.
	Builder *Builder

	// NewStrategy constructs the search strategy for each published
	// snapshot. Nil defaults to NewDenseStrategy.
	NewStrategy StrategyBuilder

	// Logger receives build and reload events. Nil uses slog.Default().
	Logger *slog.Logger
}

// published pairs a snapshot with the strategy built over it. The pair
// is swapped in atomically so readers always see a consistent view.
type published struct {
	snap     *Snapshot
	strategy Strategy
}

// Store owns the currently published snapshot and answers searches
// against it. Reloads build a complete replacement off to the side and
// swap it in atomically; concurrent reload requests are coalesced into
// a single build. All methods are safe for concurrent use.
type Store struct {
	source      catalog.Source
	dir         string
	builder     *Builder
	newStrategy StrategyBuilder
	logger      *slog.Logger

	current atomic.Pointer[published]
	reloads singleflight.Group
}

// NewStore creates a Store. No snapshot is published until LoadOrBuild
// or Reload succeeds.
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Builder == nil {
		return nil, errors.New("store requires a builder")
	}
	if opts.NewStrategy == nil {
		opts.NewStrategy = NewDenseStrategy
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		source:      opts.Source,
		dir:         opts.Dir,
		builder:     opts.Builder,
		newStrategy: opts.NewStrategy,
		logger:      opts.Logger,
	}, nil
}

// LoadOrBuild publishes a snapshot, reusing the persisted one when it is
// still valid for the current source content and embedding model.
// With force set the persisted snapshot is ignored and a fresh build is
// performed. Concurrent calls share one underlying load.
func (s *Store) LoadOrBuild(ctx context.Context, force bool) error {
	key := "load"
	if force {
		key = "rebuild"
	}
	_, err, _ := s.reloads.Do(key, func() (any, error) {
		return nil, s.loadOrBuild(ctx, force)
	})
	return err
}

// Reload forces a rebuild from the catalog source and publishes the
// result. It is LoadOrBuild with force set.
func (s *Store) Reload(ctx context.Context) error {
	return s.LoadOrBuild(ctx, true)
}

func (s *Store) loadOrBuild(ctx context.Context, force bool) error {
	if !force && s.dir != "" {
		snap, err := LoadSnapshot(s.dir)
		switch {
		case err == nil:
			if s.persistedValid(snap) {
				if err := s.publish(snap); err != nil {
					return err
				}
				s.logger.Info("loaded persisted snapshot",
					"tags", snap.Len(), "model", snap.ModelIdentity())
				return nil
			}
			s.logger.Info("persisted snapshot is stale, rebuilding",
				"persisted_model", snap.ModelIdentity())
		case errors.Is(err, ErrNotPersisted):
			// First run for this storage dir.
		default:
			s.logger.Warn("could not load persisted snapshot, rebuilding", "error", err)
		}
	}

	loaded, err := s.source.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	snap, err := s.builder.Build(ctx, loaded)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}

	if s.dir != "" {
		if err := SaveSnapshot(s.dir, snap); err != nil {
			// Persistence failures degrade to in-memory operation.
			s.logger.Warn("could not persist snapshot", "error", err)
		}
	}

	return s.publish(snap)
}

// persistedValid reports whether a persisted snapshot still matches the
// configured embedding model and the current catalog file content.
func (s *Store) persistedValid(snap *Snapshot) bool {
	if snap.Model != s.builder.Model() {
		return false
	}
	fp, err := s.source.Fingerprint()
	if err != nil {
		s.logger.Warn("could not fingerprint catalog source", "error", err)
		return false
	}
	return fp == snap.SourceFingerprint
}

func (s *Store) publish(snap *Snapshot) error {
	strategy, err := s.newStrategy(snap)
	if err != nil {
		return fmt.Errorf("build search strategy: %w", err)
	}
	s.current.Store(&published{snap: snap, strategy: strategy})
	return nil
}

// Snapshot returns the currently published snapshot.
func (s *Store) Snapshot() (*Snapshot, error) {
	p := s.current.Load()
	if p == nil {
		return nil, ErrNoSnapshot
	}
	return p.snap, nil
}

// Engine returns the name of the search strategy serving the published
// snapshot, or empty before the first publish.
func (s *Store) Engine() string {
	p := s.current.Load()
	if p == nil {
		return ""
	}
	return p.strategy.Name()
}

// Search runs a top-N similarity search over the published snapshot for
// a unit-normalized query vector. An empty snapshot yields empty results
// without error.
func (s *Store) Search(ctx context.Context, query []float32, topN int) ([]Match, error) {
	p := s.current.Load()
	if p == nil {
		return nil, ErrNoSnapshot
	}
	if p.snap.Len() == 0 {
		return nil, nil
	}

	hits, err := p.strategy.Search(ctx, query, topN)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(hits))
	for i, h := range hits {
		matches[i] = Match{
			Record: p.snap.Records[h.Pos],
			Text:   p.snap.Texts[h.Pos],
			Score:  h.Score,
			Pos:    h.Pos,
		}
	}
	return matches, nil
}
