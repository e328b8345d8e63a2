package pool

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonwraymond/tagsuggest/search"
)

// DefaultTTL is how long cached pools stay valid.
const DefaultTTL = 300 * time.Second

// PageMeta describes the served window of a pool.
type PageMeta struct {
	// Start is the position of the first returned item in the pool.
	Start int `json:"start"`

	// Total is the full pool length after exclusions.
	Total int `json:"total"`

	// HasMore reports whether items remain past this window.
	HasMore bool `json:"has_more"`

	// NextCursor resumes paging after this window when HasMore is set.
	NextCursor string `json:"next_cursor,omitempty"`

	// ContentHash is the fingerprint key the pool is cached under.
	ContentHash string `json:"content_hash,omitempty"`
}

// Meta is the merged response metadata: the resolver's description of
// the pool plus the pagination fields. The field sets are disjoint, so
// merging is embedding; resolver values always describe the pool that
// was actually served, cached or fresh.
type Meta struct {
	search.ResolveMeta
	PageMeta
}

// Request asks for one window of a candidate pool.
type Request struct {
	// Key is the fingerprint key of the pool, computed by the caller
	// from the ranking-relevant request parameters.
	Key string

	// Cursor resumes from a previous page. When it decodes, its key and
	// position override Key and Offset; when it does not, it is ignored.
	Cursor string

	// Offset is the window start when no usable cursor is supplied.
	Offset int

	// Limit is the window size.
	Limit int

	// Exclude lists slugs that must never appear in the response. The
	// exclusion is applied before caching and again when serving, so a
	// pool cached by a request without exclusions honors it too.
	Exclude []string
}

// ResolveFunc computes a full candidate pool on cache miss.
type ResolveFunc func(ctx context.Context) ([]search.Item, search.ResolveMeta, error)

// Pager serves bounded windows of cached candidate pools. On a cache
// miss it invokes the resolver once, caches the full pool under the
// fingerprint key, and pages from it; subsequent requests with the same
// key (or a cursor pinning it) reuse the pool without recomputation.
//
// Every failure mode degrades: cache errors fall back to the uncached
// path, resolver errors produce an empty page, corrupt cursors restart
// from the offset. Suggestion is a best-effort enhancement; the pager
// never propagates an error to the caller.
type Pager struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewPager creates a Pager. A nil store disables caching (every request
// recomputes), zero ttl means DefaultTTL, nil logger uses slog.Default().
func NewPager(store Store, ttl time.Duration, logger *slog.Logger) *Pager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{store: store, ttl: ttl, logger: logger}
}

// Page returns one window of the pool identified by the request.
func (p *Pager) Page(ctx context.Context, req Request, resolve ResolveFunc) ([]search.Item, Meta, error) {
	key := req.Key
	pos := req.Offset

	if req.Cursor != "" {
		if k, cp, ok := DecodeToken(req.Cursor); ok {
			key, pos = k, cp
		} else {
			p.logger.Debug("undecodable cursor, falling back to offset paging")
		}
	}

	entry, hit := p.lookup(ctx, key)
	if !hit {
		items, meta, err := resolve(ctx)
		if err != nil {
			p.logger.Warn("pool resolution failed, serving empty page", "error", err)
			return nil, Meta{}, nil
		}
		entry = Entry{Items: applyExclude(items, req.Exclude), Meta: meta}
		p.cache(ctx, key, entry)
	}

	// A cached pool may predate this request's exclusion list, so the
	// filter runs on the serving path as well.
	items := applyExclude(entry.Items, req.Exclude)

	total := len(items)
	if pos < 0 {
		pos = 0
	}
	if pos > total {
		pos = total
	}
	end := pos + req.Limit
	if req.Limit <= 0 || end > total {
		end = total
	}

	meta := Meta{
		ResolveMeta: entry.Meta,
		PageMeta: PageMeta{
			Start:       pos,
			Total:       total,
			HasMore:     end < total,
			ContentHash: key,
		},
	}
	if meta.HasMore {
		meta.NextCursor = EncodeToken(key, end)
	}

	page := make([]search.Item, end-pos)
	copy(page, items[pos:end])
	return page, meta, nil
}

func (p *Pager) lookup(ctx context.Context, key string) (Entry, bool) {
	if p.store == nil {
		return Entry{}, false
	}
	entry, hit, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn("pool cache read failed, recomputing", "error", err)
		return Entry{}, false
	}
	return entry, hit
}

func (p *Pager) cache(ctx context.Context, key string, entry Entry) {
	if p.store == nil {
		return
	}
	if err := p.store.Set(ctx, key, entry, p.ttl); err != nil {
		p.logger.Warn("pool cache write failed, continuing uncached", "error", err)
	}
}

// applyExclude returns the items whose slug is not in the exclusion
// list. The input slice is left untouched; it may belong to a cached
// entry shared with other requests.
func applyExclude(items []search.Item, exclude []string) []search.Item {
	if len(exclude) == 0 || len(items) == 0 {
		return items
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, slug := range exclude {
		excluded[slug] = struct{}{}
	}
	kept := make([]search.Item, 0, len(items))
	for _, it := range items {
		if _, skip := excluded[it.Slug]; !skip {
			kept = append(kept, it)
		}
	}
	return kept
}
