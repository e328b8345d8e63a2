package pool

import (
	"context"
	"time"

	"github.com/jonwraymond/tagsuggest/search"
)

// Entry is one cached candidate pool together with the resolver
// metadata that described it.
type Entry struct {
	Items []search.Item      `json:"items"`
	Meta  search.ResolveMeta `json:"meta"`
}

// Store caches resolved candidate pools under fingerprint keys.
// Implementations must be safe for concurrent use. Errors from either
// method are degradation signals: the pager logs them and proceeds
// uncached, so implementations should fail fast rather than retry.
type Store interface {
	// Get returns the entry cached under key, if present and fresh.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Set caches an entry under key for ttl.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}
