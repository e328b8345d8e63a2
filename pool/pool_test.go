package pool

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jonwraymond/tagsuggest/search"
)

func TestToken_RoundTrip(t *testing.T) {
	cases := []struct {
		key string
		pos int
	}{
		{"abc123", 0},
		{"abc123", 42},
		{"f00:with:colons", 7},
		{"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", 100},
	}
	for _, tc := range cases {
		tok := EncodeToken(tc.key, tc.pos)
		key, pos, ok := DecodeToken(tok)
		if !ok {
			t.Errorf("DecodeToken(%q) not ok", tok)
			continue
		}
		if key != tc.key || pos != tc.pos {
			t.Errorf("round trip = (%q, %d), want (%q, %d)", key, pos, tc.key, tc.pos)
		}
	}
}

func TestToken_DecodeGarbage(t *testing.T) {
	bad := []string{
		"",
		"not base64 !!",
		"a/b+c==",
		// Valid base64, no separator inside.
		"aGVsbG8",
		// Valid base64, non-numeric position.
		EncodeToken("key", 0)[:4],
	}
	for _, tok := range bad {
		if _, _, ok := DecodeToken(tok); ok {
			t.Errorf("DecodeToken(%q) = ok, want failure", tok)
		}
	}
}

func testPool(n int) []search.Item {
	items := make([]search.Item, n)
	for i := range items {
		items[i] = search.Item{
			Slug:  fmt.Sprintf("tag-%d", i),
			Name:  fmt.Sprintf("Tag %d", i),
			Score: 1 - float64(i)*0.1,
		}
	}
	return items
}

func staticResolve(items []search.Item, meta search.ResolveMeta) ResolveFunc {
	return func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		return items, meta, nil
	}
}

// countingStore wraps MemoryStore and fails on demand.
type countingStore struct {
	inner *MemoryStore
	fail  bool
	gets  int
	sets  int
}

func (c *countingStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	c.gets++
	if c.fail {
		return Entry{}, false, errors.New("backend unreachable")
	}
	return c.inner.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	c.sets++
	if c.fail {
		return errors.New("backend unreachable")
	}
	return c.inner.Set(ctx, key, e, ttl)
}

func TestPager_SequentialPagesReproducePool(t *testing.T) {
	full := testPool(7)
	p := NewPager(NewMemoryStore(), 0, nil)

	var (
		got    []search.Item
		cursor string
	)
	for {
		req := Request{Key: "k1", Limit: 3, Cursor: cursor}
		page, meta, err := p.Page(context.Background(), req, staticResolve(full, search.ResolveMeta{}))
		if err != nil {
			t.Fatalf("Page: %v", err)
		}
		if meta.Total != len(full) {
			t.Fatalf("meta.Total = %d, want %d", meta.Total, len(full))
		}
		got = append(got, page...)
		if !meta.HasMore {
			if meta.NextCursor != "" {
				t.Error("NextCursor set on final page")
			}
			break
		}
		if meta.NextCursor == "" {
			t.Fatal("HasMore without NextCursor")
		}
		cursor = meta.NextCursor
	}

	if !reflect.DeepEqual(got, full) {
		t.Errorf("concatenated pages do not reproduce the pool:\ngot  %v\nwant %v", got, full)
	}
}

func TestPager_OffsetPaging(t *testing.T) {
	full := testPool(5)
	p := NewPager(NewMemoryStore(), 0, nil)

	page, meta, err := p.Page(context.Background(), Request{Key: "k", Offset: 3, Limit: 10}, staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 2 || page[0].Slug != "tag-3" {
		t.Errorf("offset window wrong: %+v", page)
	}
	if meta.Start != 3 || meta.HasMore {
		t.Errorf("meta = %+v", meta.PageMeta)
	}

	// Offset past the pool end yields an empty page, not an error.
	page, meta, err = p.Page(context.Background(), Request{Key: "k", Offset: 50, Limit: 10}, staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 0 || meta.HasMore {
		t.Errorf("past-end window: page=%v meta=%+v", page, meta.PageMeta)
	}
}

func TestPager_CacheHitSkipsResolve(t *testing.T) {
	full := testPool(4)
	p := NewPager(NewMemoryStore(), 0, nil)

	calls := 0
	resolve := func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		calls++
		return full, search.ResolveMeta{Model: "m"}, nil
	}

	for i := 0; i < 3; i++ {
		_, meta, err := p.Page(context.Background(), Request{Key: "same", Limit: 2, Offset: i}, resolve)
		if err != nil {
			t.Fatalf("Page: %v", err)
		}
		if meta.Model != "m" {
			t.Errorf("resolver meta lost on request %d: %+v", i, meta)
		}
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
}

func TestPager_ExcludeAppliedBeforeCaching(t *testing.T) {
	full := testPool(5)
	store := NewMemoryStore()
	p := NewPager(store, 0, nil)

	req := Request{Key: "k", Limit: 10, Exclude: []string{"tag-0", "tag-3"}}
	page, meta, err := p.Page(context.Background(), req, staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if meta.Total != 3 {
		t.Errorf("meta.Total = %d, want 3", meta.Total)
	}
	for _, it := range page {
		if it.Slug == "tag-0" || it.Slug == "tag-3" {
			t.Errorf("excluded slug %q returned", it.Slug)
		}
	}

	// The cached pool itself must not contain the excluded slugs.
	entry, hit, err := store.Get(context.Background(), "k")
	if err != nil || !hit {
		t.Fatalf("expected cached entry, hit=%v err=%v", hit, err)
	}
	if len(entry.Items) != 3 {
		t.Errorf("cached pool has %d items, want 3", len(entry.Items))
	}
}

func TestPager_ExcludeAppliedToCachedPool(t *testing.T) {
	full := testPool(5)
	p := NewPager(NewMemoryStore(), 0, nil)

	// Populate the cache with a request that excludes nothing.
	_, meta, err := p.Page(context.Background(), Request{Key: "k", Limit: 10},
		staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("first Page: %v", err)
	}
	if meta.Total != 5 {
		t.Fatalf("meta.Total = %d, want 5", meta.Total)
	}

	// A later request against the same pool must still honor its
	// exclusion list even though the cached entry contains the slug.
	resolve := func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		t.Error("cached pool must be reused, resolver called")
		return nil, search.ResolveMeta{}, nil
	}
	page, meta, err := p.Page(context.Background(),
		Request{Key: "k", Limit: 10, Exclude: []string{"tag-0"}}, resolve)
	if err != nil {
		t.Fatalf("second Page: %v", err)
	}
	if meta.Total != 4 {
		t.Errorf("meta.Total = %d, want 4", meta.Total)
	}
	for _, it := range page {
		if it.Slug == "tag-0" {
			t.Error("excluded slug served from a pre-exclusion cached pool")
		}
	}
}

func TestPager_TopRankedExclusionNeverReturned(t *testing.T) {
	full := []search.Item{
		{Slug: "tech", Name: "Technology", Score: 0.9},
		{Slug: "sports", Name: "Sports", Score: 0.4},
	}
	p := NewPager(NewMemoryStore(), 0, nil)

	page, _, err := p.Page(context.Background(),
		Request{Key: "k", Limit: 5, Exclude: []string{"tech"}},
		staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(page) != 1 || page[0].Slug != "sports" {
		t.Errorf("page = %+v, want only sports", page)
	}
}

func TestPager_CursorPinsKey(t *testing.T) {
	poolA := testPool(4)
	p := NewPager(NewMemoryStore(), 0, nil)

	_, meta, err := p.Page(context.Background(), Request{Key: "key-a", Limit: 2},
		staticResolve(poolA, search.ResolveMeta{Model: "a"}))
	if err != nil {
		t.Fatalf("first Page: %v", err)
	}
	if !meta.HasMore {
		t.Fatal("expected more pages")
	}

	// The follow-up request computes a different key, but the cursor
	// pins the pool that produced it.
	resolveB := func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		t.Error("cursor must reuse the pinned pool, resolver called")
		return nil, search.ResolveMeta{}, nil
	}
	page, meta2, err := p.Page(context.Background(),
		Request{Key: "key-b", Cursor: meta.NextCursor, Limit: 2}, resolveB)
	if err != nil {
		t.Fatalf("second Page: %v", err)
	}
	if meta2.ContentHash != "key-a" {
		t.Errorf("ContentHash = %q, want key-a", meta2.ContentHash)
	}
	if len(page) != 2 || page[0].Slug != "tag-2" {
		t.Errorf("cursor window wrong: %+v", page)
	}
}

func TestPager_InvalidCursorFallsBack(t *testing.T) {
	full := testPool(3)
	p := NewPager(NewMemoryStore(), 0, nil)

	page, meta, err := p.Page(context.Background(),
		Request{Key: "k", Cursor: "@@not-a-token@@", Limit: 2},
		staticResolve(full, search.ResolveMeta{}))
	if err != nil {
		t.Fatalf("Page must not fail on a corrupt cursor: %v", err)
	}
	if meta.Start != 0 || len(page) != 2 {
		t.Errorf("expected paging from position 0, got start=%d page=%v", meta.Start, page)
	}
}

func TestPager_ResolverFailureYieldsEmptyPage(t *testing.T) {
	p := NewPager(NewMemoryStore(), 0, nil)

	resolve := func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		return nil, search.ResolveMeta{}, errors.New("gateway down")
	}
	page, meta, err := p.Page(context.Background(), Request{Key: "k", Limit: 5}, resolve)
	if err != nil {
		t.Fatalf("resolver failure must not propagate: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("expected empty page, got %v", page)
	}
	if meta != (Meta{}) {
		t.Errorf("expected empty meta, got %+v", meta)
	}
}

func TestPager_CacheFailureDegrades(t *testing.T) {
	full := testPool(3)
	store := &countingStore{inner: NewMemoryStore(), fail: true}
	p := NewPager(store, 0, nil)

	calls := 0
	resolve := func(context.Context) ([]search.Item, search.ResolveMeta, error) {
		calls++
		return full, search.ResolveMeta{}, nil
	}

	for i := 0; i < 2; i++ {
		page, _, err := p.Page(context.Background(), Request{Key: "k", Limit: 5}, resolve)
		if err != nil {
			t.Fatalf("Page with broken cache: %v", err)
		}
		if len(page) != 3 {
			t.Errorf("page = %v", page)
		}
	}
	if calls != 2 {
		t.Errorf("broken cache must recompute every request, resolver called %d times", calls)
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	entry := Entry{Items: testPool(1)}

	if err := store.Set(context.Background(), "k", entry, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := store.Get(context.Background(), "k"); !hit {
		t.Fatal("expected fresh entry to hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, hit, _ := store.Get(context.Background(), "k"); hit {
		t.Error("expected expired entry to miss")
	}
}
