// Package pool caches resolved candidate pools and serves them in
// resumable windows.
//
// A full candidate pool is expensive (one embedding call plus a
// similarity search), so [Pager] memoizes it under a fingerprint key
// covering every ranking-relevant parameter and pages from the cached
// copy. Continuation tokens ([EncodeToken]/[DecodeToken]) pin both the
// key and the position, so a client walking pages keeps reading the
// exact pool its first request produced even if server defaults change
// between calls.
//
// Two cache backends implement [Store]:
//
//   - [MemoryStore]: in-process TTL map, the zero-configuration default
//   - [RedisStore]: shared cache for multi-process deployments
//
// Both are optional. Cache failures, resolver failures, and corrupt
// cursors all degrade: uncached recomputation, an empty page, and
// offset-based paging respectively. [Pager.Page] never returns an error
// for any of them.
package pool
