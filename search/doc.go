// Package search resolves query text into scored tag candidate pools.
//
// [Resolver] is the pipeline core: preprocessed text is embedded,
// searched against the published index snapshot with oversampling, and
// each shortlisted candidate receives a hybrid score blending semantic
// similarity with a capped lexical-overlap signal. Candidates below the
// threshold (relaxed in widen mode) or with malformed slugs are dropped,
// and the surviving pool is optionally re-scored by a pairwise reranker
// when the pool's mean hybrid score signals low confidence.
//
// Resolve returns the entire scored pool, not a page. Windowing,
// caching, and continuation tokens live in the pool package, keyed by
// [Fingerprint], which hashes every ranking-relevant parameter.
//
// A dimensionality mismatch between a fresh query embedding and the
// published snapshot triggers one index reload and a re-embed, so a
// model change never silently ranks against stale vectors.
package search
