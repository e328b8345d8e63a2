// Package index builds, persists, and serves the embedded tag corpus.
//
// The central type is [Snapshot]: an immutable view of the catalog
// records, their canonical texts, and a row-major matrix of
// unit-normalized embeddings. Snapshots are produced by [Builder]
// (batched, parallel embedding) and published through [Store], which
// swaps complete snapshots in atomically so searches never observe a
// partially built index.
//
// # Search Strategies
//
// Similarity search is pluggable behind [Strategy]:
//
//   - [DenseStrategy]: exact inner-product scan over the matrix
//   - [ChromemStrategy]: chromem-go collection built per snapshot
//
// Both produce identical rankings for identical inputs: score
// descending, catalog position breaking ties. The strategy is chosen
// once at store construction via [StoreOptions.NewStrategy].
//
// # Lifecycle
//
//	store, _ := index.NewStore(index.StoreOptions{
//	    Source:  catalog.Source{Path: "tags.csv"},
//	    Dir:     "storage",
//	    Builder: builder,
//	})
//	err := store.LoadOrBuild(ctx, false) // reuse persisted snapshot if valid
//	matches, err := store.Search(ctx, queryVec, 100)
//
// A persisted snapshot is reused only when its embedding model matches
// the builder's and its source fingerprint matches the current catalog
// file. [Store.Reload] forces a rebuild; concurrent reloads are
// coalesced into a single build.
//
// # Persistence Format
//
// [SaveSnapshot] writes two files under the storage directory:
// tags.json (records, texts, model, dim, source fingerprint) and
// embeddings.bin (little-endian float32 row-major matrix). Files are
// written via temp-and-rename. [LoadSnapshot] validates that the matrix
// length agrees with the metadata and returns [ErrCorruptSnapshot]
// otherwise.
package index
