package index

import (
	"fmt"
	"time"

	"github.com/jonwraymond/tagsuggest/catalog"
)

// Snapshot is an immutable, versioned view of the embedded tag corpus:
// the catalog records in source order, their passage-form canonical
// texts, and their unit-normalized embeddings packed as a row-major
// matrix. A snapshot is either fully built or never published; readers
// holding a snapshot may keep using it after it has been superseded.
type Snapshot struct {
	// Records are the valid catalog entries, in catalog order.
	Records []catalog.TagRecord

	// Texts are the canonical texts the embeddings were computed from,
	// parallel to Records. They feed lexical overlap and reranking.
	Texts []string

	// Model is the embedding model name the snapshot was built with.
	Model string

	// Dim is the embedding dimensionality. Every vector in the matrix
	// has exactly this length.
	Dim int

	// SourceFingerprint is the content checksum of the catalog source
	// the snapshot was built from.
	SourceFingerprint string

	// BuiltAt records when the build completed.
	BuiltAt time.Time

	matrix []float32
}

// Len returns the number of indexed records.
func (s *Snapshot) Len() int {
	return len(s.Records)
}

// Vector returns the unit-normalized embedding of record i.
// The returned slice aliases the snapshot matrix and must not be mutated.
func (s *Snapshot) Vector(i int) []float32 {
	return s.matrix[i*s.Dim : (i+1)*s.Dim]
}

// ModelIdentity combines model name and dimensionality into the identity
// string used for snapshot validation and cache fingerprinting.
func (s *Snapshot) ModelIdentity() string {
	return fmt.Sprintf("%s/%d", s.Model, s.Dim)
}

// Hit is a single similarity-search result: the position of a record in
// the snapshot and its inner-product score against the query vector.
type Hit struct {
	Pos   int
	Score float64
}

// Match pairs a Hit with the record it refers to.
type Match struct {
	// Record is the matched catalog entry.
	Record catalog.TagRecord

	// Text is the canonical text the record was embedded from.
	Text string

	// Score is the raw semantic similarity in [-1, 1].
	Score float64

	// Pos is the record's position in the snapshot (catalog order).
	Pos int
}
