package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonwraymond/tagsuggest/catalog"
)

const (
	metadataFile   = "tags.json"
	embeddingsFile = "embeddings.bin"
)

// Error values for snapshot persistence.
var (
	ErrNotPersisted    = errors.New("no persisted snapshot found")
	ErrCorruptSnapshot = errors.New("persisted snapshot is corrupt")
)

// snapshotMetadata is the on-disk JSON document written next to the
// embedding matrix.
type snapshotMetadata struct {
	Tags              []catalog.TagRecord `json:"tags"`
	TagTexts          []string            `json:"tag_texts"`
	Model             string              `json:"model"`
	Dim               int                 `json:"dim"`
	SourceFingerprint string              `json:"source_fingerprint"`
	BuiltAt           time.Time           `json:"built_at"`
}

// SaveSnapshot writes the snapshot under dir as a JSON metadata document
// plus a raw little-endian float32 matrix. Both files are written to
// temporary names and renamed into place, so a crash mid-write never
// leaves a partially updated pair that passes validation.
func SaveSnapshot(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	meta := snapshotMetadata{
		Tags:              snap.Records,
		TagTexts:          snap.Texts,
		Model:             snap.Model,
		Dim:               snap.Dim,
		SourceFingerprint: snap.SourceFingerprint,
		BuiltAt:           snap.BuiltAt,
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	matrixBytes := make([]byte, len(snap.matrix)*4)
	for i, v := range snap.matrix {
		binary.LittleEndian.PutUint32(matrixBytes[i*4:], math.Float32bits(v))
	}

	if err := writeFileAtomic(filepath.Join(dir, embeddingsFile), matrixBytes); err != nil {
		return fmt.Errorf("write embeddings: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, metadataFile), metaBytes); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// LoadSnapshot reads a persisted snapshot from dir. It returns
// ErrNotPersisted when the files are absent and ErrCorruptSnapshot when
// the metadata and matrix disagree on shape.
func LoadSnapshot(dir string) (*Snapshot, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotPersisted
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta snapshotMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if len(meta.Tags) != len(meta.TagTexts) {
		return nil, fmt.Errorf("%w: %d tags but %d texts", ErrCorruptSnapshot, len(meta.Tags), len(meta.TagTexts))
	}
	if meta.Dim < 0 || (len(meta.Tags) > 0 && meta.Dim == 0) {
		return nil, fmt.Errorf("%w: invalid dim %d", ErrCorruptSnapshot, meta.Dim)
	}

	matrixBytes, err := os.ReadFile(filepath.Join(dir, embeddingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotPersisted
		}
		return nil, fmt.Errorf("read embeddings: %w", err)
	}

	want := len(meta.Tags) * meta.Dim * 4
	if len(matrixBytes) != want {
		return nil, fmt.Errorf("%w: matrix is %d bytes, expected %d", ErrCorruptSnapshot, len(matrixBytes), want)
	}

	matrix := make([]float32, len(meta.Tags)*meta.Dim)
	for i := range matrix {
		matrix[i] = math.Float32frombits(binary.LittleEndian.Uint32(matrixBytes[i*4:]))
	}

	return &Snapshot{
		Records:           meta.Tags,
		Texts:             meta.TagTexts,
		Model:             meta.Model,
		Dim:               meta.Dim,
		SourceFingerprint: meta.SourceFingerprint,
		BuiltAt:           meta.BuiltAt,
		matrix:            matrix,
	}, nil
}

// writeFileAtomic writes data to a temporary file in the target
// directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
