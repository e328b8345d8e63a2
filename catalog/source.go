package catalog

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Error values for catalog source operations.
var (
	ErrSourceNotFound = errors.New("catalog source not found")
	ErrMissingColumn  = errors.New("catalog source missing required column")
)

// requiredColumns are the columns a catalog source must declare.
// Rows may leave url and description blank; name and slug may not.
var requiredColumns = []string{"name", "slug", "url", "description"}

// Source reads TagRecords from a CSV catalog file.
//
// The reader is deliberately forgiving about content (all cells are
// string-typed, blanks preserved, surrounding whitespace trimmed) and
// strict about shape: all four columns must be present in the header.
type Source struct {
	// Path is the location of the catalog CSV file.
	Path string
}

// LoadResult is the outcome of reading a catalog source.
type LoadResult struct {
	// Records are the valid catalog entries in source order.
	Records []TagRecord

	// Dropped counts rows excluded for missing name or slug.
	// Dropped rows are reported, not fatal.
	Dropped int

	// Fingerprint is a content checksum of the source file, used to
	// detect staleness of persisted snapshots.
	Fingerprint string
}

// Load reads and validates the catalog source.
// Column order is taken from the header row; a missing required column is
// a fatal error, a row missing name or slug is dropped and counted.
func (s Source) Load() (LoadResult, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return LoadResult{}, fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return LoadResult{}, fmt.Errorf("open catalog source: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	r := csv.NewReader(io.TeeReader(f, h))
	r.FieldsPerRecord = -1 // ragged rows are handled below

	header, err := r.Read()
	if err != nil {
		return LoadResult{}, fmt.Errorf("read catalog header: %w", err)
	}
	cols, err := columnPositions(header)
	if err != nil {
		return LoadResult{}, err
	}

	var out LoadResult
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return LoadResult{}, fmt.Errorf("read catalog row: %w", err)
		}

		rec := TagRecord{
			Name:        cell(row, cols["name"]),
			Slug:        cell(row, cols["slug"]),
			URL:         cell(row, cols["url"]),
			Description: cell(row, cols["description"]),
		}
		if !rec.Validate() {
			out.Dropped++
			continue
		}
		out.Records = append(out.Records, rec)
	}

	// Drain the tee so the fingerprint covers the whole file, including
	// trailing bytes the CSV reader never consumed.
	if _, err := io.Copy(io.Discard, io.TeeReader(f, h)); err != nil {
		return LoadResult{}, fmt.Errorf("fingerprint catalog source: %w", err)
	}
	out.Fingerprint = hex.EncodeToString(h.Sum(nil))

	return out, nil
}

// Fingerprint computes the content checksum of the source without parsing it.
func (s Source) Fingerprint() (string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)
		}
		return "", fmt.Errorf("open catalog source: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint catalog source: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func columnPositions(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		// A UTF-8 BOM on the first header cell is common in exported CSVs.
		name = strings.TrimPrefix(name, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
