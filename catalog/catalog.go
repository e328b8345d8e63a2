package catalog

import (
	"strings"
	"unicode"
)

// TagRecord is a single taxonomy entry the engine can suggest.
// Records are immutable once loaded from a catalog source.
type TagRecord struct {
	// Slug is the unique key identifying the tag.
	Slug string `json:"slug"`

	// Name is the human-readable tag name.
	Name string `json:"name"`

	// URL optionally points at the tag's landing page.
	URL string `json:"url,omitempty"`

	// Description optionally elaborates on the tag's meaning.
	Description string `json:"description,omitempty"`
}

// Validate reports whether the record satisfies the catalog invariants:
// slug and name must be non-empty and the slug must not contain whitespace.
// Records failing validation are dropped at build time, never indexed.
func (t TagRecord) Validate() bool {
	if t.Slug == "" || t.Name == "" {
		return false
	}
	for _, r := range t.Slug {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// CanonicalText returns the deterministic textual rendering of the record
// used to produce its embedding: name, description, slug and URL joined
// with an em-dash separator, empty parts omitted.
//
//	Climate Change — Coverage of global warming — slug:climate-change — url:https://…
//
// The rendering must stay stable across builds: rebuilding from an
// unchanged catalog must embed byte-identical texts.
func (t TagRecord) CanonicalText() string {
	parts := make([]string, 0, 4)
	parts = append(parts, t.Name)
	if t.Description != "" {
		parts = append(parts, t.Description)
	}
	if t.Slug != "" {
		parts = append(parts, "slug:"+t.Slug)
	}
	if t.URL != "" {
		parts = append(parts, "url:"+t.URL)
	}
	return strings.Join(parts, " — ")
}
