// Package catalog defines the tag catalog model and its CSV source reader.
//
// A catalog is a tabular list of taggable entities with four string
// columns: name, slug, url, description. The package owns row validation
// (name and slug required, invalid rows dropped with a count), the
// deterministic canonical text rendering used for embedding, and content
// fingerprinting of the source file for snapshot staleness detection.
//
// # Usage
//
//	res, err := catalog.Source{Path: "tags.csv"}.Load()
//	if err != nil {
//	    // source missing or structurally invalid
//	}
//	for _, rec := range res.Records {
//	    text := rec.CanonicalText()
//	    // embed text …
//	}
//
// Loading never fails on bad rows, only on a missing file or a header
// missing one of the required columns. res.Dropped reports how many rows
// were excluded.
package catalog
