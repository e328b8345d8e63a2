package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tags.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoad_ValidRows(t *testing.T) {
	path := writeCatalog(t, "name,slug,url,description\n"+
		"Sports,sports,https://example.com/sports,All sports coverage\n"+
		"Technology,tech,,\n")

	res, err := Source{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", res.Dropped)
	}
	if res.Records[0].Slug != "sports" || res.Records[1].Slug != "tech" {
		t.Errorf("records out of source order: %+v", res.Records)
	}
	if res.Fingerprint == "" {
		t.Error("fingerprint is empty")
	}
}

func TestLoad_DropsRowsMissingNameOrSlug(t *testing.T) {
	path := writeCatalog(t, "name,slug,url,description\n"+
		"Sports,sports,,\n"+
		",missing-name,,\n"+
		"Missing Slug,,,\n"+
		"  ,blank-name,,\n")

	res, err := Source{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if res.Dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", res.Dropped)
	}
}

func TestLoad_ColumnOrderIndependent(t *testing.T) {
	path := writeCatalog(t, "description,url,slug,name\n"+
		"About tech,https://example.com/tech,tech,Technology\n")

	res, err := Source{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	rec := res.Records[0]
	if rec.Name != "Technology" || rec.Slug != "tech" ||
		rec.URL != "https://example.com/tech" || rec.Description != "About tech" {
		t.Errorf("columns mapped incorrectly: %+v", rec)
	}
}

func TestLoad_MissingColumnIsFatal(t *testing.T) {
	path := writeCatalog(t, "name,slug,url\nSports,sports,\n")

	_, err := Source{Path: path}.Load()
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Source{Path: filepath.Join(t.TempDir(), "absent.csv")}.Load()
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLoad_BOMHeader(t *testing.T) {
	path := writeCatalog(t, "\ufeffname,slug,url,description\nSports,sports,,\n")

	res, err := Source{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
}

func TestFingerprint_TracksContent(t *testing.T) {
	path1 := writeCatalog(t, "name,slug,url,description\nSports,sports,,\n")
	path2 := writeCatalog(t, "name,slug,url,description\nTechnology,tech,,\n")

	fp1, err := (Source{Path: path1}).Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fp2, err := (Source{Path: path2}).Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp1 == fp2 {
		t.Error("different content produced same fingerprint")
	}

	again, err := (Source{Path: path1}).Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp1 != again {
		t.Error("same content produced different fingerprints")
	}
}

func TestFingerprint_MatchesLoad(t *testing.T) {
	path := writeCatalog(t, "name,slug,url,description\nSports,sports,,\n")

	res, err := Source{Path: path}.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	fp, err := (Source{Path: path}).Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if res.Fingerprint != fp {
		t.Errorf("Load fingerprint %s != Fingerprint %s", res.Fingerprint, fp)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  TagRecord
		want bool
	}{
		{"valid", TagRecord{Slug: "tech", Name: "Technology"}, true},
		{"empty slug", TagRecord{Name: "Technology"}, false},
		{"empty name", TagRecord{Slug: "tech"}, false},
		{"slug with space", TagRecord{Slug: "te ch", Name: "Technology"}, false},
		{"slug with tab", TagRecord{Slug: "te\tch", Name: "Technology"}, false},
		{"unicode slug", TagRecord{Slug: "экономика", Name: "Экономика"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Validate(); got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanonicalText(t *testing.T) {
	tests := []struct {
		name string
		rec  TagRecord
		want string
	}{
		{
			"all fields",
			TagRecord{Slug: "tech", Name: "Technology", URL: "https://x/t", Description: "Gadgets"},
			"Technology — Gadgets — slug:tech — url:https://x/t",
		},
		{
			"name and slug only",
			TagRecord{Slug: "tech", Name: "Technology"},
			"Technology — slug:tech",
		},
		{
			"no url",
			TagRecord{Slug: "tech", Name: "Technology", Description: "Gadgets"},
			"Technology — Gadgets — slug:tech",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.CanonicalText(); got != tt.want {
				t.Errorf("CanonicalText() = %q, want %q", got, tt.want)
			}
		})
	}
}
