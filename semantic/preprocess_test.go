package semantic

import "testing"

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "The new smartphone chip is fast", "The new smartphone chip is fast"},
		{"strips urls", "read more at https://example.com/a?b=c now", "read more at now"},
		{"strips www urls", "see www.example.com today", "see today"},
		{"strips markup", "<p>Hello <b>world</b></p>", "Hello world"},
		{"strips punctuation", "breaking: oil prices surge!!!", "breaking oil prices surge"},
		{"collapses whitespace", "a   b\t\tc\n\nd", "a b c d"},
		{"empty input", "", ""},
		{"only noise", "!!! ??? ...", ""},
		{"transliterates", "café résumé", "cafe resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Preprocessor
			if got := p.Preprocess(tt.in); got != tt.want {
				t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPreprocess_Deterministic(t *testing.T) {
	p := Preprocessor{NormalizeArabic: true}
	in := "Visit <a href=\"x\">الاقتصاد</a> at www.example.com, اليوم!"

	first := p.Preprocess(in)
	for range 10 {
		if got := p.Preprocess(in); got != first {
			t.Fatalf("preprocessing is not deterministic: %q vs %q", got, first)
		}
	}
}

func TestNormalizeArabic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"hamza on alef", "أخبار", "اخبار"},
		{"hamza under alef", "إعلام", "اعلام"},
		{"madda", "آفاق", "افاق"},
		{"taa marbuta", "رياضة", "رياضه"},
		{"alef maqsura", "مستشفى", "مستشفي"},
		{"diacritics stripped", "مُحَمَّد", "محمد"},
		{"empty", "", ""},
		{"latin untouched", "sports", "sports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArabic(tt.in); got != tt.want {
				t.Errorf("NormalizeArabic(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQueryAndPassageText(t *testing.T) {
	if got := QueryText("intfloat/multilingual-e5-base", "hello"); got != "query: hello" {
		t.Errorf("QueryText e5 = %q", got)
	}
	if got := PassageText("intfloat/multilingual-E5-large", "hello"); got != "passage: hello" {
		t.Errorf("PassageText e5 = %q", got)
	}
	if got := QueryText("all-MiniLM-L6-v2", "hello"); got != "hello" {
		t.Errorf("QueryText non-e5 = %q", got)
	}
	if got := PassageText("all-MiniLM-L6-v2", "hello"); got != "hello" {
		t.Errorf("PassageText non-e5 = %q", got)
	}
}
