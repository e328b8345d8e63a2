package semantic

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// minTokenLen is the shortest token considered significant for lexical
// overlap. Shorter tokens (articles, particles) add noise, not signal.
const minTokenLen = 3

// maxReasonTerms caps how many shared terms appear in a reason string.
const maxReasonTerms = 5

// reasonSemantic is returned when query and candidate share no terms.
const reasonSemantic = "Semantic similarity to tag description"

var wordTokenizer = tokenizer.NewUnicodeTokenizer()

// SignificantTokens extracts the lowercased significant tokens of a text:
// unicode-segmented words of at least three letter/digit runes, in order
// of first appearance, deduplicated.
func SignificantTokens(text string) []string {
	stream := wordTokenizer.Tokenize([]byte(text))

	seen := make(map[string]struct{}, len(stream))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		term := strings.ToLower(string(tok.Term))
		if utf8.RuneCountInString(term) < minTokenLen || !wordLike(term) {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		tokens = append(tokens, term)
	}
	return tokens
}

// SharedTerms returns the significant tokens the query and candidate text
// have in common, in query order. Query order keeps the result
// deterministic for a fixed input pair.
func SharedTerms(query, candidate string) []string {
	candidateSet := make(map[string]struct{})
	for _, term := range SignificantTokens(candidate) {
		candidateSet[term] = struct{}{}
	}

	var shared []string
	for _, term := range SignificantTokens(query) {
		if _, ok := candidateSet[term]; ok {
			shared = append(shared, term)
		}
	}
	return shared
}

// OverlapSignal converts a shared-term count into the bounded lexical
// component of the hybrid score: count/10, capped at 0.5 so lexical
// overlap can never dominate semantic similarity.
func OverlapSignal(sharedCount int) float64 {
	overlap := float64(sharedCount) / 10.0
	if overlap > 0.5 {
		return 0.5
	}
	return overlap
}

// Reason renders a human-readable explanation for a suggestion from its
// shared terms, or a generic semantic explanation when there are none.
func Reason(shared []string) string {
	if len(shared) == 0 {
		return reasonSemantic
	}
	if len(shared) > maxReasonTerms {
		shared = shared[:maxReasonTerms]
	}
	return "Shared terms: " + strings.Join(shared, ", ")
}

// wordLike reports whether every rune is a letter or digit.
func wordLike(term string) bool {
	for _, r := range term {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
