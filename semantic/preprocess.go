package semantic

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	// URLs, inline markup, then anything that is not a word character.
	reURL    = regexp.MustCompile(`https?://\S+|www\.\S+`)
	reMarkup = regexp.MustCompile(`<[^>]+>`)
	rePunct  = regexp.MustCompile(`[^\w\s]`)
	reSpace  = regexp.MustCompile(`\s+`)

	// Arabic combining diacritics (tashkil and Quranic annotation ranges).
	reArabicDiacritics = regexp.MustCompile(`[\x{0610}-\x{061A}\x{064B}-\x{065F}\x{06D6}-\x{06ED}]`)

	arabicFolder = strings.NewReplacer(
		"أ", "ا", "إ", "ا", "آ", "ا",
		"ة", "ه",
		"ى", "ي",
		"ؤ", "و", "ئ", "ي",
	)
)

// Preprocessor normalizes raw input text before embedding.
// The zero value is usable and skips locale-specific normalization.
type Preprocessor struct {
	// NormalizeArabic enables Arabic diacritic stripping and letter
	// folding before transliteration.
	NormalizeArabic bool
}

// Preprocess renders input text into the form used for embedding and
// lexical comparison: optional Arabic normalization, transliteration of
// mixed scripts to ASCII, markup/URL/punctuation removal, and whitespace
// collapsing. An input that reduces to nothing returns the empty string.
func (p Preprocessor) Preprocess(text string) string {
	if text == "" {
		return ""
	}

	// Arabic folding must run before transliteration, which maps the
	// script out of its Unicode block.
	if p.NormalizeArabic {
		text = NormalizeArabic(text)
	}

	text = unidecode.Unidecode(text)

	text = reURL.ReplaceAllString(text, " ")
	text = reMarkup.ReplaceAllString(text, " ")
	text = rePunct.ReplaceAllString(text, " ")
	text = reSpace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// NormalizeArabic strips Arabic diacritics and folds letter variants
// (hamza forms to bare alef, taa marbuta to haa, alef maqsura to yaa)
// so orthographic variants embed identically.
func NormalizeArabic(text string) string {
	if text == "" {
		return text
	}
	text = reArabicDiacritics.ReplaceAllString(text, "")
	return arabicFolder.Replace(text)
}
