package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Fingerprint computes the deterministic cache key for a resolved
// candidate pool. It covers every ranking-relevant parameter: the
// embedding model name, the vector dimensionality, the preprocessed
// query text, the widen flag, and min_score rounded to four decimals.
// Any change to one of them yields a different key, so a cached pool is
// never served under parameters that did not produce it.
func Fingerprint(model string, dim int, processedText string, widen bool, minScore float64) string {
	h := sha256.New()

	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(dim)))
	h.Write([]byte{0})
	h.Write([]byte(processedText))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(widen)))
	h.Write([]byte{0})
	h.Write([]byte(fmt.Sprintf("%.4f", minScore)))
	h.Write([]byte{0})

	return hex.EncodeToString(h.Sum(nil))
}
