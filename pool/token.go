package pool

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// EncodeToken packs a fingerprint key and a pool position into an
// opaque continuation token. Callers must treat the result as a black
// box; only DecodeToken understands it.
func EncodeToken(key string, pos int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key + ":" + strconv.Itoa(pos)))
}

// DecodeToken unpacks a continuation token. It reports ok=false for
// anything it cannot decode; corrupt tokens are an ordinary
// start-from-default condition, never an error.
func DecodeToken(token string) (key string, pos int, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", 0, false
	}
	i := strings.LastIndexByte(string(raw), ':')
	if i <= 0 {
		return "", 0, false
	}
	key = string(raw[:i])
	pos, err = strconv.Atoi(string(raw[i+1:]))
	if err != nil || pos < 0 {
		return "", 0, false
	}
	return key, pos, true
}
