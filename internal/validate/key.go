// Package validate holds the field rules shared by every write path.
package validate

import (
	"strings"
	"unicode"
)

// MaxKeyLength is the longest project key NormalizeKey produces.
const MaxKeyLength = 10

// NormalizeKey turns free text into a project key: letters and digits only,
// upper case, at most MaxKeyLength runes. Input with no letters or digits
// falls back to its trimmed form, which is truncated as is and may keep
// inner or trailing spaces.
func NormalizeKey(s string) string {
	trimmed := strings.TrimSpace(s)

	key := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, trimmed)
	if key == "" {
		key = trimmed
	}

	key = strings.ToUpper(key)

	runes := []rune(key)
	if len(runes) > MaxKeyLength {
		key = string(runes[:MaxKeyLength])
	}
	return key
}
