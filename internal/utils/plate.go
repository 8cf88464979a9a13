package utils

import (
	"strings"
	"unicode"
)

// NormalizePlate canonicalizes a plate string or plate fragment as typed at
// the gate console: whitespace and separator characters are stripped and
// ASCII letters are uppercased. Hangul characters (the middle letter of
// Korean plates such as "12가3456") pass through unchanged.
func NormalizePlate(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
