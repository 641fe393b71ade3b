package ledger

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// cleanText folds compatibility forms (full-width letters, ligatures) and
// drops control characters other than newline, which callers reject.
func cleanText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// validField reports whether s can be stored as one field of a
// ';'-separated comment line.
func validField(s string) bool {
	return s != "" && !strings.ContainsAny(s, ";\n")
}
