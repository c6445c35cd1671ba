// Package normalize turns raw spreadsheet headers into comparable tokens.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the alphanumeric runs of a normalized token.
const Separator = '_'

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Header normalizes a header for matching.
// The pipeline:
// 1. Trim surrounding whitespace.
// 2. Case-fold to lower.
// 3. Strip diacritics ("Saída" -> "saida").
// 4. Replace every run of non-alphanumeric runes with a single separator.
// 5. Drop leading and trailing separators.
//
// The result is empty for headers made only of punctuation; such tokens match nothing.
func Header(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	if stripped, _, err := transform.String(stripAccents, s); err == nil {
		s = stripped
	}

	var b strings.Builder

	b.Grow(len(s))

	pendingSep := false

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteRune(Separator)
			}

			pendingSep = false

			b.WriteRune(r)

			continue
		}

		pendingSep = true
	}

	return b.String()
}

// Tokens splits a normalized header into its alphanumeric words.
func Tokens(s string) []string {
	n := Header(s)
	if n == "" {
		return nil
	}

	return strings.Split(n, string(Separator))
}
