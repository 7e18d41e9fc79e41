// Package slug derives file names for register entries from display text.
//
// The derivation is a shared contract with anything that resolves register
// links, so it must stay stable across releases.
package slug

import (
	"strings"
	"unicode"
)

// Placeholder is used when nothing usable remains of the input.
const Placeholder = "eintrag"

// Make strips everything except word runes, hyphens and whitespace, trims,
// lowercases and collapses runs of whitespace into a single hyphen. Line
// breaks count as spaces, so a name wrapped over two OCR lines gets the
// same slug as the unwrapped form.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isWordRune(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	cleaned := strings.ToLower(strings.TrimSpace(b.String()))
	if cleaned == "" {
		return Placeholder
	}
	return strings.Join(strings.FieldsFunc(cleaned, func(r rune) bool { return r == ' ' }), "-")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
