package detect

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r counts as part of a word for boundary checks.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

// IsBoundary reports whether a Unicode word boundary lies at byte offset pos.
func IsBoundary(text string, pos int) bool {
	before, after := false, false
	if pos > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:pos])
		before = IsWordRune(r)
	}
	if pos < len(text) {
		r, _ := utf8.DecodeRuneInString(text[pos:])
		after = IsWordRune(r)
	}
	return before != after
}

// IsBounded reports whether text[start:end] starts and ends on word boundaries.
func IsBounded(text string, start, end int) bool {
	return IsBoundary(text, start) && IsBoundary(text, end)
}

// findAllBounded returns submatch indexes of re in text whose span passes
// the boundary checks. A rejected candidate restarts the search one rune
// later so that matches starting inside it are still found.
func findAllBounded(re *regexp.Regexp, text string, checkEnd bool) [][]int {
	var out [][]int
	pos := 0
	for pos <= len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		start, end := loc[0], loc[1]
		if IsBoundary(text, start) && (!checkEnd || IsBoundary(text, end)) {
			out = append(out, loc)
			if end > start {
				pos = end
				continue
			}
		}
		if start >= len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}
