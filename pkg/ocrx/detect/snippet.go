package detect

import (
	"strings"
	"unicode/utf8"
)

// sentenceAround returns the text between the nearest '.' before idx and
// the nearest '.' at or after idx. Without a following '.', the snippet
// ends window runes after idx.
func sentenceAround(text string, idx, window int) string {
	if idx < 0 || idx > len(text) {
		return ""
	}
	start := strings.LastIndexByte(text[:idx], '.') + 1
	end := strings.IndexByte(text[idx:], '.')
	if end >= 0 {
		end += idx
	} else {
		end = advanceRunes(text, idx, window)
	}
	return strings.TrimSpace(text[start:end])
}

func advanceRunes(text string, idx, n int) int {
	pos := idx
	for i := 0; i < n && pos < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos
}
