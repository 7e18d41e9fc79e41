package annotate

import (
	"sort"
	"strings"
)

type span struct {
	start, end int
	target     string
}

// spans is kept sorted by start and never holds overlapping entries.
type spans []span

func (s spans) overlaps(start, end int) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].end > start })
	return i < len(s) && s[i].start < end
}

func (s *spans) insert(sp span) {
	i := sort.Search(len(*s), func(i int) bool { return (*s)[i].start >= sp.start })
	*s = append(*s, span{})
	copy((*s)[i+1:], (*s)[i:])
	(*s)[i] = sp
}

func (s spans) render(text string) string {
	if len(s) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(s)*32)
	last := 0
	for _, sp := range s {
		b.WriteString(text[last:sp.start])
		b.WriteByte('[')
		b.WriteString(text[sp.start:sp.end])
		b.WriteString("](")
		b.WriteString(sp.target)
		b.WriteByte(')')
		last = sp.end
	}
	b.WriteString(text[last:])
	return b.String()
}
