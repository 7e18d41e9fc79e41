package detect

import (
	"context"
	"regexp"
	"strings"
)

// Heuristic detects entities with the pattern tables only.
type Heuristic struct {
	tables *compiled
	opts   options
}

var _ Detector = (*Heuristic)(nil)

// NewHeuristic builds a pattern detector. Keyword fragments that do not
// compile are skipped with a warning.
func NewHeuristic(t Tables, opts ...Option) *Heuristic {
	h := &Heuristic{tables: compile(t), opts: buildOptions("heuristic-detector", opts)}
	for _, p := range h.tables.skipped {
		h.opts.logger.Warn("skipping keyword pattern", "pattern", p)
	}
	return h
}

// Detect implements Detector.
func (h *Heuristic) Detect(_ context.Context, text string) *Result {
	res := NewResult()
	if strings.TrimSpace(text) == "" {
		return res
	}
	h.detectNames(res, text)
	detectKeywords(h.tables, res, text)
	return res
}

func (h *Heuristic) detectNames(res *Result, text string) {
	c := h.tables
	if c.person != nil {
		for _, m := range findAllBounded(c.person, text, false) {
			res.Add(Person, text[m[0]:m[1]], sentenceAround(text, m[0], c.window))
		}
	}
	// Hints run one pass each: in "Grafschaft Mark Brandenburg" the match
	// of one hint must not swallow the next.
	for _, re := range append([]*regexp.Regexp{c.place}, c.hints...) {
		if re == nil {
			continue
		}
		for _, m := range findAllBounded(re, text, false) {
			res.Add(Place, text[m[2]:m[3]], sentenceAround(text, m[0], c.window))
		}
	}
	for _, m := range findAllBounded(c.word, text, true) {
		token := text[m[0]:m[1]]
		if c.isStop(token) || res.Has(Person, token) || res.Has(Place, token) {
			continue
		}
		res.Add(Word, token, sentenceAround(text, m[0], c.window))
	}
}

func detectKeywords(c *compiled, res *Result, text string) {
	for _, re := range c.keywords {
		for _, m := range findAllBounded(re, text, true) {
			if m[1] == m[0] {
				continue
			}
			res.Add(Keyword, text[m[0]:m[1]], sentenceAround(text, m[0], c.window))
		}
	}
}
