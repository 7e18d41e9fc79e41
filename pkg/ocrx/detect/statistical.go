package detect

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp"
)

var (
	personLabels = map[string]struct{}{"PER": {}, "PERSON": {}}
	placeLabels  = map[string]struct{}{"LOC": {}, "GPE": {}}
	nounTags     = map[string]struct{}{"NOUN": {}, "PROPN": {}}
)

// Statistical maps the output of an nlp.Analyzer to categories. When the
// analyzer fails on a block it answers with the heuristic result instead.
type Statistical struct {
	analyzer nlp.Analyzer
	tables   *compiled
	fallback *Heuristic
	opts     options
}

var _ Detector = (*Statistical)(nil)

// NewStatistical wraps analyzer as a Detector.
func NewStatistical(analyzer nlp.Analyzer, t Tables, opts ...Option) *Statistical {
	fallback := NewHeuristic(t, opts...)
	return &Statistical{
		analyzer: analyzer,
		tables:   fallback.tables,
		fallback: fallback,
		opts:     buildOptions("statistical-detector", opts),
	}
}

// Detect implements Detector.
func (s *Statistical) Detect(ctx context.Context, text string) *Result {
	if strings.TrimSpace(text) == "" {
		return NewResult()
	}
	a, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		s.opts.logger.Warn("analyzer failed, using heuristics for block", "err", err)
		return s.fallback.Detect(ctx, text)
	}
	if a == nil {
		s.opts.logger.Warn("analyzer returned no analysis, using heuristics for block")
		return s.fallback.Detect(ctx, text)
	}

	res := NewResult()
	for _, ent := range a.Entities {
		surface := strings.TrimSpace(ent.Text)
		if surface == "" {
			continue
		}
		snippet := strings.TrimSpace(a.SentenceText(ent.Sentence))
		label := strings.ToUpper(ent.Label)
		if _, ok := personLabels[label]; ok {
			res.Add(Person, surface, snippet)
		} else if _, ok := placeLabels[label]; ok {
			res.Add(Place, surface, snippet)
		}
	}
	for _, tok := range a.Tokens {
		if _, ok := nounTags[strings.ToUpper(tok.POS)]; !ok {
			continue
		}
		t := strings.TrimSpace(tok.Text)
		if t == "" || s.tables.isStop(t) || startsWithDigit(t) || isNumericOnly(t) {
			continue
		}
		res.Add(Word, t, strings.TrimSpace(a.SentenceText(tok.Sentence)))
	}
	detectKeywords(s.tables, res, text)

	s.opts.logger.Debug("analyzed block",
		"persons", res.Len(Person),
		"places", res.Len(Place),
		"words", res.Len(Word),
		"keywords", res.Len(Keyword))
	return res
}

func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}

// isNumericOnly returns true if the token contains only digits and
// number punctuation.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' && r != '.' && r != ',' {
			return false
		}
	}
	return true
}
