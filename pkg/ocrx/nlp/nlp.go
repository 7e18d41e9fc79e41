// Package nlp defines the contract between the entity detector and a
// statistical language analysis backend (NER, part-of-speech tags and
// sentence segmentation).
package nlp

import "context"

// Analyzer runs a statistical model over a text block.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*Analysis, error)
}

// Pinger is implemented by analyzers that can report availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Analysis is the model output for one text block. Sentence fields index
// into Sentences; -1 means the model did not attribute a sentence.
type Analysis struct {
	Sentences []string `json:"sentences"`
	Entities  []Span   `json:"entities"`
	Tokens    []Token  `json:"tokens"`
}

// Span is a named entity as found in the text.
type Span struct {
	Text     string `json:"text"`
	Label    string `json:"label"`
	Sentence int    `json:"sentence"`
}

// Token is a single tagged token.
type Token struct {
	Text     string `json:"text"`
	POS      string `json:"pos"`
	Sentence int    `json:"sentence"`
}

// SentenceText returns sentence i or "" when i is out of range.
func (a *Analysis) SentenceText(i int) string {
	if a == nil || i < 0 || i >= len(a.Sentences) {
		return ""
	}
	return a.Sentences[i]
}
