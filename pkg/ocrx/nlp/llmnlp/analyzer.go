// Package llmnlp implements nlp.Analyzer on top of a chat model reached
// through langchaingo. The model is asked for sentences, named entities
// and noun tokens as JSON.
package llmnlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp"
)

const defaultAttempts = 3

const systemPrompt = `You annotate historical German chronicle text.
Return a single JSON object and nothing else:
{"sentences": [string], "entities": [{"text": string, "label": "PER"|"LOC"|"GPE"|"ORG"|"MISC", "sentence": int}], "tokens": [{"text": string, "pos": "NOUN"|"PROPN", "sentence": int}]}
"sentences" splits the input into sentences, copied verbatim.
"entities" lists named entities exactly as spelled in the input.
"tokens" lists every noun and proper noun exactly as spelled in the input.
"sentence" is the index into "sentences".`

// Analyzer asks a chat model for an nlp.Analysis.
type Analyzer struct {
	model    llms.Model
	attempts int
	logger   *slog.Logger
}

var _ nlp.Analyzer = (*Analyzer)(nil)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithAttempts sets how often a malformed model answer is retried.
func WithAttempts(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.attempts = n
		}
	}
}

// New wraps an existing model.
func New(model llms.Model, opts ...Option) *Analyzer {
	a := &Analyzer{
		model:    model,
		attempts: defaultAttempts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "llmnlp")
	return a
}

// NewOpenAI connects to an OpenAI-compatible endpoint. An empty token is
// sent as "none" for local services without authentication.
func NewOpenAI(baseURL, token, model string, opts ...Option) (*Analyzer, error) {
	if model == "" {
		return nil, fmt.Errorf("llmnlp: model required: %w", internalerr.ErrInvalidConfig)
	}
	if token == "" {
		token = "none"
	}
	clientOpts := []openai.Option{openai.WithToken(token), openai.WithModel(model)}
	if baseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("llmnlp: %w", err)
	}
	return New(client, opts...), nil
}

type response struct {
	Sentences []string `json:"sentences"`
	Entities  []struct {
		Text     string `json:"text"`
		Label    string `json:"label"`
		Sentence *int   `json:"sentence"`
	} `json:"entities"`
	Tokens []struct {
		Text     string `json:"text"`
		POS      string `json:"pos"`
		Sentence *int   `json:"sentence"`
	} `json:"tokens"`
}

// Analyze sends text to the model. Transport errors are returned at once;
// unparsable answers are retried.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*nlp.Analysis, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, text),
	}

	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		resp, err := a.model.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return nil, fmt.Errorf("llmnlp: generate: %w: %w", internalerr.ErrBackendUnavailable, err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("llmnlp: empty response: %w", internalerr.ErrBackendUnavailable)
		}

		raw := stripFences(resp.Choices[0].Content)
		var out response
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			lastErr = err
			a.logger.Warn("unparsable model answer", "attempt", attempt, "err", err)
			continue
		}
		analysis := out.analysis()
		a.logger.Debug("analyzed block", "sentences", len(analysis.Sentences), "entities", len(analysis.Entities), "tokens", len(analysis.Tokens))
		return analysis, nil
	}
	return nil, fmt.Errorf("llmnlp: parse response after %d attempts: %w", a.attempts, lastErr)
}

func (r response) analysis() *nlp.Analysis {
	out := &nlp.Analysis{
		Sentences: r.Sentences,
		Entities:  make([]nlp.Span, 0, len(r.Entities)),
		Tokens:    make([]nlp.Token, 0, len(r.Tokens)),
	}
	for _, e := range r.Entities {
		out.Entities = append(out.Entities, nlp.Span{Text: e.Text, Label: e.Label, Sentence: index(e.Sentence)})
	}
	for _, t := range r.Tokens {
		out.Tokens = append(out.Tokens, nlp.Token{Text: t.Text, POS: t.POS, Sentence: index(t.Sentence)})
	}
	return out
}

func index(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
