// Package detect finds people, places, notable words and domain keywords in
// a block of text.
//
// Two strategies exist: Heuristic works from fixed pattern tables, and
// Statistical maps the output of an nlp.Analyzer. Callers pick one at start
// up and use it through the Detector interface. Both add the same keyword
// pass, and neither ever fails: bad or empty input yields an empty Result.
package detect

import (
	"context"
	"log/slog"
)

// Detector returns the categorized entities of one text block.
type Detector interface {
	Detect(ctx context.Context, text string) *Result
}

// Option configures a detector.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(component string, opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("component", component)
	return o
}
