// Package ocrx turns the extracted text of a work into a linked Markdown
// tree: an overview page, one page per year for annals, and the register
// of people, places, words and keywords.
package ocrx

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/annotate"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/register"
)

// Engine builds works below one output directory.
type Engine struct {
	outputDir string
	detector  detect.Detector
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine
type Options struct {
	OutputDir string
	Detector  detect.Detector // defaults to the heuristic detector with built-in tables
	Workers   int             // BuildAll pool size, defaults to runtime.NumCPU()
	Logger    *slog.Logger
	Now       func() time.Time
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, fmt.Errorf("ocrx: output directory required: %w", internalerr.ErrInvalidConfig)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		outputDir: opts.OutputDir,
		detector:  opts.Detector,
		workers:   opts.Workers,
		logger:    logger.With("component", "engine"),
		now:       opts.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	if e.detector == nil {
		e.detector = detect.NewHeuristic(detect.DefaultTables(), detect.WithLogger(logger))
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e, nil
}

// DocType selects how a work is laid out.
type DocType string

const (
	// Annals are split into one page per year heading.
	Annals DocType = "annals"
	// Other puts the whole text on the overview page.
	Other DocType = "other"
)

// ParseDocType accepts "annals" and "other"; empty means Annals.
func ParseDocType(s string) (DocType, error) {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Annals:
		return Annals, nil
	case Other:
		return Other, nil
	}
	return "", fmt.Errorf("ocrx: unknown document type %q: %w", s, internalerr.ErrInvalidInput)
}

// WorkRequest is the text of one work.
type WorkRequest struct {
	Name string
	Text string
	Type DocType
}

// Summary describes a built work.
type Summary struct {
	RunID    string                  `json:"run_id"`
	Name     string                  `json:"name"`
	WorkDir  string                  `json:"work_dir"`
	Pages    []string                `json:"pages"`
	Mentions map[detect.Category]int `json:"mentions"`
}

// Build writes the work tree for req. A previous tree of the same name is
// removed first. Blocks are processed in order and ctx is checked between
// them; an error aborts the work and leaves earlier blocks on disk.
func (e *Engine) Build(ctx context.Context, req WorkRequest) (*Summary, error) {
	docType := req.Type
	if docType == "" {
		docType = Annals
	}
	if docType != Annals && docType != Other {
		return nil, fmt.Errorf("ocrx: unknown document type %q: %w", req.Type, internalerr.ErrInvalidInput)
	}
	text := strings.TrimSpace(req.Text)
	now := e.now()
	name := WorkName(req.Name, now)
	if text == "" {
		return nil, fmt.Errorf("ocrx: work %s: %w", name, internalerr.ErrNoText)
	}

	workDir := filepath.Join(e.outputDir, name)
	store, err := register.Open(workDir, register.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := os.RemoveAll(workDir); err != nil {
		return nil, fmt.Errorf("ocrx: reset %s: %w", workDir, err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("ocrx: create %s: %w", workDir, err)
	}

	started := time.Now()
	sum := &Summary{
		RunID:    e.runID(now),
		Name:     name,
		WorkDir:  workDir,
		Mentions: make(map[detect.Category]int),
	}
	w := &work{engine: e, store: store, dir: workDir, summary: sum}
	header := overviewHeader(name, now, sum.RunID)

	blocks := layout(docType, text)
	if blocks[0].page == OverviewPage {
		if err := w.process(ctx, blocks[0], header+"\n"); err != nil {
			return nil, err
		}
	} else {
		if err := w.writePage(OverviewPage, header+yearList(blocks)); err != nil {
			return nil, fmt.Errorf("ocrx: work %s: overview: %w", name, err)
		}
		for _, b := range blocks {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("ocrx: work %s: before %s: %w", name, b.label, err)
			}
			if err := w.process(ctx, b, "# "+b.label+"\n\n"); err != nil {
				return nil, err
			}
		}
	}

	e.logger.Info("work built",
		"work", name,
		"run_id", sum.RunID,
		"type", string(docType),
		"pages", len(sum.Pages),
		"elapsed", time.Since(started).Round(time.Millisecond))
	return sum, nil
}

func (e *Engine) runID(t time.Time) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), e.entropy).String()
}

// work carries the state of one Build call.
type work struct {
	engine  *Engine
	store   *register.Store
	dir     string
	summary *Summary
}

// process detects, annotates and persists one block. The page is written
// before the register so that bullets never point at a missing page.
func (w *work) process(ctx context.Context, b block, prefix string) error {
	det := w.engine.detector.Detect(ctx, b.text)
	out := annotate.Annotate(b.text, b.base, det)

	if err := w.writePage(b.page, prefix+out.Text+"\n"); err != nil {
		return fmt.Errorf("ocrx: work %s: block %s: %w", w.summary.Name, b.label, err)
	}
	mention := register.Mention{Label: b.label, PageName: b.page, PageLink: "../../" + b.page}
	if err := w.store.RecordMentions(out.Used, mention); err != nil {
		return fmt.Errorf("ocrx: work %s: block %s: %w", w.summary.Name, b.label, err)
	}

	for _, c := range out.Used.Present() {
		w.summary.Mentions[c] += out.Used.Len(c)
	}
	w.engine.logger.Debug("block done",
		"work", w.summary.Name,
		"block", b.label,
		"detected", det.Total(),
		"linked", out.Used.Total())
	return nil
}

func (w *work) writePage(page, content string) error {
	p := filepath.Join(w.dir, filepath.FromSlash(page))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return err
	}
	for _, existing := range w.summary.Pages {
		if existing == page {
			return nil
		}
	}
	w.summary.Pages = append(w.summary.Pages, page)
	return nil
}
