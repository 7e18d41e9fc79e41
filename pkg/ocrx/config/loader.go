package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp/httpnlp"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/nlp/llmnlp"
)

const probeTimeout = 5 * time.Second

// Loader loads all configuration files and constructs components
type Loader struct {
	TablesPath   string
	SettingsPath string
	Logger       *slog.Logger

	// Analyzer replaces the backend named in the settings. Tests use it.
	Analyzer nlp.Analyzer
}

// Components holds all loaded configuration components
type Components struct {
	Tables   detect.Tables
	Settings Settings
	Detector detect.Detector
	Backend  string // backend actually in use
}

// Load reads all configuration files and selects the detection backend.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config")

	comp := &Components{Tables: detect.DefaultTables()}
	if l.TablesPath != "" {
		t, err := LoadTables(l.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("load tables: %w", err)
		}
		comp.Tables = t
	}

	settings, err := LoadSettings(l.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	comp.Settings = settings

	analyzer, backend, err := l.analyzer(settings.NER)
	if err != nil {
		return nil, err
	}
	if p, ok := analyzer.(nlp.Pinger); ok {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			logger.Warn("nlp backend unavailable, using heuristics", "backend", backend, "err", err)
			analyzer, backend = nil, BackendNone
		}
	}

	opts := []detect.Option{detect.WithLogger(logger)}
	if analyzer == nil {
		comp.Detector = detect.NewHeuristic(comp.Tables, opts...)
	} else {
		comp.Detector = detect.NewStatistical(analyzer, comp.Tables, opts...)
	}
	comp.Backend = backend
	logger.Info("detector ready", "backend", backend)
	return comp, nil
}

func (l *Loader) analyzer(ner NER) (nlp.Analyzer, string, error) {
	if l.Analyzer != nil {
		return l.Analyzer, "custom", nil
	}
	switch ner.Backend {
	case BackendHTTP:
		return &httpnlp.Client{BaseURL: ner.URL, Token: ner.Token, Timeout: ner.Timeout}, BackendHTTP, nil
	case BackendLLM:
		a, err := llmnlp.NewOpenAI(ner.URL, ner.Token, ner.Model, llmnlp.WithLogger(l.Logger))
		if err != nil {
			return nil, "", fmt.Errorf("llm backend: %w", err)
		}
		return a, BackendLLM, nil
	default:
		return nil, BackendNone, nil
	}
}
