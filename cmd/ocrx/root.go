package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/config"
)

// app holds the global flags and the lazily loaded components.
type app struct {
	configPath string
	tablesPath string
	logLevel   string

	logger *slog.Logger
	comp   *config.Components
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ocrx",
		Short:         "Build linked registers from OCR text",
		Long:          "ocrx detects people, places, words and keywords in OCR text, links every mention to a register page and writes one Markdown tree per work.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogging(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to settings YAML (OCRX_* env vars override it)")
	root.PersistentFlags().StringVar(&a.tablesPath, "tables", "", "Path to language tables YAML (defaults to built-in German tables)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(
		newBuildCmd(a),
		newBatchCmd(a),
		newSegmentCmd(a),
		newDetectCmd(a),
		newVerifyCmd(a),
	)
	return root
}

func (a *app) setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", a.logLevel)
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
	return nil
}

// components loads configuration once per process.
func (a *app) components(cmd *cobra.Command) (*config.Components, error) {
	if a.comp != nil {
		return a.comp, nil
	}
	loader := &config.Loader{
		TablesPath:   a.tablesPath,
		SettingsPath: a.configPath,
		Logger:       a.logger,
	}
	comp, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	a.comp = comp
	return comp, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stem returns the file name without directory and extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
