// Package config loads the language tables and run settings from YAML and
// turns them into ready components.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
)

// TablesFile is the YAML form of detect.Tables. Absent keys keep the
// built-in defaults; an empty list clears them.
type TablesFile struct {
	Stopwords     *[]string `yaml:"stopwords"`
	Titles        *[]string `yaml:"titles"`
	Prepositions  *[]string `yaml:"prepositions"`
	PlaceHints    *[]string `yaml:"place_hints"`
	Keywords      *[]string `yaml:"keywords"`
	SnippetWindow int       `yaml:"snippet_window"`
}

// LoadTables reads a tables file over detect.DefaultTables.
func LoadTables(path string) (detect.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return detect.Tables{}, err
	}
	return ParseTables(data)
}

// ParseTables decodes YAML tables. Every keyword must compile.
func ParseTables(data []byte) (detect.Tables, error) {
	var f TablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return detect.Tables{}, fmt.Errorf("config: tables: %w: %w", internalerr.ErrInvalidConfig, err)
	}

	t := detect.DefaultTables()
	override(&t.Stopwords, f.Stopwords)
	override(&t.Titles, f.Titles)
	override(&t.Prepositions, f.Prepositions)
	override(&t.PlaceHints, f.PlaceHints)
	override(&t.Keywords, f.Keywords)
	if f.SnippetWindow < 0 {
		return detect.Tables{}, fmt.Errorf("config: tables: negative snippet_window: %w", internalerr.ErrInvalidConfig)
	}
	if f.SnippetWindow > 0 {
		t.SnippetWindow = f.SnippetWindow
	}

	for _, kw := range t.Keywords {
		if _, err := detect.CompileKeyword(kw); err != nil {
			return detect.Tables{}, fmt.Errorf("config: keyword %q: %w: %w", kw, internalerr.ErrInvalidConfig, err)
		}
	}
	return t, nil
}

func override(dst *[]string, src *[]string) {
	if src != nil {
		*dst = append([]string(nil), (*src)...)
	}
}

// Backends for named entity recognition.
const (
	BackendNone = "none"
	BackendHTTP = "http"
	BackendLLM  = "llm"
)

// Settings controls a run.
type Settings struct {
	OutputDir string `yaml:"output_dir" validate:"required"`
	DocType   string `yaml:"doc_type" validate:"oneof=annals other"`
	NER       NER    `yaml:"ner"`
	Workers   int    `yaml:"workers" validate:"gte=0,lte=64"`
}

// NER selects the statistical backend.
type NER struct {
	Backend string        `yaml:"backend" validate:"oneof=none http llm"`
	URL     string        `yaml:"url" validate:"required_if=Backend http"`
	Model   string        `yaml:"model" validate:"required_if=Backend llm"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// DefaultSettings returns settings for a heuristic run into ./output.
func DefaultSettings() Settings {
	return Settings{
		OutputDir: "output",
		DocType:   "annals",
		NER: NER{
			Backend: BackendNone,
			Timeout: 30 * time.Second,
		},
	}
}

// LoadSettings reads path over the defaults, applies OCRX_* environment
// overrides and validates. An empty path skips the file.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("config: settings: %w: %w", internalerr.ErrInvalidConfig, err)
		}
	}
	if err := s.ApplyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyEnv overrides fields from environment variables.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"OCRX_OUTPUT_DIR":  &s.OutputDir,
		"OCRX_DOC_TYPE":    &s.DocType,
		"OCRX_NER_BACKEND": &s.NER.Backend,
		"OCRX_NER_URL":     &s.NER.URL,
		"OCRX_NER_MODEL":   &s.NER.Model,
		"OCRX_NER_TOKEN":   &s.NER.Token,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("OCRX_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: OCRX_WORKERS: %w: %w", internalerr.ErrInvalidConfig, err)
		}
		s.Workers = n
	}
	return nil
}

var validate = validator.New()

// Validate checks the settings.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q: %w", fe.Namespace(), fe.Tag(), internalerr.ErrInvalidConfig)
		}
		return fmt.Errorf("config: %w: %w", internalerr.ErrInvalidConfig, err)
	}
	return nil
}
