// Package register maintains the per-category indexes and per-entity pages
// of one work.
//
// Layout below the work root:
//
//	register/<dir>/README.md   category index, one link line per entity
//	register/<dir>/<slug>.md   entity page, one bullet per mention
//
// Every append is guarded by an exact line check, so recording the same
// mentions again leaves the files byte-identical. Index and entity pages
// are not updated atomically as a pair; Verify reports what a crash
// in between leaves behind.
package register

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/slug"
)

const (
	// Dir is the register directory below a work root.
	Dir = "register"
	// IndexFile is the category index file name.
	IndexFile = "README.md"
	// DefaultExcerptLen is the rune limit of a snippet in a bullet.
	DefaultExcerptLen = 140
	ellipsis          = "..."
)

// Mention describes the page an entity was seen on.
type Mention struct {
	Label    string // e.g. the year, or "Haupttext"
	PageName string // link text, the page path below the work root
	PageLink string // link target, relative to an entity page
}

// Store owns the register of one work directory. At most one Store per
// directory exists in a process; its methods are serialized.
type Store struct {
	root       string
	mu         sync.Mutex
	logger     *slog.Logger
	excerptLen int
	permFile   os.FileMode
	permDir    os.FileMode
	title      cases.Caser
	closed     bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExcerptLen sets the rune limit for snippets in bullets.
func WithExcerptLen(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.excerptLen = n
		}
	}
}

var held = struct {
	sync.Mutex
	roots map[string]struct{}
}{roots: make(map[string]struct{})}

// Open claims workRoot for this process. It fails with
// internalerr.ErrWorkBusy while another Store holds the same directory.
func Open(workRoot string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(workRoot) == "" {
		return nil, fmt.Errorf("register: empty work root: %w", internalerr.ErrInvalidInput)
	}
	abs, err := filepath.Abs(workRoot)
	if err != nil {
		return nil, fmt.Errorf("register: resolve %s: %w", workRoot, err)
	}

	held.Lock()
	defer held.Unlock()
	if _, busy := held.roots[abs]; busy {
		return nil, fmt.Errorf("register: %s: %w", abs, internalerr.ErrWorkBusy)
	}

	s := &Store{
		root:       abs,
		logger:     slog.Default(),
		excerptLen: DefaultExcerptLen,
		permFile:   0o644,
		permDir:    0o755,
		title:      cases.Title(language.German),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "register", "work", abs)
	held.roots[abs] = struct{}{}
	return s, nil
}

// Root returns the absolute work root.
func (s *Store) Root() string { return s.root }

// Close releases the claim on the work directory.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	held.Lock()
	delete(held.roots, s.root)
	held.Unlock()
	return nil
}

var errClosed = errors.New("register: store closed")

// RecordMentions adds a bullet for m to the page of every entity in used
// and lists each entity in its category index. File system errors are
// returned as they occur; earlier writes of the same call stay in place.
func (s *Store) RecordMentions(used *detect.Result, m Mention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if used == nil {
		return nil
	}

	for _, c := range used.Present() {
		if err := s.recordCategory(c, used.Records(c), m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) recordCategory(c detect.Category, recs []detect.Record, m Mention) error {
	dir := filepath.Join(s.root, Dir, c.Dir())
	if err := os.MkdirAll(dir, s.permDir); err != nil {
		return fmt.Errorf("register: create %s: %w", dir, err)
	}

	indexPath := filepath.Join(dir, IndexFile)
	index, created, err := s.readOrSeed(indexPath, s.indexHeader(c))
	if err != nil {
		return err
	}
	indexChanged := created

	var bullets, links int
	for _, rec := range recs {
		name := slug.Make(rec.Surface)
		display := flatten(rec.Surface)
		entryPath := filepath.Join(dir, name+".md")
		entry, seeded, err := s.readOrSeed(entryPath, entryHeader(display, m.Label))
		if err != nil {
			return err
		}
		next, appended := appendLine(entry, s.bullet(rec, m))
		if appended || seeded {
			if err := s.writeFile(entryPath, next); err != nil {
				return err
			}
		}
		if appended {
			bullets++
		}

		if next, appended := appendLine(index, fmt.Sprintf("- [%s](./%s.md)", display, name)); appended {
			index = next
			indexChanged = true
			links++
		}
	}

	if indexChanged {
		if err := s.writeFile(indexPath, index); err != nil {
			return err
		}
	}
	s.logger.Debug("recorded mentions", "category", c.String(), "label", m.Label, "bullets", bullets, "index_lines", links)
	return nil
}

func (s *Store) indexHeader(c detect.Category) string {
	return "# " + s.title.String(c.Dir()) + "-Register\n\n"
}

func entryHeader(surface, label string) string {
	return "# " + surface + "\n\n**Ersterwähnung:** " + label + "\n\n## Vorkommen\n"
}

func (s *Store) bullet(rec detect.Record, m Mention) string {
	line := fmt.Sprintf("- %s: [%s](%s)", m.Label, m.PageName, m.PageLink)
	if snippet, ok := rec.FirstSnippet(); ok {
		if ex := Excerpt(snippet, s.excerptLen); ex != "" {
			line += " – " + ex
		}
	}
	return line
}

// Excerpt flattens whitespace and cuts s to limit runes, marking the cut
// with an ellipsis.
func Excerpt(s string, limit int) string {
	s = flatten(s)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if limit == 0 {
			cut = i
			break
		}
		limit--
	}
	return strings.TrimSpace(s[:cut]) + ellipsis
}

// flatten collapses every whitespace run, line breaks included, into one space.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// appendLine adds line unless content already holds it as a whole line.
func appendLine(content, line string) (string, bool) {
	for _, l := range strings.Split(content, "\n") {
		if l == line {
			return content, false
		}
	}
	return strings.TrimRight(content, " \t\r\n") + "\n" + line + "\n", true
}

// readOrSeed returns the file content, or seed when the file does not exist yet.
func (s *Store) readOrSeed(path, seed string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return string(data), false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("register: read %s: %w", path, err)
	}
	return seed, true, nil
}
