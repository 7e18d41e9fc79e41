package register

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// BrokenLink is a relative Markdown link whose target file is missing.
type BrokenLink struct {
	Page   string `json:"page"`
	Target string `json:"target"`
}

// Report lists the inconsistencies found in a work tree. Paths are
// slash-separated and relative to the work root.
type Report struct {
	Pages   int          `json:"pages"`
	Links   int          `json:"links"`
	Broken  []BrokenLink `json:"broken"`
	Orphans []string     `json:"orphans"`
}

// OK reports whether the tree has neither broken links nor orphans.
func (r *Report) OK() bool {
	return len(r.Broken) == 0 && len(r.Orphans) == 0
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Verify parses every Markdown page below workRoot and checks its local
// links. An entity page that its category index does not link to is an
// orphan; this is what an interrupted RecordMentions leaves behind.
func Verify(workRoot string) (*Report, error) {
	info, err := os.Stat(workRoot)
	if err != nil {
		return nil, fmt.Errorf("register: verify %s: %w", workRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("register: verify %s: not a directory", workRoot)
	}

	report := &Report{Broken: []BrokenLink{}, Orphans: []string{}}
	indexed := make(map[string]map[string]bool) // category dir -> linked entity files
	var entities []string

	err = filepath.WalkDir(workRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(workRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		report.Pages++

		dir := path.Dir(rel)
		isIndex := path.Dir(dir) == Dir && path.Base(rel) == IndexFile
		if path.Dir(dir) == Dir && !isIndex {
			entities = append(entities, rel)
		}

		for _, dest := range localLinks(src) {
			report.Links++
			target := path.Clean(path.Join(dir, dest))
			if isIndex {
				if indexed[dir] == nil {
					indexed[dir] = make(map[string]bool)
				}
				indexed[dir][target] = true
			}
			if _, err := os.Stat(filepath.Join(workRoot, filepath.FromSlash(target))); err != nil {
				report.Broken = append(report.Broken, BrokenLink{Page: rel, Target: dest})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register: verify %s: %w", workRoot, err)
	}

	for _, e := range entities {
		if !indexed[path.Dir(e)][e] {
			report.Orphans = append(report.Orphans, e)
		}
	}
	sort.Strings(report.Orphans)
	return report, nil
}

// localLinks returns the destinations of relative .md links in src,
// without fragments.
func localLinks(src []byte) []string {
	doc := markdown.Parser().Parse(text.NewReader(src))
	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if i := strings.IndexByte(dest, '#'); i >= 0 {
			dest = dest[:i]
		}
		if dest == "" || strings.Contains(dest, ":") || strings.HasPrefix(dest, "/") {
			return ast.WalkContinue, nil
		}
		if strings.HasSuffix(dest, ".md") {
			out = append(out, dest)
		}
		return ast.WalkContinue, nil
	})
	return out
}
