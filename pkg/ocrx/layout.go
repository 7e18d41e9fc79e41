package ocrx

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/register"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/segment"
)

const (
	// OverviewPage is the top-level page of a work.
	OverviewPage = "README.md"
	// YearsDir holds one directory per year of annals.
	YearsDir = "jahre"
	// MainLabel labels mentions on the overview page.
	MainLabel = "Haupttext"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_\- ]+`)

// WorkName turns a user supplied title into a directory name. Names that
// end up empty get a timestamp name.
func WorkName(name string, now time.Time) string {
	s := strings.TrimSpace(unsafeName.ReplaceAllString(name, ""))
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "werk_" + now.Format("20060102_150405")
	}
	return s
}

// block is one unit of detection and annotation.
type block struct {
	label string // mention label
	page  string // page path below the work root
	base  string // register path relative to the page
	text  string
}

// layout splits text into blocks. Annals without year headings fall back
// to a single overview block.
func layout(t DocType, text string) []block {
	if t == Annals {
		years := segment.MergeByYear(segment.Split(text))
		if len(years) > 0 {
			blocks := make([]block, len(years))
			for i, y := range years {
				blocks[i] = block{
					label: y.Year,
					page:  path.Join(YearsDir, y.Year, OverviewPage),
					base:  "../../" + register.Dir,
					text:  y.Body,
				}
			}
			return blocks
		}
	}
	return []block{{label: MainLabel, page: OverviewPage, base: register.Dir, text: text}}
}

func overviewHeader(name string, now time.Time, runID string) string {
	return fmt.Sprintf("# %s\n\nErstellt am %s mit OCR-Extractor.\n\nLauf: `%s`\n",
		name, now.Format("2006-01-02 15:04"), runID)
}

func yearList(blocks []block) string {
	var b strings.Builder
	b.WriteString("\n## Jahre\n\n")
	for _, bl := range blocks {
		fmt.Fprintf(&b, "- [%s](%s)\n", bl.label, bl.page)
	}
	return b.String()
}
