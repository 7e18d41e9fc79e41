// Package annotate rewrites a text block so that every detected entity
// mention links to its register page.
package annotate

import (
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/slug"
)

// Outcome is the rewritten text together with the entities that were linked.
type Outcome struct {
	Text string
	Used *detect.Result
}

// Target returns the register page of an entity relative to base.
func Target(base string, c detect.Category, surface string) string {
	return path.Join(base, c.Dir(), slug.Make(surface)+".md")
}

// Annotate links every word-bounded occurrence of the entities in det.
//
// Keywords claim spans first and match case-insensitively; persons, places
// and words follow and match exactly. Inside a category longer surface
// forms go first. A claimed span is never matched again, so links do not
// nest or overlap. Entities that end up without a link are left out of
// Outcome.Used.
func Annotate(text, base string, det *detect.Result) Outcome {
	used := detect.NewResult()
	if text == "" || det == nil || det.Empty() {
		return Outcome{Text: text, Used: used}
	}

	var claimed spans
	for _, c := range detect.AnnotationOrder {
		recs := sortedRecords(det.Records(c))
		for _, rec := range recs {
			var found [][2]int
			if c == detect.Keyword {
				found = foldedOccurrences(text, rec.Surface, det)
			} else {
				found = exactOccurrences(text, rec.Surface)
			}
			linked := false
			target := Target(base, c, rec.Surface)
			for _, loc := range found {
				if claimed.overlaps(loc[0], loc[1]) {
					continue
				}
				claimed.insert(span{start: loc[0], end: loc[1], target: target})
				linked = true
			}
			if linked {
				used.Put(rec)
			}
		}
	}
	return Outcome{Text: claimed.render(text), Used: used}
}

// sortedRecords orders by descending rune length, then alphabetically.
func sortedRecords(recs []detect.Record) []detect.Record {
	sort.SliceStable(recs, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(recs[i].Surface), utf8.RuneCountInString(recs[j].Surface)
		if li != lj {
			return li > lj
		}
		fi, fj := strings.ToLower(recs[i].Surface), strings.ToLower(recs[j].Surface)
		if fi != fj {
			return fi < fj
		}
		return recs[i].Surface < recs[j].Surface
	})
	return recs
}

func exactOccurrences(text, surface string) [][2]int {
	if surface == "" {
		return nil
	}
	var out [][2]int
	for pos := 0; pos < len(text); {
		i := strings.Index(text[pos:], surface)
		if i < 0 {
			break
		}
		start := pos + i
		end := start + len(surface)
		if detect.IsBounded(text, start, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

// foldedOccurrences matches surface case-insensitively. An occurrence whose
// exact casing is another detected keyword is left for that keyword.
func foldedOccurrences(text, surface string, det *detect.Result) [][2]int {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(surface))
	if err != nil {
		return nil
	}
	var out [][2]int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if !detect.IsBounded(text, loc[0], loc[1]) {
			continue
		}
		if literal := text[loc[0]:loc[1]]; literal != surface && det.Has(detect.Keyword, literal) {
			continue
		}
		out = append(out, [2]int{loc[0], loc[1]})
	}
	return out
}
