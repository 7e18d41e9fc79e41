// Package segment splits annal-style text into dated blocks.
package segment

import (
	"regexp"
	"strings"
)

// headingPattern matches a line holding only a 3-4 digit year, optionally
// followed by '.' or ':'.
var headingPattern = regexp.MustCompile(`(?m)^\s*(\d{3,4})\s*[.:]?\s*$`)

// Year is the body of text attributed to one year heading.
type Year struct {
	Year string `json:"year"`
	Body string `json:"body"`
}

// Split returns one Year per heading in order of appearance. Text before the
// first heading is discarded and headings with an empty body are dropped.
// A text without headings yields nil.
func Split(fullText string) []Year {
	matches := headingPattern.FindAllStringSubmatchIndex(fullText, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []Year
	for i, m := range matches {
		end := len(fullText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(fullText[m[1]:end])
		if body == "" {
			continue
		}
		out = append(out, Year{Year: fullText[m[2]:m[3]], Body: body})
	}
	return out
}

// MergeByYear folds segments with the same label into the first one,
// joining bodies with a blank line.
func MergeByYear(years []Year) []Year {
	if len(years) == 0 {
		return nil
	}
	pos := make(map[string]int, len(years))
	out := make([]Year, 0, len(years))
	for _, y := range years {
		if i, ok := pos[y.Year]; ok {
			out[i].Body += "\n\n" + y.Body
			continue
		}
		pos[y.Year] = len(out)
		out = append(out, y)
	}
	return out
}

// Labels lists the year labels in order.
func Labels(years []Year) []string {
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = y.Year
	}
	return labels
}
