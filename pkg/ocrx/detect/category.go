package detect

import (
	"fmt"
	"strings"
)

// Category is the register an entity belongs to.
type Category int

const (
	Person Category = iota
	Place
	Word
	Keyword
)

// Categories lists every category in register order.
var Categories = []Category{Person, Place, Word, Keyword}

// AnnotationOrder is the order in which categories claim spans of text.
// Keywords go first so domain terms win over generic nouns.
var AnnotationOrder = []Category{Keyword, Person, Place, Word}

var categoryNames = [...]string{"person", "place", "word", "keyword"}

// dirNames are the register directory names of the on-disk layout.
var dirNames = [...]string{"personen", "orte", "worte", "schlagworte"}

func (c Category) valid() bool { return c >= Person && c <= Keyword }

func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Dir returns the register directory name used in links and on disk.
func (c Category) Dir() string {
	if !c.valid() {
		return ""
	}
	return dirNames[c]
}

// ParseCategory accepts both the English name and the register directory name.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if s == categoryNames[c] || s == dirNames[c] {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText makes Category usable as a JSON map key.
func (c Category) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
