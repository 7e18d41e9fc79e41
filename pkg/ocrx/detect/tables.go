package detect

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSnippetWindow bounds a snippet when no sentence end follows a match.
const DefaultSnippetWindow = 180

// Tables holds the language data the detector works from. Tables are
// treated as immutable once handed to a detector.
type Tables struct {
	Stopwords     []string
	Titles        []string
	Prepositions  []string
	PlaceHints    []string
	Keywords      []string // case-insensitive regular expression fragments
	SnippetWindow int
}

// DefaultTables returns the built-in German tables.
func DefaultTables() Tables {
	return Tables{
		Stopwords: []string{
			"und", "oder", "der", "die", "das", "des", "den", "dem", "ein", "eine", "eines", "einem", "einen",
			"zu", "in", "im", "am", "an", "auf", "aus", "bei", "nach", "von", "vor", "über", "unter", "mit",
			"ohne", "für", "als", "ist", "war", "sind", "waren", "wird", "werden", "hat", "haben", "auch",
			"nicht", "so", "dass", "daß", "wie", "wenn", "dann", "weil", "doch", "nur", "schon", "noch",
			"beim", "zum", "zur", "vom", "ins", "um", "etc",
		},
		Titles:       []string{"Kaiser", "König", "Herzog", "Markgraf", "Graf", "Bischof", "Abt", "Papst", "Landgraf", "Prinz", "Fürst"},
		Prepositions: []string{"zu", "in", "bei", "nach", "aus", "von"},
		PlaceHints:   []string{"Stadt", "Dorf", "Kloster", "Bistum", "Burg", "Mark", "Gau", "Grafschaft"},
		Keywords: []string{
			`Bier`, `Brauerei(?:en)?`, `Stadtrat`, `Domkapitel`, `Pfarrer`, `Gericht(?:e|s)?`,
			`Schöffen(?:stuhl)?`, `Zoll`, `Markt`, `Wein`, `Mühle`, `Hospital`, `Abgabe(?:n)?`,
		},
		SnippetWindow: DefaultSnippetWindow,
	}
}

// CompileKeyword compiles one keyword fragment the way the detector uses it.
func CompileKeyword(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)(?:` + pattern + `)`)
}

const (
	upper     = `[A-ZÄÖÜ]`
	lowerRun  = `[a-zäöüß]+`
	placeName = `([A-ZÄÖÜ][A-Za-zÄÖÜäöüß\-]+)`
)

// compiled is the matcher form of Tables.
type compiled struct {
	stop     map[string]struct{}
	person   *regexp.Regexp
	place    *regexp.Regexp
	hints    []*regexp.Regexp // one per place hint, in table order
	word     *regexp.Regexp
	keywords []*regexp.Regexp
	skipped  []string // keyword fragments that failed to compile
	window   int
}

func compile(t Tables) *compiled {
	c := &compiled{
		stop:   make(map[string]struct{}, len(t.Stopwords)),
		word:   regexp.MustCompile(upper + `[a-zäöüß]{3,}`),
		window: t.SnippetWindow,
	}
	if c.window <= 0 {
		c.window = DefaultSnippetWindow
	}
	for _, w := range t.Stopwords {
		c.stop[strings.ToLower(w)] = struct{}{}
	}
	if alt := alternation(t.Titles); alt != "" {
		c.person = regexp.MustCompile(`(?:` + alt + `)\s+` + upper + lowerRun + `(?:\s+von\s+` + upper + lowerRun + `)?`)
	}
	if alt := alternation(t.Prepositions); alt != "" {
		c.place = regexp.MustCompile(`(?:` + alt + `)\s+` + placeName)
	}
	for _, h := range t.PlaceHints {
		if h = strings.TrimSpace(h); h != "" {
			c.hints = append(c.hints, regexp.MustCompile(regexp.QuoteMeta(h)+`\s+`+placeName))
		}
	}
	for _, p := range t.Keywords {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := CompileKeyword(p)
		if err != nil {
			c.skipped = append(c.skipped, p)
			continue
		}
		c.keywords = append(c.keywords, re)
	}
	return c
}

func (c *compiled) isStop(token string) bool {
	_, ok := c.stop[strings.ToLower(token)]
	return ok
}

// alternation quotes words and orders them longest first so that
// leftmost-first matching prefers the longer literal.
func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, w)
		}
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		if len(quoted[i]) != len(quoted[j]) {
			return len(quoted[i]) > len(quoted[j])
		}
		return quoted[i] < quoted[j]
	})
	for i, w := range quoted {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}
