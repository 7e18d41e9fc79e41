package detect

import "encoding/json"

// Record is one detected entity with its supporting context snippets.
type Record struct {
	Category Category `json:"-"`
	Surface  string   `json:"surface"`
	Snippets []string `json:"snippets,omitempty"`
}

// FirstSnippet returns the snippet that gets persisted, if any.
func (r Record) FirstSnippet() (string, bool) {
	if len(r.Snippets) == 0 {
		return "", false
	}
	return r.Snippets[0], true
}

// group keeps records of one category in first-detection order.
type group struct {
	order []string
	byKey map[string]*Record
}

// Result maps category to surface form to record for one text block.
// Iteration follows first-detection order.
type Result struct {
	groups map[Category]*group
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{groups: make(map[Category]*group)}
}

func (r *Result) group(c Category, create bool) *group {
	g, ok := r.groups[c]
	if !ok && create {
		g = &group{byKey: make(map[string]*Record)}
		r.groups[c] = g
	}
	return g
}

// Add records an occurrence of surface in category c. An empty snippet
// creates the record without context.
func (r *Result) Add(c Category, surface, snippet string) {
	if surface == "" || !c.valid() {
		return
	}
	g := r.group(c, true)
	rec, ok := g.byKey[surface]
	if !ok {
		rec = &Record{Category: c, Surface: surface}
		g.byKey[surface] = rec
		g.order = append(g.order, surface)
	}
	if snippet != "" {
		rec.Snippets = append(rec.Snippets, snippet)
	}
}

// Put stores a copy of rec unless its surface form is already present.
func (r *Result) Put(rec Record) {
	if rec.Surface == "" || !rec.Category.valid() {
		return
	}
	g := r.group(rec.Category, true)
	if _, ok := g.byKey[rec.Surface]; ok {
		return
	}
	cp := rec
	cp.Snippets = append([]string(nil), rec.Snippets...)
	g.byKey[rec.Surface] = &cp
	g.order = append(g.order, rec.Surface)
}

// Has reports whether surface is known in category c.
func (r *Result) Has(c Category, surface string) bool {
	g := r.group(c, false)
	if g == nil {
		return false
	}
	_, ok := g.byKey[surface]
	return ok
}

// Get returns the record for surface in category c.
func (r *Result) Get(c Category, surface string) (Record, bool) {
	g := r.group(c, false)
	if g == nil {
		return Record{}, false
	}
	rec, ok := g.byKey[surface]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Records returns the records of category c in first-detection order.
func (r *Result) Records(c Category) []Record {
	g := r.group(c, false)
	if g == nil {
		return nil
	}
	out := make([]Record, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.byKey[key])
	}
	return out
}

// Surfaces returns the surface forms of category c in first-detection order.
func (r *Result) Surfaces(c Category) []string {
	g := r.group(c, false)
	if g == nil {
		return nil
	}
	return append([]string(nil), g.order...)
}

// Len returns the number of entities in category c.
func (r *Result) Len(c Category) int {
	g := r.group(c, false)
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Total returns the number of entities over all categories.
func (r *Result) Total() int {
	n := 0
	for _, g := range r.groups {
		n += len(g.order)
	}
	return n
}

// Empty reports whether no category holds an entity.
func (r *Result) Empty() bool { return r.Total() == 0 }

// Present lists the categories holding at least one entity, in register order.
func (r *Result) Present() []Category {
	var out []Category
	for _, c := range Categories {
		if r.Len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// MarshalJSON renders every category, empty ones as empty lists.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := make(map[Category][]Record, len(Categories))
	for _, c := range Categories {
		recs := r.Records(c)
		if recs == nil {
			recs = []Record{}
		}
		out[c] = recs
	}
	return json.Marshal(out)
}
