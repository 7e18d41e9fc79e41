package detect

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestResultKeepsFirstDetectionOrder(t *testing.T) {
	res := NewResult()
	res.Add(Word, "Zoll", "a")
	res.Add(Word, "Abt", "b")
	res.Add(Word, "Zoll", "c")

	checkSurfaces(t, res, Word, []string{"Zoll", "Abt"})
	checkSnippets(t, res, Word, "Zoll", []string{"a", "c"})
	if n := res.Total(); n != 2 {
		t.Errorf("Total() = %d, want 2", n)
	}
	if got := res.Present(); !reflect.DeepEqual(got, []Category{Word}) {
		t.Errorf("Present() = %v, want [word]", got)
	}
}

func TestResultPutCopies(t *testing.T) {
	res := NewResult()
	rec := Record{Category: Place, Surface: "Rom", Snippets: []string{"x"}}
	res.Put(rec)
	rec.Snippets[0] = "changed"

	checkSnippets(t, res, Place, "Rom", []string{"x"})
}

func TestResultIgnoresEmptySurface(t *testing.T) {
	res := NewResult()
	res.Add(Person, "", "x")
	if !res.Empty() {
		t.Errorf("Expected empty result, got %d entities", res.Total())
	}
}

func TestResultMarshalJSON(t *testing.T) {
	res := NewResult()
	res.Add(Keyword, "Bier", "Das Bier")
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string][]Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded) != 4 {
		t.Errorf("Expected 4 categories, got %d: %s", len(decoded), data)
	}
	if persons, ok := decoded["person"]; !ok || len(persons) != 0 {
		t.Errorf("Expected an empty person list, got %v (present=%v)", persons, ok)
	}
	if kw := decoded["keyword"]; len(kw) != 1 || kw[0].Surface != "Bier" {
		t.Errorf("Expected keyword Bier, got %v", kw)
	}
}

func TestCategoryNames(t *testing.T) {
	if got := Keyword.Dir(); got != "schlagworte" {
		t.Errorf("Keyword.Dir() = %q, want schlagworte", got)
	}
	if got := Person.String(); got != "person" {
		t.Errorf("Person.String() = %q, want person", got)
	}

	tests := []struct {
		input string
		want  Category
	}{
		{"orte", Place},
		{"Word", Word},
	}
	for _, tt := range tests {
		c, err := ParseCategory(tt.input)
		if err != nil {
			t.Errorf("ParseCategory(%q) failed: %v", tt.input, err)
			continue
		}
		if c != tt.want {
			t.Errorf("ParseCategory(%q) = %v, want %v", tt.input, c, tt.want)
		}
	}
	if _, err := ParseCategory("things"); err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestIsBoundary(t *testing.T) {
	text := "Ölmühle Otto"
	tests := []struct {
		pos  int
		want bool
	}{
		{0, true},
		{len("Öl"), false},
		{len("Ölmühle"), true},
		{len(text), true},
	}
	for _, tt := range tests {
		if got := IsBoundary(text, tt.pos); got != tt.want {
			t.Errorf("IsBoundary(%q, %d) = %v, want %v", text, tt.pos, got, tt.want)
		}
	}
}
