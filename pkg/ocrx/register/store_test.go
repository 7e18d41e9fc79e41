package register

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/detect"
	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, root
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(parts...))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", filepath.Join(parts...), err)
	}
	return string(data)
}

func record(t *testing.T, s *Store, used *detect.Result, m Mention) {
	t.Helper()
	if err := s.RecordMentions(used, m); err != nil {
		t.Fatalf("RecordMentions failed: %v", err)
	}
}

func checkFile(t *testing.T, want string, parts ...string) {
	t.Helper()
	if got := readFile(t, parts...); got != want {
		t.Errorf("%s\n got: %q\nwant: %q", filepath.Join(parts...), got, want)
	}
}

func yearMention(y string) Mention {
	return Mention{Label: y, PageName: "jahre/" + y + "/README.md", PageLink: "../../jahre/" + y + "/README.md"}
}

func TestRecordMentionsLayout(t *testing.T) {
	s, root := openStore(t)
	used := detect.NewResult()
	used.Add(detect.Person, "Abt Otto", "Abt Otto kam.")
	used.Add(detect.Place, "Fulda", "")

	record(t, s, used, yearMention("1200"))

	checkFile(t, "# Personen-Register\n- [Abt Otto](./abt-otto.md)\n",
		root, Dir, "personen", IndexFile)
	checkFile(t, "# Abt Otto\n\n**Ersterwähnung:** 1200\n\n## Vorkommen\n- 1200: [jahre/1200/README.md](../../jahre/1200/README.md) – Abt Otto kam.\n",
		root, Dir, "personen", "abt-otto.md")
	checkFile(t, "# Fulda\n\n**Ersterwähnung:** 1200\n\n## Vorkommen\n- 1200: [jahre/1200/README.md](../../jahre/1200/README.md)\n",
		root, Dir, "orte", "fulda.md")

	if _, err := os.Stat(filepath.Join(root, Dir, "worte")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Absent categories should create no directory, stat err = %v", err)
	}
}

func TestRecordMentionsIdempotent(t *testing.T) {
	s, root := openStore(t)
	used := detect.NewResult()
	used.Add(detect.Person, "Abt Otto", "Abt Otto kam.")
	used.Add(detect.Word, "Kloster", "Das Kloster brannte.")
	m := yearMention("1200")

	record(t, s, used, m)
	first := snapshot(t, root)
	record(t, s, used, m)
	if second := snapshot(t, root); !reflect.DeepEqual(first, second) {
		t.Errorf("Second run changed the register\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestRecordMentionsWrappedSurface(t *testing.T) {
	s, root := openStore(t)
	wrapped := detect.NewResult()
	wrapped.Add(detect.Person, "Kaiser\nOtto", "Da kam Kaiser\nOtto nach Rom.")
	flat := detect.NewResult()
	flat.Add(detect.Person, "Kaiser Otto", "")

	record(t, s, wrapped, yearMention("1151"))
	first := snapshot(t, root)
	record(t, s, wrapped, yearMention("1151"))
	if second := snapshot(t, root); !reflect.DeepEqual(first, second) {
		t.Errorf("Second run changed the register\nfirst:  %q\nsecond: %q", first, second)
	}
	record(t, s, wrapped, yearMention("1212"))
	record(t, s, flat, yearMention("1212"))

	checkFile(t, "# Personen-Register\n- [Kaiser Otto](./kaiser-otto.md)\n",
		root, Dir, "personen", IndexFile)
	checkFile(t, "# Kaiser Otto\n\n**Ersterwähnung:** 1151\n\n## Vorkommen\n"+
		"- 1151: [jahre/1151/README.md](../../jahre/1151/README.md) – Da kam Kaiser Otto nach Rom.\n"+
		"- 1212: [jahre/1212/README.md](../../jahre/1212/README.md) – Da kam Kaiser Otto nach Rom.\n"+
		"- 1212: [jahre/1212/README.md](../../jahre/1212/README.md)\n",
		root, Dir, "personen", "kaiser-otto.md")
}

func TestRecordMentionsSecondYear(t *testing.T) {
	s, root := openStore(t)
	used := detect.NewResult()
	used.Add(detect.Person, "Abt Otto", "Abt Otto kam.")

	record(t, s, used, yearMention("1200"))
	record(t, s, used, yearMention("1201"))

	entry := readFile(t, root, Dir, "personen", "abt-otto.md")
	for _, want := range []string{"**Ersterwähnung:** 1200\n", "- 1200: [jahre/1200/README.md]"} {
		if !strings.Contains(entry, want) {
			t.Errorf("Expected entry to contain %q, got %q", want, entry)
		}
	}
	if want := "- 1201: [jahre/1201/README.md](../../jahre/1201/README.md) – Abt Otto kam.\n"; !strings.HasSuffix(entry, want) {
		t.Errorf("Expected entry to end with %q, got %q", want, entry)
	}
	if n := strings.Count(readFile(t, root, Dir, "personen", IndexFile), "abt-otto.md"); n != 1 {
		t.Errorf("Expected one index line, got %d", n)
	}
}

func TestRecordMentionsKeywordVariantsShareEntry(t *testing.T) {
	s, root := openStore(t)
	used := detect.NewResult()
	used.Add(detect.Keyword, "Bier", "Bier und bier.")
	used.Add(detect.Keyword, "bier", "Bier und bier.")

	record(t, s, used, yearMention("1300"))

	checkFile(t, "# Schlagworte-Register\n- [Bier](./bier.md)\n- [bier](./bier.md)\n",
		root, Dir, "schlagworte", IndexFile)

	entry := readFile(t, root, Dir, "schlagworte", "bier.md")
	if !strings.HasPrefix(entry, "# Bier\n") {
		t.Errorf("Expected the first variant as title, got %q", entry)
	}
	if n := strings.Count(entry, "- 1300:"); n != 1 {
		t.Errorf("Expected one bullet, got %d in %q", n, entry)
	}
}

func TestRecordMentionsExcerpt(t *testing.T) {
	s, root := openStore(t)
	long := strings.Repeat("ä", 150)
	used := detect.NewResult()
	used.Add(detect.Word, "Kloster", long)
	used.Add(detect.Word, "Mühle", "  Die Mühle\nam Bach.  ")

	record(t, s, used, yearMention("1200"))

	if entry, want := readFile(t, root, Dir, "worte", "kloster.md"), " – "+strings.Repeat("ä", 140)+"...\n"; !strings.Contains(entry, want) {
		t.Errorf("Expected truncated excerpt, got %q", entry)
	}
	if entry := readFile(t, root, Dir, "worte", "mühle.md"); !strings.Contains(entry, " – Die Mühle am Bach.\n") {
		t.Errorf("Expected flattened excerpt, got %q", entry)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		input string
		limit int
		want  string
	}{
		{"  kurz ", 140, "kurz"},
		{"abcdef", 3, "abc..."},
		{"abc", 3, "abc"},
		{"ab cdef", 3, "ab..."},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.input, tt.limit); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
		}
	}
}

func TestRecordMentionsEmpty(t *testing.T) {
	s, root := openStore(t)
	record(t, s, detect.NewResult(), yearMention("1200"))
	record(t, s, nil, yearMention("1200"))

	if _, err := os.Stat(filepath.Join(root, Dir)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected no register directory, stat err = %v", err)
	}
}

func TestRecordMentionsPreservesForeignLines(t *testing.T) {
	s, root := openStore(t)
	dir := filepath.Join(root, Dir, "orte")
	writeTree(t, root, map[string]string{
		Dir + "/orte/" + IndexFile: "# Orte-Register\n\nHandnotiz\n\n\n",
	})

	used := detect.NewResult()
	used.Add(detect.Place, "Rom", "")
	record(t, s, used, yearMention("1200"))

	checkFile(t, "# Orte-Register\n\nHandnotiz\n- [Rom](./rom.md)\n", dir, IndexFile)
}

func TestRecordMentionsWriteError(t *testing.T) {
	s, root := openStore(t)
	// a file where the category directory should be
	writeTree(t, root, map[string]string{Dir + "/personen": "x"})

	used := detect.NewResult()
	used.Add(detect.Person, "Abt Otto", "")
	err := s.RecordMentions(used, yearMention("1200"))
	if err == nil {
		t.Fatal("Expected error when the category directory cannot be created")
	}
	if !strings.Contains(err.Error(), "register: create") {
		t.Errorf("Expected a create error, got %v", err)
	}
}

func TestOpenBusy(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, p := range []string{root, filepath.Join(root, ".", "sub", "..")} {
		if _, err := Open(p); !errors.Is(err, internalerr.ErrWorkBusy) {
			t.Errorf("Open(%s) = %v, want ErrWorkBusy", p, err)
		}
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	again, err := Open(root)
	if err != nil {
		t.Fatalf("Open after Close failed: %v", err)
	}
	if err := again.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	used := detect.NewResult()
	used.Add(detect.Place, "Rom", "")
	if err := s.RecordMentions(used, yearMention("1200")); err == nil {
		t.Error("Expected error on closed store")
	}
}

func TestOpenEmptyRoot(t *testing.T) {
	if _, err := Open("  "); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("Open(blank) = %v, want ErrInvalidInput", err)
	}
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Snapshot of %s failed: %v", root, err)
	}
	return files
}
