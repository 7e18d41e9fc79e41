// Package textsource reads OCR output: plain text files and hOCR/HTML
// pages. All text is returned in NFC with LF line endings.
package textsource

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/Datenflix007/OCR-Extractor/pkg/ocrx/internalerr"
)

var extensions = map[string]bool{
	".txt":  false,
	".text": false,
	".html": true,
	".htm":  true,
	".hocr": true,
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the files in order and joins their text with a blank line.
// It fails with internalerr.ErrNoText when nothing but whitespace remains.
func Load(paths ...string) (string, error) {
	pages := make([]string, 0, len(paths))
	for _, p := range paths {
		text, err := LoadFile(p)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("textsource: %s: %w", strings.Join(paths, ", "), internalerr.ErrNoText)
	}
	return strings.Join(pages, "\n\n"), nil
}

// LoadFile reads a single file, choosing the parser by extension.
func LoadFile(path string) (string, error) {
	isHTML, ok := extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("textsource: %s: unsupported file type: %w", path, internalerr.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	if isHTML {
		text, err := FromHTML(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("textsource: parse %s: %w", path, err)
		}
		return text, nil
	}
	return FromText(data), nil
}

// FromText cleans plain text: BOM removed, invalid UTF-8 replaced, CRLF
// folded, NFC applied.
func FromText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	s := strings.ToValidUTF8(string(data), "\uFFFD")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// FromHTML extracts the text of an hOCR or HTML document. OCR lines and
// block elements end a line, paragraphs and areas end with a blank line.
func FromHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style, atom.Title:
				return
			case atom.Br:
				buf.WriteByte('\n')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
		if n.Type == html.ElementNode {
			buf.WriteString(separator(n))
		}
	}
	extract(doc)

	return norm.NFC.String(tidy(buf.String())), nil
}

// separator is what follows the content of an element.
func separator(n *html.Node) string {
	for _, class := range classes(n) {
		switch class {
		case "ocr_par", "ocr_carea", "ocr_page":
			return "\n\n"
		case "ocr_line", "ocrx_line", "ocr_caption", "ocr_header", "ocr_textfloat":
			return "\n"
		case "ocrx_word":
			return " "
		}
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Blockquote:
		return "\n\n"
	case atom.Div, atom.Li, atom.Tr, atom.Pre:
		return "\n"
	}
	return ""
}

func classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

// tidy collapses blanks inside lines and keeps at most one empty line in a row.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// List returns the supported files directly inside dir, sorted by name.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
