package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/mdchunk/internal/doctree"
)

// PDFParser handles PDF files. It tries the Go library first and falls back
// to pdftotext when that fails or finds no text. Each page becomes a
// "## Page N" section.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "mdchunk-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := pdfPages(tmpPath)
	if (err != nil || blank(pages)) && p.FallbackPdftotext {
		pages, err = pdftotextPages(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return ParseMarkdown(renderPages(pages), titleFromFilename(filename))
}

// renderPages writes one "Page N" section per non-empty page.
func renderPages(pages []string) []byte {
	var w mdWriter
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		w.heading(2, fmt.Sprintf("Page %d", i+1))
		for _, para := range paragraphBreak.Split(page, -1) {
			w.paragraph(para)
		}
	}
	return w.bytes()
}

// pdfPages returns the plain text of every page. Pages that fail to decode
// are kept as empty strings so page numbers stay aligned.
func pdfPages(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := make([]string, reader.NumPage())
	for i := range pages {
		page := reader.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		if text, err := page.GetPlainText(nil); err == nil {
			pages[i] = text
		}
	}
	return pages, nil
}

// pdftotextPages shells out to poppler's pdftotext, which separates pages
// with form feeds.
func pdftotextPages(path string) ([]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(string(out), "\f"), nil
}

func blank(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
