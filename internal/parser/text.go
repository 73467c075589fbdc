package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/mdchunk/internal/doctree"
)

// TextParser handles plain text files. Blank-line separated paragraphs
// become Markdown paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var w mdWriter
	var current []string

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			w.paragraph(strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	w.paragraph(strings.Join(current, "\n"))

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ParseMarkdown(w.bytes(), titleFromFilename(filename))
}
