package parser

import (
	"strings"
)

// mdWriter renders extracted document structure as Markdown. Formats other
// than Markdown go through it so that every document is chunked from the
// same kind of source.
type mdWriter struct {
	b strings.Builder
}

func (w *mdWriter) block(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if w.b.Len() > 0 {
		w.b.WriteString("\n\n")
	}
	w.b.WriteString(s)
}

func (w *mdWriter) heading(level int, title string) {
	title = collapseSpace(title)
	if title == "" {
		return
	}
	level = min(max(level, 1), 6)
	w.block(strings.Repeat("#", level) + " " + title)
}

func (w *mdWriter) paragraph(text string) {
	w.block(escapeLineStarts(text))
}

func (w *mdWriter) list(items []string) {
	var lines []string
	for _, it := range items {
		if it = collapseSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	w.block(strings.Join(lines, "\n"))
}

func (w *mdWriter) code(lang, body string) {
	body = strings.TrimRight(body, "\n")
	if strings.TrimSpace(body) == "" {
		return
	}
	w.block("```" + lang + "\n" + body + "\n```")
}

// table writes rows as a pipe table; the first row is the header.
func (w *mdWriter) table(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return
	}

	var lines []string
	for i, r := range rows {
		cells := make([]string, width)
		for j := range cells {
			if j < len(r) {
				cells[j] = strings.ReplaceAll(collapseSpace(r[j]), "|", `\|`)
			}
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 {
			lines = append(lines, "|"+strings.Repeat(" --- |", width))
		}
	}
	w.block(strings.Join(lines, "\n"))
}

func (w *mdWriter) bytes() []byte {
	if w.b.Len() == 0 {
		return nil
	}
	return []byte(w.b.String() + "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// escapeLineStarts keeps extracted prose from being read as headings.
func escapeLineStarts(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			lines[i] = `\` + strings.TrimSpace(l)
		}
	}
	return strings.Join(lines, "\n")
}
