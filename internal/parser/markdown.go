package parser

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/mdchunk/internal/doctree"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(src, titleFromFilename(filename))
}

// ParseMarkdown builds a DocTree from Markdown source. Every block keeps its
// raw text and 1-indexed line range so chunks can point back into src.
//
// Source is normalized to NFC with LF line endings first. YAML front matter,
// when present, is decoded into FrontMatter and its "title" key overrides
// title; its lines still count towards line numbers.
func ParseMarkdown(src []byte, title string) (*doctree.DocTree, error) {
	src = norm.NFC.Bytes(bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n")))
	lines := strings.Split(string(src), "\n")

	fm, offset, err := splitFrontMatter(lines)
	if err != nil {
		return nil, err
	}
	if t, ok := fm["title"].(string); ok && strings.TrimSpace(t) != "" {
		title = strings.TrimSpace(t)
	}

	tree := &doctree.DocTree{Title: title, FrontMatter: fm, Lines: len(lines)}
	if len(src) == 0 || src[len(src)-1] == '\n' {
		tree.Lines--
	}
	body := []byte(strings.Join(lines[offset:], "\n"))
	bodyLines := lines[offset:]

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(body))
	idx := newLineIndex(body)

	// Collect top-level blocks with their start line in body coordinates.
	type span struct {
		node  ast.Node
		start int
	}
	var spans []span
	prev := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		start := blockStartLine(n, idx, bodyLines, prev)
		if start <= 0 {
			continue
		}
		spans = append(spans, span{node: n, start: start})
		prev = start
	}

	// Walk the blocks and build a tree based on heading levels.
	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for i, s := range spans {
		end := len(bodyLines)
		if i+1 < len(spans) {
			end = spans[i+1].start - 1
		}
		for end > s.start && strings.TrimSpace(bodyLines[end-1]) == "" {
			end--
		}
		raw := strings.Join(bodyLines[s.start-1:end], "\n")

		if h, ok := s.node.(*ast.Heading); ok {
			line := s.start + offset
			newNode := &doctree.DocNode{
				Title:       headingTitle(h, body),
				Level:       h.Level,
				Heading:     headingLine(h, bodyLines[s.start-1]),
				HeadingLine: line,
			}

			// Pop stack until we find a parent with lower level.
			for len(stack) > 1 && stack[len(stack)-1].level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: h.Level})

			// Setext underline or trailing text after the heading line.
			if rest := strings.TrimSpace(strings.Join(bodyLines[s.start:end], "\n")); rest != "" && !isSetextUnderline(rest) {
				newNode.Blocks = append(newNode.Blocks, doctree.Block{
					Kind: doctree.BlockProse, Text: rest, StartLine: line + 1, EndLine: end + offset,
				})
			}
			continue
		}

		block := doctree.Block{
			Kind:      blockKind(s.node),
			Text:      raw,
			StartLine: s.start + offset,
			EndLine:   end + offset,
		}
		if len(stack) == 1 {
			tree.Preamble = append(tree.Preamble, block)
		} else {
			top := stack[len(stack)-1].node
			top.Blocks = append(top.Blocks, block)
		}
	}

	tree.Children = root.Children
	return tree, nil
}

func blockKind(n ast.Node) doctree.BlockKind {
	switch n.(type) {
	case *ast.List:
		return doctree.BlockList
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return doctree.BlockCode
	case *east.Table:
		return doctree.BlockTable
	}
	return doctree.BlockProse
}

// blockStartLine returns the 1-indexed line a top-level block starts on, or
// 0 when the block carries no source position.
func blockStartLine(n ast.Node, idx lineIndex, lines []string, prev int) int {
	if fc, ok := n.(*ast.FencedCodeBlock); ok {
		return fenceLine(fc, idx, lines, prev)
	}
	off := firstOffset(n)
	if off < 0 {
		return 0
	}
	return idx.line(off)
}

// fenceLine finds the opening fence, which goldmark does not record a
// position for unless the fence carries an info string.
func fenceLine(fc *ast.FencedCodeBlock, idx lineIndex, lines []string, prev int) int {
	if fc.Info != nil {
		return idx.line(fc.Info.Segment.Start)
	}
	from := prev + 1
	if fc.Lines().Len() > 0 {
		from = idx.line(fc.Lines().At(0).Start) - 1
	}
	for l := max(from, 1); l <= len(lines); l++ {
		t := strings.TrimSpace(lines[l-1])
		if strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~") {
			return l
		}
	}
	return 0
}

// firstOffset returns the smallest source offset recorded in n or its
// descendants, or -1.
func firstOffset(n ast.Node) int {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off := firstOffset(c); off >= 0 {
			return off
		}
	}
	return -1
}

func headingTitle(h *ast.Heading, src []byte) string {
	var parts []string
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	return strings.Join(parts, " ")
}

// headingLine returns the heading as an ATX line. Setext headings are
// rewritten so downstream header detection sees them.
func headingLine(h *ast.Heading, raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "#") {
		return raw
	}
	return strings.Repeat("#", h.Level) + " " + raw
}

func isSetextUnderline(s string) bool {
	return strings.Trim(s, "=") == "" || strings.Trim(s, "-") == ""
}

// lineIndex maps byte offsets to 1-indexed line numbers.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	idx := lineIndex{0}
	for i, b := range src {
		if b == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (idx lineIndex) line(off int) int {
	return sort.Search(len(idx), func(i int) bool { return idx[i] > off })
}
