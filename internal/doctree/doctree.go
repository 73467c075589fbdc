package doctree

import "strings"

// BlockKind classifies a top-level Markdown block.
type BlockKind string

const (
	BlockProse BlockKind = "prose"
	BlockList  BlockKind = "list"
	BlockCode  BlockKind = "code"
	BlockTable BlockKind = "table"
)

// Block is one top-level Markdown block with its raw source text.
type Block struct {
	Kind      BlockKind
	Text      string // Raw Markdown, trimmed of surrounding blank lines
	StartLine int    // 1-indexed, inclusive
	EndLine   int
}

// DocTree is the root of a parsed document.
type DocTree struct {
	Title       string         // Document title (front matter, metadata or filename)
	FrontMatter map[string]any // YAML front matter, nil if absent
	Preamble    []Block        // Blocks before the first heading
	Children    []*DocNode     // Top-level sections
	Lines       int            // Line count of the Markdown source
}

// DocNode is a heading-delimited section in the document tree.
type DocNode struct {
	Title       string     // Heading text without markers
	Level       int        // ATX level 1-6
	Heading     string     // Raw heading line as written, e.g. "## Setup"
	HeadingLine int        // Source line of the heading
	Blocks      []Block    // Content between this heading and the next one
	Children    []*DocNode // Subsections
}

// Text concatenates all block text in document order.
func (t *DocTree) Text() string {
	var parts []string
	for _, b := range t.Preamble {
		parts = append(parts, b.Text)
	}
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			parts = append(parts, n.Heading)
			for _, b := range n.Blocks {
				parts = append(parts, b.Text)
			}
			walk(n.Children)
		}
	}
	walk(t.Children)

	return strings.Join(parts, "\n")
}
