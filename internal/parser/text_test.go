package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/mdchunk/internal/doctree"
)

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tree.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", tree.Title)
	}
	if len(tree.Preamble) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(tree.Preamble))
	}

	checkBlock(t, tree.Preamble[0], doctree.BlockProse, "First paragraph line one.\nFirst paragraph line two.", 1, 2)
	checkBlock(t, tree.Preamble[1], doctree.BlockProse, "Second paragraph.", 4, 4)
	checkBlock(t, tree.Preamble[2], doctree.BlockProse, "Third paragraph.", 6, 6)
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", tree.Title)
	}
	if len(tree.Preamble) != 0 || len(tree.Children) != 0 {
		t.Errorf("expected empty tree, got %+v", tree)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Preamble) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(tree.Preamble))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Preamble) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(tree.Preamble))
	}
}

func TestTextParser_HashLinesStayProse(t *testing.T) {
	p := &TextParser{}
	tree, err := p.Parse(strings.NewReader("# not a heading\n\nText."), "hash.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Errorf("expected no sections, got %d", len(tree.Children))
	}
	if len(tree.Preamble) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(tree.Preamble))
	}
	if tree.Preamble[0].Text != `\# not a heading` {
		t.Errorf("expected escaped hash, got %q", tree.Preamble[0].Text)
	}
}
