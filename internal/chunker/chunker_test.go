package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/doctree"
)

func prose(text string, start, end int) doctree.Block {
	return doctree.Block{Kind: doctree.BlockProse, Text: text, StartLine: start, EndLine: end}
}

func TestChunkTree_SmallSectionFitsOneChunk(t *testing.T) {
	tree := &doctree.DocTree{
		Title: "Small",
		Children: []*doctree.DocNode{{
			Title: "Section", Level: 2, Heading: "## Section", HeadingLine: 1,
			Blocks: []doctree.Block{prose("Hello world.", 3, 3)},
		}},
	}

	chunks := ChunkTree(tree, DefaultConfig())

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "## Section\n\nHello world.", c.Content)
	assert.Equal(t, 1, c.StartLine)
	assert.Equal(t, 3, c.EndLine)
	assert.Equal(t, "c0000", c.Metadata.ChunkID())
	assert.Equal(t, 0, c.Metadata.ChunkIndex())
	assert.Equal(t, "/Section", c.Metadata.HeaderPath())
	assert.Equal(t, chunk.ContentText, c.Metadata.ContentType())
}

func TestChunkTree_BreadcrumbPropagation(t *testing.T) {
	tree := &doctree.DocTree{
		Children: []*doctree.DocNode{{
			Title: "Chapter 1", Level: 1, Heading: "# Chapter 1", HeadingLine: 1,
			Children: []*doctree.DocNode{{
				Title: "Section 1.1", Level: 2, Heading: "## Section 1.1", HeadingLine: 3,
				Blocks: []doctree.Block{prose("content", 5, 5)},
			}},
		}},
	}

	chunks := ChunkTree(tree, DefaultConfig())

	require.Len(t, chunks, 2)
	assert.Equal(t, "# Chapter 1", chunks[0].Content)
	assert.Equal(t, "/Chapter 1", chunks[0].Metadata.HeaderPath())
	assert.Equal(t, "/Chapter 1/Section 1.1", chunks[1].Metadata.HeaderPath())
	assert.Equal(t, "c0001", chunks[1].Metadata.ChunkID())
}

func TestChunkTree_BreadcrumbIsolation(t *testing.T) {
	tree := &doctree.DocTree{
		Children: []*doctree.DocNode{
			{Title: "A", Level: 2, Heading: "## A", HeadingLine: 1, Blocks: []doctree.Block{prose("alpha", 2, 2)}},
			{Title: "B", Level: 2, Heading: "## B", HeadingLine: 3, Blocks: []doctree.Block{prose("beta", 4, 4)}},
		},
	}

	chunks := ChunkTree(tree, DefaultConfig())

	require.Len(t, chunks, 2)
	assert.Equal(t, "/A", chunks[0].Metadata.HeaderPath())
	assert.Equal(t, "/B", chunks[1].Metadata.HeaderPath())
}

func TestChunkTree_PreambleHasRootPath(t *testing.T) {
	tree := &doctree.DocTree{Preamble: []doctree.Block{prose("Intro", 1, 1)}}

	chunks := ChunkTree(tree, DefaultConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "/", chunks[0].Metadata.HeaderPath())
}

func TestChunkTree_AccumulatesUntilFull(t *testing.T) {
	block := strings.Repeat("a", 10)
	tree := &doctree.DocTree{
		Children: []*doctree.DocNode{{
			Title: "S", Level: 2, Heading: "## S", HeadingLine: 1,
			Blocks: []doctree.Block{prose(block, 2, 2), prose(block, 4, 4), prose(block, 6, 6)},
		}},
	}

	chunks := ChunkTree(tree, Config{MaxChunkSize: 30})

	require.Len(t, chunks, 2)
	assert.Equal(t, "## S\n\n"+block+"\n\n"+block, chunks[0].Content)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 4, chunks[0].EndLine)
	assert.Equal(t, block, chunks[1].Content)
	assert.Equal(t, 6, chunks[1].StartLine)
	assert.Equal(t, "/S", chunks[1].Metadata.HeaderPath())
}

func TestChunkTree_ContentTypes(t *testing.T) {
	list := doctree.Block{Kind: doctree.BlockList, Text: "- a\n- b", StartLine: 3, EndLine: 4}

	mixed := ChunkTree(&doctree.DocTree{Preamble: []doctree.Block{prose("Intro", 1, 1), list}}, DefaultConfig())
	require.Len(t, mixed, 1)
	assert.Equal(t, chunk.ContentMixed, mixed[0].Metadata.ContentType())

	only := ChunkTree(&doctree.DocTree{Preamble: []doctree.Block{list}}, DefaultConfig())
	require.Len(t, only, 1)
	assert.Equal(t, chunk.ContentList, only[0].Metadata.ContentType())
}

func TestChunkTree_CodeBlockIsItsOwnChunk(t *testing.T) {
	code := "```sh\nmake install\n```"
	tree := &doctree.DocTree{
		Children: []*doctree.DocNode{{
			Title: "Setup", Level: 4, Heading: "#### Setup", HeadingLine: 1,
			Blocks: []doctree.Block{{Kind: doctree.BlockCode, Text: code, StartLine: 3, EndLine: 5}},
		}},
	}

	chunks := ChunkTree(tree, DefaultConfig())

	require.Len(t, chunks, 2)
	assert.Equal(t, "#### Setup", chunks[0].Content)
	assert.Equal(t, code, chunks[1].Content)
	assert.Equal(t, chunk.ContentCode, chunks[1].Metadata.ContentType())
	assert.False(t, chunks[1].Metadata.AllowOversize())

	// The heading left alone is exactly what the repair core fixes.
	res, err := Repair(chunks, DefaultConfig(), nil)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "#### Setup\n\n"+code, res.Chunks[0].Content)
	assert.Equal(t, 1, res.Chunks[0].StartLine)
	assert.Equal(t, 5, res.Chunks[0].EndLine)
	assert.Equal(t, chunk.MergeReasonDanglingHeader, res.Chunks[0].Metadata.MergeReason())
}

func TestChunkTree_OversizeAtomicBlocksAreTagged(t *testing.T) {
	code := "```\n" + strings.Repeat("x", 40) + "\n```"
	table := "| a | b |\n|---|---|\n| " + strings.Repeat("y", 30) + " | z |"
	tree := &doctree.DocTree{Preamble: []doctree.Block{
		{Kind: doctree.BlockCode, Text: code, StartLine: 1, EndLine: 3},
		{Kind: doctree.BlockTable, Text: table, StartLine: 5, EndLine: 7},
	}}

	chunks := ChunkTree(tree, Config{MaxChunkSize: 20})

	require.Len(t, chunks, 2)
	assert.True(t, chunks[0].Metadata.AllowOversize())
	assert.Equal(t, chunk.ReasonCodeBlockIntegrity, chunks[0].Metadata.OversizeReason())
	assert.True(t, chunks[1].Metadata.AllowOversize())
	assert.Equal(t, chunk.ReasonTableIntegrity, chunks[1].Metadata.OversizeReason())
	assert.Equal(t, chunk.ContentTable, chunks[1].Metadata.ContentType())
}

func TestChunkTree_EmptyTree(t *testing.T) {
	assert.Empty(t, ChunkTree(&doctree.DocTree{Title: "Empty"}, DefaultConfig()))
}

func TestChunkTree_DefaultConfigFallback(t *testing.T) {
	tree := &doctree.DocTree{Preamble: []doctree.Block{prose(strings.Repeat("word ", 200), 1, 1)}}
	assert.Len(t, ChunkTree(tree, Config{}), 1)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("x"))
	assert.Equal(t, 13, EstimateTokens(strings.Repeat("word ", 10)))
}

func TestChunkTree_HeadingStaysWithOversizeBlock(t *testing.T) {
	body := strings.Repeat("b", 50)
	tree := &doctree.DocTree{
		Children: []*doctree.DocNode{{
			Title: "S", Level: 2, Heading: "## S", HeadingLine: 1,
			Blocks: []doctree.Block{prose(body, 3, 3)},
		}},
	}

	chunks := ChunkTree(tree, Config{MaxChunkSize: 30})

	require.Len(t, chunks, 1)
	assert.Equal(t, "## S\n\n"+body, chunks[0].Content)
	assert.Empty(t, DetectDanglingHeaders(chunks))
}
