package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
	"github.com/dgallion1/mdchunk/internal/doctree"
)

// ChunkTree walks a DocTree and produces the initial, structure-aware chunk
// sequence that the repair stages then fix up.
//
// Prose and list blocks accumulate under their heading until the next block
// would exceed MaxChunkSize. Code and tables always become their own chunk.
// A heading always shares a chunk with the first prose or list block after
// it, even when that makes the chunk oversize. A heading directly followed by
// a code block ends up alone in its chunk, which Repair later resolves.
func ChunkTree(tree *doctree.DocTree, cfg Config) []chunk.Chunk {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultConfig().MaxChunkSize
	}

	w := &treeWalker{cfg: cfg}
	w.section(nil, tree.Preamble, nil)
	for _, child := range tree.Children {
		w.walkNode(child, nil)
	}
	return w.chunks
}

type treeWalker struct {
	cfg    Config
	chunks []chunk.Chunk

	parts     []string
	bare      bool // parts holds only a heading
	kinds     map[doctree.BlockKind]bool
	startLine int
	endLine   int
	path      string
}

// walkNode visits a section and its subsections depth first.
func (w *treeWalker) walkNode(node *doctree.DocNode, breadcrumb []string) {
	var bc []string
	bc = append(bc, breadcrumb...)
	if node.Title != "" {
		bc = append(bc, node.Title)
	}

	w.section(node, node.Blocks, bc)
	for _, child := range node.Children {
		w.walkNode(child, bc)
	}
}

func (w *treeWalker) section(node *doctree.DocNode, blocks []doctree.Block, breadcrumb []string) {
	w.path = "/" + strings.Join(breadcrumb, "/")
	if node != nil && node.Heading != "" {
		w.add(node.Heading, node.HeadingLine, node.HeadingLine, "")
	}

	for _, b := range blocks {
		switch b.Kind {
		case doctree.BlockCode, doctree.BlockTable:
			w.flush()
			w.emitAtomic(b)
		default:
			if len(w.parts) > 0 && !w.bare && chunk.Len(w.pending())+len(separator)+chunk.Len(b.Text) > w.cfg.MaxChunkSize {
				w.flush()
			}
			w.add(b.Text, b.StartLine, b.EndLine, b.Kind)
		}
	}
	w.flush()
}

func (w *treeWalker) add(text string, start, end int, kind doctree.BlockKind) {
	if len(w.parts) == 0 {
		w.startLine = start
		w.kinds = make(map[doctree.BlockKind]bool)
	}
	w.bare = len(w.parts) == 0 && kind == ""
	w.parts = append(w.parts, text)
	w.endLine = end
	if kind != "" {
		w.kinds[kind] = true
	}
}

func (w *treeWalker) pending() string {
	return strings.Join(w.parts, separator)
}

func (w *treeWalker) flush() {
	if len(w.parts) == 0 {
		return
	}
	contentType := chunk.ContentText
	switch {
	case w.kinds[doctree.BlockList] && w.kinds[doctree.BlockProse]:
		contentType = chunk.ContentMixed
	case w.kinds[doctree.BlockList]:
		contentType = chunk.ContentList
	}
	w.emit(w.pending(), w.startLine, w.endLine, contentType, "")
	w.parts = nil
}

func (w *treeWalker) emitAtomic(b doctree.Block) {
	contentType, reason := chunk.ContentCode, chunk.ReasonCodeBlockIntegrity
	if b.Kind == doctree.BlockTable {
		contentType, reason = chunk.ContentTable, chunk.ReasonTableIntegrity
	}
	if chunk.Len(b.Text) <= w.cfg.MaxChunkSize {
		reason = ""
	}
	w.emit(b.Text, b.StartLine, b.EndLine, contentType, reason)
}

func (w *treeWalker) emit(content string, start, end int, contentType, oversizeReason string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	index := len(w.chunks)
	meta := chunk.Metadata{}.
		WithChunkID(fmt.Sprintf("c%04d", index)).
		WithChunkIndex(index).
		WithContentType(contentType).
		WithHeaderPath(w.path)
	if oversizeReason != "" {
		meta = meta.WithOversize(oversizeReason)
	}
	w.chunks = append(w.chunks, chunk.Chunk{
		Content:   content,
		StartLine: start,
		EndLine:   max(start, end),
		Metadata:  meta,
	})
}
