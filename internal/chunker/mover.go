package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// FixAction describes how a dangling header was handled.
type FixAction int

const (
	FixSkipped FixAction = iota // Neither repair fits the size budget.
	FixMoved
	FixMerged
)

func (a FixAction) String() string {
	switch a {
	case FixMoved:
		return "moved"
	case FixMerged:
		return "merged"
	default:
		return "skipped"
	}
}

// FixResult is the outcome of one repair. Chunks is the caller's slice when
// Action is FixSkipped, and a new slice otherwise.
type FixResult struct {
	Chunks []chunk.Chunk
	Action FixAction
	Header string // The dangling header line.
}

// FixDanglingHeader repairs the dangling header at chunks[idx].
//
// It first tries to move the header to the top of chunks[idx+1]. That needs
// the grown chunk to stay within maxSize and chunks[idx] to keep some content
// once the header is gone. Otherwise both chunks are merged if the merge fits.
// If neither fits the slice is returned untouched with FixSkipped.
func FixDanglingHeader(chunks []chunk.Chunk, idx, maxSize int) (FixResult, error) {
	if maxSize <= 0 {
		return FixResult{Chunks: chunks}, fmt.Errorf("%w: %d", ErrInvalidMaxChunkSize, maxSize)
	}
	if idx < 0 || idx >= len(chunks)-1 {
		return FixResult{Chunks: chunks}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx, len(chunks))
	}

	cur, next := chunks[idx], chunks[idx+1]

	lines := strings.Split(strings.TrimSpace(cur.Content), "\n")
	header := strings.TrimSpace(lines[len(lines)-1])
	remaining := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))

	moved := header + separator + next.Content
	if remaining != "" && chunk.Len(moved) <= maxSize {
		out := make([]chunk.Chunk, len(chunks))
		copy(out, chunks)

		out[idx] = cur.WithContent(remaining, cur.StartLine, max(cur.StartLine, cur.EndLine-1))
		out[idx+1] = next.
			WithContent(moved, max(1, cur.StartLine, next.StartLine-1), next.EndLine).
			WithMetadata(next.Metadata.WithHeaderMoved(cur.Metadata.ChunkID()))

		return FixResult{Chunks: out, Action: FixMoved, Header: header}, nil
	}

	merged := cur.Content + separator + next.Content
	if chunk.Len(merged) <= maxSize {
		out := make([]chunk.Chunk, 0, len(chunks)-1)
		out = append(out, chunks[:idx]...)
		out = append(out, cur.
			WithContent(merged, cur.StartLine, max(cur.EndLine, next.EndLine)).
			WithMetadata(cur.Metadata.WithMerged(chunk.MergeReasonDanglingHeader)))
		out = append(out, chunks[idx+2:]...)

		return FixResult{Chunks: out, Action: FixMerged, Header: header}, nil
	}

	return FixResult{Chunks: chunks, Action: FixSkipped, Header: header}, nil
}
