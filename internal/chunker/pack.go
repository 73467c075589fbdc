package chunker

import (
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

const (
	separator     = "\n\n"
	separatorLen  = 2
	minBodyBudget = 100
)

// Pack greedily groups segments into fragments of at most maxSize characters
// without reordering them. Every fragment starts with headerStack (when
// non-empty) and a blank line. A segment that cannot fit on its own becomes
// a single-segment fragment marked list_item_integrity.
//
// Fragments inherit the origin's metadata and line range. If nothing is
// produced the origin is returned unchanged.
func Pack(origin chunk.Chunk, headerStack string, segments []string, maxSize int) []chunk.Chunk {
	overhead := 0
	if headerStack != "" {
		overhead = chunk.Len(headerStack) + separatorLen
	}
	maxBody := maxSize - overhead
	if maxBody < minBodyBudget {
		maxBody = maxSize / 2
	}

	var (
		fragments []chunk.Chunk
		group     []string
		groupSize int
	)
	emit := func(segs []string, oversize bool) {
		fragments = append(fragments, newFragment(origin, headerStack, segs, len(fragments), maxSize, oversize))
	}

	for _, seg := range segments {
		segSize := chunk.Len(seg) + separatorLen
		if groupSize+segSize <= maxBody {
			group = append(group, seg)
			groupSize += segSize
			continue
		}

		if len(group) > 0 {
			emit(group, false)
			group, groupSize = nil, 0
		}
		if segSize <= maxBody {
			group = []string{seg}
			groupSize = segSize
		} else {
			emit([]string{seg}, true)
		}
	}
	if len(group) > 0 {
		emit(group, false)
	}

	if len(fragments) == 0 {
		return []chunk.Chunk{origin}
	}
	return fragments
}

func newFragment(origin chunk.Chunk, headerStack string, segs []string, index, maxSize int, oversize bool) chunk.Chunk {
	content := strings.Join(segs, separator)
	if headerStack != "" {
		content = headerStack + separator + content
	}

	meta := origin.Metadata.WithFragment(index, origin.Size())
	// The max/2 fallback can leave a long header stack plus body over budget.
	if oversize || chunk.Len(content) > maxSize {
		meta = meta.WithOversize(chunk.ReasonListItemIntegrity)
	}

	return origin.WithContent(content, origin.StartLine, origin.EndLine).WithMetadata(meta)
}
