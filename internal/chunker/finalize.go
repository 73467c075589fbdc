package chunker

import (
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// Finalize renumbers chunk_index in output order and recomputes header_path
// for chunks that were flagged by UpdateHeaderPaths or carry no path. The
// path is rebuilt from the ATX headers seen so far, skipping fenced code.
func Finalize(chunks []chunk.Chunk) []chunk.Chunk {
	out := make([]chunk.Chunk, len(chunks))
	var stack headerTrail

	for i, c := range chunks {
		path := stack.path()
		leading := true
		inFence := false
		for _, line := range strings.Split(c.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, fence) || strings.HasPrefix(trimmed, "~~~") {
				inFence = !inFence
			}
			if inFence || trimmed == "" {
				continue
			}
			if level := headerLevel(trimmed); level > 0 {
				stack.push(level, headerTitle(trimmed))
				if leading {
					path = stack.path()
				}
				continue
			}
			leading = false
		}

		meta := c.Metadata
		if meta.HeaderPathNeedsUpdate() || !meta.Has(chunk.KeyHeaderPath) {
			meta = meta.WithHeaderPath(path).Delete(chunk.KeyHeaderPathNeedsUpdate)
		}
		out[i] = c.WithMetadata(meta.WithChunkIndex(i))
	}
	return out
}

// headerTrail tracks the current heading per level.
type headerTrail struct {
	titles [6]string
}

func (h *headerTrail) push(level int, title string) {
	h.titles[level-1] = title
	for i := level; i < len(h.titles); i++ {
		h.titles[i] = ""
	}
}

func (h *headerTrail) path() string {
	var parts []string
	for _, t := range h.titles {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return "/" + strings.Join(parts, "/")
}

func headerTitle(line string) string {
	m := atxHeader.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[2]), "#"))
}
