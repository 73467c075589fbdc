package chunker

import (
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

const (
	// Levels 1-3 are section boundaries and never count as dangling.
	minDanglingLevel = 4
	// More trailing text than this after the last header means it has content.
	maxTrailingContent = 50
	// The next chunk needs at least this much text to be the header's content.
	minNextContent = 20
)

// DetectDanglingHeaders returns, in ascending order, the index of every chunk
// that ends in a header whose content was placed in the following chunk.
// Indices are only valid for the slice that was scanned.
func DetectDanglingHeaders(chunks []chunk.Chunk) []int {
	var out []int
	for i := 0; i+1 < len(chunks); i++ {
		if hasDanglingHeader(chunks[i], chunks[i+1]) {
			out = append(out, i)
		}
	}
	return out
}

func hasDanglingHeader(cur, next chunk.Chunk) bool {
	curText := strings.TrimSpace(cur.Content)
	nextText := strings.TrimSpace(next.Content)
	if curText == "" || nextText == "" {
		return false
	}

	curLines := strings.Split(curText, "\n")
	if headerLevel(curLines[len(curLines)-1]) < minDanglingLevel {
		return false
	}

	if chunk.Len(strings.TrimSpace(contentAfterLastHeader(curLines))) > maxTrailingContent {
		return false
	}

	firstNext, _, _ := strings.Cut(nextText, "\n")
	if headerLevel(firstNext) > 0 {
		return false
	}

	return chunk.Len(nextText) >= minNextContent
}

func contentAfterLastHeader(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if headerLevel(lines[i]) > 0 {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return strings.Join(lines, "\n")
}
