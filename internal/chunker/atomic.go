package chunker

import (
	"strings"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

const fence = "```"

// IsAtomic reports whether c is an indivisible block (fenced code or table)
// that must never be split, whatever its size.
func IsAtomic(c chunk.Chunk) bool {
	switch c.Metadata.ContentType() {
	case chunk.ContentCode, chunk.ContentTable:
		return true
	}

	content := strings.TrimSpace(c.Content)
	if strings.HasPrefix(content, fence) && strings.HasSuffix(content, fence) {
		return true
	}
	return looksLikeTable(content)
}

// looksLikeTable: at least two piped lines, one of them a --- separator row.
func looksLikeTable(content string) bool {
	if !strings.Contains(content, "|") || !strings.Contains(content, "---") {
		return false
	}
	piped := 0
	separator := false
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}
		piped++
		if strings.Contains(line, "---") {
			separator = true
		}
	}
	return piped >= 2 && separator
}

// IsProtected reports whether an earlier stage already accepted c as
// oversize. Integrity reasons for code and tables always qualify; so does
// list_item_integrity, which marks a body that could not be segmented.
func IsProtected(c chunk.Chunk) bool {
	if !c.Metadata.AllowOversize() {
		return false
	}
	switch c.Metadata.OversizeReason() {
	case chunk.ReasonCodeBlockIntegrity, chunk.ReasonTableIntegrity, chunk.ReasonListItemIntegrity:
		return true
	}
	return false
}
