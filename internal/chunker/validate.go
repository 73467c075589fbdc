package chunker

import (
	"errors"
	"fmt"

	"github.com/dgallion1/mdchunk/internal/chunk"
)

// Violation rule names.
const (
	RuleEmptyContent   = "empty_content"
	RuleLineRange      = "line_range"
	RuleOrdering       = "ordering"
	RuleUntaggedSize   = "untagged_oversize"
	RuleDanglingHeader = "dangling_header"
)

// Violation is one broken output invariant.
type Violation struct {
	Index  int    `json:"index"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("chunk %d: %s: %s", v.Index, v.Rule, v.Detail)
}

// ValidateChunks checks a repaired sequence against the output guarantees:
// non-empty content, sane line ranges in non-decreasing order, every chunk
// within maxSize unless atomic or tagged allow_oversize, and no dangling
// header left behind.
func ValidateChunks(chunks []chunk.Chunk, maxSize int) []Violation {
	var out []Violation
	prevStart := 0

	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			rule := RuleLineRange
			if errors.Is(err, chunk.ErrEmptyContent) {
				rule = RuleEmptyContent
			}
			out = append(out, Violation{Index: i, Rule: rule, Detail: err.Error()})
		}
		if c.StartLine < prevStart {
			out = append(out, Violation{
				Index:  i,
				Rule:   RuleOrdering,
				Detail: fmt.Sprintf("start_line %d before previous %d", c.StartLine, prevStart),
			})
		}
		prevStart = c.StartLine

		if maxSize > 0 && c.Size() > maxSize && !IsAtomic(c) && !c.Metadata.AllowOversize() {
			out = append(out, Violation{
				Index:  i,
				Rule:   RuleUntaggedSize,
				Detail: fmt.Sprintf("size %d exceeds %d", c.Size(), maxSize),
			})
		}
	}

	for _, idx := range DetectDanglingHeaders(chunks) {
		out = append(out, Violation{
			Index:  idx,
			Rule:   RuleDanglingHeader,
			Detail: "chunk ends with a dangling header",
		})
	}
	return out
}
