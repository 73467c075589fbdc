package chunk

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyContent     = errors.New("chunk content cannot be empty")
	ErrInvalidLineRange = errors.New("chunk line range must satisfy 1 <= start_line <= end_line")
)

// Chunk is a contiguous span of the source document.
type Chunk struct {
	Content   string   `json:"content"`
	StartLine int      `json:"start_line"` // 1-indexed, inclusive
	EndLine   int      `json:"end_line"`   // 1-indexed, inclusive
	Metadata  Metadata `json:"metadata"`
}

// Len returns the size of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Size returns the content size in characters.
func (c Chunk) Size() int {
	return Len(c.Content)
}

// Validate checks the structural invariants every chunk must satisfy.
func (c Chunk) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyContent
	}
	if c.StartLine < 1 || c.StartLine > c.EndLine {
		return ErrInvalidLineRange
	}
	return nil
}

// WithContent returns a copy of c with new content and line range.
func (c Chunk) WithContent(content string, startLine, endLine int) Chunk {
	c.Content = content
	c.StartLine = startLine
	c.EndLine = endLine
	return c
}

// WithMetadata returns a copy of c carrying m.
func (c Chunk) WithMetadata(m Metadata) Chunk {
	c.Metadata = m
	return c
}

// Equal compares content, line range and metadata.
func (c Chunk) Equal(o Chunk) bool {
	return c.Content == o.Content &&
		c.StartLine == o.StartLine &&
		c.EndLine == o.EndLine &&
		c.Metadata.Equal(o.Metadata)
}
