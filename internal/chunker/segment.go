package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	listItemPattern  = regexp.MustCompile(`(?m)^(\d+\.|[-*+])\s+`)
	paragraphPattern = regexp.MustCompile(`\n\n+`)
)

// Segment splits body into ordered, non-empty segments using the first tier
// that yields more than one: list items, then paragraphs, then sentences.
// A result of length <= 1 means the body cannot be divided.
func Segment(body string) []string {
	if segs := SplitListItems(body); len(segs) > 1 {
		return segs
	}
	if segs := SplitParagraphs(body); len(segs) > 1 {
		return segs
	}
	return SplitSentences(body)
}

// SplitListItems cuts body at every line-start list marker. Text before the
// first marker becomes its own segment. Fewer than two markers yields the
// whole body as a single segment.
func SplitListItems(body string) []string {
	matches := listItemPattern.FindAllStringIndex(body, -1)
	if len(matches) <= 1 {
		return []string{body}
	}

	var segments []string
	if lead := strings.TrimSpace(body[:matches[0][0]]); lead != "" {
		segments = append(segments, lead)
	}
	for i, m := range matches {
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if seg := strings.TrimSpace(body[m[0]:end]); seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return []string{body}
	}
	return segments
}

// SplitParagraphs splits on runs of blank lines.
func SplitParagraphs(body string) []string {
	return nonEmpty(paragraphPattern.Split(body, -1))
}

// SplitSentences splits on whitespace that follows '.', '!' or '?'.
func SplitSentences(body string) []string {
	var parts []string
	start := 0
	var prev rune
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		if unicode.IsSpace(r) && (prev == '.' || prev == '!' || prev == '?') {
			parts = append(parts, body[start:i])
			j := i
			for j < len(body) {
				r2, s2 := utf8.DecodeRuneInString(body[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			start, i, prev = j, j, 0
			continue
		}
		prev = r
		i += size
	}
	parts = append(parts, body[start:])
	return nonEmpty(parts)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
