package chunker

import (
	"regexp"
	"strings"
)

var (
	atxHeader = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	atxPrefix = regexp.MustCompile(`^#{1,6}\s`)
)

// headerLevel returns the ATX level of line, or 0 if it is not a header.
func headerLevel(line string) int {
	m := atxHeader.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0
	}
	return len(m[1])
}

func isHeader(line string) bool {
	return atxPrefix.MatchString(strings.TrimSpace(line))
}

// ExtractHeaderStack splits content into its leading run of ATX headers and
// the body that follows.
//
// Blank lines between headers stay in the stack; trailing blank lines do not.
// The first non-blank, non-header line starts the body. With no leading
// headers the stack is empty and the body is the whole trimmed content.
func ExtractHeaderStack(content string) (stack, body string) {
	lines := strings.Split(content, "\n")
	var headers []string
	bodyStart := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(headers) > 0 {
				headers = append(headers, "")
			}
			continue
		}
		if isHeader(trimmed) {
			headers = append(headers, line)
			bodyStart = i + 1
			continue
		}
		bodyStart = i
		break
	}

	for len(headers) > 0 && strings.TrimSpace(headers[len(headers)-1]) == "" {
		headers = headers[:len(headers)-1]
	}

	return strings.Join(headers, "\n"), strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
}
