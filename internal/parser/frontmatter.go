package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter decodes a leading "---" delimited YAML block. It returns
// the decoded map (nil when absent) and the number of lines it occupies.
func splitFrontMatter(lines []string) (map[string]any, int, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, 0, nil
	}

	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		// No closing delimiter, so this is a thematic break.
		return nil, 0, nil
	}

	fm := make(map[string]any)
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:closeIdx], "\n")), &fm); err != nil {
		return nil, 0, fmt.Errorf("parse front matter: %w", err)
	}
	return fm, closeIdx + 1, nil
}
