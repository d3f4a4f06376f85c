package parser

import (
	"strings"
)

type markdownParser struct{}

func (markdownParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".markdown")
}

// Parse treats each blank-line separated block as a paragraph. Fenced code
// blocks are dropped since there is nothing to proofread in them.
func (markdownParser) Parse(content []byte) ([]string, error) {
	var kept []string
	inFence := false
	for _, line := range strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			kept = append(kept, "")
			continue
		}
		if inFence {
			continue
		}
		kept = append(kept, line)
	}
	return splitBlocks(strings.Join(kept, "\n")), nil
}
