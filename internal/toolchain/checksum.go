package toolchain

import (
	"fmt"
	"regexp"
	"strings"
)

var hexTokenPattern = regexp.MustCompile(`\b[A-Fa-f0-9]{64}\b`)

// parseChecksum extracts the expected SHA-256 digest from a checksum source
// text. When entry is non-empty the search is scoped to lines naming that
// entry, which supports multi-artifact checksum files; otherwise the text
// must contain exactly one distinct 64-hex token. The digest is returned
// lower-cased.
func parseChecksum(content, entry string) (string, error) {
	entry = strings.TrimSpace(entry)
	if entry != "" {
		needle := strings.ToLower(entry)
		for _, line := range strings.Split(content, "\n") {
			if !strings.Contains(strings.ToLower(line), needle) {
				continue
			}
			if token := hexTokenPattern.FindString(line); token != "" {
				return strings.ToLower(token), nil
			}
		}
		return "", fmt.Errorf("checksum source has no line matching entry %q", entry)
	}

	tokens := hexTokenPattern.FindAllString(content, -1)
	if len(tokens) == 0 {
		return "", fmt.Errorf("checksum source contains no sha256 token")
	}
	first := strings.ToLower(tokens[0])
	for _, token := range tokens[1:] {
		if strings.ToLower(token) != first {
			return "", fmt.Errorf("checksum source is ambiguous: multiple sha256 tokens and no entry to select one")
		}
	}
	return first, nil
}
