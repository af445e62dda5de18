package srtfile

import "strings"

// CountCues returns the number of SRT cue blocks in content. A block counts
// when it contains a timing line.
func CountCues(content string) int {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	count := 0
	inCue := false
	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			inCue = false
			continue
		}
		if !inCue && strings.Contains(trimmed, "-->") {
			count++
			inCue = true
		}
	}
	return count
}
