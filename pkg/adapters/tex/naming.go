package tex

import (
	"fmt"
	"regexp"
	"strings"
)

var reNameChars = regexp.MustCompile(`[^A-Za-z0-9_. ]+`)

// Sanitize removes every character outside letters, digits, '.', '_' and space.
func Sanitize(name string) string {
	return reNameChars.ReplaceAllString(name, "")
}

// questionName returns the explicit title unchanged, or synthesizes one from
// the ordinal and the question text. The ordinal keeps the source order when
// names get sorted alphabetically.
func questionName(block RawMatch, ordinal int, limit int) string {
	if block.HasTitle && strings.TrimSpace(block.Title) != "" {
		return block.Title
	}
	name := Sanitize(fmt.Sprintf("%03d %s", ordinal, block.Body))
	if limit > 0 && len(name) > limit {
		name = name[:limit]
	}
	return strings.TrimSpace(name)
}
