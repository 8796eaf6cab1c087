package formula

import (
	"regexp"
	"strings"
)

var wordSeparators = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler turns an element key into a display label, splitting on
// underscores, dashes and camelCase boundaries: "disk_count" and
// "diskCount" both become "Disk Count".
func DefaultLabeler(name string) string {
	var words []string
	for _, word := range wordSeparators.Split(name, -1) {
		if word == "" {
			continue
		}
		for _, part := range splitCamel(word) {
			words = append(words, capitalize(part))
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(word string) []string {
	var (
		parts []string
		start int
	)
	for i := 1; i < len(word); i++ {
		prev, cur := word[i-1], word[i]
		if (isLower(prev) && isUpper(cur)) || (isLetter(prev) && isDigit(cur)) || (isDigit(prev) && isLetter(cur)) {
			parts = append(parts, word[start:i])
			start = i
		}
	}
	return append(parts, word[start:])
}

func isUpper(b byte) bool  { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool  { return b >= 'a' && b <= 'z' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { return isUpper(b) || isLower(b) }

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
