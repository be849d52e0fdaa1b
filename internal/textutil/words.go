package textutil

import (
	"strings"
	"unicode/utf8"
)

// WordCount returns the number of whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Excerpt returns at most limit runes of text with whitespace collapsed,
// appending an ellipsis when the text was cut.
func Excerpt(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(collapsed) <= limit {
		return collapsed
	}
	runes := []rune(collapsed)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
