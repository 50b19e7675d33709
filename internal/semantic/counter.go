package semantic

import (
	"strings"
	"unicode/utf8"

	"subseg/internal/language"
)

// Counter measures a fragment against the word budget.
type Counter func(text string) int

// FieldCounter counts whitespace-separated words.
func FieldCounter(text string) int {
	return len(strings.Fields(text))
}

// RuneCounter counts characters of the trimmed text, which stands in for
// words in scripts written without spaces.
func RuneCounter(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// CounterFor picks the counter matching how lang separates words.
func CounterFor(lang string) Counter {
	if language.Unspaced(lang) {
		return RuneCounter
	}
	return FieldCounter
}
