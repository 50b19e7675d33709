package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// Fold maps s to a comparison form: full-width and half-width variants are
// unified and case is folded. A new Caser is used per call since Casers are
// stateful.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(width.Fold.String(s))
}

// FoldRunes returns the folded form of s as a rune slice.
func FoldRunes(s string) []rune {
	return []rune(Fold(s))
}

// CollapseWhitespace splits s on whitespace and rejoins the fields with joiner.
func CollapseWhitespace(s, joiner string) string {
	return strings.Join(strings.Fields(s), joiner)
}
