// Package textutil provides the text normalization and similarity primitives
// used when aligning generated paraphrases back onto original transcript text.
//
// The primary use cases are:
//   - Folding case and character width so comparisons ignore cosmetic changes
//   - Collapsing runs of whitespace with a language-specific joiner
//   - Scoring similarity with a longest-common-subsequence ratio, either in one
//     shot or incrementally as a candidate string grows rune by rune
package textutil
