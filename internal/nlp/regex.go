package nlp

import (
	"unicode"
	"unicode/utf8"
)

// RegexSentences splits text after runs of sentence-ending punctuation. Latin
// enders (. ! ? and the ellipsis character) end a sentence only when followed
// by whitespace or the end of text; CJK enders (。！？) end one immediately.
// Punctuation stays attached to the sentence it closes. Spans are trimmed and
// never empty. It never fails.
func RegexSentences(text string) []Span {
	var spans []Span
	start := 0
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case isLatinEnder(r):
			end := i + size
			for end < len(text) {
				next, n := utf8.DecodeRuneInString(text[end:])
				if !isLatinEnder(next) && !isCloser(next) {
					break
				}
				end += n
			}
			if end == len(text) || startsWithSpace(text[end:]) {
				spans = appendTrimmed(spans, text, start, end)
				start = end
			}
			i = end
		case isCJKEnder(r):
			end := i + size
			for end < len(text) {
				next, n := utf8.DecodeRuneInString(text[end:])
				if !isCJKEnder(next) && !isCloser(next) {
					break
				}
				end += n
			}
			spans = appendTrimmed(spans, text, start, end)
			start = end
			i = end
		default:
			i += size
		}
	}
	return appendTrimmed(spans, text, start, len(text))
}

func isLatinEnder(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCJKEnder(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '」', '』', '）':
		return true
	}
	return false
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func appendTrimmed(spans []Span, text string, start, end int) []Span {
	if span, ok := TrimSpan(text, Span{Start: start, End: end}); ok {
		spans = append(spans, span)
	}
	return spans
}

// TrimSpan narrows span so it excludes leading and trailing whitespace. It
// reports false when nothing but whitespace remains.
func TrimSpan(text string, span Span) (Span, bool) {
	start, end := span.Start, span.End
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start >= end {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}
