package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"subseg/internal/language"
)

// RuleEngine is a deterministic, dependency-free engine. Sentence boundaries
// come from RegexSentences; tokens are tagged from per-language lexicons,
// verb suffixes, and word-order cues. Languages without a lexicon still get
// tokenization and punctuation tags, so comma analysis degrades to no splits.
type RuleEngine struct {
	lang string
	lex  *lexicon
}

// NewRuleEngine returns a rule engine for the given language code or tag.
func NewRuleEngine(lang string) *RuleEngine {
	code := language.Normalize(lang)
	lex, ok := lexicons[code]
	if !ok {
		lex = &lexicon{}
	}
	return &RuleEngine{lang: code, lex: lex}
}

// Name identifies the engine in logs.
func (e *RuleEngine) Name() string { return "rules" }

// Sentences splits text on sentence-ending punctuation.
func (e *RuleEngine) Sentences(text string) ([]Span, error) {
	return RegexSentences(text), nil
}

// Analyze tokenizes and tags text. It never fails.
func (e *RuleEngine) Analyze(text string) ([]Token, error) {
	tokens := e.tokenize(text)
	e.tag(tokens)
	return tokens, nil
}

func (e *RuleEngine) tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isCJK(r):
			end := e.matchCJK(text, i)
			tokens = append(tokens, Token{Text: text[i:end], Start: i, End: end})
			i = end
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			end := scanWord(text, i)
			tokens = append(tokens, e.splitWord(text, i, end)...)
			i = end
		default:
			end := i + size
			if r == '.' {
				for end < len(text) && text[end] == '.' {
					end++
				}
			}
			tokens = append(tokens, Token{Text: text[i:end], Start: i, End: end, Punct: true})
			i = end
		}
	}
	return tokens
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// scanWord consumes letters, digits, and combining marks, plus apostrophes and
// hyphens that sit between letters.
func scanWord(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			if isCJK(r) {
				return i
			}
			i += size
			continue
		}
		if isApostrophe(r) || r == '-' {
			next, n := utf8.DecodeRuneInString(text[i+size:])
			if n > 0 && unicode.IsLetter(next) && !isCJK(next) {
				i += size + n
				continue
			}
		}
		return i
	}
	return i
}

// matchCJK returns the end of the longest lexicon word starting at i, or the
// end of the single rune at i.
func (e *RuleEngine) matchCJK(text string, i int) int {
	ends := make([]int, 0, cjkMaxWord)
	pos := i
	for len(ends) < cjkMaxWord && pos < len(text) {
		r, size := utf8.DecodeRuneInString(text[pos:])
		if !isCJK(r) {
			break
		}
		pos += size
		ends = append(ends, pos)
	}
	for n := len(ends); n > 1; n-- {
		if e.known(text[i:ends[n-1]]) {
			return ends[n-1]
		}
	}
	return ends[0]
}

func (e *RuleEngine) known(word string) bool {
	return e.lex.subjects[word] || e.lex.pronouns[word] || e.lex.aux[word] || e.lex.verbs[word] || e.lex.closed[word]
}

// splitWord separates contraction tails ("do" + "n't") and elided prefixes
// ("j'" + "ai") into their own tokens.
func (e *RuleEngine) splitWord(text string, start, end int) []Token {
	word := text[start:end]
	for _, clitic := range e.lex.clitics {
		for _, variant := range []string{clitic, strings.ReplaceAll(clitic, "'", "’")} {
			if len(word) <= len(variant) {
				continue
			}
			cut := end - len(variant)
			if strings.EqualFold(text[cut:end], variant) {
				return []Token{
					{Text: text[start:cut], Start: start, End: cut},
					{Text: text[cut:end], Start: cut, End: end},
				}
			}
		}
	}
	if e.lex.elision {
		if idx := strings.IndexFunc(word, isApostrophe); idx > 0 && idx <= 3 {
			_, size := utf8.DecodeRuneInString(word[idx:])
			cut := start + idx + size
			if cut < end {
				return []Token{
					{Text: text[start:cut], Start: start, End: cut},
					{Text: text[cut:end], Start: cut, End: end},
				}
			}
		}
	}
	return []Token{{Text: word, Start: start, End: end}}
}

func (e *RuleEngine) tag(tokens []Token) {
	closed := make([]bool, len(tokens))
	for i := range tokens {
		t := &tokens[i]
		if t.Punct || isPunctText(t.Text) {
			t.Punct = true
			t.POS = POSPunct
			continue
		}
		lower := strings.ToLower(strings.ReplaceAll(t.Text, "’", "'"))
		switch {
		case e.lex.subjects[lower]:
			t.POS = POSPron
			t.Dep = DepNsubj
		case e.lex.pronouns[lower]:
			t.POS = POSPron
		case e.lex.aux[lower]:
			t.POS = POSAux
		case e.lex.verbs[lower]:
			t.POS = POSVerb
		case e.lex.closed[lower]:
			t.POS = POSOther
			closed[i] = true
		case isNumeric(lower):
			t.POS = POSNum
		case e.hasVerbSuffix(lower):
			t.POS = POSVerb
		default:
			t.POS = POSOther
		}
	}

	// A content word following a subject pronoun (adverbs aside) is its verb.
	for i := range tokens {
		if tokens[i].POS != POSOther || closed[i] {
			continue
		}
		for k, hops := i-1, 0; k >= 0 && hops < 2; k, hops = k-1, hops+1 {
			if tokens[k].Dep == DepNsubj {
				tokens[i].POS = POSVerb
				break
			}
			if !closed[k] {
				break
			}
		}
	}

	// A bare content word directly before a verb is read as its subject.
	for i := 1; i < len(tokens); i++ {
		if !tokens[i].IsVerb() {
			continue
		}
		prev := &tokens[i-1]
		if prev.POS == POSOther && !closed[i-1] {
			prev.POS = POSNoun
			prev.Dep = DepNsubj
		}
	}
}

func (e *RuleEngine) hasVerbSuffix(word string) bool {
	if e.lex.notVerbs[word] {
		return false
	}
	length := utf8.RuneCountInString(word)
	for _, suffix := range e.lex.suffixes {
		if strings.HasSuffix(word, suffix) && length-utf8.RuneCountInString(suffix) >= e.lex.minStem {
			return true
		}
	}
	return false
}

func isPunctText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
