package splitting

import (
	"log/slog"
	"strings"

	"subseg/internal/language"
	"subseg/internal/logging"
	"subseg/internal/nlp"
)

// DefaultContextWords is the number of words a connector split needs on
// each side.
const DefaultContextWords = 5

// connectors lists, per language, the words that may open a new clause.
var connectors = map[string][]string{
	"en": {"that", "which", "where", "when", "because", "but", "and", "or"},
	"zh": {"因为", "所以", "但是", "而且", "虽然", "如果", "即使", "尽管"},
	"ja": {"けれども", "しかし", "だから", "それで", "ので", "のに", "ため"},
	"fr": {"que", "qui", "où", "quand", "parce que", "mais", "et", "ou"},
	"ru": {"что", "который", "где", "когда", "потому что", "но", "и", "или"},
	"es": {"que", "cual", "donde", "cuando", "porque", "pero", "y", "o"},
	"de": {"dass", "welche", "wo", "wann", "weil", "aber", "und", "oder"},
	"it": {"che", "quale", "dove", "quando", "perché", "ma", "e", "o"},
}

// clitics are contraction tails that turn a connector into a pronoun
// ("that's").
var clitics = map[string]bool{"'s": true, "'re": true, "'ve": true, "'ll": true, "'d": true}

// ConnectorSplitter breaks sentences before connector words ("because",
// "but", "但是") when at least ContextWords words stand on either side.
type ConnectorSplitter struct {
	analyzer     nlp.Analyzer
	lang         string
	joiner       string
	connectors   []string
	contextWords int
	logger       *slog.Logger
}

// NewConnectorSplitter builds a splitter for lang. Languages without a
// connector table pass through unchanged. contextWords <= 0 uses
// DefaultContextWords.
func NewConnectorSplitter(analyzer nlp.Analyzer, lang string, contextWords int, logger *slog.Logger) *ConnectorSplitter {
	code := language.Normalize(lang)
	if contextWords <= 0 {
		contextWords = DefaultContextWords
	}
	return &ConnectorSplitter{
		analyzer:     analyzer,
		lang:         code,
		joiner:       language.Joiner(code),
		connectors:   connectors[code],
		contextWords: contextWords,
		logger:       logging.NewComponentLogger(logger, "connector"),
	}
}

// Split replaces each sentence with its connector fragments, preserving order.
func (c *ConnectorSplitter) Split(sentences []string) ([]string, Stats) {
	var stats Stats
	out := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		fragments, ok := c.SplitSentence(sentence)
		stats.add(len(fragments), ok)
		out = append(out, fragments...)
	}
	return out, stats
}

// SplitSentence splits one sentence. It reports false when the analyzer
// failed and the sentence was returned unchanged.
func (c *ConnectorSplitter) SplitSentence(sentence string) ([]string, bool) {
	if len(c.connectors) == 0 {
		return []string{sentence}, true
	}
	tokens, ok := analyze(c.analyzer, c.logger, sentence, "connector")
	if !ok {
		return []string{sentence}, false
	}

	var fragments []string
	start := 0
	for i := 0; i < len(tokens); i++ {
		end, ok := c.match(tokens, i)
		if !ok || i == start {
			continue
		}
		if end < len(tokens) && clitics[strings.ToLower(tokens[end].Text)] {
			continue
		}
		left := tokens[max(start, i-c.contextWords):i]
		right := tokens[end:min(len(tokens), end+c.contextWords)]
		if wordCount(left) < c.contextWords || wordCount(right) < c.contextWords {
			continue
		}
		if !c.opensClause(tokens, i, end) {
			continue
		}
		c.logger.Debug("split before connector",
			logging.String("connector", c.text(tokens[i:end])),
			logging.Int("offset", tokens[i].Start),
		)
		fragments = appendRange(fragments, sentence, tokens, start, i)
		start = i
		i = end - 1
	}
	fragments = appendRange(fragments, sentence, tokens, start, len(tokens))
	if len(fragments) <= 1 {
		return []string{sentence}, true
	}
	return fragments, true
}

// match reports whether a connector begins at tokens[i] and returns the index
// just past it. Multi-word connectors and unspaced scripts tokenized per
// character are matched by joining consecutive tokens.
func (c *ConnectorSplitter) match(tokens []nlp.Token, i int) (int, bool) {
	if tokens[i].Punct {
		return 0, false
	}
	best := 0
	for _, connector := range c.connectors {
		var b strings.Builder
		for j := i; j < len(tokens) && b.Len() < len(connector); j++ {
			if j > i {
				b.WriteString(c.joiner)
			}
			b.WriteString(strings.ToLower(tokens[j].Text))
			if b.String() == connector && j+1 > best {
				best = j + 1
			}
		}
	}
	return best, best > 0
}

// opensClause approximates the grammatical test on the connector. "that"
// splits only as a complementizer: not tagged as a determiner or pronoun, not
// directly followed by a noun, and followed by a subject and then a verb. Any
// other connector used as a determiner or pronoun of the next noun does not
// split.
func (c *ConnectorSplitter) opensClause(tokens []nlp.Token, i, end int) bool {
	tok := tokens[i]
	next := nextWord(tokens, end)
	nominal := next >= 0 && (tokens[next].POS == nlp.POSNoun || tokens[next].POS == nlp.POSPropn)
	if c.lang == "en" && strings.EqualFold(tok.Text, "that") {
		if next < 0 || nominal || tok.POS == nlp.POSDet || tok.POS == nlp.POSPron || tokens[next].IsVerb() {
			return false
		}
		subject := false
		for _, t := range tokens[end:min(len(tokens), end+c.contextWords+1)] {
			switch {
			case t.IsSubject():
				subject = true
			case subject && t.IsVerb():
				return true
			}
		}
		return false
	}
	if tok.POS == nlp.POSDet || tok.POS == nlp.POSPron {
		return !nominal
	}
	return true
}

func (c *ConnectorSplitter) text(tokens []nlp.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, c.joiner)
}

func nextWord(tokens []nlp.Token, from int) int {
	for i := from; i < len(tokens); i++ {
		if !tokens[i].Punct {
			return i
		}
	}
	return -1
}
