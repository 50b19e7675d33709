package splitting

import (
	"log/slog"
	"strings"

	"subseg/internal/logging"
	"subseg/internal/nlp"
)

// Options tunes the comma clause-validity test.
type Options struct {
	// LeftWindow is how many tokens before a comma are inspected.
	LeftWindow int
	// RightWindow is how many tokens after a comma are inspected.
	RightWindow int
	// MinPhraseTokens is the count of non-punctuation tokens each side must exceed.
	MinPhraseTokens int
}

// DefaultOptions returns the standard window sizes.
func DefaultOptions() Options {
	return Options{LeftWindow: 9, RightWindow: 10, MinPhraseTokens: 3}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LeftWindow <= 0 {
		o.LeftWindow = d.LeftWindow
	}
	if o.RightWindow <= 0 {
		o.RightWindow = d.RightWindow
	}
	if o.MinPhraseTokens < 0 {
		o.MinPhraseTokens = d.MinPhraseTokens
	}
	return o
}

// SplitCandidate records the evaluation of one comma.
type SplitCandidate struct {
	// Offset is the byte offset of the comma within the sentence.
	Offset      int
	TokenIndex  int
	LeftTokens  int
	RightTokens int
	HasSubject  bool
	HasVerb     bool
	Valid       bool
}

// CommaSplitter breaks sentences at commas that introduce an independent clause.
type CommaSplitter struct {
	analyzer nlp.Analyzer
	opts     Options
	logger   *slog.Logger
}

// NewCommaSplitter builds a splitter over the given analyzer.
func NewCommaSplitter(analyzer nlp.Analyzer, opts Options, logger *slog.Logger) *CommaSplitter {
	return &CommaSplitter{
		analyzer: analyzer,
		opts:     opts.withDefaults(),
		logger:   logging.NewComponentLogger(logger, "comma"),
	}
}

// Split replaces each sentence with its comma fragments, preserving order.
// A sentence whose analysis fails is kept whole.
func (c *CommaSplitter) Split(sentences []string) ([]string, Stats) {
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
func (c *CommaSplitter) SplitSentence(sentence string) ([]string, bool) {
	if !hasComma(sentence) {
		return []string{sentence}, true
	}
	tokens, ok := c.analyze(sentence)
	if !ok {
		return []string{sentence}, false
	}
	fragments, _ := c.evaluate(sentence, tokens)
	return fragments, true
}

// Candidates evaluates every comma of sentence in scan order. Windows on the
// left are bounded by the most recent valid split, exactly as Split sees them.
func (c *CommaSplitter) Candidates(sentence string) []SplitCandidate {
	if !hasComma(sentence) {
		return nil
	}
	tokens, ok := c.analyze(sentence)
	if !ok {
		return nil
	}
	_, candidates := c.evaluate(sentence, tokens)
	return candidates
}

func (c *CommaSplitter) analyze(sentence string) ([]nlp.Token, bool) {
	return analyze(c.analyzer, c.logger, sentence, "comma")
}

func (c *CommaSplitter) evaluate(sentence string, tokens []nlp.Token) ([]string, []SplitCandidate) {
	var (
		fragments  []string
		candidates []SplitCandidate
	)
	start := 0
	for i, tok := range tokens {
		if !isComma(tok.Text) {
			continue
		}
		candidate := c.inspect(tokens, start, i)
		candidates = append(candidates, candidate)
		if !candidate.Valid {
			continue
		}
		fragments = appendRange(fragments, sentence, tokens, start, i)
		c.logger.Debug("split at comma",
			logging.Int("offset", candidate.Offset),
			logging.Int("left_tokens", candidate.LeftTokens),
			logging.Int("right_tokens", candidate.RightTokens),
		)
		start = i + 1
	}
	fragments = appendRange(fragments, sentence, tokens, start, len(tokens))
	if len(fragments) <= 1 {
		return []string{sentence}, candidates
	}
	return fragments, candidates
}

// inspect applies the clause-validity test to the comma at tokens[i], with the
// left window clipped at start.
func (c *CommaSplitter) inspect(tokens []nlp.Token, start, i int) SplitCandidate {
	left := tokens[max(start, i-c.opts.LeftWindow):i]
	right := tokens[i+1 : min(len(tokens), i+1+c.opts.RightWindow)]

	candidate := SplitCandidate{Offset: tokens[i].Start, TokenIndex: i, LeftTokens: wordCount(left)}
	for _, tok := range right {
		if tok.Punct {
			break
		}
		candidate.RightTokens++
	}
	for _, tok := range right {
		candidate.HasSubject = candidate.HasSubject || tok.IsSubject()
		candidate.HasVerb = candidate.HasVerb || tok.IsVerb()
	}
	candidate.Valid = candidate.HasSubject && candidate.HasVerb &&
		candidate.LeftTokens > c.opts.MinPhraseTokens &&
		candidate.RightTokens > c.opts.MinPhraseTokens
	return candidate
}

func isComma(text string) bool {
	return text == "," || text == "，"
}

func hasComma(sentence string) bool {
	return strings.ContainsAny(sentence, ",，")
}
