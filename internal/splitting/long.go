package splitting

import (
	"log/slog"
	"math"
	"strings"

	"subseg/internal/logging"
	"subseg/internal/nlp"
)

// Token bounds for LongSplitter.
const (
	DefaultMaxSentenceTokens = 60
	DefaultMinSentenceTokens = 30
)

// LongOptions bounds sentence length in tokens, punctuation included.
type LongOptions struct {
	MaxTokens int
	MinTokens int
}

func (o LongOptions) withDefaults() LongOptions {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxSentenceTokens
	}
	if o.MinTokens <= 0 {
		o.MinTokens = DefaultMinSentenceTokens
	}
	o.MinTokens = min(o.MinTokens, o.MaxTokens)
	return o
}

// LongSplitter breaks sentences longer than MaxTokens into the fewest pieces
// of MinTokens to MaxTokens tokens, each ending on a verb or a sentence-final
// mark. A sentence with no such division is cut into equal token runs.
type LongSplitter struct {
	analyzer nlp.Analyzer
	opts     LongOptions
	logger   *slog.Logger
}

// NewLongSplitter builds a splitter over the given analyzer.
func NewLongSplitter(analyzer nlp.Analyzer, opts LongOptions, logger *slog.Logger) *LongSplitter {
	return &LongSplitter{
		analyzer: analyzer,
		opts:     opts.withDefaults(),
		logger:   logging.NewComponentLogger(logger, "long"),
	}
}

// Split replaces each over-long sentence with its pieces, preserving order.
func (l *LongSplitter) Split(sentences []string) ([]string, Stats) {
	var stats Stats
	out := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		pieces, ok := l.SplitSentence(sentence)
		stats.add(len(pieces), ok)
		out = append(out, pieces...)
	}
	return out, stats
}

// SplitSentence splits one sentence. It reports false when the analyzer
// failed and the sentence was returned unchanged.
func (l *LongSplitter) SplitSentence(sentence string) ([]string, bool) {
	tokens, ok := analyze(l.analyzer, l.logger, sentence, "long sentence")
	if !ok {
		return []string{sentence}, false
	}
	if len(tokens) <= l.opts.MaxTokens {
		return []string{sentence}, true
	}

	cuts := l.cuts(tokens)
	if cuts == nil {
		cuts = evenCuts(0, len(tokens), l.opts.MaxTokens)
	}
	var pieces []string
	for _, cut := range cuts {
		pieces = appendRange(pieces, sentence, tokens, cut[0], cut[1])
	}
	if len(pieces) == 0 {
		return []string{sentence}, true
	}
	l.logger.Debug("split long sentence",
		logging.Int("tokens", len(tokens)),
		logging.Int("pieces", len(pieces)),
	)
	return pieces, true
}

// cuts returns [start, end) token ranges covering tokens with the fewest
// pieces, or nil when no division satisfies the bounds. Every piece but the
// last must end on a boundary token.
func (l *LongSplitter) cuts(tokens []nlp.Token) [][2]int {
	n := len(tokens)
	cost := make([]int, n+1)
	prev := make([]int, n+1)
	for i := 1; i <= n; i++ {
		cost[i] = math.MaxInt
	}
	for i := l.opts.MinTokens; i <= n; i++ {
		if i != n && !endsPiece(tokens[i-1]) {
			continue
		}
		for j := max(0, i-l.opts.MaxTokens); j <= i-l.opts.MinTokens; j++ {
			if cost[j] != math.MaxInt && cost[j]+1 < cost[i] {
				cost[i] = cost[j] + 1
				prev[i] = j
			}
		}
	}
	if cost[n] == math.MaxInt {
		return nil
	}
	var out [][2]int
	for i := n; i > 0; i = prev[i] {
		out = append(out, [2]int{prev[i], i})
	}
	for a, b := 0, len(out)-1; a < b; a, b = a+1, b-1 {
		out[a], out[b] = out[b], out[a]
	}
	return out
}

// evenCuts divides [start, end) into ceil(n/limit) runs of equal length, the
// last one taking the remainder.
func evenCuts(start, end, limit int) [][2]int {
	n := end - start
	parts := (n + limit - 1) / limit
	size := n / parts
	out := make([][2]int, 0, parts)
	for p := 0; p < parts; p++ {
		from := start + p*size
		to := from + size
		if p == parts-1 {
			to = end
		}
		out = append(out, [2]int{from, to})
	}
	return out
}

func endsPiece(tok nlp.Token) bool {
	return tok.IsVerb() || (tok.Punct && strings.ContainsAny(tok.Text, ".!?。！？"))
}
