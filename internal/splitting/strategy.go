package splitting

import (
	"log/slog"
	"strings"

	"subseg/internal/logging"
	"subseg/internal/nlp"
)

// Stats summarizes one Split call of a splitting strategy.
type Stats struct {
	Sentences int
	Fragments int
	Splits    int
	Fallbacks int
}

// add records the outcome for one sentence.
func (s *Stats) add(fragments int, ok bool) {
	s.Sentences++
	s.Fragments += fragments
	s.Splits += fragments - 1
	if !ok {
		s.Fallbacks++
	}
}

// analyze tokenizes sentence. On failure it logs a fallback warning and
// reports false so the caller keeps the sentence whole.
func analyze(analyzer nlp.Analyzer, logger *slog.Logger, sentence, strategy string) ([]nlp.Token, bool) {
	if analyzer == nil {
		return nil, false
	}
	tokens, err := analyzer.Analyze(sentence)
	if err != nil {
		logging.WarnWithContext(logger, strategy+" analysis failed; keeping sentence whole", "linguistic_engine_fallback",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the configured nlp engine"),
			logging.String(logging.FieldImpact, "sentence is passed through without "+strategy+" splits"),
		)
		return nil, false
	}
	return tokens, true
}

// appendRange appends the trimmed source text covered by tokens[from:to].
func appendRange(out []string, sentence string, tokens []nlp.Token, from, to int) []string {
	if from >= to {
		return out
	}
	if fragment := strings.TrimSpace(sentence[tokens[from].Start:tokens[to-1].End]); fragment != "" {
		out = append(out, fragment)
	}
	return out
}

func wordCount(tokens []nlp.Token) int {
	n := 0
	for _, tok := range tokens {
		if !tok.Punct {
			n++
		}
	}
	return n
}
