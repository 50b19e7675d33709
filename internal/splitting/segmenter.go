package splitting

import (
	"log/slog"
	"strings"

	"subseg/internal/logging"
	"subseg/internal/nlp"
)

// Sentence is a structurally bounded unit of the joined input. Start and End
// are byte offsets into the joined text; Text is the trimmed sentence.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Segmenter splits joined transcript units into sentences.
type Segmenter struct {
	detector nlp.SentenceDetector
	joiner   string
	logger   *slog.Logger
}

// NewSegmenter builds a segmenter. A nil detector uses the regex splitter.
func NewSegmenter(detector nlp.SentenceDetector, joiner string, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		detector: detector,
		joiner:   joiner,
		logger:   logging.NewComponentLogger(logger, "segmenter"),
	}
}

// Join concatenates units with the language joiner.
func (s *Segmenter) Join(units []string) string {
	return strings.Join(units, s.joiner)
}

// Segment joins units and returns the merged sentence sequence. Every
// returned sentence has non-empty, whitespace-trimmed text.
func (s *Segmenter) Segment(units []string) []Sentence {
	text := s.Join(units)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	spans := s.detect(text)

	var out []Sentence
	open := false
	var group nlp.Span
	flush := func() {
		if !open {
			return
		}
		out = appendSentence(out, text, group)
		open = false
	}
	for _, raw := range spans {
		span, ok := nlp.TrimSpan(text, raw)
		if !ok {
			continue
		}
		current := text[span.Start:span.End]
		if open && continuesPrevious(text[group.Start:group.End], current) {
			group.End = span.End
			continue
		}
		flush()
		group = span
		open = true
	}
	flush()
	return out
}

func (s *Segmenter) detect(text string) []nlp.Span {
	if s.detector == nil {
		return nlp.RegexSentences(text)
	}
	spans, err := s.detector.Sentences(text)
	if err == nil && len(spans) > 0 {
		return spans
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldErrorHint, "check the configured nlp engine"),
		logging.String(logging.FieldImpact, "sentences are split on terminal punctuation only"),
	}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(s.logger, "sentence detection unavailable; using regex fallback", "sentence_detection_fallback", attrs...)
	return nlp.RegexSentences(text)
}

// appendSentence adds the span as a new sentence, or glues it onto the
// previous sentence when it is only a stray punctuation mark.
func appendSentence(out []Sentence, text string, span nlp.Span) []Sentence {
	body := text[span.Start:span.End]
	if len(out) > 0 && strayPunctuation[body] {
		last := &out[len(out)-1]
		last.Text += body
		last.End = span.End
		return out
	}
	return append(out, Sentence{Text: body, Start: span.Start, End: span.End})
}

var continuationMarkers = []string{"-", "...", "…"}

func continuesPrevious(previous, current string) bool {
	for _, marker := range continuationMarkers {
		if strings.HasPrefix(current, marker) || strings.HasSuffix(previous, marker) {
			return true
		}
	}
	return false
}

var strayPunctuation = map[string]bool{
	",": true, ".": true, "?": true, "!": true,
	"，": true, "。": true, "？": true, "！": true,
}

// Texts returns the text of each sentence.
func Texts(sentences []Sentence) []string {
	out := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		out = append(out, sentence.Text)
	}
	return out
}
