package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"

	"subseg/internal/services"
)

// ProseEngine provides English sentence segmentation and Penn Treebank tagging
// through github.com/jdkato/prose/v2, mapped onto the coarse universal tags.
// Subjects are approximated from word order since prose has no parser.
type ProseEngine struct{}

// NewProseEngine returns the prose-backed English engine.
func NewProseEngine() *ProseEngine {
	return &ProseEngine{}
}

// Name identifies the engine in logs.
func (e *ProseEngine) Name() string { return "prose" }

// Sentences runs prose's sentence segmenter and maps each sentence back onto
// byte offsets in text.
func (e *ProseEngine) Sentences(text string) ([]Span, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(true),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrLinguisticEngine, "nlp", "prose sentences", "build document", err)
	}
	sentences := doc.Sentences()
	spans := make([]Span, 0, len(sentences))
	cursor := 0
	for _, sentence := range sentences {
		needle := strings.TrimSpace(sentence.Text)
		if needle == "" {
			continue
		}
		idx := strings.Index(text[cursor:], needle)
		if idx < 0 {
			return nil, services.Wrap(services.ErrLinguisticEngine, "nlp", "prose sentences",
				fmt.Sprintf("sentence %q not found in source", truncate(needle, 40)), nil)
		}
		start := cursor + idx
		spans = append(spans, Span{Start: start, End: start + len(needle)})
		cursor = start + len(needle)
	}
	// prose drops trailing text without terminal punctuation in some inputs.
	if tail, ok := TrimSpan(text, Span{Start: cursor, End: len(text)}); ok {
		spans = append(spans, tail)
	}
	return spans, nil
}

// Analyze tokenizes and tags text with prose's averaged perceptron tagger.
func (e *ProseEngine) Analyze(text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTagging(true),
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrLinguisticEngine, "nlp", "prose analyze", "build document", err)
	}
	raw := doc.Tokens()
	tokens := make([]Token, 0, len(raw))
	cursor := 0
	for _, tok := range raw {
		if tok.Text == "" {
			continue
		}
		idx := strings.Index(text[cursor:], tok.Text)
		if idx < 0 {
			return nil, services.Wrap(services.ErrLinguisticEngine, "nlp", "prose analyze",
				fmt.Sprintf("token %q not found in source", truncate(tok.Text, 40)), nil)
		}
		start := cursor + idx
		end := start + len(tok.Text)
		pos := universalTag(tok.Tag, tok.Text)
		tokens = append(tokens, Token{
			Text:  tok.Text,
			Start: start,
			End:   end,
			POS:   pos,
			Punct: pos == POSPunct,
		})
		cursor = end
	}
	markSubjects(tokens)
	return tokens, nil
}

var proseAux = set("am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had",
	"do", "does", "did", "'s", "'re", "'ve", "'m", "'d", "'ll")

// universalTag maps a Penn Treebank tag onto the coarse universal tag set.
func universalTag(tag, text string) string {
	switch tag {
	case "PRP", "PRP$", "WP", "WP$", "EX":
		return POSPron
	case "MD":
		return POSAux
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		if proseAux[strings.ToLower(text)] {
			return POSAux
		}
		return POSVerb
	case "NN", "NNS":
		return POSNoun
	case "NNP", "NNPS":
		return POSPropn
	case "CD":
		return POSNum
	case "DT", "PDT", "WDT":
		return POSDet
	case "IN":
		return POSAdp
	case "RB", "RBR", "RBS", "WRB":
		return POSAdv
	case "JJ", "JJR", "JJS":
		return POSAdj
	case "CC":
		return POSConj
	case "TO", "RP", "POS":
		return POSPart
	case ",", ".", ":", "``", "''", "(", ")", "-LRB-", "-RRB-", "#", "$", "HYPH", "NFP", "SYM":
		return POSPunct
	}
	if isPunctText(text) {
		return POSPunct
	}
	return POSOther
}

// markSubjects labels the nearest noun or pronoun before each verb as its
// subject, looking back at most two tokens without crossing punctuation or a
// preposition.
func markSubjects(tokens []Token) {
	for i := range tokens {
		if !tokens[i].IsVerb() {
			continue
		}
		for k := i - 1; k >= 0 && k >= i-2; k-- {
			prev := &tokens[k]
			if prev.Punct || prev.POS == POSAdp {
				break
			}
			if prev.POS == POSNoun || prev.POS == POSPropn || prev.POS == POSPron {
				prev.Dep = DepNsubj
				break
			}
		}
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
