package nlp

// Coarse universal part-of-speech tags.
const (
	POSPron  = "PRON"
	POSVerb  = "VERB"
	POSAux   = "AUX"
	POSNoun  = "NOUN"
	POSPropn = "PROPN"
	POSNum   = "NUM"
	POSPunct = "PUNCT"
	POSDet   = "DET"
	POSAdp   = "ADP"
	POSAdv   = "ADV"
	POSAdj   = "ADJ"
	POSConj  = "CCONJ"
	POSPart  = "PART"
	POSOther = "X"
)

// Dependency labels the comma analysis inspects.
const (
	DepNsubj     = "nsubj"
	DepNsubjPass = "nsubjpass"
)

// Token is one analyzed token. Start and End are byte offsets into the text
// passed to Analyze.
type Token struct {
	Text  string
	Start int
	End   int
	POS   string
	Dep   string
	Punct bool
}

// IsSubject reports whether the token acts as a grammatical subject or is a pronoun.
func (t Token) IsSubject() bool {
	return t.Dep == DepNsubj || t.Dep == DepNsubjPass || t.POS == POSPron
}

// IsVerb reports whether the token is a verb or auxiliary.
func (t Token) IsVerb() bool {
	return t.POS == POSVerb || t.POS == POSAux
}

// Span is a half-open byte range [Start, End) into analyzed text.
type Span struct {
	Start int
	End   int
}

// SentenceDetector finds sentence boundaries.
type SentenceDetector interface {
	Sentences(text string) ([]Span, error)
}

// Analyzer tokenizes text and tags each token.
type Analyzer interface {
	Analyze(text string) ([]Token, error)
}

// Engine combines both capabilities under a name used in logs.
type Engine interface {
	SentenceDetector
	Analyzer
	Name() string
}
