package nlp

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"subseg/internal/language"
	"subseg/internal/logging"
	"subseg/internal/services"
)

// Engine selection values accepted by ForLanguage.
const (
	EngineAuto  = "auto"
	EngineProse = "prose"
	EngineRules = "rules"
)

// Chain tries engines in order and adopts the first result that is error-free
// and non-empty. Failed attempts are logged as LinguisticEngine warnings. When
// every engine fails, sentence detection falls back to RegexSentences, so
// Sentences never returns an error.
type Chain struct {
	engines []Engine
	logger  *slog.Logger
}

// NewChain builds a fallback chain over engines.
func NewChain(logger *slog.Logger, engines ...Engine) *Chain {
	return &Chain{
		engines: engines,
		logger:  logging.NewComponentLogger(logger, "nlp"),
	}
}

// ForLanguage assembles the chain for a language and engine preference.
// "auto" uses prose for English followed by rules, and rules alone elsewhere.
// "prose" is rejected for languages other than English.
func ForLanguage(lang, engine string, logger *slog.Logger) (*Chain, error) {
	code := language.Normalize(lang)
	rules := NewRuleEngine(code)
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineAuto:
		if code == "en" {
			return NewChain(logger, NewProseEngine(), rules), nil
		}
		return NewChain(logger, rules), nil
	case EngineProse:
		if code != "en" {
			return nil, services.Wrap(services.ErrConfiguration, "nlp", "select engine",
				fmt.Sprintf("prose supports English only (language %q)", code), nil)
		}
		return NewChain(logger, NewProseEngine(), rules), nil
	case EngineRules:
		return NewChain(logger, rules), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "nlp", "select engine",
			fmt.Sprintf("unknown engine %q", engine), nil)
	}
}

// Names lists the engines in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.engines))
	for _, engine := range c.engines {
		names = append(names, engine.Name())
	}
	return names
}

// Sentences returns the first non-empty boundary set produced by an engine.
func (c *Chain) Sentences(text string) ([]Span, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	for _, engine := range c.engines {
		spans, err := engine.Sentences(text)
		if err != nil {
			c.warn("sentence detection failed; trying next strategy", engine.Name(), err)
			continue
		}
		if len(spans) > 0 {
			return spans, nil
		}
	}
	return RegexSentences(text), nil
}

// Analyze returns the first non-empty token list produced by an engine. It
// fails only when every engine fails.
func (c *Chain) Analyze(text string) ([]Token, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var errs []error
	for _, engine := range c.engines {
		tokens, err := engine.Analyze(text)
		if err != nil {
			c.warn("token analysis failed; trying next strategy", engine.Name(), err)
			errs = append(errs, err)
			continue
		}
		if len(tokens) > 0 {
			return tokens, nil
		}
	}
	if len(errs) == 0 {
		return nil, nil
	}
	return nil, services.Wrap(services.ErrLinguisticEngine, "nlp", "analyze", "all engines failed", errors.Join(errs...))
}

func (c *Chain) warn(msg, engine string, err error) {
	logging.WarnWithContext(c.logger, msg, "linguistic_engine_fallback",
		logging.String("engine", engine),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the nlp_engine setting or input encoding"),
		logging.String(logging.FieldImpact, "a simpler strategy is used for this text"),
	)
}
