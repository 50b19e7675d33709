package llmcache

import (
	"context"
	"log/slog"

	"subseg/internal/logging"
)

// JSONCompleter is the completion capability being cached.
type JSONCompleter interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Completer serves completions from the cache before asking the wrapped
// completer.
type Completer struct {
	store    *Store
	next     JSONCompleter
	model    string
	validate func(string) error
	logger   *slog.Logger
}

// Option customizes a Completer.
type Option func(*Completer)

// WithValidator restricts writes to responses for which validate returns nil.
func WithValidator(validate func(string) error) Option {
	return func(c *Completer) {
		c.validate = validate
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Completer) {
		c.logger = logging.NewComponentLogger(logger, "llmcache")
	}
}

// Wrap decorates next with store. Entries are keyed per model.
func Wrap(store *Store, next JSONCompleter, model string, opts ...Option) *Completer {
	c := &Completer{store: store, next: next, model: model, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteJSON returns a cached response when present, otherwise calls the
// wrapped completer and caches a valid answer. Cache failures never fail the
// call.
func (c *Completer) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	key := Key(c.model, systemPrompt, userPrompt)
	logger := logging.WithContext(ctx, c.logger)
	if c.store != nil {
		cached, ok, err := c.store.Get(ctx, key)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "cache read failed", "cache_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the cache file if it is corrupt"),
				logging.String(logging.FieldImpact, "request goes to the llm"),
			)
		case ok:
			logger.Debug("cache hit", logging.String("key", key[:12]))
			return cached, nil
		}
	}

	raw, err := c.next.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil || c.store == nil {
		return raw, err
	}
	if c.validate != nil {
		if verr := c.validate(raw); verr != nil {
			logger.Debug("response not cached", logging.Error(verr))
			return raw, nil
		}
	}
	if perr := c.store.Put(ctx, key, c.model, userPrompt, raw); perr != nil {
		logging.WarnWithContext(logger, "cache write failed", "cache_unavailable",
			logging.Error(perr),
			logging.String(logging.FieldErrorHint, "check disk space and cache_path permissions"),
			logging.String(logging.FieldImpact, "response will be requested again next run"),
		)
	}
	return raw, nil
}
