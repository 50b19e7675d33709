package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

type eventDefaults struct {
	hint   string
	impact string
}

// Known degradation events and the guidance logged when the caller gives
// none.
var warnDefaults = map[string]eventDefaults{
	"sentence_detection_fallback": {"check the linguistic engine for this language", "sentences detected with punctuation rules"},
	"linguistic_engine_fallback":  {"check the linguistic engine for this language", "sentence kept without comma analysis"},
	"semantic_split_failed":       {"check llm connectivity and model output", "fragment kept unsplit"},
	"low_confidence_alignment":    {"review the segment boundaries in the output", "split applied at a weak match"},
	"alignment_unmatched":         {"review the model answer for rewritten text", "break dropped"},
	"cache_unavailable":           {"check cache_path permissions", "responses not reused on re-runs"},
	"semantic_unavailable":        {"set llm.api_key or an api key env var", "long sentences are not split by meaning"},
}

// WarnWithContext logs a warning with enforced event_type, error_hint, and
// impact fields. Missing fields are filled from the event's defaults, then
// from generic text.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	defaults, ok := warnDefaults[eventType]
	if !ok {
		defaults = eventDefaults{hint: "check logs for details", impact: "operation completed with warnings"}
	}
	var hasHint, hasImpact bool
	for _, a := range attrs {
		switch a.Key {
		case FieldErrorHint:
			hasHint = true
		case FieldImpact:
			hasImpact = true
		}
	}
	attrs = append(attrs, String(FieldEventType, eventType))
	if !hasHint {
		attrs = append(attrs, String(FieldErrorHint, defaults.hint))
	}
	if !hasImpact {
		attrs = append(attrs, String(FieldImpact, defaults.impact))
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }

func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h discardHandler) WithGroup(string) slog.Handler { return h }
