package logging

import (
	"context"
	"log/slog"

	"subseg/internal/services"
)

// WithContext returns a logger tagged with the run id, stage, and fragment
// index carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	var args []any
	if id, ok := services.RunIDFromContext(ctx); ok {
		args = append(args, slog.String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		args = append(args, slog.String(FieldStage, stage))
	}
	if idx, ok := services.FragmentIndexFromContext(ctx); ok {
		args = append(args, slog.Int(FieldFragmentIndex, idx))
	}
	if len(args) == 0 {
		return logger
	}
	return logger.With(args...)
}
