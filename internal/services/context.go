package services

import "context"

type ctxKey int

const (
	runIDKey ctxKey = iota
	stageKey
	fragmentKey
)

// WithRunID stores the run identifier; an empty id leaves ctx unchanged.
func WithRunID(ctx context.Context, id string) context.Context {
	return withString(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithStage stores the name of the stage being executed.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage stored by WithStage.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, stageKey)
}

// WithFragmentIndex stores the position of the fragment a worker is handling.
// Negative indexes are ignored.
func WithFragmentIndex(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, fragmentKey, index)
}

// FragmentIndexFromContext returns the index stored by WithFragmentIndex.
func FragmentIndexFromContext(ctx context.Context) (int, bool) {
	index, ok := ctx.Value(fragmentKey).(int)
	return index, ok
}

func withString(ctx context.Context, key ctxKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key ctxKey) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}
