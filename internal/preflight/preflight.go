package preflight

import (
	"context"

	"subseg/internal/config"
)

// Result reports the outcome of a single preflight check. Optional results
// describe degraded but runnable setups.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Input.Path != "" {
		results = append(results, CheckInputFile(cfg.Input.Path))
	}
	results = append(results, CheckEngine(cfg.Split.Language, cfg.Split.NLPEngine))

	if cfg.Split.Semantic {
		llmCfg := cfg.GetLLM()
		if llmCfg.APIKey == "" {
			results = append(results, Result{
				Name:     "Semantic LLM",
				Optional: true,
				Detail:   "API key missing; the semantic stage will be skipped",
			})
		} else {
			results = append(results, CheckLLM(ctx, "Semantic LLM", llmCfg))
		}
		if cfg.LLM.CacheEnabled {
			results = append(results, CheckCache(ctx, cfg.Paths.CachePath))
		}
	}

	return results
}

// Ready reports whether every required check passed.
func Ready(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
