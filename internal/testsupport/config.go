package testsupport

import (
	"path/filepath"
	"testing"

	"subseg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The LLM key is cleared and the response cache disabled so tests never reach
// the network or a shared database.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CachePath = filepath.Join(base, "cache", "llm.db")
	cfgVal.LLM.APIKey = ""
	cfgVal.LLM.CacheEnabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithInput points the config at a transcript file. Relative paths are
// resolved against the config's temp directory.
func WithInput(path string) ConfigOption {
	return func(b *configBuilder) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.baseDir, path)
		}
		b.cfg.Input.Path = path
	}
}

// WithLLMKey sets the LLM API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = key
	}
}

// WithSplit mutates the split section.
func WithSplit(fn func(*config.Split)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Split)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
