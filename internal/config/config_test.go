package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subseg/internal/config"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range config.APIKeyEnvVars {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearKeyEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "subseg", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "subseg", "logs"); cfg.Paths.LogDir != want {
		t.Fatalf("log dir = %q, want %q", cfg.Paths.LogDir, want)
	}
	if want := filepath.Join(tempHome, ".cache", "subseg", "llm_cache.db"); cfg.Paths.CachePath != want {
		t.Fatalf("cache path = %q, want %q", cfg.Paths.CachePath, want)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Split.MaxSplitLength != 20 || cfg.Split.MaxWorkers != 4 {
		t.Fatalf("unexpected split defaults: %+v", cfg.Split)
	}
	if cfg.Split.AlignmentThreshold != 0.9 {
		t.Fatalf("alignment threshold = %v, want 0.9", cfg.Split.AlignmentThreshold)
	}
	if cfg.Split.LeftWindow != 9 || cfg.Split.RightWindow != 10 || cfg.Split.MinPhraseTokens != 3 {
		t.Fatalf("unexpected comma window defaults: %+v", cfg.Split)
	}
	if !cfg.Split.Comma || !cfg.Split.Connector || !cfg.Split.LongSplit || !cfg.Split.Semantic || cfg.Split.Resume {
		t.Fatalf("unexpected stage toggles: %+v", cfg.Split)
	}
	if cfg.Split.ContextWords != 5 || cfg.Split.MaxSentenceTokens != 60 || cfg.Split.MinSentenceTokens != 30 {
		t.Fatalf("unexpected connector or long split defaults: %+v", cfg.Split)
	}
	if cfg.LLM.RetryAttempts != 3 || cfg.LLM.ResponseAttempts != 3 {
		t.Fatalf("unexpected attempt defaults: %+v", cfg.LLM)
	}
	if cfg.Input.Column != "text" {
		t.Fatalf("input column = %q, want text", cfg.Input.Column)
	}
	if cfg.SemanticReady() {
		t.Fatal("semantic stage should not be ready without an API key")
	}
}

func TestLoadAPIKeyEnvFallbackOrder(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("OPENROUTER_API_KEY", "router-key")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "router-key" {
		t.Fatalf("api key = %q, want router-key", cfg.LLM.APIKey)
	}
	if !cfg.SemanticReady() {
		t.Fatal("expected semantic stage ready with key")
	}
}

func TestLoadCustomConfigOverrides(t *testing.T) {
	clearKeyEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "subseg.toml")
	content := `
[paths]
output_dir = "~/runs/out"

[input]
path = "~/transcripts/episode.xlsx"
column = " Text "

[split]
language = "ZH-Hans"
max_split_length = 12
max_workers = 200
comma = false
break_marker = " <cut> "
nlp_engine = "RULES"

[llm]
api_key = "file-key"
timeout_seconds = 0

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "runs", "out") {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Input.Path != filepath.Join(tempHome, "transcripts", "episode.xlsx") {
		t.Fatalf("input path = %q", cfg.Input.Path)
	}
	if cfg.Input.Column != "Text" {
		t.Fatalf("column = %q", cfg.Input.Column)
	}
	if cfg.Split.Language != "zh" {
		t.Fatalf("language = %q, want zh", cfg.Split.Language)
	}
	if cfg.Split.MaxWorkers != 64 {
		t.Fatalf("max workers = %d, want clamp to 64", cfg.Split.MaxWorkers)
	}
	if cfg.Split.Comma {
		t.Fatal("expected comma stage disabled")
	}
	if cfg.Split.BreakMarker != "<cut>" {
		t.Fatalf("break marker = %q", cfg.Split.BreakMarker)
	}
	if cfg.Split.NLPEngine != "rules" {
		t.Fatalf("nlp engine = %q", cfg.Split.NLPEngine)
	}
	if cfg.LLM.APIKey != "file-key" || cfg.LLM.TimeoutSeconds != 60 {
		t.Fatalf("unexpected llm section: %+v", cfg.LLM)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "subseg.toml")
	if err := os.WriteFile(configPath, []byte("[split]\nmax_lenght = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"zero max length", func(c *config.Config) { c.Split.MaxSplitLength = 0 }, "max_split_length"},
		{"zero workers", func(c *config.Config) { c.Split.MaxWorkers = 0 }, "max_workers"},
		{"threshold above one", func(c *config.Config) { c.Split.AlignmentThreshold = 1.5 }, "alignment_threshold"},
		{"unknown engine", func(c *config.Config) { c.Split.NLPEngine = "spacy" }, "nlp_engine"},
		{"zero context words", func(c *config.Config) { c.Split.ContextWords = 0 }, "context_words"},
		{"sentence bounds inverted", func(c *config.Config) { c.Split.MaxSentenceTokens = 10 }, "max_sentence_tokens"},
		{"marker with space", func(c *config.Config) { c.Split.BreakMarker = "[ br ]" }, "break_marker"},
		{"bad input extension", func(c *config.Config) { c.Input.Path = "/tmp/in.docx" }, "input.path"},
		{"bad base url", func(c *config.Config) { c.LLM.BaseURL = "ftp://example" }, "base_url"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSampleParsesAndMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	defaults := config.Default()
	if parsed.Split != defaults.Split {
		t.Fatalf("sample split section drifted from defaults:\n%+v\n%+v", parsed.Split, defaults.Split)
	}
	if parsed.LLM != defaults.LLM {
		t.Fatalf("sample llm section drifted from defaults:\n%+v\n%+v", parsed.LLM, defaults.LLM)
	}
}

func TestEncodeMasksAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-secret-1234"
	out, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if strings.Contains(out, "sk-secret") {
		t.Fatalf("expected api key masked, got:\n%s", out)
	}
	if !strings.Contains(out, "****1234") {
		t.Fatalf("expected masked suffix, got:\n%s", out)
	}
	if cfg.LLM.APIKey != "sk-secret-1234" {
		t.Fatal("Encode must not mutate the receiver")
	}
}
