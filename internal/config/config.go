package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds the on-disk locations subseg writes to.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	CachePath string `toml:"cache_path"`
}

// Input selects the transcript file and, for spreadsheets, the column to read.
type Input struct {
	Path   string `toml:"path"`
	Column string `toml:"column"`
	Sheet  string `toml:"sheet"`
}

// Split tunes the splitting stages.
type Split struct {
	Language           string  `toml:"language"`
	MaxSplitLength     int     `toml:"max_split_length"`
	MaxWorkers         int     `toml:"max_workers"`
	Comma              bool    `toml:"comma"`
	Connector          bool    `toml:"connector"`
	LongSplit          bool    `toml:"long_split"`
	Semantic           bool    `toml:"semantic"`
	Resume             bool    `toml:"resume"`
	BreakMarker        string  `toml:"break_marker"`
	AlignmentThreshold float64 `toml:"alignment_threshold"`
	MinPhraseTokens    int     `toml:"min_phrase_tokens"`
	LeftWindow         int     `toml:"left_window"`
	RightWindow        int     `toml:"right_window"`
	ContextWords       int     `toml:"context_words"`
	MaxSentenceTokens  int     `toml:"max_sentence_tokens"`
	MinSentenceTokens  int     `toml:"min_sentence_tokens"`
	NLPEngine          string  `toml:"nlp_engine"`
}

// LLM describes the chat completion endpoint used by the semantic stage.
type LLM struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Model            string `toml:"model"`
	Referer          string `toml:"referer"`
	Title            string `toml:"title"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	RetryAttempts    int    `toml:"retry_attempts"`
	ResponseAttempts int    `toml:"response_attempts"`
	CacheEnabled     bool   `toml:"cache_enabled"`
}

// Logging controls log output format, verbosity, and file retention.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config is the full subseg configuration, one TOML table per section.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Input   Input   `toml:"input"`
	Split   Split   `toml:"split"`
	LLM     LLM     `toml:"llm"`
	Logging Logging `toml:"logging"`
}

// SemanticReady is true when the semantic stage is enabled and has a key.
func (c *Config) SemanticReady() bool {
	return c.Split.Semantic && strings.TrimSpace(c.LLM.APIKey) != ""
}

// EnsureDirectories creates the output and log directories, plus the cache
// directory when caching is on.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir}
	if c.LLM.CacheEnabled && c.Paths.CachePath != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.CachePath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LLMConfig is the subset of settings the chat client needs.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	RetryAttempts  int
}

// GetLLM extracts the client settings with whitespace trimmed.
func (c *Config) GetLLM() LLMConfig {
	l := c.LLM
	return LLMConfig{
		APIKey:         strings.TrimSpace(l.APIKey),
		BaseURL:        strings.TrimSpace(l.BaseURL),
		Model:          strings.TrimSpace(l.Model),
		Referer:        strings.TrimSpace(l.Referer),
		Title:          strings.TrimSpace(l.Title),
		TimeoutSeconds: l.TimeoutSeconds,
		RetryAttempts:  l.RetryAttempts,
	}
}
