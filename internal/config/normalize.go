package config

import (
	"fmt"
	"os"
	"strings"

	"subseg/internal/language"
)

// normalize trims and lower-cases free-form fields, fills blanks with
// defaults, expands paths and clamps out-of-range numbers.
func (c *Config) normalize() error {
	paths := []struct {
		key      string
		field    *string
		fallback string
	}{
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.log_dir", &c.Paths.LogDir, ""},
		{"paths.cache_path", &c.Paths.CachePath, defaultCachePath},
		{"input.path", &c.Input.Path, ""},
	}
	for _, p := range paths {
		value := orDefault(*p.field, p.fallback)
		expanded, err := ExpandPath(value)
		if err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
		*p.field = expanded
	}

	c.Input.Column = orDefault(c.Input.Column, defaultInputColumn)
	c.Input.Sheet = strings.TrimSpace(c.Input.Sheet)

	c.Split.Language = orDefault(language.Normalize(c.Split.Language), defaultLanguage)
	c.Split.NLPEngine = orDefault(strings.ToLower(c.Split.NLPEngine), defaultNLPEngine)
	c.Split.BreakMarker = orDefault(c.Split.BreakMarker, defaultBreakMarker)
	c.Split.MaxWorkers = min(c.Split.MaxWorkers, maxWorkersCeiling)

	if strings.TrimSpace(c.LLM.APIKey) == "" {
		c.LLM.APIKey = keyFromEnv()
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = orDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = orDefault(c.LLM.Model, defaultLLMModel)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.RetryAttempts = max(c.LLM.RetryAttempts, 0)
	if c.LLM.ResponseAttempts <= 0 {
		c.LLM.ResponseAttempts = defaultResponseAttempts
	}

	if format := strings.ToLower(strings.TrimSpace(c.Logging.Format)); format == "json" {
		c.Logging.Format = format
	} else {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = orDefault(strings.ToLower(c.Logging.Level), defaultLogLevel)
	c.Logging.RetentionDays = max(c.Logging.RetentionDays, 0)
	return nil
}

// keyFromEnv returns the first non-blank value among APIKeyEnvVars.
func keyFromEnv() string {
	for _, name := range APIKeyEnvVars {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
