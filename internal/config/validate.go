package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"subseg/internal/transcript"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateInput() error {
	if c.Input.Path == "" {
		return nil
	}
	if !transcript.Supported(c.Input.Path) {
		return fmt.Errorf("input.path must be an .xlsx, .csv or .txt file (got %q)", filepath.Base(c.Input.Path))
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.MaxSplitLength <= 0 {
		return errors.New("split.max_split_length must be positive")
	}
	if c.Split.MaxWorkers <= 0 {
		return errors.New("split.max_workers must be positive")
	}
	if c.Split.AlignmentThreshold < 0 || c.Split.AlignmentThreshold > 1 {
		return errors.New("split.alignment_threshold must be between 0 and 1")
	}
	if c.Split.MinPhraseTokens < 0 {
		return errors.New("split.min_phrase_tokens must be non-negative")
	}
	if c.Split.LeftWindow <= 0 || c.Split.RightWindow <= 0 {
		return errors.New("split.left_window and split.right_window must be positive")
	}
	if c.Split.ContextWords <= 0 {
		return errors.New("split.context_words must be positive")
	}
	if c.Split.MinSentenceTokens <= 0 || c.Split.MaxSentenceTokens < c.Split.MinSentenceTokens {
		return errors.New("split.max_sentence_tokens must be at least split.min_sentence_tokens, which must be positive")
	}
	switch c.Split.NLPEngine {
	case "auto", "prose", "rules":
	default:
		return fmt.Errorf("split.nlp_engine must be auto, prose, or rules (got %q)", c.Split.NLPEngine)
	}
	if strings.ContainsAny(c.Split.BreakMarker, " \t\n") {
		return errors.New("split.break_marker must not contain whitespace")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL (got %q)", c.LLM.BaseURL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}
