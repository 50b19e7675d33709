package config

const (
	defaultConfigPath         = "~/.config/subseg/config.toml"
	projectConfigName         = "subseg.toml"
	defaultOutputDir          = "output"
	defaultLogDir             = "~/.local/share/subseg/logs"
	defaultCachePath          = "~/.cache/subseg/llm_cache.db"
	defaultLogRetentionDays   = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultInputColumn        = "text"
	defaultLanguage           = "en"
	defaultMaxSplitLength     = 20
	defaultMaxWorkers         = 4
	defaultBreakMarker        = "[br]"
	defaultAlignmentThreshold = 0.9
	defaultMinPhraseTokens    = 3
	defaultLeftWindow         = 9
	defaultRightWindow        = 10
	defaultContextWords       = 5
	defaultMaxSentenceTokens  = 60
	defaultMinSentenceTokens  = 30
	defaultNLPEngine          = "auto"
	defaultLLMBaseURL         = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel           = "google/gemini-3-flash-preview"
	defaultLLMReferer         = "https://github.com/subseg/subseg"
	defaultLLMTitle           = "subseg semantic splitter"
	defaultLLMTimeoutSeconds  = 60
	defaultLLMRetryAttempts   = 3
	defaultResponseAttempts   = 3
	maxWorkersCeiling         = 64
)

// APIKeyEnvVars lists the environment variables consulted, in order, when
// llm.api_key is empty.
var APIKeyEnvVars = []string{"SUBSEG_LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CachePath: defaultCachePath,
		},
		Input: Input{
			Column: defaultInputColumn,
		},
		Split: Split{
			Language:           defaultLanguage,
			MaxSplitLength:     defaultMaxSplitLength,
			MaxWorkers:         defaultMaxWorkers,
			Comma:              true,
			Connector:          true,
			LongSplit:          true,
			Semantic:           true,
			BreakMarker:        defaultBreakMarker,
			AlignmentThreshold: defaultAlignmentThreshold,
			MinPhraseTokens:    defaultMinPhraseTokens,
			LeftWindow:         defaultLeftWindow,
			RightWindow:        defaultRightWindow,
			ContextWords:       defaultContextWords,
			MaxSentenceTokens:  defaultMaxSentenceTokens,
			MinSentenceTokens:  defaultMinSentenceTokens,
			NLPEngine:          defaultNLPEngine,
		},
		LLM: LLM{
			BaseURL:          defaultLLMBaseURL,
			Model:            defaultLLMModel,
			Referer:          defaultLLMReferer,
			Title:            defaultLLMTitle,
			TimeoutSeconds:   defaultLLMTimeoutSeconds,
			RetryAttempts:    defaultLLMRetryAttempts,
			ResponseAttempts: defaultResponseAttempts,
			CacheEnabled:     true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
