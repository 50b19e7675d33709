package pipeline

import (
	"fmt"
	"log/slog"

	"subseg/internal/checkpoint"
	"subseg/internal/config"
	"subseg/internal/language"
	"subseg/internal/llmcache"
	"subseg/internal/nlp"
	"subseg/internal/semantic"
	"subseg/internal/services"
	"subseg/internal/services/llm"
	"subseg/internal/splitting"
	"subseg/internal/transcript"
)

// Build wires a Coordinator from configuration. The returned closer releases
// the response cache and must be called once the run has finished.
func Build(cfg *config.Config, logger *slog.Logger) (*Coordinator, func() error, error) {
	if cfg == nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "nil config", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "prepare directories", err)
	}

	lang := language.Normalize(cfg.Split.Language)
	joiner := language.Joiner(lang)
	chain, err := nlp.ForLanguage(lang, cfg.Split.NLPEngine, logger)
	if err != nil {
		return nil, nil, err
	}

	store, err := checkpoint.NewStore(cfg.Paths.OutputDir)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "open checkpoints", err)
	}

	input := cfg.Input
	components := Components{
		Load: func() ([]string, error) {
			return transcript.Load(input.Path, transcript.Options{Column: input.Column, Sheet: input.Sheet})
		},
		Segmenter: splitting.NewSegmenter(chain, joiner, logger),
		Comma: splitting.NewCommaSplitter(chain, splitting.Options{
			LeftWindow:      cfg.Split.LeftWindow,
			RightWindow:     cfg.Split.RightWindow,
			MinPhraseTokens: cfg.Split.MinPhraseTokens,
		}, logger),
		Connector: splitting.NewConnectorSplitter(chain, lang, cfg.Split.ContextWords, logger),
		Long: splitting.NewLongSplitter(chain, splitting.LongOptions{
			MaxTokens: cfg.Split.MaxSentenceTokens,
			MinTokens: cfg.Split.MinSentenceTokens,
		}, logger),
		Checkpoints: store,
	}
	closer := func() error { return nil }

	if cfg.SemanticReady() {
		llmCfg := cfg.GetLLM()
		client := llm.NewClient(llm.Config{
			APIKey:         llmCfg.APIKey,
			BaseURL:        llmCfg.BaseURL,
			Model:          llmCfg.Model,
			Referer:        llmCfg.Referer,
			Title:          llmCfg.Title,
			TimeoutSeconds: llmCfg.TimeoutSeconds,
			RetryAttempts:  llmCfg.RetryAttempts,
		})
		marker := cfg.Split.BreakMarker
		var completer semantic.Completer = client
		if cfg.LLM.CacheEnabled {
			cache, err := llmcache.Open(cfg.Paths.CachePath)
			if err != nil {
				return nil, nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "open llm cache", err)
			}
			completer = llmcache.Wrap(cache, client, client.Model(),
				llmcache.WithLogger(logger),
				llmcache.WithValidator(func(raw string) error {
					_, err := semantic.ParseResponse(raw, marker)
					return err
				}),
			)
			closer = cache.Close
		}
		service := semantic.NewPromptService(completer, lang, marker,
			semantic.WithAttempts(cfg.LLM.ResponseAttempts),
			semantic.WithLogger(logger),
		)
		components.Usage = client.Usage
		components.Semantic = semantic.NewOrchestrator(service, semantic.CounterFor(lang), semantic.Options{
			MaxSplitLength: cfg.Split.MaxSplitLength,
			MaxWorkers:     cfg.Split.MaxWorkers,
			Language:       lang,
			Joiner:         joiner,
			Marker:         marker,
			Threshold:      cfg.Split.AlignmentThreshold,
		}, logger)
	}

	coordinator := New(components, Settings{
		Comma:     cfg.Split.Comma,
		Connector: cfg.Split.Connector,
		LongSplit: cfg.Split.LongSplit,
		Semantic:  cfg.Split.Semantic,
		Resume:    cfg.Split.Resume,
		Profiles:  profiles(cfg, lang),
	}, logger)
	return coordinator, closer, nil
}

// profiles describes the options behind each checkpoint so resume can tell
// when a checkpoint was produced under different settings.
func profiles(cfg *config.Config, lang string) map[checkpoint.Stage]string {
	split := cfg.Split
	return map[checkpoint.Stage]string{
		checkpoint.StageMark: fmt.Sprintf("input=%s,column=%s,sheet=%s,lang=%s,engine=%s",
			cfg.Input.Path, cfg.Input.Column, cfg.Input.Sheet, lang, split.NLPEngine),
		checkpoint.StageComma: fmt.Sprintf("left=%d,right=%d,min=%d",
			split.LeftWindow, split.RightWindow, split.MinPhraseTokens),
		checkpoint.StageConnector: fmt.Sprintf("context=%d", split.ContextWords),
		checkpoint.StageNLP:       fmt.Sprintf("max=%d,min=%d", split.MaxSentenceTokens, split.MinSentenceTokens),
		checkpoint.StageMeaning: fmt.Sprintf("length=%d,marker=%s,model=%s,threshold=%g",
			split.MaxSplitLength, split.BreakMarker, cfg.LLM.Model, split.AlignmentThreshold),
	}
}
