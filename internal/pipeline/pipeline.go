package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subseg/internal/checkpoint"
	"subseg/internal/logging"
	"subseg/internal/semantic"
	"subseg/internal/services"
	"subseg/internal/services/llm"
	"subseg/internal/splitting"
)

// Stage statuses reported in Result.
const (
	StatusRan     = "ran"
	StatusResumed = "resumed"
	StatusSkipped = "skipped"
)

// Segmenter produces sentences from transcript units.
type Segmenter interface {
	Segment(units []string) []splitting.Sentence
}

// Strategy rewrites sentences into finer fragments. The comma, connector and
// long-sentence splitters implement it.
type Strategy interface {
	Split(sentences []string) ([]string, splitting.Stats)
}

// SemanticSplitter splits over-long fragments.
type SemanticSplitter interface {
	Split(ctx context.Context, fragments []string) ([]string, semantic.Stats)
}

// Loader supplies transcript units. It is called at most once per run.
type Loader func() ([]string, error)

// Components are the collaborators a Coordinator drives. Semantic may be nil
// when no text-generation service is available. Usage, when set, reports the
// service traffic of the run.
type Components struct {
	Load        Loader
	Segmenter   Segmenter
	Comma       Strategy
	Connector   Strategy
	Long        Strategy
	Semantic    SemanticSplitter
	Checkpoints *checkpoint.Store
	Usage       func() llm.Usage
}

// Settings toggles optional stages. Profiles holds, per stage, a description
// of the options that shape its output; a checkpoint is reused only when the
// profiles and toggles of its stage and every earlier stage are unchanged.
type Settings struct {
	Comma     bool
	Connector bool
	LongSplit bool
	Semantic  bool
	Resume    bool
	Profiles  map[checkpoint.Stage]string
}

// StageResult describes one stage of a run.
type StageResult struct {
	Stage    checkpoint.Stage
	Status   string
	In       int
	Out      int
	Failed   int
	Duration time.Duration
	Path     string
	Note     string
}

// Splits is the number of extra units the stage produced.
func (r StageResult) Splits() int {
	if r.Out < r.In {
		return 0
	}
	return r.Out - r.In
}

// Result is the outcome of a run.
type Result struct {
	RunID  string
	Stages []StageResult
	Lines  []string
	Output string
	Usage  llm.Usage
}

// Coordinator runs the stage sequence.
type Coordinator struct {
	components Components
	settings   Settings
	logger     *slog.Logger
}

// New builds a coordinator.
func New(components Components, settings Settings, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		components: components,
		settings:   settings,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes the pipeline and returns the final lines in input order.
func (c *Coordinator) Run(ctx context.Context) (Result, error) {
	store := c.components.Checkpoints
	if store == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "run", "no checkpoint store", nil)
	}
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)

	unlock, err := store.Lock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "lock", store.Dir(), err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	result := Result{RunID: runID}
	start := -1
	var lines []string
	if c.settings.Resume {
		start = c.resumePoint()
	}
	if start >= 0 {
		stage := checkpoint.Stages[start]
		lines, err = store.Read(stage)
		if err != nil {
			return result, services.Wrap(services.ErrInputUnavailable, "pipeline", "resume", string(stage), err)
		}
		for _, earlier := range checkpoint.Stages[:start+1] {
			sr := StageResult{Stage: earlier, Status: StatusResumed}
			if earlier == stage {
				sr.Out = len(lines)
				sr.Path = store.Path(stage)
				result.Output = sr.Path
			}
			result.Stages = append(result.Stages, sr)
		}
		logger.Info("resuming from checkpoint",
			logging.String("checkpoint", string(stage)),
			logging.Int("units", len(lines)),
		)
	}

	for _, stage := range checkpoint.Stages[start+1:] {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		stageCtx := services.WithStage(ctx, string(stage))
		began := time.Now()
		sr, next, err := c.runStage(stageCtx, stage, lines)
		if err != nil {
			return result, err
		}
		sr.Duration = time.Since(began)
		if sr.Status == StatusRan {
			lines = next
			written, err := store.Write(stage, lines)
			if err == nil {
				err = store.Record(stage, c.Signature(stage))
			}
			if err != nil {
				return result, services.Wrap(services.ErrConfiguration, "pipeline", "checkpoint", string(stage), err)
			}
			sr.Out = written
			sr.Path = store.Path(stage)
			result.Output = sr.Path
		} else if err := store.Remove(stage); err != nil {
			return result, services.Wrap(services.ErrConfiguration, "pipeline", "checkpoint", string(stage), err)
		}
		result.Stages = append(result.Stages, sr)
		logging.WithContext(stageCtx, c.logger).Info("stage finished",
			logging.String("status", sr.Status),
			logging.Int("in", sr.In),
			logging.Int("out", sr.Out),
			logging.Int("splits", sr.Splits()),
			logging.Duration("duration", sr.Duration),
		)
	}

	result.Lines = lines
	if c.components.Usage != nil {
		result.Usage = c.components.Usage()
	}
	logger.Info("pipeline complete",
		logging.Int("lines", len(lines)),
		logging.String("output", result.Output),
	)
	return result, nil
}

func (c *Coordinator) runStage(ctx context.Context, stage checkpoint.Stage, lines []string) (StageResult, []string, error) {
	sr := StageResult{Stage: stage, Status: StatusRan, In: len(lines)}
	switch stage {
	case checkpoint.StageMark:
		if c.components.Segmenter == nil {
			return sr, nil, services.Wrap(services.ErrConfiguration, "pipeline", "mark", "no segmenter configured", nil)
		}
		units, err := c.load()
		if err != nil {
			return sr, nil, err
		}
		sr.In = len(units)
		return sr, splitting.Texts(c.components.Segmenter.Segment(units)), nil

	case checkpoint.StageComma:
		sr, out := c.applyStrategy(sr, c.components.Comma, lines)
		return sr, out, nil

	case checkpoint.StageConnector:
		sr, out := c.applyStrategy(sr, c.components.Connector, lines)
		return sr, out, nil

	case checkpoint.StageNLP:
		if !c.enabled(stage) {
			sr.Note = "long split disabled"
			return sr, lines, nil
		}
		out, stats := c.components.Long.Split(lines)
		sr.Failed = stats.Fallbacks
		return sr, out, nil

	case checkpoint.StageMeaning:
		if !c.settings.Semantic {
			sr.Status = StatusSkipped
			sr.Note = "disabled"
			return sr, lines, nil
		}
		if c.components.Semantic == nil {
			sr.Status = StatusSkipped
			sr.Note = "no llm configured"
			logging.WarnWithContext(logging.WithContext(ctx, c.logger), "semantic stage skipped", "semantic_unavailable",
				logging.String(logging.FieldErrorHint, "set llm.api_key or SUBSEG_LLM_API_KEY"),
				logging.String(logging.FieldImpact, "long sentences are not split by meaning"),
			)
			return sr, lines, nil
		}
		out, stats := c.components.Semantic.Split(ctx, lines)
		sr.Failed = stats.Failed
		return sr, out, nil
	}
	return sr, nil, fmt.Errorf("unknown stage %q", stage)
}

func (c *Coordinator) load() ([]string, error) {
	if c.components.Load == nil {
		return nil, services.Wrap(services.ErrInputUnavailable, "pipeline", "load", "no input configured", nil)
	}
	units, err := c.components.Load()
	if err != nil {
		if errors.Is(err, services.ErrInputUnavailable) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrInputUnavailable, "pipeline", "load", "read input", err)
	}
	return units, nil
}

// applyStrategy runs an optional strategy stage, or marks it skipped when
// it is disabled.
func (c *Coordinator) applyStrategy(sr StageResult, strategy Strategy, lines []string) (StageResult, []string) {
	if !c.enabled(sr.Stage) {
		sr.Status = StatusSkipped
		sr.Note = "disabled"
		return sr, lines
	}
	out, stats := strategy.Split(lines)
	sr.Failed = stats.Fallbacks
	return sr, out
}

// enabled reports whether the optional part of stage will run: its toggle is
// on and its component is present. Mark always runs.
func (c *Coordinator) enabled(stage checkpoint.Stage) bool {
	switch stage {
	case checkpoint.StageComma:
		return c.settings.Comma && c.components.Comma != nil
	case checkpoint.StageConnector:
		return c.settings.Connector && c.components.Connector != nil
	case checkpoint.StageNLP:
		return c.settings.LongSplit && c.components.Long != nil
	case checkpoint.StageMeaning:
		return c.settings.Semantic && c.components.Semantic != nil
	}
	return true
}

// Signature describes the settings a checkpoint for stage depends on: the
// toggle and profile of that stage and of every stage before it.
func (c *Coordinator) Signature(stage checkpoint.Stage) string {
	var parts []string
	for _, s := range checkpoint.Stages {
		state := "off"
		if c.enabled(s) {
			state = "on"
			if profile := c.settings.Profiles[s]; profile != "" {
				state += "(" + profile + ")"
			}
		}
		parts = append(parts, string(s)+"="+state)
		if s == stage {
			break
		}
	}
	return strings.Join(parts, ";")
}

// resumePoint returns the index of the furthest checkpoint whose stage
// produces a checkpoint under the current settings and whose recorded
// signature matches them, or -1.
func (c *Coordinator) resumePoint() int {
	store := c.components.Checkpoints
	for i := len(checkpoint.Stages) - 1; i >= 0; i-- {
		stage := checkpoint.Stages[i]
		if optional(stage) && !c.enabled(stage) {
			continue
		}
		if store.Usable(stage, c.Signature(stage)) {
			return i
		}
	}
	return -1
}

// optional reports whether a disabled stage is skipped outright, leaving no
// checkpoint. The nlp stage always writes one.
func optional(stage checkpoint.Stage) bool {
	return stage == checkpoint.StageComma || stage == checkpoint.StageConnector || stage == checkpoint.StageMeaning
}
