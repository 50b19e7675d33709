package semantic

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"subseg/internal/alignment"
	"subseg/internal/logging"
	"subseg/internal/services"
)

// StageName labels semantic-stage logs and progress.
const StageName = "meaning"

// Options configures an Orchestrator.
type Options struct {
	MaxSplitLength int
	MaxWorkers     int
	Language       string
	Joiner         string
	Marker         string
	Threshold      float64
}

// Stats summarizes one Split call.
type Stats struct {
	Fragments int
	Scheduled int
	Split     int
	Failed    int
	Lines     int
}

// Orchestrator fans over-long fragments out to a Service and reassembles the
// results in input order.
type Orchestrator struct {
	service   Service
	counter   Counter
	recoverer *alignment.Recoverer
	opts      Options
	logger    *slog.Logger
}

// NewOrchestrator builds an orchestrator. A nil counter uses the counter for
// opts.Language.
func NewOrchestrator(service Service, counter Counter, opts Options, logger *slog.Logger) *Orchestrator {
	if opts.MaxSplitLength <= 0 {
		opts.MaxSplitLength = 20
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 1
	}
	if counter == nil {
		counter = CounterFor(opts.Language)
	}
	if opts.Marker == "" {
		opts.Marker = alignment.DefaultMarker
	}
	logger = logging.NewComponentLogger(logger, "semantic")
	return &Orchestrator{
		service: service,
		counter: counter,
		recoverer: alignment.NewRecoverer(alignment.Options{
			Marker:    opts.Marker,
			Joiner:    opts.Joiner,
			Threshold: opts.Threshold,
		}, logger),
		opts:   opts,
		logger: logger,
	}
}

// PartsFor returns the number of parts a fragment of count words is split
// into, or 1 when it fits the budget.
func (o *Orchestrator) PartsFor(count int) int {
	if count <= o.opts.MaxSplitLength {
		return 1
	}
	return (count + o.opts.MaxSplitLength - 1) / o.opts.MaxSplitLength
}

// Split returns the lines for fragments in input order. Fragments within the
// word budget pass through; the rest are split concurrently by at most
// MaxWorkers workers. A failed fragment is kept whole.
func (o *Orchestrator) Split(ctx context.Context, fragments []string) ([]string, Stats) {
	ctx = services.WithStage(ctx, StageName)
	stats := Stats{Fragments: len(fragments)}
	results := make([][]string, len(fragments))

	type job struct {
		index int
		req   Request
	}
	var jobs []job
	for i, fragment := range fragments {
		count := o.counter(fragment)
		parts := o.PartsFor(count)
		if parts == 1 {
			results[i] = []string{fragment}
			continue
		}
		jobs = append(jobs, job{index: i, req: Request{
			Sentence:  fragment,
			Parts:     parts,
			WordLimit: o.opts.MaxSplitLength,
			Language:  o.opts.Language,
		}})
	}
	stats.Scheduled = len(jobs)

	logger := logging.WithContext(ctx, o.logger)
	if len(jobs) > 0 {
		logger.Info("semantic split started",
			logging.Int("fragments", len(fragments)),
			logging.Int("scheduled", len(jobs)),
			logging.Int("workers", o.opts.MaxWorkers),
		)
	}

	var (
		split, failed, done atomic.Int64
		sampler             = logging.NewProgressSampler(10)
		group               errgroup.Group
	)
	group.SetLimit(o.opts.MaxWorkers)
	for _, j := range jobs {
		group.Go(func() error {
			lines, ok := o.splitOne(ctx, j.index, j.req)
			results[j.index] = lines
			if ok {
				split.Add(1)
			} else {
				failed.Add(1)
			}
			finished := int(done.Add(1))
			if percent, emit := sampler.Observe(StageName, finished, len(jobs)); emit {
				logger.Info("semantic split progress",
					logging.Int("done", finished),
					logging.Int("total", len(jobs)),
					logging.Float64(logging.FieldProgressPercent, percent),
				)
			}
			return nil
		})
	}
	_ = group.Wait()

	out := make([]string, 0, len(fragments))
	for _, lines := range results {
		out = append(out, lines...)
	}
	stats.Split = int(split.Load())
	stats.Failed = int(failed.Load())
	stats.Lines = len(out)
	return out, stats
}

// splitOne returns the segments for one fragment and whether it was split.
func (o *Orchestrator) splitOne(ctx context.Context, index int, req Request) ([]string, bool) {
	ctx = services.WithFragmentIndex(ctx, index)
	logger := logging.WithContext(ctx, o.logger)
	keep := []string{req.Sentence}

	if o.service == nil {
		o.warnFailure(logger, req, services.Wrap(services.ErrConfiguration, StageName, "split", "no service configured", nil))
		return keep, false
	}
	if err := ctx.Err(); err != nil {
		o.warnFailure(logger, req, err)
		return keep, false
	}
	resp, err := o.service.Split(ctx, req)
	if err != nil {
		o.warnFailure(logger, req, err)
		return keep, false
	}
	if err := resp.Validate(o.opts.Marker); err != nil {
		o.warnFailure(logger, req, services.Wrap(services.ErrSemanticService, StageName, "split",
			"service returned an unusable proposal", err))
		return keep, false
	}
	markers := o.recoverer.RecoverContext(ctx, req.Sentence, resp.Chosen())
	segments := alignment.Apply(req.Sentence, alignment.Offsets(markers))
	if len(segments) < 2 {
		o.warnFailure(logger, req, services.Wrap(services.ErrSemanticService, StageName, "align",
			"no usable break in chosen split", nil))
		return keep, false
	}
	logger.Debug("fragment split",
		logging.Int("parts", len(segments)),
		logging.String("choice", resp.Choice),
	)
	return segments, true
}

func (o *Orchestrator) warnFailure(logger *slog.Logger, req Request, err error) {
	logging.WarnWithContext(logger, "semantic split failed; keeping fragment", "semantic_split_failed",
		logging.Int("parts", req.Parts),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check llm connectivity and model output"),
		logging.String(logging.FieldImpact, "fragment stays on one line"),
	)
}
