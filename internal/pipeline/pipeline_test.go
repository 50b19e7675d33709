package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"subseg/internal/checkpoint"
	"subseg/internal/config"
	"subseg/internal/logging"
	"subseg/internal/semantic"
	"subseg/internal/services"
	"subseg/internal/splitting"
	"subseg/internal/testsupport"
)

type lineSegmenter struct{}

func (lineSegmenter) Segment(units []string) []splitting.Sentence {
	out := make([]splitting.Sentence, 0, len(units))
	for _, u := range units {
		out = append(out, splitting.Sentence{Text: u})
	}
	return out
}

type sepSplitter struct {
	sep   string
	calls int
}

func (s *sepSplitter) split(lines []string) []string {
	s.calls++
	var out []string
	for _, line := range lines {
		for _, part := range strings.Split(line, s.sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type fakeStrategy struct{ sepSplitter }

func (f *fakeStrategy) Split(lines []string) ([]string, splitting.Stats) {
	out := f.split(lines)
	return out, splitting.Stats{Sentences: len(lines), Fragments: len(out)}
}

type fakeSemantic struct{ sepSplitter }

func (f *fakeSemantic) Split(_ context.Context, lines []string) ([]string, semantic.Stats) {
	out := f.split(lines)
	return out, semantic.Stats{Fragments: len(lines), Lines: len(out)}
}

type harness struct {
	store     *checkpoint.Store
	comma     *fakeStrategy
	connector *fakeStrategy
	long      *fakeStrategy
	semantic  *fakeSemantic
	loads     int
	units     []string
	loadErr   error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := checkpoint.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return &harness{
		store:     store,
		comma:     &fakeStrategy{sepSplitter{sep: ","}},
		connector: &fakeStrategy{sepSplitter{sep: "|"}},
		long:      &fakeStrategy{sepSplitter{sep: "/"}},
		semantic:  &fakeSemantic{sepSplitter{sep: ";"}},
		units:     []string{"one, two; three", "four"},
	}
}

func (h *harness) components() Components {
	return Components{
		Load: func() ([]string, error) {
			h.loads++
			return h.units, h.loadErr
		},
		Segmenter:   lineSegmenter{},
		Comma:       h.comma,
		Connector:   h.connector,
		Long:        h.long,
		Semantic:    h.semantic,
		Checkpoints: h.store,
	}
}

// seed writes a checkpoint as a run under coord would have left it.
func (h *harness) seed(t *testing.T, coord *Coordinator, stage checkpoint.Stage, lines []string) {
	t.Helper()
	if _, err := h.store.Write(stage, lines); err != nil {
		t.Fatalf("Write %s: %v", stage, err)
	}
	if err := h.store.Record(stage, coord.Signature(stage)); err != nil {
		t.Fatalf("Record %s: %v", stage, err)
	}
}

func statuses(result Result) map[checkpoint.Stage]string {
	out := make(map[checkpoint.Stage]string)
	for _, sr := range result.Stages {
		out[sr.Stage] = sr.Status
	}
	return out
}

func TestRunAllStages(t *testing.T) {
	h := newHarness(t)
	settings := Settings{Comma: true, Connector: true, LongSplit: true, Semantic: true}
	result, err := New(h.components(), settings, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(result.Lines, want) {
		t.Fatalf("lines = %q, want %q", result.Lines, want)
	}
	if result.RunID == "" {
		t.Fatal("expected run id")
	}
	for _, stage := range checkpoint.Stages {
		if !h.store.Exists(stage) {
			t.Fatalf("missing %s checkpoint", stage)
		}
		if got := statuses(result)[stage]; got != StatusRan {
			t.Fatalf("%s status = %q", stage, got)
		}
	}
	if result.Output != h.store.Path(checkpoint.StageMeaning) {
		t.Fatalf("output = %q", result.Output)
	}
	comma, err := h.store.Read(checkpoint.StageComma)
	if err != nil {
		t.Fatalf("Read comma: %v", err)
	}
	if !reflect.DeepEqual(comma, []string{"one", "two; three", "four"}) {
		t.Fatalf("comma checkpoint = %q", comma)
	}
	if h.loads != 1 {
		t.Fatalf("loads = %d, want 1", h.loads)
	}
	if h.connector.calls != 1 || h.long.calls != 1 {
		t.Fatalf("connector=%d long=%d calls, want 1 each", h.connector.calls, h.long.calls)
	}
}

func TestRunCommaDisabledSkipsCheckpoint(t *testing.T) {
	h := newHarness(t)
	result, err := New(h.components(), Settings{Semantic: false}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, stage := range []checkpoint.Stage{checkpoint.StageComma, checkpoint.StageConnector, checkpoint.StageMeaning} {
		if h.store.Exists(stage) {
			t.Fatalf("disabled %s stage wrote a checkpoint", stage)
		}
	}
	if !h.store.Exists(checkpoint.StageNLP) {
		t.Fatal("nlp checkpoint must always be written")
	}
	if h.comma.calls+h.connector.calls+h.long.calls+h.semantic.calls != 0 {
		t.Fatalf("disabled stages called: comma=%d connector=%d long=%d semantic=%d",
			h.comma.calls, h.connector.calls, h.long.calls, h.semantic.calls)
	}
	if !reflect.DeepEqual(result.Lines, h.units) {
		t.Fatalf("lines = %q", result.Lines)
	}
	if result.Output != h.store.Path(checkpoint.StageNLP) {
		t.Fatalf("output = %q", result.Output)
	}
}

func TestRunSemanticUnavailableIsSkipped(t *testing.T) {
	h := newHarness(t)
	components := h.components()
	components.Semantic = nil
	result, err := New(components, Settings{Comma: true, Semantic: true}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := statuses(result)[checkpoint.StageMeaning]; got != StatusSkipped {
		t.Fatalf("meaning status = %q", got)
	}
	if h.store.Exists(checkpoint.StageMeaning) {
		t.Fatal("skipped meaning stage wrote a checkpoint")
	}
}

func TestRunResumesFromFurthestCheckpoint(t *testing.T) {
	h := newHarness(t)
	coord := New(h.components(), Settings{Comma: true, Semantic: true, Resume: true}, logging.NewNop())
	h.seed(t, coord, checkpoint.StageMark, []string{"stale"})
	h.seed(t, coord, checkpoint.StageNLP, []string{"a; b", "c"})
	h.loadErr = errors.New("input must not be read on resume")

	result, err := coord.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.loads != 0 || h.comma.calls != 0 {
		t.Fatalf("resumed run recomputed earlier stages: loads=%d comma=%d", h.loads, h.comma.calls)
	}
	if !reflect.DeepEqual(result.Lines, []string{"a", "b", "c"}) {
		t.Fatalf("lines = %q", result.Lines)
	}
	got := statuses(result)
	if got[checkpoint.StageNLP] != StatusResumed || got[checkpoint.StageMeaning] != StatusRan {
		t.Fatalf("statuses = %v", got)
	}
}

func TestRunResumeIgnoresDisabledCommaCheckpoint(t *testing.T) {
	h := newHarness(t)
	h.seed(t, New(h.components(), Settings{Comma: true}, logging.NewNop()), checkpoint.StageComma, []string{"from comma"})

	result, err := New(h.components(), Settings{Resume: true}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.loads != 1 {
		t.Fatalf("loads = %d, want 1", h.loads)
	}
	if !reflect.DeepEqual(result.Lines, h.units) {
		t.Fatalf("lines = %q", result.Lines)
	}
	if h.store.Exists(checkpoint.StageComma) {
		t.Fatal("disabled comma stage left its checkpoint behind")
	}
}

func TestRunResumeAfterCommaToggledOff(t *testing.T) {
	h := newHarness(t)
	if _, err := New(h.components(), Settings{Comma: true}, logging.NewNop()).Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if !h.store.Exists(checkpoint.StageComma) {
		t.Fatal("first run must write the comma checkpoint")
	}

	result, err := New(h.components(), Settings{Comma: false, Resume: true}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	want := []string{"one, two; three", "four"}
	if !reflect.DeepEqual(result.Lines, want) {
		t.Fatalf("lines = %q, want %q", result.Lines, want)
	}
	if h.loads != 1 || h.comma.calls != 1 {
		t.Fatalf("loads=%d comma=%d, want the mark checkpoint reused and no comma rerun", h.loads, h.comma.calls)
	}
	got := statuses(result)
	if got[checkpoint.StageMark] != StatusResumed || got[checkpoint.StageNLP] != StatusRan {
		t.Fatalf("statuses = %v", got)
	}
	if h.store.Exists(checkpoint.StageComma) {
		t.Fatal("stale comma checkpoint survived")
	}
	nlpLines, err := h.store.Read(checkpoint.StageNLP)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(nlpLines, want) {
		t.Fatalf("nlp checkpoint = %q", nlpLines)
	}
}

func TestRunResumeIgnoresUnsignedCheckpoint(t *testing.T) {
	h := newHarness(t)
	if _, err := h.store.Write(checkpoint.StageNLP, []string{"from an older run"}); err != nil {
		t.Fatal(err)
	}
	result, err := New(h.components(), Settings{Resume: true}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.loads != 1 {
		t.Fatalf("loads = %d, want 1", h.loads)
	}
	if !reflect.DeepEqual(result.Lines, h.units) {
		t.Fatalf("lines = %q", result.Lines)
	}
}

func TestRunResumeRecomputesAfterProfileChange(t *testing.T) {
	h := newHarness(t)
	first := Settings{Comma: true, Profiles: map[checkpoint.Stage]string{checkpoint.StageComma: "min=3"}}
	if _, err := New(h.components(), first, logging.NewNop()).Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second := Settings{Comma: true, Resume: true, Profiles: map[checkpoint.Stage]string{checkpoint.StageComma: "min=4"}}
	result, err := New(h.components(), second, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if h.loads != 1 || h.comma.calls != 2 {
		t.Fatalf("loads=%d comma=%d, want mark reused and comma rerun", h.loads, h.comma.calls)
	}
	if got := statuses(result)[checkpoint.StageComma]; got != StatusRan {
		t.Fatalf("comma status = %q", got)
	}
}

func TestSignatureCoversEarlierStages(t *testing.T) {
	settings := Settings{Comma: true, Profiles: map[checkpoint.Stage]string{checkpoint.StageComma: "min=3"}}
	coord := New(Components{Comma: &fakeStrategy{}}, settings, logging.NewNop())

	if got, want := coord.Signature(checkpoint.StageMark), "mark=on"; got != want {
		t.Fatalf("mark signature = %q, want %q", got, want)
	}
	if got, want := coord.Signature(checkpoint.StageConnector), "mark=on;comma=on(min=3);connector=off"; got != want {
		t.Fatalf("connector signature = %q, want %q", got, want)
	}
	if strings.Contains(coord.Signature(checkpoint.StageComma), "nlp") {
		t.Fatal("signature must not depend on later stages")
	}
}

func TestRunWithoutResumeRecomputes(t *testing.T) {
	h := newHarness(t)
	if _, err := h.store.Write(checkpoint.StageNLP, []string{"old"}); err != nil {
		t.Fatal(err)
	}
	result, err := New(h.components(), Settings{Comma: true}, logging.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.loads != 1 {
		t.Fatalf("loads = %d, want 1", h.loads)
	}
	lines, err := h.store.Read(checkpoint.StageNLP)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lines, result.Lines) {
		t.Fatalf("nlp checkpoint = %q, lines = %q", lines, result.Lines)
	}
}

func TestRunInputFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.loadErr = errors.New("no such file")
	_, err := New(h.components(), Settings{Comma: true}, logging.NewNop()).Run(context.Background())
	if !errors.Is(err, services.ErrInputUnavailable) {
		t.Fatalf("err = %v, want ErrInputUnavailable", err)
	}
	if !services.IsFatal(err) {
		t.Fatal("input failure must be fatal")
	}
	for _, stage := range checkpoint.Stages {
		if h.store.Exists(stage) {
			t.Fatalf("%s checkpoint written after input failure", stage)
		}
	}
}

func TestRunRefusesLockedDirectory(t *testing.T) {
	h := newHarness(t)
	unlock, err := h.store.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	_, err = New(h.components(), Settings{}, logging.NewNop()).Run(context.Background())
	if !errors.Is(err, checkpoint.ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	if h.loads != 0 {
		t.Fatal("locked run must not read input")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(h.components(), Settings{}, logging.NewNop()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBuildRunsWithoutLLM(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithInput("transcript.csv"),
		testsupport.WithSplit(func(s *config.Split) {
			s.NLPEngine = "rules"
			s.Semantic = true
		}),
	)
	testsupport.WriteLines(t, cfg.Input.Path, []string{"text", "Hello there.", "How are you?"})

	coordinator, closer, err := Build(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer closer()

	result, err := coordinator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"Hello there.", "How are you?"}
	if !reflect.DeepEqual(result.Lines, want) {
		t.Fatalf("lines = %q, want %q", result.Lines, want)
	}
	if got := statuses(result)[checkpoint.StageMeaning]; got != StatusSkipped {
		t.Fatalf("meaning status = %q, want skipped without an api key", got)
	}
	if got := testsupport.ReadLines(t, result.Output); !reflect.DeepEqual(got, want) {
		t.Fatalf("output file = %q", got)
	}
}

func TestBuildRejectsUnknownEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSplit(func(s *config.Split) {
		s.NLPEngine = "spacy"
	}))
	if _, _, err := Build(cfg, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
