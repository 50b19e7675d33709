package logging

import (
	"strings"
	"sync"
)

// ProgressSampler thins worker progress reports to one per percentage step,
// plus one whenever the reporting stage changes. Safe for concurrent use.
type ProgressSampler struct {
	mu    sync.Mutex
	step  float64
	stage string
	seen  int
}

// NewProgressSampler returns a sampler emitting every step percent; a
// non-positive step means 10.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 10
	}
	return &ProgressSampler{step: step, seen: -1}
}

// Observe records done of total for stage and returns the percentage and
// whether it should be logged. An empty total counts as complete.
func (s *ProgressSampler) Observe(stage string, done, total int) (float64, bool) {
	percent := 100.0
	if total > 0 {
		percent = float64(min(done, total)) * 100 / float64(total)
	}
	if s == nil {
		return percent, true
	}
	bucket := int(percent / s.step)

	s.mu.Lock()
	defer s.mu.Unlock()
	emit := false
	if stage = strings.TrimSpace(stage); stage != s.stage {
		s.stage, s.seen, emit = stage, -1, true
	}
	if bucket > s.seen {
		s.seen, emit = bucket, true
	}
	return percent, emit
}
