package alignment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"subseg/internal/logging"
	"subseg/internal/services"
	"subseg/internal/textutil"
)

// DefaultMarker is the break token the semantic prompt asks for.
const DefaultMarker = "[br]"

// DefaultThreshold is the similarity below which an offset is reported as
// low confidence.
const DefaultThreshold = 0.9

// Options configures a Recoverer.
type Options struct {
	// Marker separates parts in the paraphrase. Matching ignores case.
	Marker string
	// Joiner rejoins whitespace-separated words of each part before comparison.
	Joiner string
	// Threshold is the minimum ratio considered a confident match.
	Threshold float64
}

// Marker is one recovered break position.
type Marker struct {
	// Offset is a byte offset into the original text.
	Offset int
	// Ratio is the similarity between the part and original[previous:Offset].
	Ratio float64
}

// Recoverer finds break offsets in original text.
type Recoverer struct {
	opts   Options
	logger *slog.Logger
}

// NewRecoverer builds a recoverer; zero options take the defaults.
func NewRecoverer(opts Options, logger *slog.Logger) *Recoverer {
	if strings.TrimSpace(opts.Marker) == "" {
		opts.Marker = DefaultMarker
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	return &Recoverer{opts: opts, logger: logging.NewComponentLogger(logger, "alignment")}
}

// Threshold returns the configured confidence threshold.
func (r *Recoverer) Threshold() float64 {
	return r.opts.Threshold
}

// Recover returns monotonically non-decreasing markers for every break in
// paraphrase.
func (r *Recoverer) Recover(original, paraphrase string) []Marker {
	return r.RecoverContext(context.Background(), original, paraphrase)
}

// RecoverContext is Recover with log fields taken from ctx.
func (r *Recoverer) RecoverContext(ctx context.Context, original, paraphrase string) []Marker {
	parts := SplitMarker(paraphrase, r.opts.Marker)
	if len(parts) < 2 {
		return nil
	}
	logger := logging.WithContext(ctx, r.logger)

	markers := make([]Marker, 0, len(parts)-1)
	start := 0
	for i, part := range parts[:len(parts)-1] {
		target := textutil.FoldRunes(textutil.CollapseWhitespace(part, r.opts.Joiner))
		best, ratio, found := bestOffset(original, start, target)
		if !found {
			logging.WarnWithContext(logger, "no split point found for part", "alignment_unmatched",
				logging.Int("part", i+1),
				logging.String(logging.FieldErrorHint, "the service output does not resemble the original text"),
				logging.String(logging.FieldImpact, "break is dropped"),
			)
			continue
		}
		if ratio < r.opts.Threshold {
			err := services.Wrap(services.ErrLowConfidence, "alignment", "recover",
				fmt.Sprintf("part %d ratio %.3f below %.2f", i+1, ratio, r.opts.Threshold), nil)
			logging.WarnWithContext(logger, "low similarity split point", "low_confidence_alignment",
				logging.Int("part", i+1),
				logging.Float64("ratio", ratio),
				logging.Int("offset", best),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the paraphrase for reworded text"),
				logging.String(logging.FieldImpact, "offset is used but may cut mid-phrase"),
			)
		}
		markers = append(markers, Marker{Offset: best, Ratio: ratio})
		start = best
	}
	return markers
}

// bestOffset scans end positions from start up to, but excluding, the end of
// original and returns the one whose prefix best matches target. Only a
// strictly positive ratio counts as found; ties keep the earliest position.
func bestOffset(original string, start int, target []rune) (int, float64, bool) {
	matcher := textutil.NewLCSMatcher(target)
	best, bestRatio := 0, 0.0
	found := false
	for j := start; j < len(original); {
		if ratio := matcher.Ratio(); ratio > bestRatio {
			best, bestRatio, found = j, ratio, true
		}
		_, size := utf8.DecodeRuneInString(original[j:])
		matcher.Extend(original[j : j+size])
		j += size
	}
	return best, bestRatio, found
}

// SplitMarker splits s on every case-insensitive occurrence of marker.
func SplitMarker(s, marker string) []string {
	if marker == "" {
		return []string{s}
	}
	var parts []string
	last := 0
	for i := 0; i+len(marker) <= len(s); {
		if strings.EqualFold(s[i:i+len(marker)], marker) {
			parts = append(parts, s[last:i])
			i += len(marker)
			last = i
			continue
		}
		i++
	}
	return append(parts, s[last:])
}

// ContainsMarker reports whether s holds marker, ignoring case.
func ContainsMarker(s, marker string) bool {
	return len(SplitMarker(s, marker)) > 1
}

// Offsets extracts the byte offsets from markers.
func Offsets(markers []Marker) []int {
	out := make([]int, 0, len(markers))
	for _, m := range markers {
		out = append(out, m.Offset)
	}
	return out
}

// Apply cuts original at offsets and returns the trimmed, non-empty segments.
// Offsets that are out of range or move backwards are ignored.
func Apply(original string, offsets []int) []string {
	segments := make([]string, 0, len(offsets)+1)
	prev := 0
	for _, offset := range offsets {
		if offset < prev || offset > len(original) {
			continue
		}
		if segment := strings.TrimSpace(original[prev:offset]); segment != "" {
			segments = append(segments, segment)
		}
		prev = offset
	}
	if segment := strings.TrimSpace(original[prev:]); segment != "" {
		segments = append(segments, segment)
	}
	return segments
}
