package alignment

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func TestRecoverExactWhenOnlyMarkersInserted(t *testing.T) {
	original := "First part second part"
	r := NewRecoverer(Options{Joiner: " "}, nil)

	markers := r.Recover(original, "First part [BR] second part")
	if len(markers) != 1 {
		t.Fatalf("expected one marker, got %+v", markers)
	}
	if markers[0].Offset != 10 || markers[0].Ratio != 1 {
		t.Fatalf("marker = %+v, want offset 10 ratio 1", markers[0])
	}
	got := Apply(original, Offsets(markers))
	if !reflect.DeepEqual(got, []string{"First part", "second part"}) {
		t.Fatalf("Apply = %q", got)
	}
}

func TestRecoverRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		paraphrase string
		joiner     string
		want       []string
	}{
		{
			name:       "three parts",
			original:   "We packed the car early, drove through the hills all afternoon and finally reached the lake before sunset.",
			paraphrase: "We packed the car early, [br] drove through the hills all afternoon [br] and finally reached the lake before sunset.",
			joiner:     " ",
			want: []string{
				"We packed the car early,",
				"drove through the hills all afternoon",
				"and finally reached the lake before sunset.",
			},
		},
		{
			name:       "unspaced script",
			original:   "我们今天早上很早就出发了然后一直走到了山顶",
			paraphrase: "我们今天早上很早就出发了[br]然后一直走到了山顶",
			joiner:     "",
			want:       []string{"我们今天早上很早就出发了", "然后一直走到了山顶"},
		},
		{
			name:       "paraphrase spacing and casing differ",
			original:   "Honestly I never thought that the plan would work out so well for everyone involved.",
			paraphrase: "honestly  I never thought   that the plan [BR]would work out so well for everyone involved.",
			joiner:     " ",
			want: []string{
				"Honestly I never thought that the plan",
				"would work out so well for everyone involved.",
			},
		},
		{
			name:       "full-width paraphrase",
			original:   "Ｖｅｒｓｉｏｎ two shipped today and everyone celebrated loudly.",
			paraphrase: "Version two shipped today [br] and everyone celebrated loudly.",
			joiner:     " ",
			want:       []string{"Ｖｅｒｓｉｏｎ two shipped today", "and everyone celebrated loudly."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecoverer(Options{Joiner: tt.joiner}, nil)
			got := Apply(tt.original, Offsets(r.Recover(tt.original, tt.paraphrase)))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("segments = %q, want %q", got, tt.want)
			}
			rejoined := strings.Join(got, tt.joiner)
			if strings.Join(strings.Fields(rejoined), " ") != strings.Join(strings.Fields(tt.original), " ") {
				t.Fatalf("segments %q do not reproduce %q", got, tt.original)
			}
		})
	}
}

func TestRecoverMarkersMonotonic(t *testing.T) {
	original := "one two three four five six seven eight nine ten eleven twelve"
	paraphrase := "one two three [br] four five six [br] seven eight nine [br] ten eleven twelve"
	markers := NewRecoverer(Options{Joiner: " "}, nil).Recover(original, paraphrase)
	if len(markers) != 3 {
		t.Fatalf("expected 3 markers, got %+v", markers)
	}
	for i := 1; i < len(markers); i++ {
		if markers[i].Offset < markers[i-1].Offset {
			t.Fatalf("markers not monotonic: %+v", markers)
		}
	}
}

func TestRecoverLowConfidenceStillApplied(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := NewRecoverer(Options{Joiner: " "}, logger)

	original := "The committee postponed the vote because several members were absent today."
	markers := r.Recover(original, "The group delayed voting [br] since many people were missing.")
	if len(markers) != 1 {
		t.Fatalf("expected one marker, got %+v", markers)
	}
	if markers[0].Ratio >= r.Threshold() {
		t.Fatalf("expected low ratio, got %+v", markers[0])
	}
	if !strings.Contains(buf.String(), "low_confidence_alignment") {
		t.Fatalf("expected low confidence warning, log=%s", buf.String())
	}
	if segments := Apply(original, Offsets(markers)); len(segments) == 0 || strings.Join(segments, " ") == "" {
		t.Fatalf("unexpected segments %q", segments)
	}
}

func TestRecoverWithoutMarker(t *testing.T) {
	if markers := NewRecoverer(Options{}, nil).Recover("some text", "some text"); markers != nil {
		t.Fatalf("expected no markers, got %+v", markers)
	}
}

func TestSplitMarker(t *testing.T) {
	got := SplitMarker("a[br]b[BR]c[Br]", "[br]")
	want := []string{"a", "b", "c", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitMarker = %q, want %q", got, want)
	}
	if ContainsMarker("no breaks here", "[br]") {
		t.Fatal("unexpected marker")
	}
	if !ContainsMarker("ünïcode [BR] text", "[br]") {
		t.Fatal("expected marker")
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		offsets []int
		want    []string
	}{
		{"no offsets", nil, []string{"alpha beta gamma"}},
		{"single", []int{5}, []string{"alpha", "beta gamma"}},
		{"duplicate offsets drop empties", []int{5, 5}, []string{"alpha", "beta gamma"}},
		{"backwards ignored", []int{10, 5}, []string{"alpha beta", "gamma"}},
		{"out of range ignored", []int{100}, []string{"alpha beta gamma"}},
		{"at end", []int{16}, []string{"alpha beta gamma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Apply("alpha beta gamma", tt.offsets); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Apply = %q, want %q", got, tt.want)
			}
		})
	}
}
