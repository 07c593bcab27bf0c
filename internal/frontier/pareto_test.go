package frontier

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(points []Point) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.ID)
	}
	return out
}

func TestComputeFrontier(t *testing.T) {
	points := []Point{
		{ID: "a", F1: 100, F2: 50},
		{ID: "b", F1: 200, F2: 30},
		{ID: "c", F1: 150, F2: 60}, // dominated by a
		{ID: "d", F1: 250, F2: 35}, // dominated by b
		{ID: "e", F1: 90, F2: 80},
	}

	got := ids(ComputeFrontier(points, IndustryLight.Directions()))
	want := []string{"a", "b", "e"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frontier mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFrontierHonoursDirections(t *testing.T) {
	// Heavy industry: larger f2 (utilization) is better.
	points := []Point{
		{ID: "a", F1: 100, F2: 0.9},
		{ID: "b", F1: 100, F2: 0.5},
	}
	got := ids(ComputeFrontier(points, IndustryHeavy.Directions()))
	if diff := cmp.Diff([]string{"a"}, got); diff != "" {
		t.Errorf("frontier mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeFrontierSmallInputs(t *testing.T) {
	if got := ComputeFrontier(nil, Directions{}); len(got) != 0 {
		t.Errorf("expected empty frontier, got %v", got)
	}
	single := []Point{{ID: "x", F1: 1, F2: 1}}
	if got := ComputeFrontier(single, Directions{}); len(got) != 1 {
		t.Errorf("expected single point, got %d", len(got))
	}
}

func TestDominates(t *testing.T) {
	dirs := IndustryLight.Directions()
	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"strictly better everywhere", Point{F1: 1, F2: 1}, Point{F1: 2, F2: 2}, true},
		{"better on one, equal on other", Point{F1: 1, F2: 2}, Point{F1: 2, F2: 2}, true},
		{"equal points", Point{F1: 2, F2: 2}, Point{F1: 2, F2: 2}, false},
		{"trade-off", Point{F1: 1, F2: 3}, Point{F1: 2, F2: 2}, false},
		{"f3 decides", Point{F1: 1, F2: 1, F3: float64Ptr(0.5)}, Point{F1: 1, F2: 1, F3: float64Ptr(0.4)}, true},
		{"f3 ignored when one side lacks it", Point{F1: 1, F2: 1}, Point{F1: 1, F2: 1, F3: float64Ptr(0.9)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dominates(tt.a, tt.b, dirs); got != tt.want {
				t.Errorf("Dominates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNoWorseThan(t *testing.T) {
	dirs := IndustryLight.Directions()
	anchor := Point{F1: 100, F2: 30, F3: float64Ptr(0.2)}

	if !NoWorseThan(Point{F1: 120, F2: 31, F3: float64Ptr(0.1)}, anchor, dirs) {
		t.Error("expected worse point to pass")
	}
	if NoWorseThan(Point{F1: 99, F2: 31, F3: float64Ptr(0.1)}, anchor, dirs) {
		t.Error("expected f1 improvement to fail")
	}
	if NoWorseThan(Point{F1: 120, F2: 31, F3: float64Ptr(0.3)}, anchor, dirs) {
		t.Error("expected f3 improvement to fail")
	}
}

func TestSyntheticCloudNeverDominatesFrontierAnchorBox(t *testing.T) {
	front := scenarioFrontier()
	dirs := lightDirs()
	cloud := newTestSynth(17).Synthesize(front, dirs, 1000)

	// The worst-case anchor: best value of each objective along the frontier.
	best := Point{F1: 100, F2: 30, F3: float64Ptr(0.2)}
	for _, p := range cloud.Points {
		if !NoWorseThan(p, best, dirs) {
			t.Fatalf("cloud point %s improves on the frontier's best corner: %+v", p.ID, p)
		}
		for _, f := range front {
			if Dominates(p, f, dirs) {
				t.Fatalf("cloud point %s dominates frontier point %s", p.ID, f.ID)
			}
		}
	}
}

func TestDirectionText(t *testing.T) {
	var d Directions
	if err := json.Unmarshal([]byte(`{"f1":"worse_if_larger","f2":"worse_if_smaller"}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.F1 != WorseIfLarger || d.F2 != WorseIfSmaller || d.F3 != Unspecified {
		t.Errorf("unexpected directions: %+v", d)
	}
	if r := d.Resolve(); r.F3 != WorseIfSmaller {
		t.Errorf("expected f3 to default to worse_if_smaller, got %s", r.F3)
	}
	if err := json.Unmarshal([]byte(`{"f1":"sideways"}`), &d); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestParseIndustry(t *testing.T) {
	if got, err := ParseIndustry(" Heavy "); err != nil || got != IndustryHeavy {
		t.Errorf("ParseIndustry(heavy) = %q, %v", got, err)
	}
	if _, err := ParseIndustry("textile"); err == nil {
		t.Error("expected error for unknown industry")
	}
	heavy := IndustryHeavy.Directions()
	if heavy.F2 != WorseIfSmaller {
		t.Errorf("heavy f2 should be utilization-like, got %s", heavy.F2)
	}
}
