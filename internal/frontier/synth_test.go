package frontier

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scenarioFrontier() []Point {
	return []Point{
		{ID: "p1", Rank: 1, F1: 100, F2: 50, F3: float64Ptr(0.1)},
		{ID: "p2", Rank: 2, F1: 200, F2: 30, F3: float64Ptr(0.2)},
	}
}

func lightDirs() Directions {
	return Directions{F1: WorseIfLarger, F2: WorseIfLarger, F3: WorseIfSmaller}
}

func newTestSynth(seed uint64) *Synthesizer {
	return NewSynthesizer(DefaultShape(), NewRand(seed), discardLogger())
}

func TestSynthesizeScenario(t *testing.T) {
	front := scenarioFrontier()
	cloud := newTestSynth(42).Synthesize(front, lightDirs(), 500)

	require.Len(t, cloud.Points, 500)
	assert.True(t, cloud.HasF3)
	assert.Equal(t, 0, cloud.Skipped)

	for _, p := range cloud.Points {
		assert.NotEqual(t, "p1", p.ID)
		assert.NotEqual(t, "p2", p.ID)
		assert.Equal(t, 0, p.Rank)
		assert.GreaterOrEqual(t, p.F1, 100.0)
		assert.GreaterOrEqual(t, p.F2, 30.0)
		require.NotNil(t, p.F3)
		assert.LessOrEqual(t, *p.F3, 0.2)
		assert.Zero(t, p.TotalCost)
		assert.Zero(t, p.ImplementationDays)
		assert.Zero(t, p.ExpectedBenefit)
	}
}

func TestSynthesizeDoesNotMutateFrontier(t *testing.T) {
	front := []Point{
		{ID: "b", F1: 300, F2: 10, F3: float64Ptr(0.4)},
		{ID: "a", F1: 100, F2: 40, F3: float64Ptr(0.3)},
	}
	before := []Point{front[0], front[1]}

	newTestSynth(1).Synthesize(front, lightDirs(), 100)

	assert.Equal(t, before[0].ID, front[0].ID, "input order must be preserved")
	assert.Equal(t, before[1].ID, front[1].ID)
	assert.Equal(t, 0.4, *front[0].F3)
}

func TestDominationInvariant(t *testing.T) {
	dirSets := map[string]Directions{
		"light": IndustryLight.Directions(),
		"heavy": IndustryHeavy.Directions(),
	}
	front := []Point{
		{ID: "a", F1: 10, F2: 0.9, F3: float64Ptr(0.5)},
		{ID: "b", F1: 20, F2: 0.7, F3: float64Ptr(0.6)},
		{ID: "c", F1: 35, F2: 0.4, F3: float64Ptr(0.8)},
	}

	for name, dirs := range dirSets {
		t.Run(name, func(t *testing.T) {
			s := newTestSynth(7)
			c, _ := s.buildCurve(front, dirs.Resolve())
			require.NotNil(t, c)

			for i := 0; i < 2000; i++ {
				base, out := s.sample(c)
				for _, o := range objectives {
					d := dirs.Of(o)
					assert.False(t, d.Better(out[o], base[o]), "objective %s improved on anchor", o)
					gap := math.Abs(out[o] - base[o])
					assert.GreaterOrEqual(t, gap, c.gaps[o]*(1-1e-9), "objective %s inside the gap", o)
				}
			}
		})
	}
}

func TestIDsNeverCollide(t *testing.T) {
	front := []Point{
		{ID: "cloud-0", F1: 1, F2: 5},
		{ID: "cloud-1", F1: 2, F2: 3},
	}
	cloud := newTestSynth(3).Synthesize(front, Directions{}, 200)
	require.Len(t, cloud.Points, 200)

	realIDs := map[string]bool{"cloud-0": true, "cloud-1": true}
	seen := map[string]bool{}
	for _, p := range cloud.Points {
		assert.False(t, realIDs[p.ID], "synthetic id %s collides with frontier", p.ID)
		assert.False(t, seen[p.ID], "duplicate synthetic id %s", p.ID)
		seen[p.ID] = true
	}
	assert.True(t, strings.HasPrefix(cloud.Points[0].ID, "cloud1-"))
}

func TestSynthesizeEmptyAndZeroSize(t *testing.T) {
	s := newTestSynth(1)

	empty := s.Synthesize(nil, lightDirs(), 1000)
	assert.Empty(t, empty.Points)
	assert.NotNil(t, empty.Points)

	zero := s.Synthesize(scenarioFrontier(), lightDirs(), 0)
	assert.Empty(t, zero.Points)

	negative := s.Synthesize(scenarioFrontier(), lightDirs(), -25)
	assert.Empty(t, negative.Points)
	assert.Equal(t, 0, negative.Requested)
}

func TestSinglePointFrontierUsesFallbackSpan(t *testing.T) {
	front := []Point{{ID: "only", F1: 50, F2: 0, F3: float64Ptr(0.25)}}
	cloud := newTestSynth(9).Synthesize(front, lightDirs(), 300)

	require.Len(t, cloud.Points, 300)
	assert.InDelta(t, 5.0, cloud.Spans[F1], 1e-12)
	assert.InDelta(t, 0.1, cloud.Spans[F2], 1e-12, "zero value falls back to the absolute constant")
	assert.InDelta(t, 0.025, cloud.Spans[F3], 1e-12)

	for _, p := range cloud.Points {
		assert.Greater(t, p.F1, 50.0)
		assert.Greater(t, p.F2, 0.0)
		assert.Less(t, *p.F3, 0.25)
	}
}

func TestIdenticalObjectiveUsesFallbackSpan(t *testing.T) {
	front := []Point{
		{ID: "a", F1: 10, F2: 7},
		{ID: "b", F1: 20, F2: 7},
	}
	cloud := newTestSynth(11).Synthesize(front, lightDirs(), 50)

	require.Len(t, cloud.Points, 50)
	assert.InDelta(t, 0.7, cloud.Spans[F2], 1e-12)
	assert.False(t, cloud.HasF3)
	for _, p := range cloud.Points {
		assert.Nil(t, p.F3)
		assert.Greater(t, p.F2, 7.0)
	}
}

func TestMalformedAnchorsAreSkipped(t *testing.T) {
	front := []Point{
		{ID: "a", F1: 10, F2: 5},
		{ID: "bad", F1: math.NaN(), F2: 4},
		{ID: "b", F1: 20, F2: 3},
		{ID: "inf", F1: 25, F2: math.Inf(1)},
	}
	cloud := newTestSynth(5).Synthesize(front, lightDirs(), 400)

	assert.Equal(t, 2, cloud.MalformedAnchors)
	assert.Len(t, cloud.Points, 200)
	assert.Equal(t, 200, cloud.Skipped)
	for _, p := range cloud.Points {
		assert.False(t, math.IsNaN(p.F1) || math.IsNaN(p.F2))
	}
}

func TestAllMalformedYieldsEmptyCloud(t *testing.T) {
	front := []Point{{ID: "x", F1: math.NaN(), F2: 1}}
	cloud := newTestSynth(5).Synthesize(front, lightDirs(), 10)
	assert.Empty(t, cloud.Points)
	assert.Equal(t, 10, cloud.Skipped)
	assert.Equal(t, 1, cloud.MalformedAnchors)
}

func TestMissingF3OnSomeAnchors(t *testing.T) {
	front := []Point{
		{ID: "a", F1: 10, F2: 5, F3: float64Ptr(0.2)},
		{ID: "b", F1: 20, F2: 3},
	}
	cloud := newTestSynth(5).Synthesize(front, lightDirs(), 100)
	assert.True(t, cloud.HasF3)
	assert.Equal(t, 1, cloud.MalformedAnchors)
	assert.Len(t, cloud.Points, 50)
}

func TestSeededDeterminism(t *testing.T) {
	a := newTestSynth(99).Synthesize(scenarioFrontier(), lightDirs(), 100)
	b := newTestSynth(99).Synthesize(scenarioFrontier(), lightDirs(), 100)
	assert.Equal(t, a, b)

	c := newTestSynth(100).Synthesize(scenarioFrontier(), lightDirs(), 100)
	assert.NotEqual(t, a.Points, c.Points)
}

// excess returns the mean f1 offset beyond the gap, in units of span.
func excess(cloud Cloud, minF1, gapRatio float64) float64 {
	var sum float64
	for _, p := range cloud.Points {
		sum += (p.F1 - minF1) / cloud.Spans[F1]
	}
	return sum/float64(len(cloud.Points)) - gapRatio
}

func TestCloudScaleDrivesBoundingBox(t *testing.T) {
	front := []Point{{ID: "only", F1: 100, F2: 10}}
	narrow := DefaultShape()
	wide := DefaultShape()
	wide.CloudScale = narrow.CloudScale * 2

	t.Run("same seed scales exactly", func(t *testing.T) {
		n := NewSynthesizer(narrow, NewRand(1), nil).Synthesize(front, lightDirs(), 500)
		w := NewSynthesizer(wide, NewRand(1), nil).Synthesize(front, lightDirs(), 500)
		require.Len(t, w.Points, len(n.Points))
		for i := range n.Points {
			nOff := n.Points[i].F1 - 100 - n.Spans[F1]*narrow.GapRatio
			wOff := w.Points[i].F1 - 100 - w.Spans[F1]*wide.GapRatio
			assert.InDelta(t, 2*nOff, wOff, 1e-9)
		}
	})

	t.Run("ratio holds across seeds", func(t *testing.T) {
		var ratios []float64
		for seed := uint64(1); seed <= 5; seed++ {
			n := NewSynthesizer(narrow, NewRand(seed), nil).Synthesize(front, lightDirs(), 4000)
			w := NewSynthesizer(wide, NewRand(seed+1000), nil).Synthesize(front, lightDirs(), 4000)
			ratios = append(ratios, excess(w, 100, wide.GapRatio)/excess(n, 100, narrow.GapRatio))
		}
		for _, r := range ratios {
			assert.InDelta(t, 2.0, r, 0.2)
		}
	})
}

func TestEnvelopePresetStaysCloserThanDense(t *testing.T) {
	envelope, err := ShapeByName("envelope")
	require.NoError(t, err)

	e := NewSynthesizer(envelope, NewRand(3), nil).Synthesize(scenarioFrontier(), lightDirs(), 3000)
	d := NewSynthesizer(DefaultShape(), NewRand(3), nil).Synthesize(scenarioFrontier(), lightDirs(), 3000)

	maxF1 := func(c Cloud) float64 {
		m := 0.0
		for _, p := range c.Points {
			m = math.Max(m, p.F1)
		}
		return m
	}
	assert.Less(t, maxF1(e), maxF1(d))
}

func TestCurveInterpolation(t *testing.T) {
	c := &curve{anchors: [][3]float64{{0, 10, 1}, {10, 0, 2}, {20, -10, 3}}}

	tests := []struct {
		t    float64
		want [3]float64
	}{
		{0, [3]float64{0, 10, 1}},
		{0.25, [3]float64{5, 5, 1.5}},
		{0.5, [3]float64{10, 0, 2}},
		{1, [3]float64{20, -10, 3}},
	}
	for _, tt := range tests {
		got := c.at(tt.t)
		for o := range got {
			assert.InDelta(t, tt.want[o], got[o], 1e-12, "t=%v objective %d", tt.t, o)
		}
	}
}
