package frontier

import (
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Cloud is the synthetic population generated around a frontier.
type Cloud struct {
	Points []Point `json:"points"`
	HasF3  bool    `json:"has_f3"`
	// Spans are the per-objective spans used for scaling, after fallbacks.
	Spans            [3]float64 `json:"spans"`
	Requested        int        `json:"requested"`
	MalformedAnchors int        `json:"malformed_anchors"`
	// Skipped counts requested points that were not generated.
	Skipped int `json:"skipped"`
}

// Synthesizer generates dominated point clouds around a Pareto frontier.
// It holds no state between calls other than its random source.
type Synthesizer struct {
	shape  Shape
	rng    Rand
	logger *slog.Logger
}

// NewSynthesizer creates a Synthesizer. A nil logger discards output.
func NewSynthesizer(shape Shape, rng Rand, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synthesizer{shape: shape, rng: rng, logger: logger}
}

func (s *Synthesizer) Shape() Shape { return s.shape }

// curve is the piecewise-linear base curve through the frontier, sorted by f1.
type curve struct {
	anchors [][3]float64
	spans   [3]float64
	gaps    [3]float64
	signs   [3]float64
	withF3  bool
}

// Synthesize returns up to cloudSize dominated points around the frontier.
// The frontier is never modified. Malformed anchors are dropped together with
// their proportional share of the requested points.
func (s *Synthesizer) Synthesize(points []Point, dirs Directions, cloudSize int) Cloud {
	if cloudSize < 0 {
		cloudSize = 0
	}
	cloud := Cloud{Requested: cloudSize, Points: []Point{}}
	if len(points) == 0 {
		return cloud
	}

	c, malformed := s.buildCurve(points, dirs.Resolve())
	cloud.MalformedAnchors = malformed
	if c == nil {
		s.logger.Debug("no well-formed frontier anchors", "points", len(points))
		cloud.Skipped = cloudSize
		return cloud
	}
	cloud.HasF3 = c.withF3
	cloud.Spans = c.spans

	target := cloudSize - cloudSize*malformed/len(points)
	prefix := idPrefix(points)
	cloud.Points = make([]Point, 0, target)
	for i := 0; i < target; i++ {
		_, v := s.sample(c)
		if !isFinite(v[0]) || !isFinite(v[1]) || (c.withF3 && !isFinite(v[2])) {
			continue
		}
		p := Point{
			ID:   prefix + "-" + strconv.Itoa(i),
			Rank: 0,
			F1:   v[0],
			F2:   v[1],
		}
		if c.withF3 {
			p.F3 = float64Ptr(v[2])
		}
		cloud.Points = append(cloud.Points, p)
	}
	cloud.Skipped = cloudSize - len(cloud.Points)
	return cloud
}

func (s *Synthesizer) buildCurve(points []Point, dirs Directions) (*curve, int) {
	withF3 := HasF3(points)
	valid := make([]Point, 0, len(points))
	for _, p := range points {
		if wellFormed(p, withF3) {
			valid = append(valid, p)
		}
	}
	malformed := len(points) - len(valid)
	if malformed > 0 {
		s.logger.Debug("skipping malformed frontier points", "count", malformed)
	}
	if len(valid) == 0 {
		return nil, malformed
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].F1 < valid[j].F1 })

	c := &curve{withF3: withF3, anchors: make([][3]float64, len(valid))}
	for i, p := range valid {
		c.anchors[i][0] = p.F1
		c.anchors[i][1] = p.F2
		if withF3 {
			c.anchors[i][2] = *p.F3
		}
	}

	for _, o := range objectives {
		if o == F3 && !withF3 {
			continue
		}
		lo, hi := c.anchors[0][o], c.anchors[0][o]
		for _, a := range c.anchors[1:] {
			lo = math.Min(lo, a[o])
			hi = math.Max(hi, a[o])
		}
		span := hi - lo
		if span == 0 || !isFinite(span) {
			span = math.Abs(c.anchors[0][o]) * FallbackSpanRatio
			if span == 0 || !isFinite(span) {
				span = fallbackSpans[o]
			}
			s.logger.Debug("degenerate span, using fallback", "objective", o.String(), "span", span)
		}
		c.spans[o] = span
		c.gaps[o] = span * s.shape.GapRatio
		c.signs[o] = dirs.Of(o).Sign()
	}
	return c, malformed
}

// sample draws one base point on the curve and its offset cloud point.
func (s *Synthesizer) sample(c *curve) (base, out [3]float64) {
	base = c.at(s.rng.Float64())

	severity := s.shape.Severity.draw(s.rng) * s.shape.SharedWeight
	for _, o := range objectives {
		if o == F3 && !c.withF3 {
			continue
		}
		jitter := s.shape.Jitter.draw(s.rng) * s.shape.JitterWeight
		offset := c.gaps[o] + (severity+jitter)*c.spans[o]*s.shape.CloudScale
		out[o] = base[o] + c.signs[o]*offset
	}
	return base, out
}

// at interpolates the base curve at t in [0, 1].
func (c *curve) at(t float64) [3]float64 {
	maxIdx := len(c.anchors) - 1
	if maxIdx == 0 {
		return c.anchors[0]
	}
	exact := t * float64(maxIdx)
	idx := int(exact)
	if idx >= maxIdx {
		return c.anchors[maxIdx]
	}
	rem := exact - float64(idx)
	p1, p2 := c.anchors[idx], c.anchors[idx+1]
	var b [3]float64
	for o := range b {
		b[o] = p1[o] + rem*(p2[o]-p1[o])
	}
	return b
}

// idPrefix picks a namespace for synthetic ids that no real id lives in.
func idPrefix(points []Point) string {
	prefix := "cloud"
	for n := 1; collides(points, prefix); n++ {
		prefix = "cloud" + strconv.Itoa(n)
	}
	return prefix
}

func collides(points []Point, prefix string) bool {
	for _, p := range points {
		if strings.HasPrefix(p.ID, prefix+"-") {
			return true
		}
	}
	return false
}
