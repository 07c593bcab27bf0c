package frontier

import (
	"fmt"
	"sort"
)

// Shape holds the constants that decide how the cloud looks.
//
// For each objective the offset from the base curve is
//
//	gap + (severity*SharedWeight + jitter*JitterWeight) * span * CloudScale
//
// where gap = GapRatio * span, severity is drawn once per point from Severity
// and jitter is drawn per objective from Jitter.
type Shape struct {
	Name         string       `json:"name" yaml:"name"`
	Severity     Distribution `json:"severity" yaml:"severity"`
	Jitter       Distribution `json:"jitter" yaml:"jitter"`
	SharedWeight float64      `json:"shared_weight" yaml:"shared_weight"`
	JitterWeight float64      `json:"jitter_weight" yaml:"jitter_weight"`
	CloudScale   float64      `json:"cloud_scale" yaml:"cloud_scale"`
	GapRatio     float64      `json:"gap_ratio" yaml:"gap_ratio"`
	DefaultSize  int          `json:"default_size" yaml:"default_size"`
}

const (
	DefaultGapRatio      = 0.015
	FallbackSpanRatio    = 0.1
	DefaultShapeName     = "dense"
	defaultFallbackF1    = 10.0
	defaultFallbackOther = 0.1
)

// fallbackSpans are used when an objective's span and value are both zero.
var fallbackSpans = [3]float64{defaultFallbackF1, defaultFallbackOther, defaultFallbackOther}

var presets = map[string]Shape{
	// Tight envelope hugging the frontier.
	"envelope": {
		Name:         "envelope",
		Severity:     SumUniform,
		Jitter:       Uniform,
		SharedWeight: 1.0,
		JitterWeight: 0.4,
		CloudScale:   1.2,
		GapRatio:     DefaultGapRatio,
		DefaultSize:  2500,
	},
	// Wide elliptical cloud, most points near the frontier.
	"dense": {
		Name:         "dense",
		Severity:     HalfNormal,
		Jitter:       HalfNormal,
		SharedWeight: 0.25,
		JitterWeight: 0.2,
		CloudScale:   6.0,
		GapRatio:     DefaultGapRatio,
		DefaultSize:  4000,
	},
}

// DefaultShape returns the dense preset.
func DefaultShape() Shape {
	return presets[DefaultShapeName]
}

// ShapeByName looks up a preset. An empty name yields the default.
func ShapeByName(name string) (Shape, error) {
	if name == "" {
		return DefaultShape(), nil
	}
	s, ok := presets[name]
	if !ok {
		return Shape{}, fmt.Errorf("unknown cloud shape %q (have %v)", name, ShapeNames())
	}
	return s, nil
}

func ShapeNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate rejects shapes that could move a point toward the frontier.
func (s Shape) Validate() error {
	switch s.Severity {
	case Uniform, SumUniform, HalfNormal:
	default:
		return fmt.Errorf("unknown severity distribution %q", s.Severity)
	}
	switch s.Jitter {
	case Uniform, SumUniform, HalfNormal:
	default:
		return fmt.Errorf("unknown jitter distribution %q", s.Jitter)
	}
	if s.SharedWeight < 0 || s.JitterWeight < 0 {
		return fmt.Errorf("shape weights must be non-negative")
	}
	if s.CloudScale <= 0 {
		return fmt.Errorf("cloud_scale must be positive, got %f", s.CloudScale)
	}
	if s.GapRatio <= 0 {
		return fmt.Errorf("gap_ratio must be positive, got %f", s.GapRatio)
	}
	if s.DefaultSize < 0 {
		return fmt.Errorf("default_size must be non-negative")
	}
	return nil
}
