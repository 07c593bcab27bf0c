package frontier

import (
	"math"
	"math/rand/v2"
)

// Rand is the source of uniform draws in [0, 1). Implementations need not be
// safe for concurrent use.
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded PCG generator.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Distribution is the shape of a non-negative, right-skewed draw.
type Distribution string

const (
	// Uniform draws from [0, 1).
	Uniform Distribution = "uniform"
	// SumUniform is |u1+u2+u3-1.5|, a folded Irwin–Hall.
	SumUniform Distribution = "sum_uniform"
	// HalfNormal is |N(0,1)| via Box–Muller.
	HalfNormal Distribution = "half_normal"
)

func (d Distribution) draw(r Rand) float64 {
	switch d {
	case SumUniform:
		return math.Abs(r.Float64() + r.Float64() + r.Float64() - 1.5)
	case HalfNormal:
		return math.Abs(normal(r))
	default:
		return r.Float64()
	}
}

func normal(r Rand) float64 {
	u := 0.0
	for u == 0 {
		u = r.Float64()
	}
	v := r.Float64()
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}
