package decision

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidComparison = errors.New("pairwise comparisons must be positive and finite")
	ErrInconsistent      = errors.New("comparison matrix failed the consistency check")
)

// randomIndex is Saaty's random consistency index for a 3x3 matrix.
const randomIndex = 0.58

// AHPResult carries the derived weights and the consistency ratio.
type AHPResult struct {
	Weights          Weights       `json:"weights"`
	ConsistencyRatio float64       `json:"consistency_ratio"`
	Valid            bool          `json:"is_valid"`
	Matrix           [3][3]float64 `json:"matrix"`
}

// AHP derives cost/time/benefit weights from three pairwise judgements:
// m01 is cost vs time, m02 cost vs benefit, m12 time vs benefit, each on
// Saaty's 1/9..9 scale. The principal eigenvector is found by power iteration.
//
// An inconsistent matrix (CR >= 0.1) returns the result along with
// ErrInconsistent so callers can still show the ratio.
func AHP(m01, m02, m12 float64) (AHPResult, error) {
	for _, v := range []float64{m01, m02, m12} {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return AHPResult{}, fmt.Errorf("%w: got %v", ErrInvalidComparison, v)
		}
	}

	m := [3][3]float64{
		{1, m01, m02},
		{1 / m01, 1, m12},
		{1 / m02, 1 / m12, 1},
	}

	vec := [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	for iter := 0; iter < 100; iter++ {
		next := mulVec(m, vec)
		sum := next[0] + next[1] + next[2]
		for i := range next {
			next[i] /= sum
		}
		delta := math.Abs(next[0]-vec[0]) + math.Abs(next[1]-vec[1]) + math.Abs(next[2]-vec[2])
		vec = next
		if delta < 1e-12 {
			break
		}
	}

	// lambda_max estimated as the mean of (Aw)_i / w_i.
	aw := mulVec(m, vec)
	var lambda float64
	for i := range aw {
		lambda += aw[i] / vec[i]
	}
	lambda /= 3

	ci := (lambda - 3) / 2
	cr := ci / randomIndex
	if cr < 0 && cr > -1e-9 {
		cr = 0
	}

	res := AHPResult{
		Weights:          Weights{Cost: vec[0], Time: vec[1], Benefit: vec[2]},
		ConsistencyRatio: cr,
		Valid:            cr < 0.1,
		Matrix:           m,
	}
	if !res.Valid {
		return res, fmt.Errorf("%w: CR=%.4f", ErrInconsistent, cr)
	}
	return res, nil
}

func mulVec(m [3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := range m {
		for j := range v {
			out[i] += m[i][j] * v[j]
		}
	}
	return out
}
