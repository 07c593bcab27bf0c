package decision

import (
	"errors"
	"fmt"
	"math"
)

// Weights is the relative importance of each business criterion.
// All weights must sum to 1.0 (±0.001 tolerance).
type Weights struct {
	Cost    float64 `json:"cost"`
	Time    float64 `json:"time"`
	Benefit float64 `json:"benefit"`
}

// DefaultWeights returns the near-equal split used when the caller gives none.
func DefaultWeights() Weights {
	return Weights{Cost: 0.33, Time: 0.33, Benefit: 0.34}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Cost + w.Time + w.Benefit
}

var ErrInvalidWeights = errors.New("invalid weights")

// Validate checks that weights sum to 1.0 and none are negative.
func (w Weights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("%w: sum to %.4f, must sum to 1.0", ErrInvalidWeights, w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("%w: negative weight %f", ErrInvalidWeights, v)
		}
	}
	return nil
}

func (w Weights) asList() []float64 {
	return []float64{w.Cost, w.Time, w.Benefit}
}
