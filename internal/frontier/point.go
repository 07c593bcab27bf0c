package frontier

import "math"

// Objective indexes f1, f2 and f3.
type Objective int

const (
	F1 Objective = iota
	F2
	F3
)

var objectives = [...]Objective{F1, F2, F3}

func (o Objective) String() string {
	switch o {
	case F1:
		return "f1"
	case F2:
		return "f2"
	default:
		return "f3"
	}
}

// Point is one candidate solution. Real frontier members carry Rank 1..N,
// synthetic cloud points carry Rank 0.
type Point struct {
	ID   string   `json:"id"`
	Rank int      `json:"rank"`
	F1   float64  `json:"f1"`
	F2   float64  `json:"f2"`
	F3   *float64 `json:"f3,omitempty"`

	// Business annotations, passed through untouched.
	TotalCost          float64  `json:"total_cost"`
	ImplementationDays float64  `json:"implementation_days"`
	ExpectedBenefit    float64  `json:"expected_benefit"`
	TopsisScore        *float64 `json:"topsis_score,omitempty"`
}

// Value returns objective o and whether the point has it.
func (p Point) Value(o Objective) (float64, bool) {
	switch o {
	case F1:
		return p.F1, true
	case F2:
		return p.F2, true
	default:
		if p.F3 == nil {
			return 0, false
		}
		return *p.F3, true
	}
}

// HasF3 reports whether any point carries a finite f3.
func HasF3(points []Point) bool {
	for _, p := range points {
		if p.F3 != nil && isFinite(*p.F3) {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// wellFormed reports whether p can anchor the base curve. When the frontier
// has f3, every anchor must carry a finite f3 too.
func wellFormed(p Point, withF3 bool) bool {
	if !isFinite(p.F1) || !isFinite(p.F2) {
		return false
	}
	if p.F3 != nil && !isFinite(*p.F3) {
		return false
	}
	if withF3 && p.F3 == nil {
		return false
	}
	return true
}

func float64Ptr(v float64) *float64 { return &v }
