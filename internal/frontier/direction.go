package frontier

import (
	"errors"
	"fmt"
	"strings"
)

// Direction says which way an objective gets worse.
type Direction int

const (
	// Unspecified falls back to the per-objective default in Directions.Resolve.
	Unspecified Direction = iota
	WorseIfLarger
	WorseIfSmaller
)

func (d Direction) String() string {
	switch d {
	case WorseIfLarger:
		return "worse_if_larger"
	case WorseIfSmaller:
		return "worse_if_smaller"
	default:
		return "unspecified"
	}
}

// Sign is +1 when larger values are worse and -1 when smaller values are worse.
func (d Direction) Sign() float64 {
	if d == WorseIfSmaller {
		return -1
	}
	return 1
}

// Better reports whether a is strictly better than b under d.
func (d Direction) Better(a, b float64) bool {
	if d == WorseIfSmaller {
		return a > b
	}
	return a < b
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "worse_if_larger", "larger", "min", "minimize":
		*d = WorseIfLarger
	case "worse_if_smaller", "smaller", "max", "maximize":
		*d = WorseIfSmaller
	case "", "unspecified":
		*d = Unspecified
	default:
		return fmt.Errorf("unknown objective direction %q", string(b))
	}
	return nil
}

// Directions assigns a Direction to each objective for one invocation.
type Directions struct {
	F1 Direction `json:"f1" yaml:"f1"`
	F2 Direction `json:"f2" yaml:"f2"`
	F3 Direction `json:"f3" yaml:"f3"`
}

// Resolve fills unspecified objectives: f1 and f2 default to cost-like,
// f3 defaults to utilization-like.
func (d Directions) Resolve() Directions {
	if d.F1 == Unspecified {
		d.F1 = WorseIfLarger
	}
	if d.F2 == Unspecified {
		d.F2 = WorseIfLarger
	}
	if d.F3 == Unspecified {
		d.F3 = WorseIfSmaller
	}
	return d
}

// Of returns the direction for objective o.
func (d Directions) Of(o Objective) Direction {
	switch o {
	case F1:
		return d.F1
	case F2:
		return d.F2
	default:
		return d.F3
	}
}

// Industry is the domain classifier supplied alongside a frontier.
type Industry string

const (
	IndustryLight Industry = "light"
	IndustryHeavy Industry = "heavy"
)

var ErrUnknownIndustry = errors.New("unknown industry")

func ParseIndustry(s string) (Industry, error) {
	switch Industry(strings.ToLower(strings.TrimSpace(s))) {
	case IndustryLight:
		return IndustryLight, nil
	case IndustryHeavy:
		return IndustryHeavy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndustry, s)
}

// Directions maps the industry to its objective directions.
//
//	light: material handling cost, device move cost, space utilization
//	heavy: makespan, bottleneck utilization, load balance
func (i Industry) Directions() Directions {
	if i == IndustryHeavy {
		return Directions{F1: WorseIfLarger, F2: WorseIfSmaller, F3: WorseIfSmaller}
	}
	return Directions{F1: WorseIfLarger, F2: WorseIfLarger, F3: WorseIfSmaller}
}
