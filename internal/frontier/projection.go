package frontier

// XY is one marker in a 2-D projection. Only frontier markers carry an id,
// cloud markers are not selectable.
type XY struct {
	ID   string  `json:"id,omitempty"`
	Rank int     `json:"rank,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Projection is the pair of point layers for one objective pair.
type Projection struct {
	X        string `json:"x"`
	Y        string `json:"y"`
	Frontier []XY   `json:"frontier"`
	Cloud    []XY   `json:"cloud"`
}

var pairs = [...][2]Objective{{F1, F2}, {F1, F3}, {F2, F3}}

// Project splits a frontier and its cloud into f1×f2, f1×f3 and f2×f3 layers.
// Pairs involving f3 are omitted when neither input has it.
func Project(front []Point, cloud Cloud) []Projection {
	withF3 := cloud.HasF3 || HasF3(front)

	var out []Projection
	for _, pair := range pairs {
		if pair[1] == F3 && !withF3 {
			continue
		}
		pr := Projection{
			X:        pair[0].String(),
			Y:        pair[1].String(),
			Frontier: project(front, pair, true),
			Cloud:    project(cloud.Points, pair, false),
		}
		out = append(out, pr)
	}
	return out
}

func project(points []Point, pair [2]Objective, keepID bool) []XY {
	xy := make([]XY, 0, len(points))
	for _, p := range points {
		x, xok := p.Value(pair[0])
		y, yok := p.Value(pair[1])
		if !xok || !yok || !isFinite(x) || !isFinite(y) {
			continue
		}
		m := XY{X: x, Y: y}
		if keepID {
			m.ID = p.ID
			m.Rank = p.Rank
		}
		xy = append(xy, m)
	}
	return xy
}
