package frontier

// ComputeFrontier returns the non-dominated points from the input set,
// preserving input order. O(n^2) dominance check, fine for solution sets of
// a few hundred points.
func ComputeFrontier(points []Point, dirs Directions) []Point {
	if len(points) <= 1 {
		return points
	}
	dirs = dirs.Resolve()

	var frontier []Point
	for i := range points {
		dominated := false
		for j := range points {
			if i == j {
				continue
			}
			if Dominates(points[j], points[i], dirs) {
				dominated = true
				break
			}
		}
		if !dominated {
			frontier = append(frontier, points[i])
		}
	}
	return frontier
}

// Dominates returns true if a dominates b: a is no worse on every objective
// and strictly better on at least one. f3 only counts when both points have it.
func Dominates(a, b Point, dirs Directions) bool {
	dirs = dirs.Resolve()
	strictly := false
	for _, o := range objectives {
		av, aok := a.Value(o)
		bv, bok := b.Value(o)
		if !aok || !bok {
			continue
		}
		d := dirs.Of(o)
		if d.Better(bv, av) {
			return false
		}
		if d.Better(av, bv) {
			strictly = true
		}
	}
	return strictly
}

// NoWorseThan reports whether anchor is at least as good as p on every
// objective both carry; that is, p never improves on anchor.
func NoWorseThan(p, anchor Point, dirs Directions) bool {
	dirs = dirs.Resolve()
	for _, o := range objectives {
		pv, pok := p.Value(o)
		av, aok := anchor.Value(o)
		if !pok || !aok {
			continue
		}
		if dirs.Of(o).Better(pv, av) {
			return false
		}
	}
	return true
}
