package decision

import (
	"math"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

// RepresentativeSolutions are the extremes a decision maker looks at first.
type RepresentativeSolutions struct {
	MinCost     frontier.Point `json:"min_cost"`
	MinTime     frontier.Point `json:"min_time"`
	MaxBenefit  frontier.Point `json:"max_benefit"`
	BestOverall frontier.Point `json:"best_overall"`
	Knee        frontier.Point `json:"knee"`
	Compromise  frontier.Point `json:"compromise"`
}

// Representatives picks min cost, min time, max benefit and the best overall
// solution. Best overall is the top TOPSIS score when the set has been scored
// (judged by the first solution), otherwise the cheapest. Returns false for an
// empty set.
//
// Knee is the solution closest to the ideal corner and Compromise the one
// closest to the centroid, both after min-max scaling cost, time and
// negated benefit.
func Representatives(points []frontier.Point) (RepresentativeSolutions, bool) {
	if len(points) == 0 {
		return RepresentativeSolutions{}, false
	}

	minCost, minTime, maxBenefit := 0, 0, 0
	for i, p := range points {
		if p.TotalCost < points[minCost].TotalCost {
			minCost = i
		}
		if p.ImplementationDays < points[minTime].ImplementationDays {
			minTime = i
		}
		if p.ExpectedBenefit > points[maxBenefit].ExpectedBenefit {
			maxBenefit = i
		}
	}

	best := minCost
	if points[0].TopsisScore != nil {
		bestScore := score(points[0])
		best = 0
		for i, p := range points {
			if s := score(p); s > bestScore {
				best, bestScore = i, s
			}
		}
	}

	knee, compromise := kneeAndCompromise(points)
	return RepresentativeSolutions{
		MinCost:     points[minCost],
		MinTime:     points[minTime],
		MaxBenefit:  points[maxBenefit],
		BestOverall: points[best],
		Knee:        points[knee],
		Compromise:  points[compromise],
	}, true
}

func kneeAndCompromise(points []frontier.Point) (int, int) {
	rows := make([][3]float64, len(points))
	for i, p := range points {
		rows[i] = [3]float64{p.TotalCost, p.ImplementationDays, -p.ExpectedBenefit}
	}

	var lo, hi, mean [3]float64
	lo, hi = rows[0], rows[0]
	for _, row := range rows {
		for j, v := range row {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}
	for i := range rows {
		for j := range rows[i] {
			span := hi[j] - lo[j]
			if span == 0 {
				span = 1e-6
			}
			rows[i][j] = (rows[i][j] - lo[j]) / span
			mean[j] += rows[i][j] / float64(len(rows))
		}
	}

	knee, compromise := 0, 0
	kneeDist, compromiseDist := math.Inf(1), math.Inf(1)
	for i, row := range rows {
		if d := distance(row, [3]float64{}); d < kneeDist {
			knee, kneeDist = i, d
		}
		if d := distance(row, mean); d < compromiseDist {
			compromise, compromiseDist = i, d
		}
	}
	return knee, compromise
}

func distance(a, b [3]float64) float64 {
	return math.Sqrt((a[0]-b[0])*(a[0]-b[0]) + (a[1]-b[1])*(a[1]-b[1]) + (a[2]-b[2])*(a[2]-b[2]))
}

func score(p frontier.Point) float64 {
	if p.TopsisScore == nil {
		return 0
	}
	return *p.TopsisScore
}
