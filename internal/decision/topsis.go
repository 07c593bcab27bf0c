package decision

import (
	"errors"
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Frontier/internal/frontier"
)

var ErrNoSolutions = errors.New("no solutions to rank")

// Score is one solution's TOPSIS closeness and resulting rank.
type Score struct {
	SolutionID string  `json:"solution_id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// TOPSISResult lists scores in input order plus the winner.
type TOPSISResult struct {
	BestSolutionID string  `json:"best_solution_id"`
	Weights        Weights `json:"weights"`
	Scores         []Score `json:"scores"`
}

// TOPSIS ranks solutions on (total_cost, implementation_days, expected_benefit).
// Cost and time are minimized, benefit is maximized. Benefit columns that are
// entirely non-positive are taken as magnitudes.
func TOPSIS(points []frontier.Point, w Weights) (TOPSISResult, error) {
	if len(points) == 0 {
		return TOPSISResult{}, ErrNoSolutions
	}
	if err := w.Validate(); err != nil {
		return TOPSISResult{}, err
	}

	n := len(points)
	data := make([][3]float64, n)
	maxCost, maxTime := math.Inf(-1), math.Inf(-1)
	allNonPositive := true
	for _, p := range points {
		maxCost = math.Max(maxCost, p.TotalCost)
		maxTime = math.Max(maxTime, p.ImplementationDays)
		if p.ExpectedBenefit > 0 {
			allNonPositive = false
		}
	}
	for i, p := range points {
		data[i][0] = maxCost - p.TotalCost
		data[i][1] = maxTime - p.ImplementationDays
		data[i][2] = p.ExpectedBenefit
		if allNonPositive {
			data[i][2] = math.Abs(p.ExpectedBenefit)
		}
	}

	weights := w.asList()
	for j := 0; j < 3; j++ {
		var sq float64
		for i := range data {
			sq += data[i][j] * data[i][j]
		}
		denom := math.Sqrt(sq)
		if denom == 0 {
			denom = 1e-6
		}
		for i := range data {
			data[i][j] = data[i][j] / denom * weights[j]
		}
	}

	var best, worst [3]float64
	for j := 0; j < 3; j++ {
		best[j], worst[j] = data[0][j], data[0][j]
		for i := 1; i < n; i++ {
			best[j] = math.Max(best[j], data[i][j])
			worst[j] = math.Min(worst[j], data[i][j])
		}
	}

	res := TOPSISResult{Weights: w, Scores: make([]Score, n)}
	for i, row := range data {
		var dBest, dWorst float64
		for j := 0; j < 3; j++ {
			dBest += (row[j] - best[j]) * (row[j] - best[j])
			dWorst += (row[j] - worst[j]) * (row[j] - worst[j])
		}
		dBest, dWorst = math.Sqrt(dBest), math.Sqrt(dWorst)
		res.Scores[i] = Score{
			SolutionID: points[i].ID,
			Score:      dWorst / (dBest + dWorst + 1e-6),
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return res.Scores[order[a]].Score > res.Scores[order[b]].Score
	})
	for rank, idx := range order {
		res.Scores[idx].Rank = rank + 1
	}
	res.BestSolutionID = res.Scores[order[0]].SolutionID
	return res, nil
}
