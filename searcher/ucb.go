package searcher

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// bonus is the UCB exploration term for an action tried n times out of total.
func bonus(n int, total int) float64 {
	// Prioritize untried actions
	if n == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(math.Log(float64(total)) / float64(n))
}

// explore returns the index of the action maximizing value + c*bonus. Untried
// actions score +Inf whatever c is, and ties go to the earliest action.
func explore(stats []ActionStats, c float64) int {
	total := 0
	for _, s := range stats {
		total += s.Visits
	}

	scores := make([]float64, len(stats))
	for i, s := range stats {
		if s.Visits == 0 {
			scores[i] = math.Inf(1)
			continue
		}
		scores[i] = s.Value + c*bonus(s.Visits, total)
	}
	return floats.MaxIdx(scores)
}

// greedy returns the index of the action with the highest value estimate.
func greedy(stats []ActionStats) int {
	values := make([]float64, len(stats))
	for i, s := range stats {
		values[i] = s.Value
	}
	return floats.MaxIdx(values)
}
