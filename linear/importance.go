package linear

import (
	"math"
	"sort"
)

// Importance is one feature's importance score: the absolute t statistic
// of its coefficient.
type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// RankImportance ranks the predictors of a fitted model by |t|, descending.
// Ties are broken by feature name so the order is deterministic. The
// intercept is not ranked.
func RankImportance(lr *LinearRegression) []Importance {
	if len(lr.Coefficients) < 2 {
		return nil
	}
	out := make([]Importance, 0, len(lr.Coefficients)-1)
	for _, c := range lr.Coefficients[1:] {
		out = append(out, Importance{Feature: c.Name, Score: math.Abs(c.TStat)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// SelectFeatures keeps the ranked features whose score is strictly above
// threshold, in ranking order.
func SelectFeatures(ranking []Importance, threshold float64) []string {
	var out []string
	for _, imp := range ranking {
		if imp.Score > threshold {
			out = append(out, imp.Feature)
		}
	}
	return out
}
