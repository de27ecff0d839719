package pipeline

import (
	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/linear"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

// Model names used in evaluation reports.
const (
	ModelLinear        = "linear"
	ModelLinearReduced = "linear_reduced"
	ModelBoosted       = "boosted"
)

// EvaluationReport is the held-out error of one model on the test subset.
type EvaluationReport struct {
	ModelName      string   `json:"model_name"`
	RMSE           float64  `json:"rmse"`
	RSquared       *float64 `json:"r_squared,omitempty"`
	SelectedRounds *int     `json:"selected_rounds,omitempty"`
	Features       []string `json:"features"`
}

// LinearResult holds the outputs of the linear branch.
type LinearResult struct {
	Full        *linear.LinearRegression
	Ranking     []linear.Importance
	Selected    []string
	Reduced     *linear.LinearRegression // nil when no predictor was pruned
	ANOVA       *linear.ANOVA
	Evaluations []EvaluationReport
}

// BoostedResult holds the outputs of the boosted-tree branch.
type BoostedResult struct {
	CV         *gbm.CVResult
	Model      *gbm.Model
	Importance []gbm.FeatureScore
	Evaluation EvaluationReport
}

// Report is the outcome of a run. A branch that failed leaves its field nil;
// the other branch's results are still present.
type Report struct {
	Split       dataset.Split
	Linear      *LinearResult
	Boosted     *BoostedResult
	Evaluations []EvaluationReport
}

// Evaluation returns the report for the named model.
func (r *Report) Evaluation(name string) (EvaluationReport, bool) {
	for _, ev := range r.Evaluations {
		if ev.ModelName == name {
			return ev, true
		}
	}
	return EvaluationReport{}, false
}
