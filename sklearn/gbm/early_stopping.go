package gbm

import "math"

// EarlyStopping is the counter state machine driving cross-validation:
// (best score, best iteration, rounds without improvement). Lower scores are
// better and only a strictly lower score counts as an improvement, so the
// best iteration is the first occurrence of the minimum.
type EarlyStopping struct {
	Rounds          int     // Number of rounds without improvement to stop
	BestScore       float64 // Best validation score so far
	BestIteration   int     // Iteration with best score, 0 before the first update
	RoundsNoImprove int     // Current rounds without improvement
	Enabled         bool    // Whether early stopping is enabled
}

// NewEarlyStopping creates a new early stopping handler. rounds <= 0 disables
// stopping; the best score is still tracked.
func NewEarlyStopping(rounds int) *EarlyStopping {
	return &EarlyStopping{
		Rounds:    rounds,
		BestScore: math.Inf(1),
		Enabled:   rounds > 0,
	}
}

// Update records the score of an iteration and reports whether training should stop.
func (es *EarlyStopping) Update(iteration int, score float64) bool {
	if score < es.BestScore {
		es.BestScore = score
		es.BestIteration = iteration
		es.RoundsNoImprove = 0
	} else {
		es.RoundsNoImprove++
	}
	return es.ShouldStop()
}

// ShouldStop returns whether training should stop
func (es *EarlyStopping) ShouldStop() bool {
	return es.Enabled && es.RoundsNoImprove >= es.Rounds
}
