package gbm

import "github.com/YuminosukeSato/regselect/pkg/errors"

// TrainingParams contains the boosting hyperparameters.
type TrainingParams struct {
	NumRounds      int     `json:"num_rounds"`
	LearningRate   float64 `json:"learning_rate"`
	MaxDepth       int     `json:"max_depth"` // <= 0 means unlimited
	MinDataInLeaf  int     `json:"min_data_in_leaf"`
	Lambda         float64 `json:"lambda"`
	MinGainToSplit float64 `json:"min_gain_to_split"`
	Subsample      float64 `json:"subsample"` // row fraction sampled per tree
	Seed           uint64  `json:"seed"`
}

// DefaultTrainingParams returns xgboost-like defaults for squared-error regression.
func DefaultTrainingParams() TrainingParams {
	return TrainingParams{
		NumRounds:     100,
		LearningRate:  0.3,
		MaxDepth:      6,
		MinDataInLeaf: 1,
		Lambda:        1,
		Subsample:     1,
		Seed:          42,
	}
}

// Validate checks the parameter ranges.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumRounds < 0:
		return errors.NewValidationError("num_rounds", "must be non-negative", p.NumRounds)
	case !(p.LearningRate > 0):
		return errors.NewValidationError("learning_rate", "must be positive", p.LearningRate)
	case p.MinDataInLeaf < 1:
		return errors.NewValidationError("min_data_in_leaf", "must be at least 1", p.MinDataInLeaf)
	case p.Lambda < 0:
		return errors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	case p.MinGainToSplit < 0:
		return errors.NewValidationError("min_gain_to_split", "must be non-negative", p.MinGainToSplit)
	case !(p.Subsample > 0 && p.Subsample <= 1):
		return errors.NewValidationError("subsample", "must be in (0,1]", p.Subsample)
	}
	return nil
}
