package pipeline

import (
	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/preprocessing"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

// StandardizeMode selects where standardization statistics come from.
type StandardizeMode string

const (
	// StandardizeTrain fits statistics on the training subset and applies them to both subsets.
	StandardizeTrain StandardizeMode = "train"
	// StandardizePerSubset refits statistics on each subset separately. Test
	// scaling then depends on the test data itself; the mode is kept for
	// reproducing older results and logs a MethodologyWarning.
	StandardizePerSubset StandardizeMode = "per_subset"
	// StandardizeNone leaves the features untouched.
	StandardizeNone StandardizeMode = "none"
)

// Options configures a pipeline run.
type Options struct {
	SplitFraction       float64
	Seed                uint64
	Strata              int
	CVFolds             int
	MaxRounds           int
	Patience            int
	ImportanceThreshold float64
	Standardize         StandardizeMode
	ZeroVariance        preprocessing.ZeroVariancePolicy
	Training            gbm.TrainingParams // NumRounds is chosen by cross-validation
}

// DefaultOptions returns the default run configuration.
func DefaultOptions() Options {
	return Options{
		SplitFraction:       0.7,
		Seed:                42,
		Strata:              dataset.DefaultStrata,
		CVFolds:             10,
		MaxRounds:           100,
		Patience:            10,
		ImportanceThreshold: 1.0,
		Standardize:         StandardizeTrain,
		ZeroVariance:        preprocessing.ZeroVarianceFail,
		Training:            gbm.DefaultTrainingParams(),
	}
}

// Validate checks the options that are not validated by the components themselves.
func (o Options) Validate() error {
	switch o.Standardize {
	case StandardizeTrain, StandardizePerSubset, StandardizeNone:
	default:
		return errors.NewValidationError("standardize", "must be one of train, per_subset, none", string(o.Standardize))
	}
	if o.ImportanceThreshold < 0 {
		return errors.NewValidationError("importance_threshold", "must be non-negative", o.ImportanceThreshold)
	}
	return o.Training.Validate()
}

func (o Options) tuneParams() gbm.TuneParams {
	training := o.Training
	training.Seed = o.Seed
	return gbm.TuneParams{
		NFolds:    o.CVFolds,
		MaxRounds: o.MaxRounds,
		Patience:  o.Patience,
		Training:  training,
	}
}
