package gbm

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/core/parallel"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
)

// TuneParams configures cross-validated round selection.
type TuneParams struct {
	NFolds    int            `json:"n_folds"`
	MaxRounds int            `json:"max_rounds"`
	Patience  int            `json:"patience"` // 0 disables early stopping
	Training  TrainingParams `json:"training"` // NumRounds is ignored
}

// DefaultTuneParams returns 10 folds, 100 rounds and a patience of 10.
func DefaultTuneParams() TuneParams {
	return TuneParams{
		NFolds:    10,
		MaxRounds: 100,
		Patience:  10,
		Training:  DefaultTrainingParams(),
	}
}

// CVRound holds the fold-averaged RMSE of one boosting round.
type CVRound struct {
	Round         int     `json:"round"`
	TrainRMSEMean float64 `json:"train_rmse_mean"`
	TrainRMSEStd  float64 `json:"train_rmse_std"`
	TestRMSEMean  float64 `json:"test_rmse_mean"`
	TestRMSEStd   float64 `json:"test_rmse_std"`
}

// CVResult is the learning curve of a cross-validation run. Rounds are
// contiguous from 1. BestRound is the first round with the lowest mean
// held-out RMSE.
type CVResult struct {
	Rounds       []CVRound `json:"rounds"`
	BestRound    int       `json:"best_round"`
	BestScore    float64   `json:"best_score"`
	StoppedEarly bool      `json:"stopped_early"`
	NFolds       int       `json:"n_folds"`
}

// TestRMSE returns the mean held-out RMSE sequence.
func (r *CVResult) TestRMSE() []float64 {
	out := make([]float64, len(r.Rounds))
	for i, round := range r.Rounds {
		out[i] = round.TestRMSEMean
	}
	return out
}

// Tune runs k-fold cross-validation of the booster on ds. Every round each
// fold adds one tree (folds run concurrently) and the per-fold train and
// held-out RMSE are averaged. Training stops after MaxRounds, or once
// Patience consecutive rounds fail to improve on the best mean held-out RMSE.
// ctx is checked between rounds.
func Tune(ctx context.Context, ds *dataset.Dataset, params TuneParams) (*CVResult, error) {
	const op = "gbm.Tune"
	switch {
	case params.NFolds < 2:
		return nil, errors.NewValidationError("cv_folds", "must be at least 2", params.NFolds)
	case params.NFolds > ds.Len():
		return nil, errors.NewInsufficientDataError(op, params.NFolds, ds.Len(), "more folds than training records")
	case params.MaxRounds < 1:
		return nil, errors.NewValidationError("max_rounds", "must be at least 1", params.MaxRounds)
	case params.Patience < 0:
		return nil, errors.NewValidationError("early_stopping_patience", "must be non-negative", params.Patience)
	}

	folds := NewKFold(params.NFolds, true, params.Training.Seed).Split(ds.Len())
	boosters := make([]*Booster, len(folds))
	for f, fold := range folds {
		train, err := ds.Subset(fold.TrainIndices)
		if err != nil {
			return nil, err
		}
		test, err := ds.Subset(fold.TestIndices)
		if err != nil {
			return nil, err
		}
		if boosters[f], err = NewBooster(train, params.Training); err != nil {
			return nil, err
		}
		if _, err = boosters[f].AddValidation(test); err != nil {
			return nil, err
		}
	}

	logger := log.GetLoggerWithName("gbm.cv").With(
		log.OperationKey, log.OperationTune,
		log.FoldsKey, params.NFolds,
	)
	result := &CVResult{NFolds: params.NFolds}
	es := NewEarlyStopping(params.Patience)
	trainRMSE := make([]float64, len(folds))
	testRMSE := make([]float64, len(folds))

	for round := 1; round <= params.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "%s: cancelled at round %d", op, round)
		}
		err := parallel.ForEach(ctx, len(boosters), func(f int) error {
			boosters[f].BoostOneRound()
			trainRMSE[f] = boosters[f].TrainRMSE()
			testRMSE[f] = boosters[f].ValidRMSE(0)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "%s: round %d", op, round)
		}
		if err := errors.CheckNumericalStability("boost_round", testRMSE, round); err != nil {
			return nil, err
		}

		cv := CVRound{Round: round}
		cv.TrainRMSEMean, cv.TrainRMSEStd = stat.PopMeanStdDev(trainRMSE, nil)
		cv.TestRMSEMean, cv.TestRMSEStd = stat.PopMeanStdDev(testRMSE, nil)
		result.Rounds = append(result.Rounds, cv)
		logger.Debug("cv round",
			log.IterationKey, round,
			"train_rmse", cv.TrainRMSEMean,
			"test_rmse", cv.TestRMSEMean,
		)

		if es.Update(round, cv.TestRMSEMean) {
			result.StoppedEarly = round < params.MaxRounds
			break
		}
	}

	result.BestRound = es.BestIteration
	result.BestScore = es.BestScore
	logger.Info("cross-validation finished",
		"rounds_run", len(result.Rounds),
		"best_round", result.BestRound,
		log.RMSEKey, result.BestScore,
		"stopped_early", result.StoppedEarly,
	)
	return result, nil
}
