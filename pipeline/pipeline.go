// Package pipeline wires the model-selection run together: stratified split,
// standardization, then the linear branch (OLS, importance pruning, nested
// F test) and the boosted branch (cross-validated round selection, final
// ensemble) running concurrently, each evaluated on the held-out subset.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/core/model"
	"github.com/YuminosukeSato/regselect/linear"
	"github.com/YuminosukeSato/regselect/metrics"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
	"github.com/YuminosukeSato/regselect/preprocessing"
	"github.com/YuminosukeSato/regselect/sklearn/gbm"
)

// Run executes the whole pipeline on ds. When one branch fails the returned
// Report still carries the other branch's results together with the error.
func Run(ctx context.Context, ds *dataset.Dataset, opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("pipeline")
	start := time.Now()

	split, train, test, err := Prepare(ds, opts)
	if err != nil {
		return nil, err
	}

	rep := &Report{Split: split}
	var (
		wg                  sync.WaitGroup
		linearErr, boostErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		linearErr = errors.SafeExecute("pipeline.RunLinear", func() error {
			var err error
			rep.Linear, err = RunLinear(train, test, opts)
			return err
		})
	}()
	go func() {
		defer wg.Done()
		boostErr = errors.SafeExecute("pipeline.RunBoosted", func() error {
			var err error
			rep.Boosted, err = RunBoosted(ctx, train, test, opts)
			return err
		})
	}()
	wg.Wait()

	if rep.Linear != nil {
		rep.Evaluations = append(rep.Evaluations, rep.Linear.Evaluations...)
	}
	if rep.Boosted != nil && rep.Boosted.Evaluation.ModelName != "" {
		rep.Evaluations = append(rep.Evaluations, rep.Boosted.Evaluation)
	}

	err = errors.Combine(linearErr, boostErr)
	if err != nil {
		logger.Error("pipeline finished with errors", err)
		return rep, err
	}
	logger.Info("pipeline finished",
		log.DurationMsKey, time.Since(start).Milliseconds(),
		"models", len(rep.Evaluations),
	)
	return rep, nil
}

// Prepare splits ds into train and test subsets and standardizes them as
// opts asks.
func Prepare(ds *dataset.Dataset, opts Options) (dataset.Split, *dataset.Dataset, *dataset.Dataset, error) {
	split, err := dataset.StratifiedSplit(ds, opts.SplitFraction, opts.Seed, dataset.WithStrata(opts.Strata))
	if err != nil {
		return dataset.Split{}, nil, nil, err
	}
	train, test, err := split.Apply(ds)
	if err != nil {
		return dataset.Split{}, nil, nil, err
	}
	log.GetLoggerWithName("pipeline").Info("dataset split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, ds.Len(),
		"train", train.Len(),
		"test", test.Len(),
	)
	train, test, err = Standardize(train, test, opts.Standardize, opts.ZeroVariance)
	if err != nil {
		return dataset.Split{}, nil, nil, err
	}
	return split, train, test, nil
}

// Standardize scales train and test according to mode.
func Standardize(train, test *dataset.Dataset, mode StandardizeMode, policy preprocessing.ZeroVariancePolicy) (*dataset.Dataset, *dataset.Dataset, error) {
	switch mode {
	case StandardizeNone:
		return train, test, nil
	case StandardizePerSubset:
		errors.Warn(errors.NewMethodologyWarning("pipeline.Standardize",
			"statistics are refit on the test subset; held-out scaling differs from training scaling"))
		trainStd, err := preprocessing.NewStandardScaler(policy).FitTransform(train)
		if err != nil {
			return nil, nil, err
		}
		testStd, err := preprocessing.NewStandardScaler(policy).FitTransform(test)
		if err != nil {
			return nil, nil, err
		}
		return trainStd, testStd, nil
	default:
		var scaler model.Transformer = preprocessing.NewStandardScaler(policy)
		trainStd, err := scaler.FitTransform(train)
		if err != nil {
			return nil, nil, err
		}
		testStd, err := scaler.Transform(test)
		if err != nil {
			return nil, nil, err
		}
		return trainStd, testStd, nil
	}
}

// RunLinear fits the full OLS model on train, prunes predictors whose |t| is
// not above the importance threshold, refits the reduced model, compares the
// two with an F test and evaluates both on test.
func RunLinear(train, test *dataset.Dataset, opts Options) (*LinearResult, error) {
	logger := log.GetLoggerWithName("pipeline.linear")

	full, err := linear.Fit(train)
	if err != nil {
		return nil, err
	}
	res := &LinearResult{Full: full}
	res.Ranking = linear.RankImportance(full)
	res.Selected = linear.SelectFeatures(res.Ranking, opts.ImportanceThreshold)

	ev, err := evaluate(ModelLinear, full, full.Predictors, test)
	if err != nil {
		return res, err
	}
	res.Evaluations = append(res.Evaluations, ev)

	if len(res.Selected) == len(full.Predictors) {
		logger.Info("all predictors kept", log.FeaturesKey, len(full.Predictors))
		return res, nil
	}

	res.Reduced, err = linear.Fit(train, linear.WithPredictors(res.Selected...))
	if err != nil {
		return res, err
	}
	if res.ANOVA, err = linear.CompareNested(res.Reduced, full); err != nil {
		return res, err
	}
	ev, err = evaluate(ModelLinearReduced, res.Reduced, res.Reduced.Predictors, test)
	if err != nil {
		return res, err
	}
	res.Evaluations = append(res.Evaluations, ev)

	logger.Info("linear branch finished",
		log.R2ScoreKey, full.RSquared,
		"selected", res.Selected,
		"anova_p_value", res.ANOVA.PValue,
	)
	return res, nil
}

// RunBoosted selects the round count by cross-validation on train, fits the
// final ensemble with that many rounds and evaluates it on test.
func RunBoosted(ctx context.Context, train, test *dataset.Dataset, opts Options) (*BoostedResult, error) {
	tune := opts.tuneParams()
	cv, err := gbm.Tune(ctx, train, tune)
	if err != nil {
		return nil, err
	}
	res := &BoostedResult{CV: cv}

	params := tune.Training
	params.NumRounds = cv.BestRound
	if res.Model, err = gbm.Train(train, params); err != nil {
		return res, err
	}
	if res.Importance, err = res.Model.FeatureImportance(gbm.ImportanceGain); err != nil {
		return res, err
	}

	pred, err := res.Model.Predict(test)
	if err != nil {
		return res, err
	}
	rmse, err := metrics.RMSE(test.TargetValues(), pred)
	if err != nil {
		return res, err
	}
	rounds := cv.BestRound
	res.Evaluation = EvaluationReport{
		ModelName:      ModelBoosted,
		RMSE:           rmse,
		SelectedRounds: &rounds,
		Features:       res.Model.FeatureNames,
	}
	return res, nil
}

func evaluate(name string, m model.Predictor, features []string, test *dataset.Dataset) (EvaluationReport, error) {
	pred, err := m.Predict(test)
	if err != nil {
		return EvaluationReport{}, err
	}
	actual := test.TargetValues()
	rmse, err := metrics.RMSE(actual, pred)
	if err != nil {
		return EvaluationReport{}, err
	}
	r2, err := metrics.R2Score(actual, pred)
	if err != nil {
		return EvaluationReport{}, err
	}
	return EvaluationReport{
		ModelName: name,
		RMSE:      rmse,
		RSquared:  &r2,
		Features:  append([]string{}, features...),
	}, nil
}
