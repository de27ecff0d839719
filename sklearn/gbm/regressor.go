package gbm

import (
	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/core/model"
	"github.com/YuminosukeSato/regselect/metrics"
	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// GBMRegressor wraps Train and Model behind the Fit/Predict estimator API.
type GBMRegressor struct {
	model.BaseEstimator

	Params TrainingParams
	Model  *Model
}

// NewGBMRegressor creates a regressor with DefaultTrainingParams.
func NewGBMRegressor() *GBMRegressor {
	return &GBMRegressor{
		BaseEstimator: model.NewBaseEstimator("GBMRegressor"),
		Params:        DefaultTrainingParams(),
	}
}

// WithNumRounds sets the number of boosting rounds
func (g *GBMRegressor) WithNumRounds(n int) *GBMRegressor {
	g.Params.NumRounds = n
	return g
}

// WithLearningRate sets the learning rate
func (g *GBMRegressor) WithLearningRate(eta float64) *GBMRegressor {
	g.Params.LearningRate = eta
	return g
}

// WithMaxDepth sets the maximum depth
func (g *GBMRegressor) WithMaxDepth(d int) *GBMRegressor {
	g.Params.MaxDepth = d
	return g
}

// WithSubsample sets the row fraction sampled for each tree
func (g *GBMRegressor) WithSubsample(f float64) *GBMRegressor {
	g.Params.Subsample = f
	return g
}

// WithSeed sets the random seed
func (g *GBMRegressor) WithSeed(seed uint64) *GBMRegressor {
	g.Params.Seed = seed
	return g
}

// Fit trains the ensemble on ds.
func (g *GBMRegressor) Fit(ds *dataset.Dataset) (err error) {
	defer errors.Recover(&err, "GBMRegressor.Fit")

	g.Reset()
	m, err := Train(ds, g.Params)
	if err != nil {
		return err
	}
	g.Model = m
	g.SetFitted()
	return nil
}

// Predict returns the ensemble prediction for each record of ds.
func (g *GBMRegressor) Predict(ds *dataset.Dataset) ([]float64, error) {
	if err := g.CheckFitted("Predict"); err != nil {
		return nil, err
	}
	return g.Model.Predict(ds)
}

// Score returns the R² of the predictions on ds.
func (g *GBMRegressor) Score(ds *dataset.Dataset) (float64, error) {
	pred, err := g.Predict(ds)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(ds.TargetValues(), pred)
}

// FeatureImportance returns the fitted model's importance table.
func (g *GBMRegressor) FeatureImportance(kind ImportanceType) ([]FeatureScore, error) {
	if err := g.CheckFitted("FeatureImportance"); err != nil {
		return nil, err
	}
	return g.Model.FeatureImportance(kind)
}
