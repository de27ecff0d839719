package gbm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/metrics"
	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func TestTrainZeroRoundsPredictsMean(t *testing.T) {
	ds := sineDataset(t, 50, 2)
	params := DefaultTrainingParams()
	params.NumRounds = 0
	m, err := Train(ds, params)
	require.NoError(t, err)

	mean := stat.Mean(ds.TargetValues(), nil)
	assert.Equal(t, mean, m.InitScore)
	pred, err := m.Predict(ds)
	require.NoError(t, err)
	for _, p := range pred {
		assert.Equal(t, mean, p)
	}
}

func TestBoosterTrainingErrorDecreases(t *testing.T) {
	ds := sineDataset(t, 300, 3)
	b, err := NewBooster(ds, DefaultTrainingParams())
	require.NoError(t, err)

	prev := b.TrainRMSE()
	for i := 0; i < 20; i++ {
		b.BoostOneRound()
		cur := b.TrainRMSE()
		assert.LessOrEqual(t, cur, prev+1e-12, "round %d", i+1)
		prev = cur
	}
	assert.Equal(t, 20, b.NumRounds())

	m := b.Model()
	pred, err := m.Predict(ds)
	require.NoError(t, err)
	rmse, err := metrics.RMSE(ds.TargetValues(), pred)
	require.NoError(t, err)
	assert.InDelta(t, b.TrainRMSE(), rmse, 1e-9, "cached predictions match Predict")
}

func TestBoosterValidationCache(t *testing.T) {
	ds := sineDataset(t, 200, 4)
	train, err := ds.Subset(seq(0, 150))
	require.NoError(t, err)
	test, err := ds.Subset(seq(150, 200))
	require.NoError(t, err)

	b, err := NewBooster(train, DefaultTrainingParams())
	require.NoError(t, err)
	b.BoostOneRound()
	idx, err := b.AddValidation(test)
	require.NoError(t, err)
	for i := 0; i < 9; i++ {
		b.BoostOneRound()
	}

	pred, err := b.Model().Predict(test)
	require.NoError(t, err)
	rmse, err := metrics.RMSE(test.TargetValues(), pred)
	require.NoError(t, err)
	assert.InDelta(t, rmse, b.ValidRMSE(idx), 1e-9)
}

func TestTrainDeterministic(t *testing.T) {
	ds := sineDataset(t, 150, 5)
	params := DefaultTrainingParams()
	params.NumRounds = 10
	params.Subsample = 0.6

	a, err := Train(ds, params)
	require.NoError(t, err)
	b, err := Train(ds, params)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	params.Seed++
	c, err := Train(ds, params)
	require.NoError(t, err)
	assert.NotEqual(t, a.Trees, c.Trees)
}

func TestTrainingParamsValidate(t *testing.T) {
	require.NoError(t, DefaultTrainingParams().Validate())

	mutations := map[string]func(*TrainingParams){
		"rounds":    func(p *TrainingParams) { p.NumRounds = -1 },
		"eta":       func(p *TrainingParams) { p.LearningRate = 0 },
		"leaf":      func(p *TrainingParams) { p.MinDataInLeaf = 0 },
		"lambda":    func(p *TrainingParams) { p.Lambda = -1 },
		"gain":      func(p *TrainingParams) { p.MinGainToSplit = -1 },
		"subsample": func(p *TrainingParams) { p.Subsample = 1.5 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			p := DefaultTrainingParams()
			mutate(&p)
			var vErr *errors.ValidationError
			assert.True(t, errors.As(p.Validate(), &vErr))
		})
	}
}

func TestPredictMissingFeature(t *testing.T) {
	m, err := Train(sineDataset(t, 30, 6), DefaultTrainingParams())
	require.NoError(t, err)
	_, err = m.Predict(stepDataset(t))
	assert.Error(t, err)
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestNewBoosterOverflowingTarget(t *testing.T) {
	ds, err := dataset.FromColumns([]string{"x", "y"}, [][]float64{{1, 2, 3}, {1.5e308, 1.6e308, 1.7e308}}, "y")
	require.NoError(t, err)

	_, err = Train(ds, DefaultTrainingParams())
	require.Error(t, err)
	var ni *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &ni))
	assert.Equal(t, "init_score", ni.Operation)
}
