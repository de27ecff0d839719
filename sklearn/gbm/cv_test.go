package gbm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func TestTuneHalfTarget(t *testing.T) {
	ds := halfTargetDataset(t)
	params := DefaultTuneParams()
	params.NFolds = 2
	params.MaxRounds = 5

	res, err := Tune(context.Background(), ds, params)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Rounds), 5)
	assert.GreaterOrEqual(t, res.BestRound, 1)
	assert.LessOrEqual(t, res.BestRound, len(res.Rounds))
	assert.Equal(t, 2, res.NFolds)
}

func TestTuneInvariants(t *testing.T) {
	ds := sineDataset(t, 120, 7)
	params := DefaultTuneParams()
	params.NFolds = 4
	params.MaxRounds = 30
	params.Patience = 5

	res, err := Tune(context.Background(), ds, params)
	require.NoError(t, err)
	require.NotEmpty(t, res.Rounds)

	best := res.Rounds[0].TestRMSEMean
	bestRound := 1
	for i, r := range res.Rounds {
		assert.Equal(t, i+1, r.Round, "rounds are contiguous from 1")
		assert.GreaterOrEqual(t, r.TrainRMSEMean, 0.0)
		assert.GreaterOrEqual(t, r.TestRMSEMean, 0.0)
		assert.GreaterOrEqual(t, r.TestRMSEStd, 0.0)
		if r.TestRMSEMean < best {
			best, bestRound = r.TestRMSEMean, r.Round
		}
	}
	assert.Equal(t, bestRound, res.BestRound, "first argmin of held-out RMSE")
	assert.Equal(t, best, res.BestScore)
	assert.Equal(t, res.TestRMSE()[res.BestRound-1], res.BestScore)

	if res.StoppedEarly {
		assert.Equal(t, res.BestRound+params.Patience, len(res.Rounds))
	} else {
		assert.Equal(t, params.MaxRounds, len(res.Rounds))
	}
}

func TestTuneEarlyStopsOnNoise(t *testing.T) {
	ds := noiseDataset(t, 80, 8)
	params := DefaultTuneParams()
	params.NFolds = 4
	params.MaxRounds = 200
	params.Patience = 3

	res, err := Tune(context.Background(), ds, params)
	require.NoError(t, err)
	assert.True(t, res.StoppedEarly)
	assert.Equal(t, res.BestRound+3, len(res.Rounds))
	for _, r := range res.Rounds[res.BestRound:] {
		assert.GreaterOrEqual(t, r.TestRMSEMean, res.BestScore)
	}
}

func TestTuneWithoutPatienceRunsAllRounds(t *testing.T) {
	params := DefaultTuneParams()
	params.NFolds = 3
	params.MaxRounds = 12
	params.Patience = 0

	res, err := Tune(context.Background(), noiseDataset(t, 30, 9), params)
	require.NoError(t, err)
	assert.Len(t, res.Rounds, 12)
	assert.False(t, res.StoppedEarly)
}

func TestTuneDeterministic(t *testing.T) {
	ds := sineDataset(t, 60, 10)
	params := DefaultTuneParams()
	params.NFolds = 5
	params.MaxRounds = 10

	a, err := Tune(context.Background(), ds, params)
	require.NoError(t, err)
	b, err := Tune(context.Background(), ds, params)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTuneErrors(t *testing.T) {
	ds := halfTargetDataset(t)

	t.Run("more folds than records", func(t *testing.T) {
		params := DefaultTuneParams()
		params.NFolds = 11
		_, err := Tune(context.Background(), ds, params)
		assert.ErrorIs(t, err, errors.ErrInsufficientData)
	})

	t.Run("one fold", func(t *testing.T) {
		params := DefaultTuneParams()
		params.NFolds = 1
		_, err := Tune(context.Background(), ds, params)
		var vErr *errors.ValidationError
		assert.True(t, errors.As(err, &vErr))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		params := DefaultTuneParams()
		params.NFolds = 2
		_, err := Tune(ctx, ds, params)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid training params", func(t *testing.T) {
		params := DefaultTuneParams()
		params.NFolds = 2
		params.Training.LearningRate = -1
		_, err := Tune(context.Background(), ds, params)
		assert.Error(t, err)
	})
}
