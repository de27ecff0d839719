package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func TestBaseEstimatorLifecycle(t *testing.T) {
	est := NewBaseEstimator("GBMRegressor")
	assert.Equal(t, "GBMRegressor", est.Name())
	assert.False(t, est.IsFitted())
	assert.Equal(t, "not_fitted", est.State().String())

	err := est.CheckFitted("Predict")
	require.Error(t, err)
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "GBMRegressor", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)

	est.SetFitted()
	assert.True(t, est.IsFitted())
	assert.NoError(t, est.CheckFitted("Predict"))

	est.Reset()
	assert.Equal(t, NotFitted, est.State())
}
