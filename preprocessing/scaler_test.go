package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func newDataset(t *testing.T, names []string, cols [][]float64, target string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromColumns(names, cols, target)
	require.NoError(t, err)
	return ds
}

func TestStandardScaler(t *testing.T) {
	ds := newDataset(t,
		[]string{"a", "b", "y"},
		[][]float64{{1, 2, 3, 4, 5}, {10, 10, 20, 20, 40}, {7, 8, 9, 10, 11}},
		"y")

	t.Run("Fit and Transform", func(t *testing.T) {
		scaler := NewStandardScalerDefault()
		out, err := scaler.FitTransform(ds)
		require.NoError(t, err)

		assert.InDelta(t, 3.0, scaler.Stats["a"].Mean, 1e-12)
		assert.InDelta(t, 1.5811388300841898, scaler.Stats["a"].StdDev, 1e-12, "sample standard deviation")

		for _, name := range []string{"a", "b"} {
			col, err := out.Column(name)
			require.NoError(t, err)
			mean, sd := stat.MeanStdDev(col, nil)
			assert.InDelta(t, 0, mean, 1e-12)
			assert.InDelta(t, 1, sd, 1e-12)
		}
		assert.Equal(t, ds.TargetValues(), out.TargetValues(), "target is untouched")
		assert.Equal(t, 1.0, ds.At(0, "a"), "input is untouched")
	})

	t.Run("round trip", func(t *testing.T) {
		scaler := NewStandardScalerDefault()
		out, err := scaler.FitTransform(ds)
		require.NoError(t, err)
		back, err := scaler.InverseTransform(out)
		require.NoError(t, err)
		for _, name := range ds.Names() {
			want, _ := ds.Column(name)
			got, _ := back.Column(name)
			assert.InDeltaSlice(t, want, got, 1e-9, name)
		}
	})

	t.Run("reference statistics applied to other subset", func(t *testing.T) {
		train, err := ds.Subset([]int{0, 1, 2})
		require.NoError(t, err)
		test, err := ds.Subset([]int{3, 4})
		require.NoError(t, err)

		scaler := NewStandardScalerDefault()
		require.NoError(t, scaler.Fit(train))
		out, err := scaler.Transform(test)
		require.NoError(t, err)
		// train a = {1,2,3}: mean 2, sd 1
		assert.InDelta(t, 2.0, out.At(0, "a"), 1e-12)
		assert.InDelta(t, 3.0, out.At(1, "a"), 1e-12)
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewStandardScalerDefault().Transform(ds)
		var nf *errors.NotFittedError
		assert.True(t, errors.As(err, &nf))
	})
}

func TestStandardScalerZeroVariance(t *testing.T) {
	ds := newDataset(t,
		[]string{"c", "x", "y"},
		[][]float64{{0.1, 0.1, 0.1, 0.1}, {1, 2, 3, 5}, {1, 2, 3, 4}},
		"y")

	t.Run("fail", func(t *testing.T) {
		err := NewStandardScaler(ZeroVarianceFail).Fit(ds)
		require.ErrorIs(t, err, errors.ErrZeroVariance)
		var zv *errors.ZeroVarianceError
		require.True(t, errors.As(err, &zv))
		assert.Equal(t, "c", zv.Column)
	})

	t.Run("unit", func(t *testing.T) {
		scaler := NewStandardScaler(ZeroVarianceUnit)
		out, err := scaler.FitTransform(ds)
		require.NoError(t, err)
		assert.Equal(t, 1.0, scaler.Stats["c"].StdDev)
		col, _ := out.Column("c")
		assert.InDeltaSlice(t, []float64{0, 0, 0, 0}, col, 1e-12)
	})

	t.Run("drop", func(t *testing.T) {
		scaler := NewStandardScaler(ZeroVarianceDrop)
		out, err := scaler.FitTransform(ds)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, scaler.Dropped)
		assert.False(t, out.Has("c"))
		assert.Equal(t, []string{"x"}, out.Features())

		back, err := scaler.InverseTransform(out)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, back.At(3, "x"), 1e-12)
	})
}

func TestStandardScalerFromStats(t *testing.T) {
	ds := newDataset(t, []string{"x", "y"}, [][]float64{{2, 4, 6}, {1, 2, 3}}, "y")
	scaler, err := NewStandardScalerFromStats(map[string]ColumnStats{"x": {Mean: 4, StdDev: 2}}, ZeroVarianceFail)
	require.NoError(t, err)
	out, err := scaler.Transform(ds)
	require.NoError(t, err)
	col, _ := out.Column("x")
	assert.Equal(t, []float64{-1, 0, 1}, col)

	_, err = NewStandardScalerFromStats(map[string]ColumnStats{"x": {Mean: 4}}, ZeroVarianceFail)
	assert.ErrorIs(t, err, errors.ErrZeroVariance)
}

func TestStandardScalerUnknownColumn(t *testing.T) {
	train := newDataset(t, []string{"x", "y"}, [][]float64{{1, 2, 3}, {1, 2, 3}}, "y")
	other := newDataset(t, []string{"z", "y"}, [][]float64{{1, 2, 3}, {1, 2, 3}}, "y")
	scaler := NewStandardScalerDefault()
	require.NoError(t, scaler.Fit(train))
	_, err := scaler.Transform(other)
	assert.Error(t, err)
}

func TestParseZeroVariancePolicy(t *testing.T) {
	for in, want := range map[string]ZeroVariancePolicy{"": ZeroVarianceFail, "fail": ZeroVarianceFail, "unit": ZeroVarianceUnit, "drop": ZeroVarianceDrop} {
		got, err := ParseZeroVariancePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		if in != "" {
			assert.Equal(t, in, got.String())
		}
	}
	_, err := ParseZeroVariancePolicy("impute")
	assert.Error(t, err)
}
