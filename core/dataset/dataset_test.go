package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func sampleRecords() []Record {
	return []Record{
		{"y": 10, "x1": 1, "x2": 5},
		{"y": 20, "x1": 2, "x2": 4},
		{"y": 30, "x1": 3, "x2": 3},
		{"y": 40, "x1": 4, "x2": 2},
	}
}

func TestFromRecords(t *testing.T) {
	ds, err := FromRecords(sampleRecords(), "y")
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"x1", "x2", "y"}, ds.Names())
	assert.Equal(t, []string{"x1", "x2"}, ds.Features())
	assert.Equal(t, "y", ds.Target())
	assert.Equal(t, []float64{10, 20, 30, 40}, ds.TargetValues())
	assert.Equal(t, 4.0, ds.At(3, "x1"))
	assert.Equal(t, Record{"y": 20, "x1": 2, "x2": 4}, ds.Row(1))
	assert.Len(t, ds.Records(), 4)
}

func TestFromRecordsMissingValue(t *testing.T) {
	t.Run("absent key", func(t *testing.T) {
		records := sampleRecords()
		delete(records[2], "x2")
		_, err := FromRecords(records, "y")
		require.ErrorIs(t, err, errors.ErrMissingValue)

		var mv *errors.MissingValueError
		require.True(t, errors.As(err, &mv))
		assert.Equal(t, 2, mv.Row)
		assert.Equal(t, "x2", mv.Column)
	})

	t.Run("extra key", func(t *testing.T) {
		records := sampleRecords()
		records[1]["x3"] = 1
		_, err := FromRecords(records, "y")
		assert.ErrorIs(t, err, errors.ErrMissingValue)
	})

	t.Run("NaN value", func(t *testing.T) {
		records := sampleRecords()
		records[0]["x1"] = math.NaN()
		_, err := FromRecords(records, "y")
		assert.ErrorIs(t, err, errors.ErrMissingValue)
	})
}

func TestFromColumnsValidation(t *testing.T) {
	_, err := FromColumns([]string{"x", "y"}, [][]float64{{1, 2}, {1}}, "y")
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = FromColumns([]string{"x", "y"}, [][]float64{{1, 2}, {3, 4}}, "z")
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))

	_, err = FromColumns([]string{"y"}, [][]float64{{1, 2}}, "y")
	assert.True(t, errors.As(err, &vErr))

	_, err = FromColumns([]string{"x", "x"}, [][]float64{{1, 2}, {3, 4}}, "x")
	assert.True(t, errors.As(err, &vErr))
}

func TestDerivedDatasetsDoNotMutate(t *testing.T) {
	cols := [][]float64{{1, 2, 3}, {4, 5, 6}}
	ds, err := FromColumns([]string{"b", "a"}, cols, "a")
	require.NoError(t, err)
	cols[0][0] = 99
	assert.Equal(t, 1.0, ds.At(0, "b"), "input slices are copied")
	assert.Equal(t, []string{"b"}, ds.Features())

	sub, err := ds.Subset([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 4}, sub.TargetValues())

	replaced, err := ds.WithColumns(map[string][]float64{"b": {7, 8, 9}})
	require.NoError(t, err)
	assert.Equal(t, 7.0, replaced.At(0, "b"))
	assert.Equal(t, 1.0, ds.At(0, "b"))

	col, err := ds.Column("b")
	require.NoError(t, err)
	col[0] = -1
	assert.Equal(t, 1.0, ds.At(0, "b"))

	_, err = ds.Subset([]int{5})
	assert.Error(t, err)
	_, err = ds.Column("nope")
	assert.Error(t, err)
}

func TestSelectAndMatrix(t *testing.T) {
	ds, err := FromRecords(sampleRecords(), "y")
	require.NoError(t, err)

	sel, err := ds.Select([]string{"x2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x2", "y"}, sel.Names())

	m, err := ds.Matrix([]string{"x2", "x1"})
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 5.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(0, 1))

	back, err := FromMatrix([]string{"x2", "x1"}, m, "x1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, back.TargetValues())

	_, err = ds.Select([]string{"missing"})
	assert.Error(t, err)
}
