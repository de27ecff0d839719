package gbm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regselect/core/dataset"
)

// stepDataset は x <= 2.5 で目的変数が 0 と 10 に分かれる最小のデータ
func stepDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromColumns([]string{"x", "y"}, [][]float64{{1, 2, 3, 4}, {0, 0, 10, 10}}, "y")
	require.NoError(t, err)
	return ds
}

// sineDataset は y = 10 sin(x1) + x2 + ノイズ
func sineDataset(t *testing.T, n int, seed uint64) *dataset.Dataset {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed))
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	x3 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = r.Float64() * 6
		x2[i] = r.Float64() * 4
		x3[i] = r.Float64()
		y[i] = 10*math.Sin(x1[i]) + x2[i] + 0.3*r.NormFloat64()
	}
	ds, err := dataset.FromColumns([]string{"x1", "x2", "x3", "y"}, [][]float64{x1, x2, x3, y}, "y")
	require.NoError(t, err)
	return ds
}

// noiseDataset は説明変数と無関係な目的変数を持つ
func noiseDataset(t *testing.T, n int, seed uint64) *dataset.Dataset {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed))
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = r.NormFloat64()
		y[i] = r.NormFloat64()
	}
	ds, err := dataset.FromColumns([]string{"x", "y"}, [][]float64{x, y}, "y")
	require.NoError(t, err)
	return ds
}

// halfTargetDataset は目的変数 10..100 と、その半分にノイズを加えた説明変数を持つ
func halfTargetDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	noise := []float64{0.3, -0.2, 0.1, -0.4, 0.2, 0.0, -0.1, 0.4, -0.3, 0.1}
	records := make([]dataset.Record, 10)
	for i := range records {
		y := float64(10 * (i + 1))
		records[i] = dataset.Record{"y": y, "x": y/2 + noise[i]}
	}
	ds, err := dataset.FromRecords(records, "y")
	require.NoError(t, err)
	return ds
}
