// Package dataset provides the immutable in-memory table the pipeline works on:
// named numeric columns with one designated target column.
package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// Record is a single row keyed by column name.
type Record map[string]float64

// Dataset is an ordered sequence of records stored column-wise.
// A Dataset is never mutated after construction; derived datasets are copies.
type Dataset struct {
	names   []string
	index   map[string]int
	columns [][]float64
	target  string
	n       int
}

// FromRecords builds a Dataset from records. Column order is lexicographic.
// Every record must carry the same columns as the first one and every value
// must be finite.
func FromRecords(records []Record, target string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.FromRecords", "empty data", errors.ErrEmptyData)
	}

	names := make([]string, 0, len(records[0]))
	for name := range records[0] {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([][]float64, len(names))
	for j := range columns {
		columns[j] = make([]float64, len(records))
	}
	for i, rec := range records {
		for j, name := range names {
			v, ok := rec[name]
			if !ok {
				return nil, errors.NewMissingValueError("dataset.FromRecords", i, name, "")
			}
			columns[j][i] = v
		}
		if len(rec) != len(names) {
			for name := range rec {
				if !contains(names, name) {
					return nil, errors.NewMissingValueError("dataset.FromRecords", i, name, "")
				}
			}
		}
	}
	return newDataset(names, columns, target, "dataset.FromRecords")
}

// FromColumns builds a Dataset from column slices, keeping the given order.
// The slices are copied.
func FromColumns(names []string, columns [][]float64, target string) (*Dataset, error) {
	if len(names) != len(columns) {
		return nil, errors.NewDimensionError("dataset.FromColumns", len(names), len(columns), 1)
	}
	if len(names) == 0 || len(columns[0]) == 0 {
		return nil, errors.NewModelError("dataset.FromColumns", "empty data", errors.ErrEmptyData)
	}
	n := len(columns[0])
	copied := make([][]float64, len(columns))
	for j, col := range columns {
		if len(col) != n {
			return nil, errors.NewDimensionError("dataset.FromColumns", n, len(col), 0)
		}
		copied[j] = append([]float64(nil), col...)
	}
	return newDataset(append([]string(nil), names...), copied, target, "dataset.FromColumns")
}

// FromMatrix builds a Dataset from a gonum matrix whose columns are named by names.
func FromMatrix(names []string, m mat.Matrix, target string) (*Dataset, error) {
	r, c := m.Dims()
	if c != len(names) {
		return nil, errors.NewDimensionError("dataset.FromMatrix", len(names), c, 1)
	}
	columns := make([][]float64, c)
	for j := 0; j < c; j++ {
		columns[j] = make([]float64, r)
		mat.Col(columns[j], j, m)
	}
	return newDataset(append([]string(nil), names...), columns, target, "dataset.FromMatrix")
}

func newDataset(names []string, columns [][]float64, target, op string) (*Dataset, error) {
	index := make(map[string]int, len(names))
	for j, name := range names {
		if _, dup := index[name]; dup {
			return nil, errors.NewValidationError("names", "duplicate column name", name)
		}
		index[name] = j
	}
	if _, ok := index[target]; !ok {
		return nil, errors.NewValidationError("target", "target column not present", target)
	}
	if len(names) < 2 {
		return nil, errors.NewValidationError("names", "dataset needs at least one feature besides the target", names)
	}
	for j, col := range columns {
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.NewMissingValueError(op, i, names[j], "")
			}
		}
	}
	return &Dataset{
		names:   names,
		index:   index,
		columns: columns,
		target:  target,
		n:       len(columns[0]),
	}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return d.n }

// Names returns all column names, target included, in dataset order.
func (d *Dataset) Names() []string { return append([]string(nil), d.names...) }

// Target returns the target column name.
func (d *Dataset) Target() string { return d.target }

// Features returns the non-target column names in dataset order.
func (d *Dataset) Features() []string {
	out := make([]string, 0, len(d.names)-1)
	for _, name := range d.names {
		if name != d.target {
			out = append(out, name)
		}
	}
	return out
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.index[name]
	if !ok {
		return nil, errors.NewValidationError("column", "unknown column", name)
	}
	return append([]float64(nil), d.columns[j]...), nil
}

// TargetValues returns a copy of the target column.
func (d *Dataset) TargetValues() []float64 {
	return append([]float64(nil), d.columns[d.index[d.target]]...)
}

// At returns the value of column name in row i. It panics on unknown names,
// like indexing a slice out of range.
func (d *Dataset) At(i int, name string) float64 {
	return d.columns[d.index[name]][i]
}

// Row returns row i as a Record.
func (d *Dataset) Row(i int) Record {
	rec := make(Record, len(d.names))
	for j, name := range d.names {
		rec[name] = d.columns[j][i]
	}
	return rec
}

// Records returns every row as a Record.
func (d *Dataset) Records() []Record {
	out := make([]Record, d.n)
	for i := range out {
		out[i] = d.Row(i)
	}
	return out
}

// Subset returns a new dataset holding the given rows in the given order.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, errors.NewModelError("dataset.Subset", "empty data", errors.ErrEmptyData)
	}
	columns := make([][]float64, len(d.columns))
	for j, col := range d.columns {
		sub := make([]float64, len(indices))
		for k, i := range indices {
			if i < 0 || i >= d.n {
				return nil, errors.NewValueError("dataset.Subset", "row index out of range")
			}
			sub[k] = col[i]
		}
		columns[j] = sub
	}
	return &Dataset{
		names:   append([]string(nil), d.names...),
		index:   d.index,
		columns: columns,
		target:  d.target,
		n:       len(indices),
	}, nil
}

// Select returns a dataset restricted to the given feature columns plus the target.
func (d *Dataset) Select(features []string) (*Dataset, error) {
	names := make([]string, 0, len(features)+1)
	columns := make([][]float64, 0, len(features)+1)
	for _, name := range append(append([]string(nil), features...), d.target) {
		j, ok := d.index[name]
		if !ok {
			return nil, errors.NewValidationError("features", "unknown column", name)
		}
		names = append(names, name)
		columns = append(columns, d.columns[j])
	}
	return newDataset(names, columns, d.target, "dataset.Select")
}

// WithColumns returns a copy of the dataset where the named columns are
// replaced by the given values. Columns not listed are shared with d.
func (d *Dataset) WithColumns(replace map[string][]float64) (*Dataset, error) {
	columns := make([][]float64, len(d.columns))
	copy(columns, d.columns)
	for name, values := range replace {
		j, ok := d.index[name]
		if !ok {
			return nil, errors.NewValidationError("column", "unknown column", name)
		}
		if len(values) != d.n {
			return nil, errors.NewDimensionError("dataset.WithColumns", d.n, len(values), 0)
		}
		columns[j] = append([]float64(nil), values...)
	}
	return newDataset(append([]string(nil), d.names...), columns, d.target, "dataset.WithColumns")
}

// Matrix returns the named feature columns as an n×len(features) matrix.
func (d *Dataset) Matrix(features []string) (*mat.Dense, error) {
	m := mat.NewDense(d.n, len(features), nil)
	for k, name := range features {
		j, ok := d.index[name]
		if !ok {
			return nil, errors.NewValidationError("features", "unknown column", name)
		}
		m.SetCol(k, d.columns[j])
	}
	return m, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
