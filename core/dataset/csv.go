package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// ReadCSV parses a header-first CSV table of numeric cells. Empty cells,
// "NA" and anything strconv.ParseFloat rejects are reported as MissingValue;
// nothing is imputed.
func ReadCSV(r io.Reader, target string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewModelError("dataset.ReadCSV", "empty data", errors.ErrEmptyData)
		}
		return nil, errors.Wrap(err, "dataset.ReadCSV: read header")
	}
	names := make([]string, len(header))
	for j, h := range header {
		names[j] = strings.TrimSpace(h)
	}

	// row は0始まりのデータ行番号、エラーにはファイル上の行番号も付ける
	columns := make([][]float64, len(names))
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dataset.ReadCSV: row %d", row)
		}
		line, _ := reader.FieldPos(0)
		switch {
		case len(fields) < len(names):
			return nil, errors.Wrapf(
				errors.NewMissingValueError("dataset.ReadCSV", row, names[len(fields)], ""),
				"line %d", line)
		case len(fields) > len(names):
			return nil, errors.Wrapf(
				errors.NewValidationError("fields", "more cells than header columns", len(fields)),
				"dataset.ReadCSV: line %d", line)
		}
		for j, raw := range fields {
			cell := strings.TrimSpace(raw)
			v, perr := strconv.ParseFloat(cell, 64)
			if cell == "" || strings.EqualFold(cell, "NA") || perr != nil {
				return nil, errors.Wrapf(
					errors.NewMissingValueError("dataset.ReadCSV", row, names[j], raw),
					"line %d", line)
			}
			columns[j] = append(columns[j], v)
		}
	}
	if len(columns) == 0 || len(columns[0]) == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty data", errors.ErrEmptyData)
	}
	return newDataset(names, columns, target, "dataset.ReadCSV")
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path, target string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, target)
}
