package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "regselect: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "regselect: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"), "expected stack trace to contain test file name")

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 10, 9, 0)
	assert.Equal(t, "regselect: Predict: dimension mismatch on axis 0 (rows). Expected 10, got 9", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 9, dimErr.Got)
}

func TestPipelineErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"invalid fraction", NewInvalidFractionError("StratifiedSplit", 1.5), ErrInvalidFraction, "got 1.5"},
		{"zero variance", NewZeroVarianceError("StandardScaler.Fit", "x1"), ErrZeroVariance, "'x1'"},
		{"singular", NewSingularDesignMatrixError("linear.Fit", []string{"a", "b"}, 2, 3), ErrSingularDesignMatrix, "rank 2 of 3"},
		{"non nested", NewNonNestedModelsError("CompareNested", []string{"a"}, []string{"b"}), ErrNonNestedModels, "[a] vs [b]"},
		{"insufficient", NewInsufficientDataError("Tune", 10, 4, "folds exceed records"), ErrInsufficientData, "need 10, got 4"},
		{"length mismatch", NewLengthMismatchError("RMSE", 5, 4), ErrLengthMismatch, "5 predictions for 4"},
		{"missing value", NewMissingValueError("ReadCSV", 3, "age", "NA"), ErrMissingValue, `"NA"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))
			assert.True(t, Is(tt.err, tt.sentinel))
			assert.Contains(t, tt.err.Error(), tt.contains)

			wrapped := Wrap(tt.err, "pipeline")
			assert.True(t, stderrors.Is(wrapped, tt.sentinel))
		})
	}

	// 異なる種類のセンチネルとは一致しない
	assert.False(t, stderrors.Is(NewLengthMismatchError("RMSE", 1, 2), ErrMissingValue))
	// 特異行列は汎用センチネルとも一致する
	assert.True(t, stderrors.Is(NewSingularDesignMatrixError("Fit", nil, 1, 2), ErrSingularMatrix))
}

func TestMissingValueErrorWithoutRaw(t *testing.T) {
	err := NewMissingValueError("dataset.FromRecords", 0, "y", "")
	assert.Equal(t, "regselect: dataset.FromRecords: row 0 column 'y': missing value", err.Error())
}

func TestWarn(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	Warn(NewUndefinedMetricWarning("r2", "constant target", 0))
	Warn(NewMethodologyWarning("preprocessing", "statistics refit on test data"))

	require.Len(t, got, 2)
	assert.Contains(t, got[0].Error(), "'r2' is ill-defined")
	assert.Equal(t, "preprocessing: statistics refit on test data", got[1].Error())
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("ok", []float64{1, 2, 3}, 0))

	err := CheckNumericalStability("boost_round", []float64{1, math.NaN(), math.Inf(1)}, 7)
	var numErr *NumericalInstabilityError
	require.True(t, As(err, &numErr))
	assert.Equal(t, 7, numErr.Iteration)
	assert.Len(t, numErr.Values, 2)

	assert.Error(t, CheckScalar("loss", math.Inf(-1), 1))
	assert.NoError(t, CheckScalar("loss", 0.5, 1))
}
