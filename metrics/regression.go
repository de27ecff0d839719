// Package metrics は予測値と正解値の組から回帰の評価指標を計算する
// 全ての関数は純粋関数であり、入力を変更しない
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// validate は正解値と予測値の長さを検証する
func validate(op string, yTrue, yPred []float64) error {
	if len(yPred) != len(yTrue) {
		return errors.NewLengthMismatchError(op, len(yPred), len(yTrue))
	}
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty input")
	}
	return nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
// RMSE = sqrt(mean((pred_i - actual_i)^2))
func RMSE(yTrue, yPred []float64) (float64, error) {
	if err := validate("RMSE", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 2) / math.Sqrt(float64(len(yTrue))), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
// 正解値の分散が0の場合は UndefinedMetricWarning を発行して0を返す
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := validate("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	yMean := stat.Mean(yTrue, nil)
	var tss, rss float64
	for i, v := range yTrue {
		tss += (v - yMean) * (v - yMean)
		rss += (v - yPred[i]) * (v - yPred[i])
	}

	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "total sum of squares is zero (no variance in yTrue)", 0))
		return 0, nil
	}
	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}

// MAPE は平均絶対パーセンテージ誤差を計算する
// 正解値が0の要素は除外する
func MAPE(yTrue, yPred []float64) (float64, error) {
	if err := validate("MAPE", yTrue, yPred); err != nil {
		return 0, err
	}

	var sum float64
	validCount := 0
	for i, v := range yTrue {
		if v != 0 {
			sum += math.Abs(v-yPred[i]) / math.Abs(v)
			validCount++
		}
	}
	if validCount == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return (sum / float64(validCount)) * 100, nil
}
