// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learnの警告・例外システムにインスパイアされており、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("regselect-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、目的変数の分散が0でR²が定義できない場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// MethodologyWarning は推奨されない手順が選択された場合の警告です。
// 例えば、テストデータで標準化の統計量を再計算する場合など。
type MethodologyWarning struct {
	Component string
	Message   string
}

func (w *MethodologyWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Component, w.Message)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *MethodologyWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("component", w.Component).
		Str("message", w.Message).
		Str("type", "MethodologyWarning")
}

// NewMethodologyWarning は新しいMethodologyWarningを作成します。
func NewMethodologyWarning(component, message string) *MethodologyWarning {
	return &MethodologyWarning{Component: component, Message: message}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("regselect: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("regselect: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("regselect: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("regselect: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError は機械学習モデルに関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("regselect: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("regselect: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	パイプライン固有のエラー型
//
//	各型は対応するセンチネル（ErrXxx）と errors.Is で一致します。
//
// ===========================================================================

var (
	// ErrInvalidFraction は分割比率が (0,1) の範囲外の場合のエラーです。
	ErrInvalidFraction = New("invalid fraction")

	// ErrZeroVariance は標準偏差が0の列を標準化しようとした場合のエラーです。
	ErrZeroVariance = New("zero variance")

	// ErrSingularDesignMatrix は説明変数が完全な共線性を持つ場合のエラーです。
	ErrSingularDesignMatrix = New("singular design matrix")

	// ErrNonNestedModels は比較対象のモデルが入れ子関係にない場合のエラーです。
	ErrNonNestedModels = New("non-nested models")

	// ErrInsufficientData はデータ数が処理に必要な数に満たない場合のエラーです。
	ErrInsufficientData = New("insufficient data")

	// ErrLengthMismatch は予測値と正解値の長さが異なる場合のエラーです。
	ErrLengthMismatch = New("length mismatch")

	// ErrMissingValue は値が欠損または数値でない場合のエラーです。
	ErrMissingValue = New("missing value")
)

// InvalidFractionError は分割比率が不正な場合のエラーです。
type InvalidFractionError struct {
	Op       string
	Fraction float64
}

func (e *InvalidFractionError) Error() string {
	return fmt.Sprintf("regselect: %s: split fraction must be in (0,1), got %v", e.Op, e.Fraction)
}

// Is はセンチネルエラーとの一致を判定します。
func (e *InvalidFractionError) Is(target error) bool { return target == ErrInvalidFraction }

// NewInvalidFractionError は新しいInvalidFractionErrorを作成し、スタックトレースを付与します。
func NewInvalidFractionError(op string, fraction float64) error {
	return errors.WithStack(&InvalidFractionError{Op: op, Fraction: fraction})
}

// ZeroVarianceError は列の標準偏差が0の場合のエラーです。
type ZeroVarianceError struct {
	Op     string
	Column string
}

func (e *ZeroVarianceError) Error() string {
	return fmt.Sprintf("regselect: %s: column '%s' has zero variance", e.Op, e.Column)
}

// Is はセンチネルエラーとの一致を判定します。
func (e *ZeroVarianceError) Is(target error) bool { return target == ErrZeroVariance }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ZeroVarianceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("type", "ZeroVarianceError")
}

// NewZeroVarianceError は新しいZeroVarianceErrorを作成し、スタックトレースを付与します。
func NewZeroVarianceError(op, column string) error {
	return errors.WithStack(&ZeroVarianceError{Op: op, Column: column})
}

// SingularDesignMatrixError は計画行列がランク落ちしている場合のエラーです。
type SingularDesignMatrixError struct {
	Op         string
	Predictors []string
	Rank       int
	Columns    int
}

func (e *SingularDesignMatrixError) Error() string {
	return fmt.Sprintf("regselect: %s: design matrix is rank deficient (rank %d of %d columns) for predictors [%s]",
		e.Op, e.Rank, e.Columns, strings.Join(e.Predictors, ", "))
}

// Is はセンチネルエラーとの一致を判定します。
func (e *SingularDesignMatrixError) Is(target error) bool {
	return target == ErrSingularDesignMatrix || target == ErrSingularMatrix
}

// NewSingularDesignMatrixError は新しいSingularDesignMatrixErrorを作成し、スタックトレースを付与します。
func NewSingularDesignMatrixError(op string, predictors []string, rank, columns int) error {
	return errors.WithStack(&SingularDesignMatrixError{Op: op, Predictors: predictors, Rank: rank, Columns: columns})
}

// NonNestedModelsError は2つのモデルの説明変数集合が真部分集合の関係にない場合のエラーです。
type NonNestedModelsError struct {
	Op    string
	Left  []string
	Right []string
}

func (e *NonNestedModelsError) Error() string {
	return fmt.Sprintf("regselect: %s: predictor sets are not nested: [%s] vs [%s]",
		e.Op, strings.Join(e.Left, ", "), strings.Join(e.Right, ", "))
}

// Is はセンチネルエラーとの一致を判定します。
func (e *NonNestedModelsError) Is(target error) bool { return target == ErrNonNestedModels }

// NewNonNestedModelsError は新しいNonNestedModelsErrorを作成し、スタックトレースを付与します。
func NewNonNestedModelsError(op string, left, right []string) error {
	return errors.WithStack(&NonNestedModelsError{Op: op, Left: left, Right: right})
}

// InsufficientDataError はサンプル数が不足している場合のエラーです。
type InsufficientDataError struct {
	Op       string
	Required int
	Got      int
	Reason   string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("regselect: %s: insufficient data: %s (need %d, got %d)", e.Op, e.Reason, e.Required, e.Got)
}

// Is はセンチネルエラーとの一致を判定します。
func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InsufficientDataError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("required", e.Required).
		Int("got", e.Got).
		Str("reason", e.Reason).
		Str("type", "InsufficientDataError")
}

// NewInsufficientDataError は新しいInsufficientDataErrorを作成し、スタックトレースを付与します。
func NewInsufficientDataError(op string, required, got int, reason string) error {
	return errors.WithStack(&InsufficientDataError{Op: op, Required: required, Got: got, Reason: reason})
}

// LengthMismatchError は予測値と正解値の長さが一致しない場合のエラーです。
type LengthMismatchError struct {
	Op          string
	Predictions int
	Actuals     int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("regselect: %s: got %d predictions for %d actual values", e.Op, e.Predictions, e.Actuals)
}

// Is はセンチネルエラーとの一致を判定します。
func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// NewLengthMismatchError は新しいLengthMismatchErrorを作成し、スタックトレースを付与します。
func NewLengthMismatchError(op string, predictions, actuals int) error {
	return errors.WithStack(&LengthMismatchError{Op: op, Predictions: predictions, Actuals: actuals})
}

// MissingValueError はレコードの値が欠損または非数値の場合のエラーです。
type MissingValueError struct {
	Op     string
	Row    int // 0始まりのレコード番号（ヘッダ行は数えない）
	Column string
	Raw    string // 解析できなかった元の文字列（あれば）
}

func (e *MissingValueError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("regselect: %s: row %d column '%s': non-numeric value %q", e.Op, e.Row, e.Column, e.Raw)
	}
	return fmt.Sprintf("regselect: %s: row %d column '%s': missing value", e.Op, e.Row, e.Column)
}

// Is はセンチネルエラーとの一致を判定します。
func (e *MissingValueError) Is(target error) bool { return target == ErrMissingValue }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MissingValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("row", e.Row).
		Str("column", e.Column).
		Str("raw", e.Raw).
		Str("type", "MissingValueError")
}

// NewMissingValueError は新しいMissingValueErrorを作成し、スタックトレースを付与します。
func NewMissingValueError(op string, row int, column, raw string) error {
	return errors.WithStack(&MissingValueError{Op: op, Row: row, Column: column, Raw: raw})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Combine は2つのエラーを1つにまとめます。どちらかがnilの場合はもう一方を返します。
func Combine(err, other error) error {
	return errors.CombineErrors(err, other)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
