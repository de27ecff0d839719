package model

import "github.com/YuminosukeSato/regselect/pkg/errors"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String returns the state name used in log fields.
func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator は全てのモデルの基底となる構造体
// 埋め込み先のモデル名を保持し、未学習時のエラー生成を共通化する
type BaseEstimator struct {
	name  string
	state EstimatorState
}

// NewBaseEstimator は指定されたモデル名で未学習の BaseEstimator を作成する
func NewBaseEstimator(name string) BaseEstimator {
	return BaseEstimator{name: name}
}

// Name はモデル名を返す
func (e *BaseEstimator) Name() string {
	return e.name
}

// State は現在の学習状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// CheckFitted は未学習であれば method を含む NotFittedError を返す
func (e *BaseEstimator) CheckFitted(method string) error {
	if e.state != Fitted {
		return errors.NewNotFittedError(e.name, method)
	}
	return nil
}
