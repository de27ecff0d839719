package model

import "github.com/YuminosukeSato/regselect/core/dataset"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はデータセットの目的変数に対してモデルを学習させる
	Fit(ds *dataset.Dataset) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict はデータセットの各レコードに対する予測値を返す
	Predict(ds *dataset.Dataset) ([]float64, error)
}

// Regressor は学習と予測の両方を備えた回帰モデル
type Regressor interface {
	Fitter
	Predictor
}

// Transformer はデータ変換のインターフェース
type Transformer interface {
	Fit(ds *dataset.Dataset) error
	Transform(ds *dataset.Dataset) (*dataset.Dataset, error)
	FitTransform(ds *dataset.Dataset) (*dataset.Dataset, error)
}
