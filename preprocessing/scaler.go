package preprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/core/model"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
)

// ZeroVariancePolicy は標準偏差が0の列の扱いを決める
type ZeroVariancePolicy int

const (
	// ZeroVarianceFail は ZeroVariance エラーを返す (デフォルト)
	ZeroVarianceFail ZeroVariancePolicy = iota
	// ZeroVarianceUnit は標準偏差を1とみなし、平均の除去のみ行う
	ZeroVarianceUnit
	// ZeroVarianceDrop は変換時にその列を取り除く
	ZeroVarianceDrop
)

func (p ZeroVariancePolicy) String() string {
	switch p {
	case ZeroVarianceUnit:
		return "unit"
	case ZeroVarianceDrop:
		return "drop"
	default:
		return "fail"
	}
}

// ParseZeroVariancePolicy は設定値 ("fail", "unit", "drop") をポリシーに変換する
func ParseZeroVariancePolicy(s string) (ZeroVariancePolicy, error) {
	switch s {
	case "", "fail":
		return ZeroVarianceFail, nil
	case "unit":
		return ZeroVarianceUnit, nil
	case "drop":
		return ZeroVarianceDrop, nil
	}
	return ZeroVarianceFail, errors.NewValidationError("zero_variance", "must be one of fail, unit, drop", s)
}

// varianceTolerance より小さい相対標準偏差は0とみなす
const varianceTolerance = 1e-12

// ColumnStats は1列分の参照統計量
type ColumnStats struct {
	Mean   float64
	StdDev float64
}

// StandardScaler は目的変数以外の各列を (x - mean) / sd に変換する標準化スケーラー
// 標準偏差は不偏標準偏差 (n-1) を用いる
type StandardScaler struct {
	model.BaseEstimator

	// Policy は標準偏差が0の列の扱い
	Policy ZeroVariancePolicy

	// Stats は列名ごとの平均値と標準偏差
	Stats map[string]ColumnStats

	// Columns は学習時に見た特徴量の列名 (データセット順)
	Columns []string

	// Dropped は ZeroVarianceDrop で除外される列名
	Dropped []string
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(preprocessing.ZeroVarianceFail)
//	trainStd, err := scaler.FitTransform(train)
//	testStd, err := scaler.Transform(test)
func NewStandardScaler(policy ZeroVariancePolicy) *StandardScaler {
	return &StandardScaler{
		BaseEstimator: model.NewBaseEstimator("StandardScaler"),
		Policy:        policy,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(ZeroVarianceFail)
}

// NewStandardScalerFromStats は既知の参照統計量からスケーラーを作成する
// 戻り値のスケーラーは学習済み状態となる
func NewStandardScalerFromStats(stats map[string]ColumnStats, policy ZeroVariancePolicy) (*StandardScaler, error) {
	s := NewStandardScaler(policy)
	s.Stats = make(map[string]ColumnStats, len(stats))
	for name, st := range stats {
		s.Columns = append(s.Columns, name)
		s.Stats[name] = st
	}
	sort.Strings(s.Columns)
	if err := s.applyPolicy(); err != nil {
		return nil, err
	}
	s.SetFitted()
	return s, nil
}

// Fit は訓練データから列ごとの平均値と標準偏差を計算する
//
// パラメータ:
//   - ds: 参照データセット (2行以上)
//
// 戻り値:
//   - error: データ不足、または Policy が Fail で分散0の列がある場合
func (s *StandardScaler) Fit(ds *dataset.Dataset) error {
	if ds.Len() < 2 {
		return errors.NewInsufficientDataError("StandardScaler.Fit", 2, ds.Len(), "sample standard deviation needs two records")
	}

	s.Reset()
	s.Columns = ds.Features()
	s.Stats = make(map[string]ColumnStats, len(s.Columns))
	s.Dropped = nil
	for _, name := range s.Columns {
		col, err := ds.Column(name)
		if err != nil {
			return err
		}
		mean, sd := stat.MeanStdDev(col, nil)
		s.Stats[name] = ColumnStats{Mean: mean, StdDev: sd}
	}
	if err := s.applyPolicy(); err != nil {
		return err
	}

	log.GetLoggerWithName("preprocessing.scaler").Debug("StandardScaler fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, len(s.Columns),
		"dropped", s.Dropped,
	)
	s.SetFitted()
	return nil
}

func (s *StandardScaler) applyPolicy() error {
	for _, name := range s.Columns {
		st := s.Stats[name]
		if st.StdDev > varianceTolerance*math.Max(1, math.Abs(st.Mean)) {
			continue
		}
		switch s.Policy {
		case ZeroVarianceUnit:
			st.StdDev = 1
			s.Stats[name] = st
		case ZeroVarianceDrop:
			s.Dropped = append(s.Dropped, name)
		default:
			return errors.NewZeroVarianceError("StandardScaler.Fit", name)
		}
	}
	return nil
}

// Transform は学習済みの統計量でデータを標準化した新しいデータセットを返す
// 目的変数と元のデータセットは変更されない
func (s *StandardScaler) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := s.CheckFitted("Transform"); err != nil {
		return nil, err
	}
	return s.apply(ds, "Transform", func(x float64, st ColumnStats) float64 {
		return (x - st.Mean) / st.StdDev
	})
}

// FitTransform はFitとTransformを同時に実行する
func (s *StandardScaler) FitTransform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := s.Fit(ds); err != nil {
		return nil, err
	}
	return s.Transform(ds)
}

// InverseTransform は標準化を元に戻す (x*sd + mean)
// ZeroVarianceDrop で除外された列は復元できないため、そのまま残らない
func (s *StandardScaler) InverseTransform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := s.CheckFitted("InverseTransform"); err != nil {
		return nil, err
	}
	return s.apply(ds, "InverseTransform", func(z float64, st ColumnStats) float64 {
		return z*st.StdDev + st.Mean
	})
}

func (s *StandardScaler) apply(ds *dataset.Dataset, op string, fn func(float64, ColumnStats) float64) (*dataset.Dataset, error) {
	dropped := make(map[string]bool, len(s.Dropped))
	for _, name := range s.Dropped {
		dropped[name] = true
	}

	replace := make(map[string][]float64, len(s.Columns))
	kept := make([]string, 0, len(s.Columns))
	for _, name := range ds.Features() {
		if dropped[name] {
			continue
		}
		st, ok := s.Stats[name]
		if !ok {
			return nil, errors.NewValueError("StandardScaler."+op, "column "+name+" was not seen during Fit")
		}
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			col[i] = fn(v, st)
		}
		replace[name] = col
		kept = append(kept, name)
	}
	if len(kept)+len(s.Dropped) < len(s.Columns) {
		return nil, errors.NewDimensionError("StandardScaler."+op, len(s.Columns), len(kept)+len(s.Dropped), 1)
	}

	out := ds
	if len(s.Dropped) > 0 {
		var err error
		if out, err = ds.Select(kept); err != nil {
			return nil, err
		}
	}
	return out.WithColumns(replace)
}
