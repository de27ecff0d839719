package linear

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/core/model"
	"github.com/YuminosukeSato/regselect/core/parallel"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
)

// InterceptName は係数表における切片の名前
const InterceptName = "(Intercept)"

// defaultRankTolerance は R の対角成分を0とみなす相対許容誤差
const defaultRankTolerance = 1e-10

// Coefficient は係数表の1行
type Coefficient struct {
	Name     string  `json:"name"`
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
	TStat    float64 `json:"t_stat"`
	PValue   float64 `json:"p_value"`
}

// LinearRegression は切片付きの最小二乗線形回帰モデル
// 学習後は不変であり、係数表と適合度を保持する
type LinearRegression struct {
	model.BaseEstimator

	Target       string        // 目的変数名
	Predictors   []string      // 説明変数名 (学習順)
	Coefficients []Coefficient // 先頭は切片
	Sigma        float64       // 残差標準誤差
	RSquared     float64       // 決定係数
	AdjRSquared  float64       // 自由度調整済み決定係数
	RSS          float64       // 残差平方和
	TSS          float64       // 全平方和
	DFResidual   int           // 残差の自由度 n-k-1
	NSamples     int           // 学習サンプル数

	requested []string
	rankTol   float64
	targetSum uint64 // 学習に使った目的変数列のハッシュ
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression(opts ...Option) *LinearRegression {
	lr := &LinearRegression{
		BaseEstimator: model.NewBaseEstimator("LinearRegression"),
		rankTol:       defaultRankTolerance,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Fit は新しいモデルを作成して ds で学習させる
func Fit(ds *dataset.Dataset, opts ...Option) (*LinearRegression, error) {
	lr := NewLinearRegression(opts...)
	if err := lr.Fit(ds); err != nil {
		return nil, err
	}
	return lr, nil
}

// Fit はモデルを訓練データで学習させる
// 計画行列 [1, X] をハウスホルダーQR分解し、R の対角成分を各列のノルムと比べて階数落ちを検出する
func (lr *LinearRegression) Fit(ds *dataset.Dataset) error {
	const op = "LinearRegression.Fit"
	lr.Reset()

	predictors, err := lr.resolvePredictors(ds)
	if err != nil {
		return err
	}
	n, k := ds.Len(), len(predictors)
	p := k + 1
	if n <= p {
		return errors.NewInsufficientDataError(op, p+1, n, "need more records than coefficients")
	}

	X := mat.NewDense(n, p, nil)
	columns := make([][]float64, k)
	for j, name := range predictors {
		if columns[j], err = ds.Column(name); err != nil {
			return err
		}
	}
	// 並列処理の閾値（この値以下の行数では逐次処理を使用）
	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			X.Set(i, 0, 1.0) // 切片項
			for j := 0; j < k; j++ {
				X.Set(i, j+1, columns[j][i])
			}
		}
	})
	y := mat.NewVecDense(n, ds.TargetValues())

	var qr mat.QR
	qr.Factorize(X)
	var rFull mat.Dense
	qr.RTo(&rFull)
	R := rFull.Slice(0, p, 0, p).(*mat.Dense)

	if deficient := lr.rankDeficient(R, X, predictors); len(deficient) > 0 {
		return errors.NewSingularDesignMatrixError(op, deficient, p-len(deficient), p)
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil && !isConditionWarning(err) {
		return errors.NewModelError(op, "least squares solve failed", err)
	}
	if err := errors.CheckNumericalStability("ols_solve", beta.RawVector().Data, 0); err != nil {
		return err
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)
	yv := ds.TargetValues()
	mean := 0.0
	for _, v := range yv {
		mean += v
	}
	mean /= float64(n)
	var rss, tss float64
	for i, v := range yv {
		r := v - fitted.AtVec(i)
		rss += r * r
		d := v - mean
		tss += d * d
	}

	df := n - p
	sigma2 := rss / float64(df)

	// Cov(β) = σ² (RᵀR)⁻¹ = σ² R⁻¹ R⁻ᵀ
	var rInv mat.Dense
	if err := rInv.Inverse(R); err != nil && !isConditionWarning(err) {
		return errors.NewSingularDesignMatrixError(op, predictors, 0, p)
	}
	var unscaled mat.Dense
	unscaled.Mul(&rInv, rInv.T())

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	names := append([]string{InterceptName}, predictors...)
	coefs := make([]Coefficient, p)
	for j := range coefs {
		est := beta.AtVec(j)
		se := math.Sqrt(sigma2 * unscaled.At(j, j))
		t := tStatistic(est, se)
		coefs[j] = Coefficient{
			Name:     names[j],
			Estimate: est,
			StdError: se,
			TStat:    t,
			PValue:   2 * tdist.Survival(math.Abs(t)),
		}
	}

	lr.Target = ds.Target()
	lr.Predictors = predictors
	lr.Coefficients = coefs
	lr.RSS = rss
	lr.TSS = tss
	lr.Sigma = math.Sqrt(sigma2)
	lr.DFResidual = df
	lr.NSamples = n
	lr.targetSum = targetChecksum(yv)
	lr.RSquared = rSquared(rss, tss)
	lr.AdjRSquared = 1 - (1-lr.RSquared)*float64(n-1)/float64(df)

	log.GetLoggerWithName("linear.regression").Debug("LinearRegression fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, k,
		log.R2ScoreKey, lr.RSquared,
	)
	lr.SetFitted()
	return nil
}

func (lr *LinearRegression) resolvePredictors(ds *dataset.Dataset) ([]string, error) {
	if lr.requested == nil {
		return ds.Features(), nil
	}
	seen := make(map[string]bool, len(lr.requested))
	out := make([]string, 0, len(lr.requested))
	for _, name := range lr.requested {
		switch {
		case name == ds.Target():
			return nil, errors.NewValidationError("predictors", "target cannot be a predictor", name)
		case !ds.Has(name):
			return nil, errors.NewValidationError("predictors", "unknown column", name)
		case seen[name]:
			return nil, errors.NewValidationError("predictors", "duplicate predictor", name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}

// rankDeficient returns the design-matrix columns whose R diagonal is
// numerically zero relative to the column's own norm, i.e. columns that are
// linear combinations of the columns before them. The test is per column, so
// predictors on very different scales are not mistaken for collinear ones.
func (lr *LinearRegression) rankDeficient(R, X *mat.Dense, predictors []string) []string {
	n, p := X.Dims()
	scale := lr.rankTol * float64(max(n, p))

	var out []string
	for j := 0; j < p; j++ {
		norm := mat.Norm(X.ColView(j), 2)
		if math.Abs(R.At(j, j)) <= scale*norm {
			if j == 0 {
				out = append(out, InterceptName)
			} else {
				out = append(out, predictors[j-1])
			}
		}
	}
	return out
}

// targetChecksum hashes the target column in record order.
func targetChecksum(y []float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range y {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func isConditionWarning(err error) bool {
	var cond mat.Condition
	return errors.As(err, &cond)
}

func tStatistic(est, se float64) float64 {
	if se > 0 {
		return est / se
	}
	if est == 0 {
		return 0
	}
	return math.Copysign(math.Inf(1), est)
}

func rSquared(rss, tss float64) float64 {
	if tss == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R^2", "target has zero variance", 0))
		return 0
	}
	return 1 - rss/tss
}

// Predict は学習済みの係数で ds の各レコードの予測値を返す
func (lr *LinearRegression) Predict(ds *dataset.Dataset) ([]float64, error) {
	if err := lr.CheckFitted("Predict"); err != nil {
		return nil, err
	}
	out := make([]float64, ds.Len())
	for i := range out {
		out[i] = lr.Coefficients[0].Estimate
	}
	for j, name := range lr.Predictors {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		w := lr.Coefficients[j+1].Estimate
		for i, v := range col {
			out[i] += w * v
		}
	}
	return out, nil
}

// Coefficient は名前で係数表の行を検索する
func (lr *LinearRegression) Coefficient(name string) (Coefficient, bool) {
	for _, c := range lr.Coefficients {
		if c.Name == name {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Intercept は学習された切片を返す
func (lr *LinearRegression) Intercept() float64 {
	if len(lr.Coefficients) == 0 {
		return 0
	}
	return lr.Coefficients[0].Estimate
}
