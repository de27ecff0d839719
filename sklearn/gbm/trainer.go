package gbm

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/metrics"
	"github.com/YuminosukeSato/regselect/pkg/errors"
	"github.com/YuminosukeSato/regselect/pkg/log"
)

// evalSet is a held-out dataset whose predictions are updated after every round.
type evalSet struct {
	cols [][]float64
	y    []float64
	pred []float64
}

// Booster trains an ensemble one round at a time. It caches the current
// ensemble output for the training rows and for every registered evaluation
// set, so adding a tree costs one tree traversal per row.
type Booster struct {
	params    TrainingParams
	features  []string
	cols      [][]float64
	y         []float64
	pred      []float64
	grad      []float64
	hess      []float64
	initScore float64
	trees     []Tree
	rng       *rand.Rand
	evals     []*evalSet
}

// NewBooster prepares a booster on the features and target of ds.
// The initial prediction is the mean of the target.
func NewBooster(ds *dataset.Dataset, params TrainingParams) (*Booster, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, errors.NewModelError("Booster", "empty data", errors.ErrEmptyData)
	}
	features := ds.Features()
	cols, err := columns(ds, features)
	if err != nil {
		return nil, err
	}

	y := ds.TargetValues()
	initScore := stat.Mean(y, nil)
	if err := errors.CheckScalar("init_score", initScore, 0); err != nil {
		return nil, err
	}
	n := len(y)
	b := &Booster{
		params:    params,
		features:  features,
		cols:      cols,
		y:         y,
		pred:      make([]float64, n),
		grad:      make([]float64, n),
		hess:      make([]float64, n),
		initScore: initScore,
		rng:       rand.New(rand.NewPCG(params.Seed, params.Seed^0x9e3779b97f4a7c15)),
	}
	for i := range b.pred {
		b.pred[i] = b.initScore
	}
	return b, nil
}

func columns(ds *dataset.Dataset, features []string) ([][]float64, error) {
	cols := make([][]float64, len(features))
	for j, name := range features {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return cols, nil
}

// AddValidation registers a held-out dataset and returns its index for ValidRMSE.
// The dataset must carry the booster's feature columns and target.
func (b *Booster) AddValidation(ds *dataset.Dataset) (int, error) {
	cols, err := columns(ds, b.features)
	if err != nil {
		return 0, err
	}
	ev := &evalSet{cols: cols, y: ds.TargetValues(), pred: make([]float64, ds.Len())}
	for i := range ev.pred {
		ev.pred[i] = b.initScore
		for t := range b.trees {
			ev.pred[i] += b.params.LearningRate * b.trees[t].predict(cols, i)
		}
	}
	b.evals = append(b.evals, ev)
	return len(b.evals) - 1, nil
}

// BoostOneRound fits one tree to the current residuals and adds it to the ensemble.
func (b *Booster) BoostOneRound() {
	// squared error: g = pred - y, h = 1
	for i := range b.y {
		b.grad[i] = b.pred[i] - b.y[i]
		b.hess[i] = 1
	}

	builder := &treeBuilder{params: b.params, cols: b.cols, grad: b.grad, hess: b.hess}
	tree := builder.build(b.sampleRows())
	b.trees = append(b.trees, tree)

	eta := b.params.LearningRate
	for i := range b.pred {
		b.pred[i] += eta * tree.predict(b.cols, i)
	}
	for _, ev := range b.evals {
		for i := range ev.pred {
			ev.pred[i] += eta * tree.predict(ev.cols, i)
		}
	}
}

// sampleRows draws the rows used for the next tree without replacement.
func (b *Booster) sampleRows() []int {
	n := len(b.y)
	if b.params.Subsample >= 1 {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows
	}
	k := max(1, int(math.Round(b.params.Subsample*float64(n))))
	rows := b.rng.Perm(n)[:k]
	sort.Ints(rows)
	return rows
}

// NumRounds returns the number of trees built so far.
func (b *Booster) NumRounds() int { return len(b.trees) }

// TrainRMSE is the RMSE of the current ensemble on the training rows.
func (b *Booster) TrainRMSE() float64 {
	rmse, _ := metrics.RMSE(b.y, b.pred)
	return rmse
}

// ValidRMSE is the RMSE of the current ensemble on evaluation set idx.
func (b *Booster) ValidRMSE(idx int) float64 {
	ev := b.evals[idx]
	rmse, _ := metrics.RMSE(ev.y, ev.pred)
	return rmse
}

// Model snapshots the current ensemble.
func (b *Booster) Model() *Model {
	return &Model{
		FeatureNames: append([]string(nil), b.features...),
		Trees:        append([]Tree(nil), b.trees...),
		InitScore:    b.initScore,
		LearningRate: b.params.LearningRate,
		MaxDepth:     b.params.MaxDepth,
		NumRounds:    len(b.trees),
		Seed:         b.params.Seed,
	}
}

// Train fits params.NumRounds trees on ds.
func Train(ds *dataset.Dataset, params TrainingParams) (*Model, error) {
	b, err := NewBooster(ds, params)
	if err != nil {
		return nil, err
	}
	logger := log.GetLoggerWithName("gbm.trainer")
	for iter := 0; iter < params.NumRounds; iter++ {
		b.BoostOneRound()
		rmse := b.TrainRMSE()
		if err := errors.CheckScalar("boost_round", rmse, iter+1); err != nil {
			return nil, err
		}
		if logger.Enabled(context.Background(), log.LevelDebug) {
			logger.Debug("Training progress",
				log.IterationKey, iter+1,
				log.RMSEKey, rmse,
			)
		}
	}
	logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, len(b.features),
		log.IterationKey, b.NumRounds(),
		log.LearningRateKey, params.LearningRate,
		log.MaxDepthKey, params.MaxDepth,
	)
	return b.Model(), nil
}
