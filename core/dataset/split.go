package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// DefaultStrata is the number of target-quantile buckets used by StratifiedSplit.
const DefaultStrata = 5

// Split is a partition of a dataset's row indices into disjoint train and test sets.
type Split struct {
	Train    []int
	Test     []int
	Fraction float64
	Seed     uint64
}

// Apply materialises the train and test subsets of ds.
func (s Split) Apply(ds *Dataset) (train, test *Dataset, err error) {
	if train, err = ds.Subset(s.Train); err != nil {
		return nil, nil, err
	}
	if test, err = ds.Subset(s.Test); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// SplitOption configures StratifiedSplit.
type SplitOption func(*splitConfig)

type splitConfig struct {
	strata int
}

// WithStrata sets the number of target-quantile buckets. 1 disables stratification.
func WithStrata(n int) SplitOption {
	return func(c *splitConfig) {
		c.strata = n
	}
}

// StratifiedSplit partitions ds into train and test rows so that roughly a
// fraction p of every target-quantile bucket lands in train. The overall train
// size is round(p·n), clamped so both sides keep at least one row, and is
// apportioned over buckets by largest remainder. Rows inside a bucket are
// shuffled with a PCG source seeded by seed, so the result is deterministic.
func StratifiedSplit(ds *Dataset, p float64, seed uint64, opts ...SplitOption) (Split, error) {
	if !(p > 0 && p < 1) {
		return Split{}, errors.NewInvalidFractionError("StratifiedSplit", p)
	}
	cfg := splitConfig{strata: DefaultStrata}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.strata < 1 {
		return Split{}, errors.NewValidationError("strata", "must be at least 1", cfg.strata)
	}

	n := ds.Len()
	if n < 2 {
		return Split{}, errors.NewInsufficientDataError("StratifiedSplit", 2, n, "need at least one train and one test record")
	}

	buckets := quantileBuckets(ds.TargetValues(), min(cfg.strata, n))
	quota := apportion(buckets, p, n)
	r := rand.New(rand.NewPCG(seed, seed))

	split := Split{Fraction: p, Seed: seed}
	for b, bucket := range buckets {
		r.Shuffle(len(bucket), func(i, j int) {
			bucket[i], bucket[j] = bucket[j], bucket[i]
		})
		split.Train = append(split.Train, bucket[:quota[b]]...)
		split.Test = append(split.Test, bucket[quota[b]:]...)
	}
	sort.Ints(split.Train)
	sort.Ints(split.Test)
	return split, nil
}

// apportion decides how many rows of each bucket go to train.
func apportion(buckets [][]int, p float64, n int) []int {
	total := int(math.Round(p * float64(n)))
	total = max(1, min(total, n-1))

	quota := make([]int, len(buckets))
	remainders := make([]float64, len(buckets))
	assigned := 0
	for b, bucket := range buckets {
		exact := p * float64(len(bucket))
		quota[b] = int(math.Floor(exact))
		remainders[b] = exact - float64(quota[b])
		assigned += quota[b]
	}

	order := make([]int, len(buckets))
	for b := range order {
		order[b] = b
	}
	sort.SliceStable(order, func(i, j int) bool {
		return remainders[order[i]] > remainders[order[j]]
	})
	for k := 0; assigned < total; k = (k + 1) % len(order) {
		b := order[k]
		if quota[b] < len(buckets[b]) {
			quota[b]++
			assigned++
		}
	}
	for k := len(order) - 1; assigned > total; k = (k - 1 + len(order)) % len(order) {
		b := order[k]
		if quota[b] > 0 {
			quota[b]--
			assigned--
		}
	}
	return quota
}

// quantileBuckets groups row indices by the quantile interval their target
// value falls in. Duplicate boundaries collapse, so heavily tied targets can
// yield fewer buckets than requested.
func quantileBuckets(y []float64, groups int) [][]int {
	sorted := append([]float64(nil), y...)
	sort.Float64s(sorted)

	var breaks []float64
	for g := 1; g < groups; g++ {
		q := stat.Quantile(float64(g)/float64(groups), stat.Empirical, sorted, nil)
		if len(breaks) == 0 || q > breaks[len(breaks)-1] {
			breaks = append(breaks, q)
		}
	}

	buckets := make([][]int, len(breaks)+1)
	for i, v := range y {
		// first break >= v; values equal to a break close the lower interval
		b := sort.SearchFloat64s(breaks, v)
		buckets[b] = append(buckets[b], i)
	}

	out := buckets[:0]
	for _, b := range buckets {
		if len(b) > 0 {
			out = append(out, b)
		}
	}
	return out
}
