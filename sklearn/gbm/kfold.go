package gbm

import "math/rand/v2"

// Fold represents a single fold in cross-validation
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	return &KFold{
		NSplits: nSplits,
		Shuffle: shuffle,
		Seed:    seed,
	}
}

// Split generates train/test indices for each fold. The first n%k folds get
// one extra test record. Callers must ensure 2 <= NSplits <= nSamples.
func (kf *KFold) Split(nSamples int) []Fold {
	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	current := 0
	isTest := make([]bool, nSamples)
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		test := append([]int(nil), indices[current:current+testSize]...)
		for _, idx := range test {
			isTest[idx] = true
		}
		train := make([]int, 0, nSamples-testSize)
		for _, idx := range indices {
			if !isTest[idx] {
				train = append(train, idx)
			}
		}
		for _, idx := range test {
			isTest[idx] = false
		}

		folds[i] = Fold{TrainIndices: train, TestIndices: test}
		current += testSize
	}
	return folds
}
