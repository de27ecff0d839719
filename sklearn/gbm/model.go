package gbm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/regselect/core/dataset"
	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// Model is a trained gradient-boosted ensemble. It records the configuration
// it was trained with for reproducibility.
type Model struct {
	FeatureNames []string `json:"feature_names"`
	Trees        []Tree   `json:"trees"`
	InitScore    float64  `json:"init_score"`
	LearningRate float64  `json:"learning_rate"`
	MaxDepth     int      `json:"max_depth"`
	NumRounds    int      `json:"num_rounds"`
	Seed         uint64   `json:"seed"`
}

// Predict returns InitScore plus the learning-rate-scaled output of every
// tree for each record of ds. No clipping is applied.
func (m *Model) Predict(ds *dataset.Dataset) ([]float64, error) {
	cols, err := columns(ds, m.FeatureNames)
	if err != nil {
		return nil, errors.Wrap(err, "gbm.Model.Predict")
	}
	out := make([]float64, ds.Len())
	for i := range out {
		pred := m.InitScore
		for t := range m.Trees {
			pred += m.LearningRate * m.Trees[t].predict(cols, i)
		}
		out[i] = pred
	}
	return out, nil
}

// ImportanceType selects how FeatureImportance aggregates splits.
type ImportanceType string

const (
	// ImportanceGain is the average gain of the splits that use the feature.
	ImportanceGain ImportanceType = "gain"
	// ImportanceCover is the average hessian cover of those splits.
	ImportanceCover ImportanceType = "cover"
	// ImportanceFrequency is the number of splits that use the feature.
	ImportanceFrequency ImportanceType = "frequency"
)

// FeatureScore is one row of a feature importance table.
type FeatureScore struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// FeatureImportance computes normalised importance scores (summing to 1)
// for the features used in at least one split, sorted descending with ties
// broken by name.
func (m *Model) FeatureImportance(kind ImportanceType) ([]FeatureScore, error) {
	switch kind {
	case ImportanceGain, ImportanceCover, ImportanceFrequency:
	default:
		return nil, errors.NewValidationError("importance_type", "must be gain, cover or frequency", string(kind))
	}

	total := make([]float64, len(m.FeatureNames))
	count := make([]float64, len(m.FeatureNames))
	for _, tree := range m.Trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf() {
				continue
			}
			count[node.Feature]++
			switch kind {
			case ImportanceGain:
				total[node.Feature] += node.Gain
			case ImportanceCover:
				total[node.Feature] += node.Cover
			case ImportanceFrequency:
				total[node.Feature]++
			}
		}
	}

	var out []FeatureScore
	sum := 0.0
	for j, name := range m.FeatureNames {
		if count[j] == 0 {
			continue
		}
		score := total[j]
		if kind != ImportanceFrequency {
			score /= count[j]
		}
		out = append(out, FeatureScore{Feature: name, Score: score})
		sum += score
	}
	if sum > 0 {
		for i := range out {
			out[i].Score /= sum
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Feature < out[j].Feature
	})
	return out, nil
}

// Dump renders every tree as text, one "booster[i]:" block per tree.
func (m *Model) Dump() string {
	var sb strings.Builder
	for i := range m.Trees {
		fmt.Fprintf(&sb, "booster[%d]:\n", i)
		if len(m.Trees[i].Nodes) > 0 {
			m.Trees[i].dump(&sb, m.FeatureNames, 0)
		}
	}
	return sb.String()
}
