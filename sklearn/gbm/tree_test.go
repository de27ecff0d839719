package gbm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleTreeStep(t *testing.T) {
	params := DefaultTrainingParams()
	params.NumRounds = 1
	params.LearningRate = 1
	params.Lambda = 0
	params.MaxDepth = 1

	m, err := Train(stepDataset(t), params)
	require.NoError(t, err)
	require.Len(t, m.Trees, 1)

	tree := m.Trees[0]
	require.Len(t, tree.Nodes, 3)
	root := tree.Nodes[0]
	assert.False(t, root.IsLeaf())
	assert.Equal(t, 0, root.Feature)
	assert.Equal(t, 2.5, root.Threshold)
	assert.InDelta(t, 50.0, root.Gain, 1e-9) // 0.5*(10²/2 + 10²/2 - 0)
	assert.Equal(t, 2, tree.NumLeaves())
	assert.Equal(t, 1, tree.Depth())

	pred, err := m.Predict(stepDataset(t))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 10, 10}, pred, 1e-12)

	dump := m.Dump()
	assert.True(t, strings.HasPrefix(dump, "booster[0]:\n0:[x<=2.5] yes=1,no=2"))
	assert.Contains(t, dump, "\t1:leaf=-5")
	assert.Contains(t, dump, "\t2:leaf=5")
}

func TestTreeRespectsConstraints(t *testing.T) {
	ds := sineDataset(t, 200, 1)

	t.Run("max depth", func(t *testing.T) {
		params := DefaultTrainingParams()
		params.NumRounds = 5
		params.MaxDepth = 3
		m, err := Train(ds, params)
		require.NoError(t, err)
		for _, tree := range m.Trees {
			assert.LessOrEqual(t, tree.Depth(), 3)
			assert.LessOrEqual(t, tree.NumLeaves(), 8)
		}
	})

	t.Run("min data in leaf", func(t *testing.T) {
		params := DefaultTrainingParams()
		params.NumRounds = 3
		params.MinDataInLeaf = 25
		m, err := Train(ds, params)
		require.NoError(t, err)
		for _, tree := range m.Trees {
			for _, node := range tree.Nodes {
				if node.IsLeaf() {
					assert.GreaterOrEqual(t, node.Count, 25)
				}
			}
		}
	})

	t.Run("min gain blocks every split", func(t *testing.T) {
		params := DefaultTrainingParams()
		params.NumRounds = 2
		params.MinGainToSplit = 1e12
		m, err := Train(ds, params)
		require.NoError(t, err)
		for _, tree := range m.Trees {
			assert.Len(t, tree.Nodes, 1)
		}
	})
}
