package gbm

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// Node is one node of a regression tree. Children are indices into the
// owning Tree's Nodes slice; leaves have Left == Right == -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"` // leaf output before learning-rate scaling
	Gain      float64 `json:"gain"`
	Cover     float64 `json:"cover"` // hessian sum of the samples reaching the node
	Count     int     `json:"count"`
	Depth     int     `json:"depth"`
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is a regression tree stored as a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict routes row i of the column-major feature table to a leaf.
// Values <= Threshold go left.
func (t *Tree) predict(cols [][]float64, i int) float64 {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.IsLeaf() {
			return node.Value
		}
		if cols[node.Feature][i] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

// NumLeaves returns the number of leaf nodes.
func (t *Tree) NumLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			n++
		}
	}
	return n
}

// Depth returns the depth of the deepest leaf; a single leaf has depth 0.
func (t *Tree) Depth() int {
	d := 0
	for i := range t.Nodes {
		d = max(d, t.Nodes[i].Depth)
	}
	return d
}

// dump writes the tree in xgboost's text dump layout.
func (t *Tree) dump(w io.Writer, names []string, idx int) {
	node := &t.Nodes[idx]
	indent := ""
	for d := 0; d < node.Depth; d++ {
		indent += "\t"
	}
	if node.IsLeaf() {
		fmt.Fprintf(w, "%s%d:leaf=%g,cover=%g\n", indent, idx, node.Value, node.Cover)
		return
	}
	fmt.Fprintf(w, "%s%d:[%s<=%g] yes=%d,no=%d,gain=%g,cover=%g\n",
		indent, idx, names[node.Feature], node.Threshold, node.Left, node.Right, node.Gain, node.Cover)
	t.dump(w, names, node.Left)
	t.dump(w, names, node.Right)
}

// splitInfo describes a candidate split.
type splitInfo struct {
	Feature   int
	Threshold float64
	Gain      float64
}

// treeBuilder grows one tree from gradient statistics.
type treeBuilder struct {
	params TrainingParams
	cols   [][]float64
	grad   []float64
	hess   []float64
	tree   Tree
}

func (b *treeBuilder) build(indices []int) Tree {
	b.tree = Tree{}
	b.buildNode(indices, 0)
	return b.tree
}

// buildNode recursively builds tree nodes and returns the new node's index.
func (b *treeBuilder) buildNode(indices []int, depth int) int {
	nodeIdx := len(b.tree.Nodes)
	sumGrad, sumHess := b.sums(indices)
	b.tree.Nodes = append(b.tree.Nodes, Node{
		Left:  -1,
		Right: -1,
		Value: b.leafValue(sumGrad, sumHess),
		Cover: sumHess,
		Count: len(indices),
		Depth: depth,
	})

	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return nodeIdx
	}
	if len(indices) < 2*b.params.MinDataInLeaf {
		return nodeIdx
	}
	best := b.findBestSplit(indices, sumGrad, sumHess)
	if best.Feature < 0 || !(best.Gain > b.params.MinGainToSplit) {
		return nodeIdx
	}

	left, right := b.splitData(indices, best)
	node := &b.tree.Nodes[nodeIdx]
	node.Feature = best.Feature
	node.Threshold = best.Threshold
	node.Gain = best.Gain
	node.Value = 0

	l := b.buildNode(left, depth+1)
	r := b.buildNode(right, depth+1)
	b.tree.Nodes[nodeIdx].Left = l
	b.tree.Nodes[nodeIdx].Right = r
	return nodeIdx
}

func (b *treeBuilder) sums(indices []int) (g, h float64) {
	for _, i := range indices {
		g += b.grad[i]
		h += b.hess[i]
	}
	return g, h
}

// leafValue is the optimal leaf weight with L2 regularization.
func (b *treeBuilder) leafValue(sumGrad, sumHess float64) float64 {
	den := sumHess + b.params.Lambda
	if den <= 0 {
		return 0
	}
	return -sumGrad / den
}

// findBestSplit scans every feature; ties keep the lowest feature index and threshold.
func (b *treeBuilder) findBestSplit(indices []int, totalGrad, totalHess float64) splitInfo {
	best := splitInfo{Feature: -1, Gain: math.Inf(-1)}
	for j := range b.cols {
		split := b.findBestSplitForFeature(indices, j, totalGrad, totalHess)
		if split.Feature >= 0 && split.Gain > best.Gain {
			best = split
		}
	}
	return best
}

func (b *treeBuilder) findBestSplitForFeature(indices []int, feature int, totalGrad, totalHess float64) splitInfo {
	col := b.cols[feature]
	sorted := append([]int(nil), indices...)
	sort.SliceStable(sorted, func(x, y int) bool {
		return col[sorted[x]] < col[sorted[y]]
	})

	best := splitInfo{Feature: -1, Gain: math.Inf(-1)}
	var leftGrad, leftHess float64
	minLeaf := b.params.MinDataInLeaf
	for k := 0; k < len(sorted)-1; k++ {
		i := sorted[k]
		leftGrad += b.grad[i]
		leftHess += b.hess[i]

		// Skip if same value
		if col[i] == col[sorted[k+1]] {
			continue
		}
		leftCount := k + 1
		if leftCount < minLeaf || len(sorted)-leftCount < minLeaf {
			continue
		}

		gain := b.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.Gain {
			threshold := (col[i] + col[sorted[k+1]]) / 2
			if threshold >= col[sorted[k+1]] {
				threshold = col[i]
			}
			best = splitInfo{Feature: feature, Threshold: threshold, Gain: gain}
		}
	}
	return best
}

// splitGain = 0.5 * (GL²/(HL+λ) + GR²/(HR+λ) - G²/(H+λ))
func (b *treeBuilder) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := b.params.Lambda
	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)
	return 0.5 * (leftScore + rightScore - totalScore)
}

func (b *treeBuilder) splitData(indices []int, split splitInfo) (left, right []int) {
	col := b.cols[split.Feature]
	for _, i := range indices {
		if col[i] <= split.Threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}
