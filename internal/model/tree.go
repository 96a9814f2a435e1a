// Package model implements the two classifiers behind the diagnosis
// ensemble: a decision tree induced from the binary training table and
// a margin-based one-vs-rest linear classifier. Both are built
// deterministically at bundle construction and are immutable afterwards.
package model

import (
	"math"
	"sort"

	"github.com/healthcare-diagnosis-server/internal/dataset"
)

// Classifier predicts a disease label from a binary feature vector.
type Classifier interface {
	Predict(vector []int) string
}

// DecisionTree is a binary decision tree over symptom-presence features.
// Fast and explainable; it provides the primary diagnosis.
type DecisionTree struct {
	root         *treeNode
	featureCount int
}

type treeNode struct {
	feature int // -1 at leaves
	label   string
	absent  *treeNode
	present *treeNode
}

// TrainTree induces a decision tree from the training table by greedy
// information-gain splitting. Feature and label ties break on the lower
// index / lexicographic order, so induction is fully deterministic.
func TrainTree(table *dataset.Table) *DecisionTree {
	indices := make([]int, len(table.Rows))
	for i := range indices {
		indices[i] = i
	}
	used := make([]bool, len(table.Features))
	return &DecisionTree{
		root:         grow(table, indices, used),
		featureCount: len(table.Features),
	}
}

// Predict walks the tree following the presence bit of each split
// feature down to a leaf label.
func (t *DecisionTree) Predict(vector []int) string {
	node := t.root
	for node.feature >= 0 {
		if node.feature < len(vector) && vector[node.feature] == 1 {
			node = node.present
		} else {
			node = node.absent
		}
	}
	return node.label
}

// FeatureCount returns the expected feature-vector length.
func (t *DecisionTree) FeatureCount() int {
	return t.featureCount
}

func grow(table *dataset.Table, indices []int, used []bool) *treeNode {
	if pure(table, indices) {
		return &treeNode{feature: -1, label: table.Rows[indices[0]].Label}
	}

	feature, gain := bestSplit(table, indices, used)
	if feature < 0 || gain <= 1e-12 {
		return &treeNode{feature: -1, label: majorityLabel(table, indices)}
	}

	var absent, present []int
	for _, i := range indices {
		if table.Rows[i].Vector[feature] == 1 {
			present = append(present, i)
		} else {
			absent = append(absent, i)
		}
	}

	used[feature] = true
	node := &treeNode{
		feature: feature,
		absent:  grow(table, absent, used),
		present: grow(table, present, used),
	}
	used[feature] = false
	return node
}

func pure(table *dataset.Table, indices []int) bool {
	first := table.Rows[indices[0]].Label
	for _, i := range indices[1:] {
		if table.Rows[i].Label != first {
			return false
		}
	}
	return true
}

func bestSplit(table *dataset.Table, indices []int, used []bool) (int, float64) {
	base := entropy(table, indices)
	bestFeature, bestGain := -1, 0.0

	for f := range table.Features {
		if used[f] {
			continue
		}
		var absent, present []int
		for _, i := range indices {
			if table.Rows[i].Vector[f] == 1 {
				present = append(present, i)
			} else {
				absent = append(absent, i)
			}
		}
		if len(absent) == 0 || len(present) == 0 {
			continue
		}

		n := float64(len(indices))
		split := float64(len(absent))/n*entropy(table, absent) +
			float64(len(present))/n*entropy(table, present)
		if gain := base - split; gain > bestGain {
			bestGain = gain
			bestFeature = f
		}
	}
	return bestFeature, bestGain
}

func entropy(table *dataset.Table, indices []int) float64 {
	counts := make(map[string]int)
	for _, i := range indices {
		counts[table.Rows[i].Label]++
	}

	n := float64(len(indices))
	h := 0.0
	for _, c := range counts {
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func majorityLabel(table *dataset.Table, indices []int) string {
	counts := make(map[string]int)
	for _, i := range indices {
		counts[table.Rows[i].Label]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best, bestCount := "", -1
	for _, label := range labels {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}
	return best
}

// Evaluate computes a classifier's accuracy over a labeled table.
func Evaluate(clf Classifier, table *dataset.Table) float64 {
	if len(table.Rows) == 0 {
		return 0
	}
	correct := 0
	for _, row := range table.Rows {
		if clf.Predict(row.Vector) == row.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(table.Rows))
}
