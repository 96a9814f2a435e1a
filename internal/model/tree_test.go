package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcare-diagnosis-server/internal/dataset"
)

// trainingTable is a small separable table shared by the model tests:
// each disease has a distinct presence pattern over four symptoms.
func trainingTable() *dataset.Table {
	return &dataset.Table{
		Features: []string{"fever", "headache", "cough", "skin_rash"},
		Rows: []dataset.Row{
			{Vector: []int{1, 1, 1, 0}, Label: "Flu"},
			{Vector: []int{1, 1, 1, 0}, Label: "Flu"},
			{Vector: []int{1, 1, 1, 0}, Label: "Flu"},
			{Vector: []int{0, 1, 0, 0}, Label: "Migraine"},
			{Vector: []int{0, 1, 0, 0}, Label: "Migraine"},
			{Vector: []int{0, 1, 0, 0}, Label: "Migraine"},
			{Vector: []int{0, 0, 1, 0}, Label: "Common Cold"},
			{Vector: []int{0, 0, 1, 0}, Label: "Common Cold"},
			{Vector: []int{0, 0, 1, 0}, Label: "Common Cold"},
			{Vector: []int{0, 0, 0, 1}, Label: "Dermatitis"},
			{Vector: []int{0, 0, 0, 1}, Label: "Dermatitis"},
			{Vector: []int{0, 0, 0, 1}, Label: "Dermatitis"},
		},
	}
}

func TestTrainTreeFitsSeparableData(t *testing.T) {
	table := trainingTable()
	tree := TrainTree(table)

	require.NotNil(t, tree)
	assert.Equal(t, 4, tree.FeatureCount())
	assert.Equal(t, 1.0, Evaluate(tree, table))
}

func TestTreePredict(t *testing.T) {
	tree := TrainTree(trainingTable())

	assert.Equal(t, "Flu", tree.Predict([]int{1, 1, 1, 0}))
	assert.Equal(t, "Migraine", tree.Predict([]int{0, 1, 0, 0}))
	assert.Equal(t, "Common Cold", tree.Predict([]int{0, 0, 1, 0}))
	assert.Equal(t, "Dermatitis", tree.Predict([]int{0, 0, 0, 1}))
}

func TestTreePredictHandlesShortVector(t *testing.T) {
	tree := TrainTree(trainingTable())

	// Missing trailing features are treated as absent.
	label := tree.Predict([]int{1, 1})
	assert.NotEmpty(t, label)
}

func TestTrainTreeDeterministic(t *testing.T) {
	table := trainingTable()
	first := TrainTree(table)
	second := TrainTree(table)

	vectors := [][]int{
		{1, 1, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 1},
		{0, 0, 0, 0},
	}
	for _, v := range vectors {
		assert.Equal(t, first.Predict(v), second.Predict(v))
	}
}

func TestTrainTreeSingleLabel(t *testing.T) {
	table := &dataset.Table{
		Features: []string{"fever"},
		Rows: []dataset.Row{
			{Vector: []int{1}, Label: "Flu"},
			{Vector: []int{0}, Label: "Flu"},
		},
	}
	tree := TrainTree(table)

	assert.Equal(t, "Flu", tree.Predict([]int{1}))
	assert.Equal(t, "Flu", tree.Predict([]int{0}))
}

func TestMajorityFallbackOnConflictingRows(t *testing.T) {
	// Identical vectors with different labels cannot be split; the leaf
	// takes the majority label, lexicographic on ties.
	table := &dataset.Table{
		Features: []string{"fever"},
		Rows: []dataset.Row{
			{Vector: []int{1}, Label: "Flu"},
			{Vector: []int{1}, Label: "Flu"},
			{Vector: []int{1}, Label: "Migraine"},
		},
	}
	tree := TrainTree(table)
	assert.Equal(t, "Flu", tree.Predict([]int{1}))
}

func TestEvaluateEmptyTable(t *testing.T) {
	tree := TrainTree(trainingTable())
	assert.Zero(t, Evaluate(tree, &dataset.Table{Features: []string{"fever"}}))
}
