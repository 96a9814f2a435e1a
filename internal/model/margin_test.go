package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainMarginFitsSeparableData(t *testing.T) {
	table := trainingTable()
	clf := TrainMargin(table, 0)

	require.NotNil(t, clf)
	assert.Equal(t, 1.0, Evaluate(clf, table))
}

func TestMarginClasses(t *testing.T) {
	clf := TrainMargin(trainingTable(), 0)

	assert.Equal(t, []string{"Common Cold", "Dermatitis", "Flu", "Migraine"}, clf.Classes())

	// Classes returns a copy; mutating it must not affect the model.
	classes := clf.Classes()
	classes[0] = "mutated"
	assert.Equal(t, "Common Cold", clf.Classes()[0])
}

func TestMarginPredict(t *testing.T) {
	clf := TrainMargin(trainingTable(), 0)

	assert.Equal(t, "Flu", clf.Predict([]int{1, 1, 1, 0}))
	assert.Equal(t, "Migraine", clf.Predict([]int{0, 1, 0, 0}))
	assert.Equal(t, "Common Cold", clf.Predict([]int{0, 0, 1, 0}))
	assert.Equal(t, "Dermatitis", clf.Predict([]int{0, 0, 0, 1}))
}

func TestMarginDecisiveness(t *testing.T) {
	clf := TrainMargin(trainingTable(), 0)

	assert.Greater(t, clf.Margin([]int{1, 1, 1, 0}), 0.0)

	// A score gap is never negative, whatever the vector.
	vectors := [][]int{{0, 1, 1, 0}, {1, 0, 0, 1}, {0, 0, 0, 0}}
	for _, v := range vectors {
		assert.GreaterOrEqual(t, clf.Margin(v), 0.0)
	}
}

func TestTrainMarginDeterministic(t *testing.T) {
	table := trainingTable()
	first := TrainMargin(table, 5)
	second := TrainMargin(table, 5)

	vectors := [][]int{
		{1, 1, 1, 0},
		{0, 1, 0, 0},
		{1, 0, 0, 1},
		{0, 0, 0, 0},
	}
	for _, v := range vectors {
		assert.Equal(t, first.Predict(v), second.Predict(v))
		assert.InDelta(t, first.Margin(v), second.Margin(v), 1e-12)
	}
}

func TestMarginSingleClass(t *testing.T) {
	table := trainingTable()
	table.Rows = table.Rows[:3]
	clf := TrainMargin(table, 0)

	assert.Equal(t, "Flu", clf.Predict([]int{1, 1, 1, 0}))
	assert.Zero(t, clf.Margin([]int{1, 1, 1, 0}))
}
