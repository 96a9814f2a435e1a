package model

import (
	"sort"

	"github.com/healthcare-diagnosis-server/internal/dataset"
)

const defaultEpochs = 10

// MarginClassifier is a one-vs-rest averaged perceptron over the binary
// feature space. It trades explainability for accuracy and provides the
// ensemble's cross-check prediction.
type MarginClassifier struct {
	classes []string
	// weights[c] has one entry per feature plus a trailing bias term.
	weights [][]float64
}

// TrainMargin trains the classifier with a fixed number of epochs over
// the training rows in file order. Class order is sorted and prediction
// ties break toward the lower class index, so training and prediction
// are fully deterministic.
func TrainMargin(table *dataset.Table, epochs int) *MarginClassifier {
	if epochs <= 0 {
		epochs = defaultEpochs
	}

	classSet := make(map[string]int)
	for _, row := range table.Rows {
		classSet[row.Label] = 0
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for i, c := range classes {
		classSet[c] = i
	}

	dim := len(table.Features) + 1
	weights := make([][]float64, len(classes))
	totals := make([][]float64, len(classes))
	for i := range weights {
		weights[i] = make([]float64, dim)
		totals[i] = make([]float64, dim)
	}

	steps := 0
	for epoch := 0; epoch < epochs; epoch++ {
		for _, row := range table.Rows {
			truth := classSet[row.Label]
			predicted := argmax(weights, row.Vector)
			if predicted != truth {
				update(weights[truth], row.Vector, 1)
				update(weights[predicted], row.Vector, -1)
			}

			// Accumulate for averaging after every example so early
			// updates are weighted by how long they survived.
			for c := range weights {
				for d := range weights[c] {
					totals[c][d] += weights[c][d]
				}
			}
			steps++
		}
	}

	averaged := make([][]float64, len(classes))
	for c := range totals {
		averaged[c] = make([]float64, dim)
		for d := range totals[c] {
			averaged[c][d] = totals[c][d] / float64(steps)
		}
	}

	return &MarginClassifier{classes: classes, weights: averaged}
}

// Predict returns the class whose separating hyperplane scores the
// vector highest.
func (m *MarginClassifier) Predict(vector []int) string {
	return m.classes[argmax(m.weights, vector)]
}

// Margin returns the score gap between the best and second-best class
// for the vector. Larger margins indicate a more decisive prediction.
func (m *MarginClassifier) Margin(vector []int) float64 {
	if len(m.classes) < 2 {
		return 0
	}
	scores := make([]float64, len(m.weights))
	for c := range m.weights {
		scores[c] = score(m.weights[c], vector)
	}
	sort.Float64s(scores)
	return scores[len(scores)-1] - scores[len(scores)-2]
}

// Classes returns the sorted class labels.
func (m *MarginClassifier) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

func argmax(weights [][]float64, vector []int) int {
	best, bestScore := 0, score(weights[0], vector)
	for c := 1; c < len(weights); c++ {
		if s := score(weights[c], vector); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

func score(w []float64, vector []int) float64 {
	s := w[len(w)-1] // bias
	for i, v := range vector {
		if v == 1 && i < len(w)-1 {
			s += w[i]
		}
	}
	return s
}

func update(w []float64, vector []int, direction float64) {
	for i, v := range vector {
		if v == 1 {
			w[i] += direction
		}
	}
	w[len(w)-1] += direction
}
