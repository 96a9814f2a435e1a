package model

// Prediction is the combined output of the two classifiers. Secondary
// is set only when the margin classifier disagrees with the tree.
type Prediction struct {
	Primary   string
	Secondary string
	Agreement bool
}

// Ensemble combines the decision tree and margin classifier: the tree
// supplies the primary diagnosis, the margin model cross-checks it.
type Ensemble struct {
	tree   *DecisionTree
	margin *MarginClassifier
}

// NewEnsemble wraps two trained classifiers.
func NewEnsemble(tree *DecisionTree, margin *MarginClassifier) *Ensemble {
	return &Ensemble{tree: tree, margin: margin}
}

// Diagnose queries both classifiers against the same feature vector.
func (e *Ensemble) Diagnose(vector []int) Prediction {
	primary := e.tree.Predict(vector)
	cross := e.margin.Predict(vector)

	if cross == primary {
		return Prediction{Primary: primary, Agreement: true}
	}
	return Prediction{Primary: primary, Secondary: cross}
}

// Tree exposes the primary classifier for evaluation.
func (e *Ensemble) Tree() *DecisionTree {
	return e.tree
}

// MarginModel exposes the cross-check classifier for evaluation.
func (e *Ensemble) MarginModel() *MarginClassifier {
	return e.margin
}
