// Package catalog provides the canonical symptom and disease vocabulary
// for one model bundle. It is a pure lookup structure built once per
// bundle; names are normalized at build time so lookups never deal with
// formatting, only spelling.
package catalog

import (
	"sort"

	"github.com/healthcare-diagnosis-server/internal/dataset"
	"github.com/healthcare-diagnosis-server/internal/domain"
)

// Catalog is the immutable vocabulary of one bundle.
type Catalog struct {
	symptoms []domain.Symptom
	index    map[string]int
	diseases map[string]domain.Disease
	ordered  []string
}

// Build constructs a catalog from loaded reference data. Symptom order
// follows the training table's feature columns, which is also the
// feature-vector layout the classifiers expect.
func Build(ref *dataset.RefData) *Catalog {
	c := &Catalog{
		symptoms: make([]domain.Symptom, len(ref.Training.Features)),
		index:    make(map[string]int, len(ref.Training.Features)),
		diseases: make(map[string]domain.Disease),
	}

	for i, name := range ref.Training.Features {
		c.symptoms[i] = domain.Symptom{Name: name, Weight: ref.Severity[name]}
		c.index[name] = i
	}

	for name, description := range ref.Descriptions {
		c.diseases[name] = domain.Disease{
			Name:        name,
			Description: description,
			Precautions: ref.Precautions[name],
		}
	}
	c.ordered = make([]string, 0, len(c.diseases))
	for name := range c.diseases {
		c.ordered = append(c.ordered, name)
	}
	sort.Strings(c.ordered)

	return c
}

// Resolve looks up a symptom by name, normalizing first.
func (c *Catalog) Resolve(name string) (domain.Symptom, bool) {
	i, ok := c.index[domain.NormalizeSymptom(name)]
	if !ok {
		return domain.Symptom{}, false
	}
	return c.symptoms[i], true
}

// Index returns the feature-vector position of a canonical symptom name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Symptoms returns all symptoms in stable (feature-vector) order.
func (c *Catalog) Symptoms() []domain.Symptom {
	out := make([]domain.Symptom, len(c.symptoms))
	copy(out, c.symptoms)
	return out
}

// SymptomNames returns the canonical names in stable order.
func (c *Catalog) SymptomNames() []string {
	out := make([]string, len(c.symptoms))
	for i, s := range c.symptoms {
		out[i] = s.Name
	}
	return out
}

// SymptomCount returns the vocabulary size, which is also the feature
// vector length.
func (c *Catalog) SymptomCount() int {
	return len(c.symptoms)
}

// Disease looks up a disease by its exact reference-table name.
func (c *Catalog) Disease(name string) (domain.Disease, bool) {
	d, ok := c.diseases[name]
	return d, ok
}

// Diseases returns all diseases sorted by name.
func (c *Catalog) Diseases() []domain.Disease {
	out := make([]domain.Disease, 0, len(c.ordered))
	for _, name := range c.ordered {
		out = append(out, c.diseases[name])
	}
	return out
}

// DiseaseCount returns the number of catalogued diseases.
func (c *Catalog) DiseaseCount() int {
	return len(c.diseases)
}

// Vector builds the fixed-length binary feature vector for a set of
// canonical symptom names. Unknown names are ignored; callers resolve
// names through the matcher before building vectors.
func (c *Catalog) Vector(symptoms []string) []int {
	vector := make([]int, len(c.symptoms))
	for _, name := range symptoms {
		if i, ok := c.index[name]; ok {
			vector[i] = 1
		}
	}
	return vector
}
