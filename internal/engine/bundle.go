// Package engine owns the diagnosis engine: the immutable model bundle,
// the lifecycle manager that hot-swaps it, and the service façade
// exposing the externally visible operations.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/catalog"
	"github.com/healthcare-diagnosis-server/internal/dataset"
	"github.com/healthcare-diagnosis-server/internal/domain"
	"github.com/healthcare-diagnosis-server/internal/matcher"
	"github.com/healthcare-diagnosis-server/internal/model"
)

// Bundle is an immutable snapshot of the trained classifiers plus the
// reference tables needed to interpret their output. It is replaced
// wholesale on reload, never mutated; in-flight queries keep the bundle
// they started with.
type Bundle struct {
	Catalog  *catalog.Catalog
	Matcher  *matcher.Matcher
	Ensemble *model.Ensemble
	Stats    domain.BundleStats
	LoadedAt time.Time
}

// BuildBundle loads the reference data, trains both classifiers, and
// evaluates them against the testing table. Any failure returns an
// error with no partial bundle; the build is all-or-nothing.
func BuildBundle(dataCfg domain.DataConfig, matcherCfg domain.MatcherConfig, logger *logrus.Logger) (*Bundle, error) {
	ref, err := dataset.Load(dataCfg.Path, dataCfg.MasterPath, logger)
	if err != nil {
		return nil, err
	}

	cat := catalog.Build(ref)

	tree := model.TrainTree(ref.Training)
	margin := model.TrainMargin(ref.Training, 0)
	ensemble := model.NewEnsemble(tree, margin)

	stats := domain.BundleStats{
		TreeAccuracy:   model.Evaluate(tree, ref.Testing),
		MarginAccuracy: model.Evaluate(margin, ref.Testing),
		SymptomCount:   cat.SymptomCount(),
		DiseaseCount:   cat.DiseaseCount(),
	}

	logger.WithFields(logrus.Fields{
		"tree_accuracy":   stats.TreeAccuracy,
		"margin_accuracy": stats.MarginAccuracy,
		"symptoms":        stats.SymptomCount,
		"diseases":        stats.DiseaseCount,
	}).Info("Model bundle built")

	return &Bundle{
		Catalog:  cat,
		Matcher:  matcher.New(cat, matcherCfg, logger),
		Ensemble: ensemble,
		Stats:    stats,
		LoadedAt: time.Now().UTC(),
	}, nil
}
