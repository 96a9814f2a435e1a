// Package scorer turns resolved symptoms and duration into a severity
// assessment, and symptom count plus classifier agreement into a
// categorical confidence level. Both mappings are explicit policy
// functions with their constants held in configuration.
package scorer

import (
	"math"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

// Assessment is the output of severity scoring: the partitioned level
// plus the continuous score it was derived from.
type Assessment struct {
	Severity domain.SeverityLevel `json:"severity"`
	Numeric  float64              `json:"numeric_severity"`
}

// Scorer applies the configured severity policy.
type Scorer struct {
	cfg domain.SeverityConfig
}

// New creates a scorer with the given policy configuration.
func New(cfg domain.SeverityConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the severity assessment for a set of resolved symptoms
// experienced over the given number of days. The weighted sum grows with
// duration through a log-damped curve, so additional days raise severity
// with diminishing returns. Deterministic for identical inputs.
func (s *Scorer) Score(symptoms []domain.Symptom, days int) Assessment {
	if len(symptoms) == 0 {
		return Assessment{Severity: domain.SeverityMild, Numeric: 0}
	}
	if days < 0 {
		days = 0
	}

	weightSum := 0.0
	for _, sym := range symptoms {
		weightSum += float64(sym.Weight)
	}

	durationScale := 1 + s.cfg.DurationFactor*math.Log1p(float64(days))
	numeric := weightSum * durationScale / float64(len(symptoms)+1)

	return Assessment{Severity: s.partition(numeric), Numeric: numeric}
}

func (s *Scorer) partition(numeric float64) domain.SeverityLevel {
	switch {
	case numeric > s.cfg.SevereThreshold:
		return domain.SeveritySevere
	case numeric > s.cfg.ModerateThreshold:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}

// Confidence maps evidence strength to a categorical confidence level.
// More resolved symptoms raise confidence; classifier disagreement caps
// it at Medium regardless of symptom count.
func Confidence(symptomCount int, agreement bool) domain.ConfidenceLevel {
	if agreement {
		switch {
		case symptomCount >= 3:
			return domain.ConfidenceHigh
		case symptomCount >= 2:
			return domain.ConfidenceMedium
		default:
			return domain.ConfidenceLow
		}
	}
	if symptomCount >= 4 {
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}
