// Package domain contains the core business entities and types for the
// symptom-based diagnosis engine: the symptom/disease vocabulary, the
// request/result records exchanged with the routing layer, and the
// engine's error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ConfidenceLevel represents the categorical confidence in a diagnosis.
// It is a policy output over symptom count and classifier agreement,
// never a raw probability.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "Low"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceHigh   ConfidenceLevel = "High"
)

// SeverityLevel represents the categorical severity assessment derived
// from symptom weights and duration.
type SeverityLevel string

const (
	SeverityMild     SeverityLevel = "Mild"
	SeverityModerate SeverityLevel = "Moderate"
	SeveritySevere   SeverityLevel = "Severe"
)

// EngineState represents the model lifecycle state.
type EngineState string

const (
	StateUnloaded  EngineState = "Unloaded"
	StateLoading   EngineState = "Loading"
	StateReady     EngineState = "Ready"
	StateReloading EngineState = "Reloading"
)

var (
	ErrInvalidConfidence = errors.New("invalid confidence level")
	ErrInvalidSeverity   = errors.New("invalid severity level")
)

// IsValid validates the confidence level.
func (cl ConfidenceLevel) IsValid() bool {
	switch cl {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the confidence level.
func (cl ConfidenceLevel) String() string {
	return string(cl)
}

// IsValid validates the severity level.
func (sl SeverityLevel) IsValid() bool {
	switch sl {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity level.
func (sl SeverityLevel) String() string {
	return string(sl)
}

// Guidance returns a human-readable recommendation for the severity level,
// suitable for inclusion in patient-facing responses.
func (sl SeverityLevel) Guidance() string {
	switch sl {
	case SeveritySevere:
		return "Severe - consult a doctor immediately"
	case SeverityModerate:
		return "Moderate - consider medical consultation"
	case SeverityMild:
		return "Mild - monitor symptoms and take precautions"
	default:
		return "Unknown severity"
	}
}

// IsValid validates the engine state.
func (s EngineState) IsValid() bool {
	switch s {
	case StateUnloaded, StateLoading, StateReady, StateReloading:
		return true
	default:
		return false
	}
}

// String returns the string representation of the engine state.
func (s EngineState) String() string {
	return string(s)
}

// CanServe reports whether diagnosis queries may be answered in this state,
// assuming a bundle is available. Reloading keeps serving against the old
// bundle; Unloaded and Loading fail fast.
func (s EngineState) CanServe() bool {
	return s == StateReady || s == StateReloading
}

// NormalizeSymptom canonicalizes a free-text symptom token: lowercased,
// whitespace trimmed, internal separators unified to underscores.
// Catalog entries are stored in this form so downstream matching only
// ever deals with spelling, never with formatting.
func NormalizeSymptom(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-'
	}), "_")
}

// Symptom is a canonical, catalog-registered symptom token with its
// severity weight from the reference table.
type Symptom struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Validate ensures the symptom meets catalog invariants.
func (s *Symptom) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("symptom validation: %w", errors.New("name is required"))
	}
	if s.Weight < 0 {
		return fmt.Errorf("symptom validation: %w", errors.New("weight must be non-negative"))
	}
	return nil
}

// Disease is a diagnosable condition with its description and ordered
// precaution list from the reference tables.
type Disease struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Precautions []string `json:"precautions"`
}

// Validate ensures the disease meets catalog invariants.
func (d *Disease) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("disease validation: %w", errors.New("name is required"))
	}
	if len(d.Precautions) > 4 {
		return fmt.Errorf("disease validation: %w", errors.New("at most four precautions allowed"))
	}
	return nil
}
