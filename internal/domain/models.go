package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DiagnosisRequest is one diagnosis query as received from the routing
// layer. Validation happens once at the boundary; the engine core never
// re-checks these fields ad hoc.
type DiagnosisRequest struct {
	InitialSymptom     string   `json:"initial_symptom" binding:"required"`
	AdditionalSymptoms []string `json:"additional_symptoms"`
	DaysExperiencing   int      `json:"days_experiencing"`
	ClientID           string   `json:"client_id,omitempty"`
	IdempotencyKey     string   `json:"idempotency_key,omitempty"`
}

// Validate enforces the request invariants: a non-empty initial symptom
// after trimming and a sane duration.
func (r *DiagnosisRequest) Validate() error {
	if strings.TrimSpace(r.InitialSymptom) == "" {
		return NewValidationError("initial_symptom", "initial symptom is required", r.InitialSymptom)
	}
	if r.DaysExperiencing < 0 {
		return NewValidationError("days_experiencing", "days experiencing must be non-negative", r.DaysExperiencing)
	}
	if r.DaysExperiencing > 365 {
		return NewValidationError("days_experiencing", "days experiencing must be at most 365", r.DaysExperiencing)
	}
	return nil
}

// ClientKey returns the identifier used for rate limiting, falling back
// to the supplied address when no explicit client id exists.
func (r *DiagnosisRequest) ClientKey(fallback string) string {
	if r.ClientID != "" {
		return r.ClientID
	}
	return fallback
}

// DiagnosisResult is the engine output for one request. Secondary is
// present only when the two classifiers disagree.
type DiagnosisResult struct {
	PrimaryDiagnosis   string          `json:"primary_diagnosis"`
	SecondaryDiagnosis string          `json:"secondary_diagnosis,omitempty"`
	Confidence         ConfidenceLevel `json:"confidence_level"`
	Severity           SeverityLevel   `json:"severity_assessment"`
	SeverityGuidance   string          `json:"severity_guidance"`
	Description        string          `json:"description"`
	Precautions        []string        `json:"precautions"`
	MatchedSymptoms    []string        `json:"matched_symptoms"`
	DaysExperiencing   int             `json:"days_experiencing"`
}

// SearchResult is the outcome of a symptom search. Matches are ordered
// by relevance; ExactMatch is true only when the normalized query hit a
// catalog entry verbatim.
type SearchResult struct {
	Matches    []string `json:"matches"`
	ExactMatch bool     `json:"exact_match"`
}

// BundleStats carries the accuracy estimates computed against the
// testing table when a bundle is built.
type BundleStats struct {
	TreeAccuracy   float64 `json:"decision_tree_accuracy"`
	MarginAccuracy float64 `json:"margin_accuracy"`
	SymptomCount   int     `json:"total_symptoms"`
	DiseaseCount   int     `json:"total_diseases"`
}

// HealthReport describes the lifecycle state for the health operation.
type HealthReport struct {
	Status    EngineState   `json:"status"`
	BundleAge time.Duration `json:"bundle_age"`
	LoadedAt  time.Time     `json:"loaded_at,omitempty"`
}

// Statistics is the system-level statistics record.
type Statistics struct {
	TotalSymptoms  int                `json:"total_symptoms"`
	TotalDiseases  int                `json:"total_diseases"`
	TotalDiagnoses int64              `json:"total_diagnoses"`
	ModelAccuracy  map[string]float64 `json:"model_accuracy"`
	SystemStatus   string             `json:"system_status"`
	ModelLoadedAt  time.Time          `json:"model_loaded_at"`
	UptimeSeconds  int64              `json:"uptime_seconds"`
}

// ReloadResult reports the outcome of an administrative reload.
type ReloadResult struct {
	Success      bool      `json:"success"`
	BundleLoadAt time.Time `json:"bundle_load_time"`
	Message      string    `json:"message,omitempty"`
}

// DiagnosisRecord is a persisted trace of one completed diagnosis.
type DiagnosisRecord struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"client_id"`
	InitialSymptom   string          `json:"initial_symptom"`
	MatchedSymptoms  []string        `json:"matched_symptoms"`
	DaysExperiencing int             `json:"days_experiencing"`
	Primary          string          `json:"primary_diagnosis"`
	Secondary        string          `json:"secondary_diagnosis,omitempty"`
	Confidence       ConfidenceLevel `json:"confidence_level"`
	Severity         SeverityLevel   `json:"severity_assessment"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate ensures a record is complete enough to persist.
func (r *DiagnosisRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("diagnosis record validation: %w", errors.New("ID is required"))
	}
	if r.Primary == "" {
		return fmt.Errorf("diagnosis record validation: %w", errors.New("primary diagnosis is required"))
	}
	if !r.Confidence.IsValid() {
		return fmt.Errorf("diagnosis record validation: %w", ErrInvalidConfidence)
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("diagnosis record validation: %w", ErrInvalidSeverity)
	}
	return nil
}
