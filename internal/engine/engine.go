package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/healthcare-diagnosis-server/internal/domain"
	"github.com/healthcare-diagnosis-server/internal/guard"
	"github.com/healthcare-diagnosis-server/internal/scorer"
)

// Recorder persists completed diagnoses. Implemented by the history package.
type Recorder interface {
	Record(ctx context.Context, record *domain.DiagnosisRecord) error
	Count(ctx context.Context) (int64, error)
}

// Service exposes the diagnosis operations backed by the currently loaded
// model bundle. All methods are safe for concurrent use.
type Service struct {
	lifecycle *Lifecycle
	guard     *guard.Guard
	scorer    *scorer.Scorer
	history   Recorder
	logger    *logrus.Logger
	startedAt time.Time
}

// NewService creates the diagnosis service. history may be nil, in which case
// diagnoses are not persisted.
func NewService(lifecycle *Lifecycle, g *guard.Guard, sc *scorer.Scorer, history Recorder, logger *logrus.Logger) *Service {
	return &Service{
		lifecycle: lifecycle,
		guard:     g,
		scorer:    sc,
		history:   history,
		logger:    logger,
		startedAt: time.Now().UTC(),
	}
}

// SearchSymptoms returns known symptoms matching the query. An exact match
// suppresses all other candidates.
func (s *Service) SearchSymptoms(query string) (domain.SearchResult, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return domain.SearchResult{}, err
	}
	return bundle.Matcher.Search(query), nil
}

// SuggestSymptoms returns up to limit completion candidates for a partial
// symptom name.
func (s *Service) SuggestSymptoms(partial string, limit int) ([]string, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return nil, err
	}
	return bundle.Matcher.Suggest(partial, limit), nil
}

// ListSymptoms returns every known symptom name in canonical order.
func (s *Service) ListSymptoms() ([]string, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return nil, err
	}
	return bundle.Catalog.SymptomNames(), nil
}

// ListDiseases returns every known disease sorted by name.
func (s *Service) ListDiseases() ([]domain.Disease, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return nil, err
	}
	return bundle.Catalog.Diseases(), nil
}

// Diagnose runs the full pipeline: request validation, rate limiting,
// idempotent execution, symptom resolution, ensemble prediction and severity
// scoring. fallbackClient identifies the caller when the request carries no
// client id.
func (s *Service) Diagnose(ctx context.Context, req *domain.DiagnosisRequest, fallbackClient string) (*domain.DiagnosisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	clientKey := req.ClientKey(fallbackClient)
	if err := s.guard.Allow(ctx, clientKey); err != nil {
		return nil, err
	}
	return s.guard.Execute(ctx, req.IdempotencyKey, func(ctx context.Context) (*domain.DiagnosisResult, error) {
		return s.diagnose(ctx, req, clientKey)
	})
}

func (s *Service) diagnose(ctx context.Context, req *domain.DiagnosisRequest, clientKey string) (*domain.DiagnosisResult, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return nil, err
	}

	symptoms, err := s.resolveSymptoms(bundle, req)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(symptoms))
	for i, sym := range symptoms {
		names[i] = sym.Name
	}

	prediction := bundle.Ensemble.Diagnose(bundle.Catalog.Vector(names))
	primary, ok := bundle.Catalog.Disease(prediction.Primary)
	if !ok {
		s.logger.WithField("disease", prediction.Primary).Error("Predicted disease missing from reference data")
		return nil, domain.DataIntegrityError(prediction.Primary)
	}

	assessment := s.scorer.Score(symptoms, req.DaysExperiencing)
	result := &domain.DiagnosisResult{
		PrimaryDiagnosis: primary.Name,
		Confidence:       scorer.Confidence(len(symptoms), prediction.Agreement),
		Severity:         assessment.Severity,
		SeverityGuidance: assessment.Severity.Guidance(),
		Description:      primary.Description,
		Precautions:      primary.Precautions,
		MatchedSymptoms:  names,
		DaysExperiencing: req.DaysExperiencing,
	}
	if prediction.Secondary != "" {
		secondary, ok := bundle.Catalog.Disease(prediction.Secondary)
		if !ok {
			s.logger.WithField("disease", prediction.Secondary).Error("Predicted disease missing from reference data")
			return nil, domain.DataIntegrityError(prediction.Secondary)
		}
		result.SecondaryDiagnosis = secondary.Name
	}

	s.record(ctx, req, clientKey, result)
	return result, nil
}

// resolveSymptoms maps the request's symptoms onto catalog entries. The
// initial symptom must resolve, exactly or via the best fuzzy candidate;
// unknown additional symptoms are dropped with a warning. Duplicates collapse,
// initial symptom first.
func (s *Service) resolveSymptoms(bundle *Bundle, req *domain.DiagnosisRequest) ([]domain.Symptom, error) {
	found := bundle.Matcher.Search(req.InitialSymptom)
	if len(found.Matches) == 0 {
		return nil, domain.NoMatchingSymptomError(req.InitialSymptom)
	}
	initial, ok := bundle.Catalog.Resolve(found.Matches[0])
	if !ok {
		return nil, domain.DataIntegrityError(found.Matches[0])
	}

	symptoms := []domain.Symptom{initial}
	seen := map[string]bool{initial.Name: true}
	for _, raw := range req.AdditionalSymptoms {
		sym, ok := bundle.Catalog.Resolve(raw)
		if !ok {
			s.logger.WithField("symptom", raw).Warn("Ignoring unknown additional symptom")
			continue
		}
		if !seen[sym.Name] {
			seen[sym.Name] = true
			symptoms = append(symptoms, sym)
		}
	}
	return symptoms, nil
}

func (s *Service) record(ctx context.Context, req *domain.DiagnosisRequest, clientKey string, result *domain.DiagnosisResult) {
	if s.history == nil {
		return
	}
	rec := &domain.DiagnosisRecord{
		ID:               uuid.NewString(),
		ClientID:         clientKey,
		InitialSymptom:   req.InitialSymptom,
		MatchedSymptoms:  result.MatchedSymptoms,
		DaysExperiencing: req.DaysExperiencing,
		Primary:          result.PrimaryDiagnosis,
		Secondary:        result.SecondaryDiagnosis,
		Confidence:       result.Confidence,
		Severity:         result.Severity,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("Failed to record diagnosis")
	}
}

// Reload rebuilds the model bundle from the data directories. Admin reloads
// are throttled independently of the per-client request limit.
func (s *Service) Reload() (*domain.ReloadResult, error) {
	if err := s.guard.AllowReload(); err != nil {
		return nil, err
	}
	return s.lifecycle.Reload(), nil
}

// Health reports the lifecycle state and age of the active bundle.
func (s *Service) Health() domain.HealthReport {
	return s.lifecycle.Health()
}

// Statistics summarizes the loaded reference data and model quality, plus the
// number of recorded diagnoses when history is enabled.
func (s *Service) Statistics(ctx context.Context) (*domain.Statistics, error) {
	bundle, err := s.lifecycle.Acquire()
	if err != nil {
		return nil, err
	}
	stats := &domain.Statistics{
		TotalSymptoms: bundle.Stats.SymptomCount,
		TotalDiseases: bundle.Stats.DiseaseCount,
		ModelAccuracy: map[string]float64{
			"decision_tree":     bundle.Stats.TreeAccuracy,
			"margin_classifier": bundle.Stats.MarginAccuracy,
		},
		SystemStatus:  s.lifecycle.State().String(),
		ModelLoadedAt: bundle.LoadedAt,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.history != nil {
		count, err := s.history.Count(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to count recorded diagnoses")
		} else {
			stats.TotalDiagnoses = count
		}
	}
	return stats, nil
}
