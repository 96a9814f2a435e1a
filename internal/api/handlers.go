package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

const defaultSuggestionLimit = 10

// handleHealth reports the lifecycle state of the engine. Returns 503
// while no model bundle can serve queries.
func (s *Server) handleHealth(c *gin.Context) {
	report := s.service.Health()

	status := http.StatusOK
	if !report.Status.CanServe() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":     report.Status,
		"bundle_age": report.BundleAge.String(),
		"loaded_at":  report.LoadedAt,
		"timestamp":  time.Now().UTC(),
	})
}

// handleStatus answers as long as the process runs, aggregating the
// engine health report and statistics into one payload.
func (s *Server) handleStatus(c *gin.Context) {
	report := s.service.Health()

	payload := gin.H{
		"api_status": "operational",
		"model_status": gin.H{
			"loaded":      report.Status.CanServe(),
			"state":       report.Status,
			"last_loaded": report.LoadedAt,
		},
		"timestamp": time.Now().UTC(),
	}
	if stats, err := s.service.Statistics(c.Request.Context()); err == nil {
		payload["statistics"] = stats
	} else {
		s.logger.WithError(err).Warn("statistics unavailable for status report")
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleStatistics(c *gin.Context) {
	stats, err := s.service.Statistics(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleSearchSymptoms(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    domain.ErrCodeValidation,
			"message": "query is required",
		})
		return
	}

	result, err := s.service.SearchSymptoms(req.Query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSuggestSymptoms(c *gin.Context) {
	limit := defaultSuggestionLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	suggestions, err := s.service.SuggestSymptoms(c.Param("partial"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (s *Server) handleListSymptoms(c *gin.Context) {
	symptoms, err := s.service.ListSymptoms()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"symptoms": symptoms,
		"count":    len(symptoms),
	})
}

func (s *Server) handleListDiseases(c *gin.Context) {
	diseases, err := s.service.ListDiseases()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"diseases": diseases,
		"count":    len(diseases),
	})
}

func (s *Server) handleDiagnosis(c *gin.Context) {
	var req domain.DiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    domain.ErrCodeValidation,
			"message": err.Error(),
		})
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := s.service.Diagnose(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReloadModels(c *gin.Context) {
	result, err := s.service.Reload()
	if err != nil {
		s.respondError(c, err)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// respondError translates engine errors into HTTP responses.
func (s *Server) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    domain.ErrCodeValidation,
			"message": validationErr.Error(),
		})
		return
	}

	var engineErr *domain.EngineError
	if errors.As(err, &engineErr) {
		c.JSON(statusForCode(engineErr.Code), gin.H{
			"code":    engineErr.Code,
			"message": engineErr.Message,
		})
		return
	}

	s.logger.WithError(err).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "internal server error",
	})
}

func statusForCode(code string) int {
	switch code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNoMatchingSymptom:
		return http.StatusNotFound
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrCodeModelsUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
