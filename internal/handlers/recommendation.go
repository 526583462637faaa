package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/pathways-backend/internal/logger"
	pkgerrors "github.com/brightpath/pathways-backend/internal/pkg/errors"
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/services"
)

type RecommendationHandler struct {
	log         *logger.Logger
	recSvc      services.RecommendationService
	assessments repos.AssessmentResultRepo
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService, assessments repos.AssessmentResultRepo) *RecommendationHandler {
	return &RecommendationHandler{
		log:         log.With("handler", "RecommendationHandler"),
		recSvc:      recSvc,
		assessments: assessments,
	}
}

// POST /api/students/:student_id/results/:result_id/recommendations
// Runs the full recommendation pipeline for an assessment result and stores
// the outcome.
func (h *RecommendationHandler) Generate(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_result_id", err)
		return
	}

	result, err := h.assessments.GetByID(c.Request.Context(), nil, resultID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "result_not_found", err)
			return
		}
		h.log.Error("Generate failed loading result", "error", err, "result_id", resultID.String())
		RespondError(c, http.StatusInternalServerError, "load_result_failed", err)
		return
	}
	if result.StudentID != studentID {
		RespondError(c, http.StatusNotFound, "result_not_found", errors.New("assessment result does not belong to student"))
		return
	}

	ranked, err := h.recSvc.GenerateAndStore(c.Request.Context(), studentID, result)
	if err != nil {
		h.log.Error("Generate failed", "error", err, "student_id", studentID.String())
		RespondError(c, http.StatusInternalServerError, "generate_failed", err)
		return
	}
	RespondOK(c, gin.H{"recommendations": ranked})
}

// GET /api/students/:student_id/results/:result_id/recommendations/by-type
// Balanced lists for the technical and soft sub-corpora.
func (h *RecommendationHandler) GenerateByType(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}
	resultID, err := uuid.Parse(c.Param("result_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_result_id", err)
		return
	}
	maxPerType := 0
	if raw := c.Query("max_per_type"); raw != "" {
		if maxPerType, err = strconv.Atoi(raw); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_max_per_type", err)
			return
		}
	}

	result, err := h.assessments.GetByID(c.Request.Context(), nil, resultID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "result_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "load_result_failed", err)
		return
	}
	if result.StudentID != studentID {
		RespondError(c, http.StatusNotFound, "result_not_found", errors.New("assessment result does not belong to student"))
		return
	}

	technical, soft, err := h.recSvc.RecommendByType(c.Request.Context(), result, maxPerType)
	if err != nil {
		h.log.Error("GenerateByType failed", "error", err, "student_id", studentID.String())
		RespondError(c, http.StatusInternalServerError, "generate_failed", err)
		return
	}
	RespondOK(c, gin.H{"technical": technical, "soft": soft})
}

// GET /api/students/:student_id/recommendations
// Stored recommendations, optionally filtered by status or assessment result.
func (h *RecommendationHandler) List(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_student_id", err)
		return
	}

	q := repos.RecommendationQuery{Status: c.Query("status")}
	if raw := c.Query("assessment_result_id"); raw != "" {
		resultID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_result_id", err)
			return
		}
		q.AssessmentResultID = resultID
	}

	recs, err := h.recSvc.ListForStudent(c.Request.Context(), studentID, q)
	if err != nil {
		h.log.Error("List failed", "error", err, "student_id", studentID.String())
		RespondError(c, http.StatusInternalServerError, "load_recommendations_failed", err)
		return
	}
	RespondOK(c, gin.H{"recommendations": recs})
}

type updateStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	DismissedReason string `json:"dismissed_reason"`
}

// PATCH /api/recommendations/:id/status
func (h *RecommendationHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_recommendation_id", err)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	if err := h.recSvc.UpdateStatus(c.Request.Context(), id, req.Status, req.DismissedReason); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidArgument):
			RespondError(c, http.StatusBadRequest, "invalid_status", err)
		case errors.Is(err, pkgerrors.ErrNotFound):
			RespondError(c, http.StatusNotFound, "recommendation_not_found", err)
		default:
			h.log.Error("UpdateStatus failed", "error", err, "recommendation_id", id.String())
			RespondError(c, http.StatusInternalServerError, "update_status_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{"updated": true})
}
