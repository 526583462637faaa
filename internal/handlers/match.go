package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/pathways-backend/internal/logger"
	"github.com/brightpath/pathways-backend/internal/repos"
	"github.com/brightpath/pathways-backend/internal/services"
	"github.com/brightpath/pathways-backend/internal/types"
)

type MatchHandler struct {
	log     *logger.Logger
	gaps    services.SkillGapMatcher
	roles   services.RoleMatcher
	courses repos.CourseRepo
}

func NewMatchHandler(log *logger.Logger, gaps services.SkillGapMatcher, roles services.RoleMatcher, courses repos.CourseRepo) *MatchHandler {
	return &MatchHandler{
		log:     log.With("handler", "MatchHandler"),
		gaps:    gaps,
		roles:   roles,
		courses: courses,
	}
}

type skillGapsRequest struct {
	Gaps []types.SkillGap `json:"gaps" binding:"required"`
}

// POST /api/match/skill-gaps
// Finds 1-3 courses per supplied skill gap.
func (h *MatchHandler) MatchSkillGaps(c *gin.Context) {
	var req skillGapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	matches, err := h.gaps.CoursesForGaps(c.Request.Context(), req.Gaps)
	if err != nil {
		h.log.Error("MatchSkillGaps failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "match_failed", err)
		return
	}
	RespondOK(c, gin.H{"matches": matches})
}

type roleMatchRequest struct {
	RoleName     string `json:"role_name" binding:"required"`
	ClusterTitle string `json:"cluster_title"`
	Limit        int    `json:"limit"`
}

// POST /api/match/role
// Retrieval-style matching of the corpus against an entry-level role.
func (h *MatchHandler) MatchRole(c *gin.Context) {
	var req roleMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	corpus, err := h.courses.GetWithEmbeddings(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("MatchRole corpus fetch failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "corpus_unavailable", err)
		return
	}

	matches, err := h.roles.MatchRole(c.Request.Context(), req.RoleName, req.ClusterTitle, corpus, req.Limit)
	if err != nil {
		h.log.Error("MatchRole failed", "error", err, "role", req.RoleName)
		RespondError(c, http.StatusInternalServerError, "match_failed", err)
		return
	}
	RespondOK(c, gin.H{"matches": matches})
}
