package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/pathways-backend/internal/logger"
	"github.com/brightpath/pathways-backend/internal/services"
)

type AdminHandler struct {
	log        *logger.Logger
	embeddings services.CourseEmbeddingService
}

func NewAdminHandler(log *logger.Logger, embeddings services.CourseEmbeddingService) *AdminHandler {
	return &AdminHandler{
		log:        log.With("handler", "AdminHandler"),
		embeddings: embeddings,
	}
}

// POST /api/admin/embeddings/backfill
// Computes vectors for active courses that do not have one yet.
func (h *AdminHandler) BackfillEmbeddings(c *gin.Context) {
	updated, err := h.embeddings.BackfillEmbeddings(c.Request.Context())
	if err != nil {
		h.log.Error("BackfillEmbeddings failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "backfill_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": updated})
}
