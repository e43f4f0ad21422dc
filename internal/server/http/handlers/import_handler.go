package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/server/http/dto"
)

// ImportHandler manages the image import endpoints.
type ImportHandler struct {
	facade ImportFacade
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(facade ImportFacade) *ImportHandler {
	return &ImportHandler{facade: facade}
}

// Status handles GET /api/import.
func (h *ImportHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromImportStatus(h.facade.ImportStatus()))
}

// Upload handles POST /api/import/upload with the raw image as the body.
func (h *ImportHandler) Upload(c *gin.Context) {
	image, err := io.ReadAll(c.Request.Body)
	if err != nil {
		unreadableBody(c, err)
		return
	}
	status, err := h.facade.UploadImage(c.Request.Context(), image, c.Query("file_name"))
	h.write(c, status, err)
}

// Review handles POST /api/import/review.
func (h *ImportHandler) Review(c *gin.Context) {
	status, err := h.facade.ReviewImport(c.Request.Context())
	h.write(c, status, err)
}

// ReplaceCandidates handles PUT /api/import/candidates.
func (h *ImportHandler) ReplaceCandidates(c *gin.Context) {
	var req dto.CandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := h.facade.EditCandidates(c.Request.Context(), req.Numbers)
	h.write(c, status, err)
}

// RemoveCandidate handles DELETE /api/import/candidates/:number.
func (h *ImportHandler) RemoveCandidate(c *gin.Context) {
	status, err := h.facade.RemoveCandidate(c.Request.Context(), c.Param("number"))
	h.write(c, status, err)
}

// Confirm handles POST /api/import/confirm.
func (h *ImportHandler) Confirm(c *gin.Context) {
	status, err := h.facade.ConfirmImport(c.Request.Context())
	h.write(c, status, err)
}

// Reset handles POST /api/import/reset.
func (h *ImportHandler) Reset(c *gin.Context) {
	status, err := h.facade.ResetImport()
	h.write(c, status, err)
}

func (h *ImportHandler) write(c *gin.Context, status model.ImportStatus, err error) {
	if err != nil {
		if status.Message != "" {
			c.Header(SyncErrorHeader, status.Message)
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromImportStatus(status))
}
