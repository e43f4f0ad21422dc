package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/server/http/dto"
)

// PhoneNumberHandler manages collection endpoints.
type PhoneNumberHandler struct {
	facade PhoneNumberFacade
}

// NewPhoneNumberHandler constructs PhoneNumberHandler.
func NewPhoneNumberHandler(facade PhoneNumberFacade) *PhoneNumberHandler {
	return &PhoneNumberHandler{facade: facade}
}

// List handles GET /api/phone-numbers.
func (h *PhoneNumberHandler) List(c *gin.Context) {
	records, err := h.facade.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Refresh handles POST /api/phone-numbers/refresh. A failed sync still answers
// 200 with the previous list and the reason in the sync error header.
func (h *PhoneNumberHandler) Refresh(c *gin.Context) {
	result, err := h.facade.Refresh(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if result.SyncErr != nil {
		c.Header(SyncErrorHeader, domainErrors.UserMessage(result.SyncErr))
	}
	c.JSON(http.StatusOK, result.Records)
}

// Create handles POST /api/phone-numbers.
func (h *PhoneNumberHandler) Create(c *gin.Context) {
	var req dto.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.facade.Add(c.Request.Context(), req.Draft())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Get handles GET /api/phone-numbers/:id.
func (h *PhoneNumberHandler) Get(c *gin.Context) {
	id, err := RecordID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.facade.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Modify handles PATCH /api/phone-numbers/:id.
func (h *PhoneNumberHandler) Modify(c *gin.Context) {
	id, err := RecordID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req dto.PatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	record, err := h.facade.Modify(c.Request.Context(), id, req.Patch())
	h.writeUpdate(c, record, err)
}

// MarkUsed handles POST /api/phone-numbers/:id/used.
func (h *PhoneNumberHandler) MarkUsed(c *gin.Context) {
	id, err := RecordID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.facade.MarkUsed(c.Request.Context(), id)
	h.writeUpdate(c, record, err)
}

// MarkTried handles POST /api/phone-numbers/:id/tried.
func (h *PhoneNumberHandler) MarkTried(c *gin.Context) {
	id, err := RecordID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.facade.MarkTried(c.Request.Context(), id)
	h.writeUpdate(c, record, err)
}

// writeUpdate answers 202 with the unchanged record when the service rejected
// or missed the update but the record is still present locally.
func (h *PhoneNumberHandler) writeUpdate(c *gin.Context, record model.PhoneNumber, err error) {
	if err == nil {
		c.JSON(http.StatusOK, record)
		return
	}
	var syncErr *domainErrors.SyncError
	if errors.As(err, &syncErr) && !errors.Is(err, domainErrors.ErrNotFound) {
		c.Header(SyncErrorHeader, domainErrors.UserMessage(err))
		c.JSON(http.StatusAccepted, record)
		return
	}
	abortWithError(c, err)
}

// Delete handles DELETE /api/phone-numbers/:id.
func (h *PhoneNumberHandler) Delete(c *gin.Context) {
	id, err := RecordID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.facade.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Bulk handles POST /api/phone-numbers/bulk.
func (h *PhoneNumberHandler) Bulk(c *gin.Context) {
	var req dto.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	records, err := h.facade.ApplyToAll(c.Request.Context(), model.BulkCalculation{
		HasRedeemValue: req.HasRedeemValue,
		NumberOfPoints: req.NumberOfPoints,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
