package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/server/http/dto"
)

// SyncErrorHeader carries the reason a response holds the last known-good data.
const SyncErrorHeader = "X-Sync-Error"

// StatusFor maps a domain or sync error to an HTTP status code.
func StatusFor(err error) int {
	var (
		dup     *domainErrors.DuplicateError
		unacked *domainErrors.NotConfirmedError
		syncErr *domainErrors.SyncError
	)
	switch {
	case errors.As(err, &dup), errors.As(err, &unacked), errors.Is(err, domainErrors.ErrImportInProgress):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidDraft), errors.Is(err, domainErrors.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrEmptyImage):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &syncErr):
		if syncErr.Kind == domainErrors.KindValidation {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func kindOf(err error) string {
	var syncErr *domainErrors.SyncError
	if errors.As(err, &syncErr) {
		return syncErr.Kind.String()
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(StatusFor(err), dto.ErrorResponse{
		Error: domainErrors.UserMessage(err),
		Kind:  kindOf(err),
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

// unreadableBody answers 413 when the body hit the size limit and 400 otherwise.
func unreadableBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: err.Error()})
		return
	}
	badRequest(c, err)
}
