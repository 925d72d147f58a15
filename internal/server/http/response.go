package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/gin-gonic/gin"
)

// ok writes {"success": true, "message": msg, ...data}.
func ok(c *gin.Context, msg string, data gin.H) {
	body := gin.H{"success": true, "message": msg}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// statusFor maps service errors onto HTTP statuses. Unknown errors get a
// generic message; the caller logs the real one.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorEmptyName),
		errors.Is(err, common.ErrorTooShort),
		errors.Is(err, common.ErrorGuestNameRequired),
		errors.Is(err, common.ErrorInvalidCoordinates),
		errors.Is(err, common.ErrorInvalidTarget),
		errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrorInactive):
		return http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrorStorageNotAvailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, common.ErrorCodeExhausted):
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, "server error"
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	fail(c, status, msg)
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}
