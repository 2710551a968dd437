package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quiz-progress-service/internal/domain"
)

type APIError struct {
	Message       string `json:"message"`
	Code          string `json:"code,omitempty"`
	SessionStatus string `json:"session_status,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// statusOf maps the error taxonomy onto HTTP statuses and stable codes.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNoContent):
		return http.StatusNotFound, "no_content"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusOf(err)
	body := APIError{Message: err.Error(), Code: code}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", requestFields(c, err)...)
		body.Message = "internal server error"
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body.SessionStatus = string(conflict.Status)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
