package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/logger"
	"github.com/presentia/backend/internal/pkg/saga"
)

// HandleAPIError maps service errors onto the response envelope. A
// resource that exists outside the caller's scope maps to 403, a missing
// one to 404; the two are never conflated.
func HandleAPIError(c *gin.Context, err error) {
	var customErr *apperrors.CustomError
	message := ""
	if errors.As(err, &customErr) {
		message = customErr.Message
	}

	// Pipeline failures wrap their cause; map by the cause so a scope
	// violation inside a pipeline still reads as 403.
	var pipelineErr *saga.Error
	if errors.As(err, &pipelineErr) && message == "" {
		message = "Ingestion failed: " + pipelineErr.Cause.Error()
	}

	status := statusFor(err)
	if message == "" {
		message = defaultMessageFor(status, err)
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
	}

	c.JSON(status, dto.NewErrorResponse(message))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrScopeViolation),
		errors.Is(err, apperrors.ErrPermissionDenied),
		errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrAlreadyExists),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	case errors.Is(err, apperrors.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func defaultMessageFor(status int, err error) string {
	switch status {
	case http.StatusNotFound, http.StatusConflict, http.StatusBadRequest, http.StatusUnauthorized:
		return err.Error()
	case http.StatusForbidden:
		return "Permission denied"
	case http.StatusRequestTimeout:
		return "The request timed out"
	case http.StatusBadGateway:
		return "An upstream service is unavailable"
	default:
		return "Internal server error"
	}
}
