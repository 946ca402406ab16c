package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/saga"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing resource", apperrors.ErrStudentNotFound, http.StatusNotFound},
		{"scope violation", apperrors.ErrScopeViolation, http.StatusForbidden},
		{"permission denied", apperrors.ErrPermissionDenied, http.StatusForbidden},
		{"invalid credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{"duplicate record", apperrors.ErrAlreadyExists, http.StatusConflict},
		{"validation failure", apperrors.NewValidationError("bad payload"), http.StatusBadRequest},
		{"external call timeout", context.DeadlineExceeded, http.StatusRequestTimeout},
		{"upstream failure", apperrors.NewExternalServiceError("recognition down"), http.StatusBadGateway},
		{"unexpected error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, statusFor(tc.err))
		})
	}
}

// A rolled-back pipeline maps by its cause, so a scope breach inside a
// pipeline still reads as 403 and an upstream outage as 502.
func TestStatusFor_PipelineFailuresMapByCause(t *testing.T) {
	scopeErr := &saga.Error{Step: "persist-lecture", Cause: apperrors.ErrScopeViolation}
	assert.Equal(t, http.StatusForbidden, statusFor(scopeErr))

	upstreamErr := &saga.Error{Step: "verify-attendance", Cause: apperrors.NewExternalServiceError("recognition down")}
	assert.Equal(t, http.StatusBadGateway, statusFor(upstreamErr))
}
