package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/dwikikusuma/techstore/pkg/apperr"
)

// StatusFromError maps an application error to an HTTP status, a stable code and the
// message that is safe to show to clients.
func StatusFromError(err error) (int, string, string) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED", err.Error()
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "service unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}
