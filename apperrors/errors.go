package apperrors

import (
	"errors"
	"net/http"
)

// Expected business-rule outcomes. Wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("need authentication")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("resource already exists")
	ErrNotFound     = errors.New("not found")
)

// StatusOf maps an error to the HTTP status the API responds with.
// Anything outside the taxonomy is an internal failure.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrConflict):
		// uniqueness conflicts are reported as 403 by this API
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
