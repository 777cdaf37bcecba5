package errors

import (
	"errors"
	"net/http"
)

// MapToHTTPStatus translates a domain error into the HTTP status the API
// returns for it. Anything unrecognized is a 500: storage and transaction
// failures are never leaked as client mistakes.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotOwner),
		errors.Is(err, ErrNotResponder):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrAlreadyProcessed),
		errors.Is(err, ErrSlotLocked),
		errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrSelfSwap),
		errors.Is(err, ErrMissingOwner),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
