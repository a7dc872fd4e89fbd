package taxonomy

import (
	"errors"
	"net/http"
)

// Domain errors for taxonomy operations.
var (
	ErrInvalidRules = errors.New("invalid taxonomy rules")
	ErrNoNames      = errors.New("campaign_names must not be empty")
	ErrTooManyNames = errors.New("too many campaign names")
)

// MapHTTPStatus maps taxonomy errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNoNames) || errors.Is(err, ErrTooManyNames) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
