package campaigns

import (
	"errors"
	"net/http"
)

// Domain errors for campaign operations.
var (
	ErrNotFound          = errors.New("campaign not found")
	ErrDuplicate         = errors.New("campaign already exists")
	ErrCorpusUnavailable = errors.New("campaign corpus unavailable")
	ErrInvalidCampaign   = errors.New("invalid campaign")
	ErrEmptySnapshot     = errors.New("snapshot must contain at least one campaign")
	ErrSnapshotTooLarge  = errors.New("snapshot exceeds maximum size")
	ErrInvalidFilter     = errors.New("invalid filter")
)

// MapHTTPStatus maps campaign domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrSnapshotTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidCampaign) || errors.Is(err, ErrEmptySnapshot) || errors.Is(err, ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
