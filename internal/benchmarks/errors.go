package benchmarks

import (
	"errors"
	"net/http"
)

// Domain errors for benchmark operations.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidRequest   = errors.New("campaign_id or campaign_name required")
	ErrInvalidMonth     = errors.New("invalid month filter")
)

// MapHTTPStatus maps benchmark errors to HTTP status codes. Corpus load
// failures fall through to 500.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrCampaignNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidMonth) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
