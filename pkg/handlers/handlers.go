// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// InternalErrorMessage is the response body message for every server error.
const InternalErrorMessage = "internal server error"

// RespondError logs err and writes it as an ErrorResponse.
// Server errors are logged at error level and answered with InternalErrorMessage;
// client errors are logged at warn and echo err.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		RespondJSON(w, status, ErrorResponse{Error: InternalErrorMessage})
		return
	}

	logger.Warn("request rejected", "status", status, "error", err)
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// DecodeJSON decodes a request body into T, bounding the read at maxBytes
// when maxBytes is positive.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, error) {
	var v T
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	err := json.NewDecoder(body).Decode(&v)
	return v, err
}

// DecodeStatus returns the response status for a DecodeJSON error:
// 413 when the body hit its limit, 400 otherwise.
func DecodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
