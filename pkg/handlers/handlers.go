// Package handlers provides JSON response and request helpers shared by domain handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrBodyTooLarge is returned by DecodeJSON when the request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ErrInvalidBody is returned by DecodeJSON when the request body is not valid JSON.
var ErrInvalidBody = errors.New("invalid request body")

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as a JSON error body.
// Server errors log at error level; client errors log at warn level.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes the request body into v, rejecting bodies larger than limit bytes.
// A limit of zero or less disables the size check. An empty body leaves v untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}

	err := json.NewDecoder(body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxErr.Limit)
	}

	return fmt.Errorf("%w: %w", ErrInvalidBody, err)
}

// MapHTTPStatus maps request decoding errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
