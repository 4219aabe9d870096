package signals

import (
	"errors"
	"net/http"
	"strings"
)

// ErrValidation indicates malformed input records.
var ErrValidation = errors.New("invalid signal input")

// ValidationError lists every offending record in a batch.
type ValidationError struct {
	Problems []string `json:"problems"`
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MapHTTPStatus maps signal errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
