package reports

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/storage"
)

// Domain errors for report operations.
var (
	ErrNotFound    = errors.New("report not found")
	ErrDuplicate   = errors.New("report already exists")
	ErrInvalidKind = errors.New("invalid report kind")
	ErrInvalidID   = errors.New("invalid report id")
	ErrNotArchived = errors.New("report is not archived")
)

// MapHTTPStatus maps report domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotArchived):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, signals.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrEmptyKey),
		errors.Is(err, storage.ErrInvalidKey):
		return storage.MapHTTPStatus(err)
	case errors.Is(err, handlers.ErrInvalidBody), errors.Is(err, handlers.ErrBodyTooLarge):
		return handlers.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
