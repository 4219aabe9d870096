package gaps

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/review"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

// Domain errors for gap operations.
var (
	ErrNotFound        = errors.New("gap not found")
	ErrDuplicate       = errors.New("unresolved gap already exists for topic")
	ErrInvalidStatus   = errors.New("invalid gap status")
	ErrInvalidPriority = errors.New("invalid gap priority")
	ErrInvalidFilter   = errors.New("invalid gap filter")
	ErrInvalidID       = errors.New("invalid gap id")
	ErrInvalidInput    = errors.New("invalid gap input")
	ErrIntegrity       = errors.New("gap priority inconsistent with impact score")
)

// MapHTTPStatus maps gap domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, signals.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, review.ErrInvalidTransition), errors.Is(err, review.ErrNotReady):
		return review.MapHTTPStatus(err)
	case errors.Is(err, retry.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, handlers.ErrInvalidBody), errors.Is(err, handlers.ErrBodyTooLarge):
		return handlers.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
