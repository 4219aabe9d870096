package faqs

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/review"
	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

// Domain errors for FAQ operations.
var (
	ErrNotFound      = errors.New("faq not found")
	ErrDuplicate     = errors.New("unpublished faq already exists for topic")
	ErrInvalidStatus = errors.New("invalid faq status")
	ErrInvalidInput  = errors.New("invalid faq input")
	ErrInvalidID     = errors.New("invalid faq id")
)

// MapHTTPStatus maps FAQ domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidID),
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
