package content

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/lacuna/internal/gaps"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/retry"
)

// Domain errors for content operations.
var (
	ErrUnavailable  = errors.New("content analyzer not configured")
	ErrUpstream     = errors.New("content analyzer error")
	ErrInvalidInput = errors.New("invalid content request")
)

// MapHTTPStatus maps content errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, retry.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, gaps.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, handlers.ErrInvalidBody), errors.Is(err, handlers.ErrBodyTooLarge):
		return handlers.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
