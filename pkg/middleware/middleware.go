package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/lacuna/pkg/handlers"
)

// System manages an ordered stack of HTTP middleware.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type mw struct {
	stack []func(http.Handler) http.Handler
}

// New creates an empty middleware System.
func New() System {
	return &mw{
		stack: []func(http.Handler) http.Handler{},
	}
}

func (m *mw) Use(fn func(http.Handler) http.Handler) {
	m.stack = append(m.stack, fn)
}

func (m *mw) Apply(handler http.Handler) http.Handler {
	for i := len(m.stack) - 1; i >= 0; i-- {
		handler = m.stack[i](handler)
	}
	return handler
}

// ErrPanic is the error reported to clients when a handler panics.
var ErrPanic = errors.New("internal server error")

// Recover returns middleware that turns a handler panic into a 500 JSON error
// and logs the panic value with its stack. http.ErrAbortHandler is re-raised.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.ErrorContext(r.Context(), "handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"request_id", r.Header.Get(RequestIDHeader),
					"panic", fmt.Sprint(v),
					"stack", string(debug.Stack()),
				)
				handlers.RespondError(w, logger, http.StatusInternalServerError, ErrPanic)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
