package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader carries a caller-supplied correlation id into request logs.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Logger returns middleware that logs each request's method, URI, status, address, and duration,
// plus request_id when the caller sends RequestIDHeader. Responses with a 5xx status log at error level.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			attrs := []any{
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rec.status,
				"addr", r.RemoteAddr,
				"duration", time.Since(start),
			}
			if id := r.Header.Get(RequestIDHeader); id != "" {
				attrs = append(attrs, "request_id", id)
			}

			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}
