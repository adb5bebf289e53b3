// Package middleware provides the HTTP middleware stack: access guard,
// structured request logging and role policies.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dmoura/gestao-escolar/internal/logger"
)

// LoggingMiddleware emits one structured JSON log line per request.
type LoggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware creates a new LoggingMiddleware instance
func NewLoggingMiddleware(log *slog.Logger) *LoggingMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingMiddleware{logger: log}
}

// Handler returns the middleware. The request ID set by chi's RequestID
// middleware is carried into the context for downstream log correlation.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := chimw.GetReqID(r.Context())
		r = r.WithContext(logger.SetRequestID(r.Context(), requestID))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		}

		switch {
		case ww.Status() >= 500:
			m.logger.Error("requisição concluída com erro de servidor", attrs...)
		case ww.Status() >= 400:
			m.logger.Warn("requisição concluída com erro de cliente", attrs...)
		default:
			m.logger.Info("requisição concluída", attrs...)
		}
	})
}

// StructuredLogger returns a chi-compatible middleware backed by slog.
func StructuredLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return NewLoggingMiddleware(log).Handler
}
