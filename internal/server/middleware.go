package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// loggingMiddleware logs each request with zap. Health and metrics probes
// are not logged.
func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", status),
				zap.Int("bytes_written", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// requestSizeMiddleware rejects bodies over max bytes. Declared lengths are
// checked up front; the body itself is capped with http.MaxBytesReader.
func requestSizeMiddleware(max int64, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > max {
				logger.Warn("request body too large",
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("max_allowed", max),
					zap.String("remote_addr", r.RemoteAddr))
				respondWithError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body too large, maximum allowed size is %d bytes", max))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
