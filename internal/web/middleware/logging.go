package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/mask-fitter/internal/log"
)

// RequestLogger logs one line per request with chi's request id, which it
// also stores in the request context for log.FromContext. It must run after
// chi's RequestID middleware.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := chiMiddleware.GetReqID(r.Context())
		if requestID == "" {
			requestID = "unknown"
		}
		r = r.WithContext(log.WithRequestID(r.Context(), requestID))

		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := log.Fields{
			log.RequestIDKey: requestID,
			"method":         r.Method,
			"path":           r.URL.Path,
			"status":         status,
			"latency_ms":     time.Since(start).Milliseconds(),
			"ip":             r.RemoteAddr,
			"user_agent":     r.UserAgent(),
			"response_size":  ww.BytesWritten(),
		}

		switch {
		case status >= 500:
			log.Error(fields, "Server error")
		case status >= 400:
			log.Warn(fields, "Client error")
		default:
			log.Info(fields, "Success")
		}
	})
}
