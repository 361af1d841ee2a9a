package middleware

import (
	"net/http"
	"time"

	"github.com/unigate-dev/unigate/internal/logger"
)

type loggedWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggedWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LogRequests writes one line per completed request, carrying the request
// id so responses can be correlated with server logs. Runs after RequestId.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggedWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lw, r)

		logger.Log.Info("http request",
			"request_id", GetRequestId(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
