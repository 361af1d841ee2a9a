package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ridKey int

const requestIdKey ridKey = 0

const RequestIdHeader = "X-Request-Id"

// RequestId assigns every request a uuid (or propagates the caller's),
// echoes it in the response, and stores it in the context for log lines.
func RequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIdHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIdHeader, rid)

		ctx := context.WithValue(r.Context(), requestIdKey, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestId returns the request id, empty when middleware didn't run.
func GetRequestId(r *http.Request) string {
	rid, _ := r.Context().Value(requestIdKey).(string)
	return rid
}
