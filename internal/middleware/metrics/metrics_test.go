package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Post("/admin/waitlist/{userId}/approve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("POST", "/admin/waitlist/{userId}/approve", "200"))

	req := httptest.NewRequest(http.MethodPost, "/admin/waitlist/42/approve", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	req = httptest.NewRequest(http.MethodPost, "/admin/waitlist/7/approve", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	// Both requests collapse onto the route pattern, not the raw paths.
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("POST", "/admin/waitlist/{userId}/approve", "200"))
	assert.Equal(t, before+2, after)
	assert.Zero(t, testutil.ToFloat64(requestsInFlight))
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/boom", "409"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	after := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/boom", "409"))
	assert.Equal(t, before+1, after)
}

func TestCountTransition(t *testing.T) {
	before := testutil.ToFloat64(transitionsTotal.WithLabelValues("approved"))
	CountTransition("approved")
	CountTransition("approved")
	after := testutil.ToFloat64(transitionsTotal.WithLabelValues("approved"))
	assert.Equal(t, before+2, after)
}
