// Package router declares the full route table and the per-route
// middleware stack.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unigate-dev/unigate/internal/authz"
	"github.com/unigate-dev/unigate/internal/handler"
	mw "github.com/unigate-dev/unigate/internal/middleware"
	"github.com/unigate-dev/unigate/internal/middleware/metrics"
	rl "github.com/unigate-dev/unigate/internal/middleware/ratelimiter"
	"github.com/unigate-dev/unigate/internal/setup"
)

// New builds the router. Rate limiters attached with Use() apply to every
// endpoint in that group combined.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(mw.RequestId)
	r.Use(mw.LogRequests)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// JSON API only: no scripts or styles are ever served.
	backendCSP := "default-src 'none'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies, backendCSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", handler.Health(deps.Storage))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		// Public: the registration form needs departments pre-auth.
		v1.Get("/departments", h.Departments)

		v1.Route("/auth", func(auth chi.Router) {
			auth.Group(func(register chi.Router) {
				register.Use(mw.RateLimit(rl.New(1.0/60, 3, time.Hour), mw.GetEmailFromBody)) // 3 burst, then 1/min per email
				register.Use(mw.RateLimit(rl.New(1, 5, time.Hour), mw.GetIP))                 // 5 burst, then 1/sec per IP
				register.Use(mw.GlobalRateLimit(rl.Rps100()))
				register.Post("/register", h.Register)
			})

			auth.Group(func(login chi.Router) {
				login.Use(mw.RateLimit(rl.OnceInSecond(), mw.GetIP))
				login.Use(mw.GlobalRateLimit(rl.Rps100()))
				login.Post("/login", h.Login)
			})

			auth.Post("/logout", h.Logout)
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(authMw.NeedAuth())
			loggedIn.Use(mw.RateLimit(rl.Rps10(), mw.GetUserIDFromContext))
			loggedIn.Get("/me", h.Me)
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(authMw.Require(authz.ResourceWaitlist, authz.ActionRead))

			admin.Get("/waitlist", h.Waitlist)
			admin.Post("/waitlist/{userId}/approve", h.Approve)
			admin.Post("/waitlist/{userId}/deny", h.Deny)
			admin.Delete("/users/{userId}", h.Remove)
			admin.Post("/revocations/refresh", h.RefreshRevocations)

			admin.Post("/departments", h.CreateDepartment)
			admin.Delete("/departments/{departmentId}", h.DeleteDepartment)
		})

		v1.Route("/superadmin", func(superadmin chi.Router) {
			superadmin.Use(authMw.Require(authz.ResourceAdminAccount, authz.ActionCreate))

			superadmin.Post("/admins", h.ProvisionAdmin)
			superadmin.Get("/audit", h.AuditEvents)
		})
	})

	return r
}
