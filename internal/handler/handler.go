// Package handler translates HTTP requests into service calls and service
// results into the response envelope.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/middleware"
	"github.com/unigate-dev/unigate/internal/service"
	"github.com/unigate-dev/unigate/internal/utils"
)

type Handler struct {
	gate        service.GateService
	departments service.DepartmentService
	audit       service.AuditService
	cfg         *config.Config
}

func New(gate service.GateService, departments service.DepartmentService, audit service.AuditService, cfg *config.Config) *Handler {
	return &Handler{
		gate:        gate,
		departments: departments,
		audit:       audit,
		cfg:         cfg,
	}
}

// actor pulls the authenticated user placed in the context by the auth
// middleware. Handlers behind NeedAuth can rely on it being present.
func actor(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return domain.User{}, false
	}
	return *user, true
}

func userIdParam(r *http.Request) (domain.UserId, error) {
	raw := chi.URLParam(r, "userId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Validation("Invalid user id")
	}
	return id, nil
}
