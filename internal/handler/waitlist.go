package handler

import (
	"net/http"
	"strconv"

	"github.com/unigate-dev/unigate/internal/api"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/utils"
)

// Waitlist lists registrants awaiting or past a decision. Filters come
// from the query string: ?status=pending|approved|denied&role=student|faculty.
func (h *Handler) Waitlist(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	filter := domain.WaitlistFilter{
		Role:   domain.Role(r.URL.Query().Get("role")),
		Status: domain.Status(r.URL.Query().Get("status")),
	}

	users, err := h.gate.Waitlist(user, filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	utils.WriteData(w, http.StatusOK, users)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	updated, err := h.gate.Approve(user, id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusOK, updated)
}

func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	// Body is optional; an absent or empty body means no reason given.
	var req api.DenyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := utils.DecodeValidate(r.Body, &req); err != nil {
			utils.WriteError(w, err)
			return
		}
	}

	updated, err := h.gate.Deny(user, id, req.Reason)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusOK, updated)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := userIdParam(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.gate.Remove(user, id); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Account removed")
}

// ProvisionAdmin creates an admin account directly in approved status.
func (h *Handler) ProvisionAdmin(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req api.ProvisionAdminRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	created, err := h.gate.ProvisionAdmin(user, domain.RegistrationData{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusCreated, created)
}

// AuditEvents lists the decision trail. Filters: ?user_id=&action=&limit=.
func (h *Handler) AuditEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	filter := domain.AuditFilter{
		Action: domain.AuditAction(r.URL.Query().Get("action")),
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			utils.WriteError(w, errors.Validation("user_id must be a positive integer"))
			return
		}
		filter.UserId = id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			utils.WriteError(w, errors.Validation("limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	events, err := h.audit.Events(user, filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}

	utils.WriteData(w, http.StatusOK, events)
}

// RefreshRevocations forces an immediate revocation cache rebuild instead
// of waiting for the background tick.
func (h *Handler) RefreshRevocations(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.RefreshRevocations(); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Revocation cache refreshed")
}
