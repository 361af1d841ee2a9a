package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/unigate-dev/unigate/internal/api"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/utils"
)

// Departments is public: the registration form needs the list before the
// requester has an account.
func (h *Handler) Departments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departments.List()
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if departments == nil {
		departments = []domain.Department{}
	}

	utils.WriteData(w, http.StatusOK, departments)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	var req api.CreateDepartmentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	created, err := h.departments.Create(user, req.Name, req.Code)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusCreated, created)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "departmentId"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, errors.Validation("Invalid department id"))
		return
	}

	if err := h.departments.Delete(user, id); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteMessage(w, http.StatusOK, "Department deleted")
}
