package handler

import (
	"net/http"
	"time"

	"github.com/unigate-dev/unigate/internal/api"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/utils"
)

const dateLayout = "2006-01-02"

// Register accepts a self-service account request. The account is created
// in pending status; no token is issued.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	data, err := registrationData(req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	user, err := h.gate.Register(data)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusCreated, user)
}

func registrationData(req api.RegisterRequest) (domain.RegistrationData, error) {
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return domain.RegistrationData{}, errors.Validation("Invalid date of birth")
	}

	data := domain.RegistrationData{
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   dob,
		DepartmentId:  req.DepartmentId,
		Semester:      req.Semester,
		AdmissionYear: req.AdmissionYear,
		Designation:   req.Designation,
		Qualification: req.Qualification,
	}
	if req.JoiningDate != nil {
		joined, err := time.Parse(dateLayout, *req.JoiningDate)
		if err != nil {
			return domain.RegistrationData{}, errors.Validation("Invalid joining date")
		}
		data.JoiningDate = &joined
	}
	return data, nil
}

// Login verifies credentials against the approval gate and, on success,
// returns a token both in the body and as an httpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	token, user, err := h.gate.Login(domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	http.SetCookie(w, h.accessTokenCookie(token, h.cfg.Public.JwtTTL))
	utils.WriteData(w, http.StatusOK, api.LoginData{Token: token, User: user})
}

// Logout clears the token cookie. The server keeps no session state, so
// this is all there is to it; revocation of denied/removed accounts is
// handled by the revocation cache.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := h.accessTokenCookie("", 0)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	utils.WriteMessage(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated account's current profile from storage,
// not the token claims, so a freshly denied account sees its real status.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}

	profile, err := h.gate.Profile(user.Id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteData(w, http.StatusOK, profile)
}

func (h *Handler) accessTokenCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     "accessToken",
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
