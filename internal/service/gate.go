package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/unigate-dev/unigate/internal/authz"
	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/logger"
	"github.com/unigate-dev/unigate/internal/middleware/metrics"
	"github.com/unigate-dev/unigate/internal/revocation"
	"golang.org/x/crypto/bcrypt"
)

// GateService is the approval workflow: it owns every legal status
// transition and decides who may authenticate.
type GateService interface {
	Register(data domain.RegistrationData) (domain.User, error)
	Waitlist(actor domain.User, filter domain.WaitlistFilter) ([]domain.User, error)
	Approve(actor domain.User, id domain.UserId) (domain.User, error)
	Deny(actor domain.User, id domain.UserId, reason *string) (domain.User, error)
	Remove(actor domain.User, id domain.UserId) error
	Login(creds domain.Credentials) (string, domain.User, error)
	ProvisionAdmin(actor domain.User, data domain.RegistrationData) (domain.User, error)
	Profile(id domain.UserId) (domain.User, error)
	RefreshRevocations() error
}

type GateStorage interface {
	CreateUser(user domain.User, actor *domain.User) (domain.User, error)
	UserByEmail(email domain.Email) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
	Waitlist(filter domain.WaitlistFilter, roles []domain.Role, limit int) ([]domain.User, error)
	ApproveUser(id domain.UserId, actor domain.User) (domain.User, error)
	DenyUser(id domain.UserId, actor domain.User, reason *string) (domain.User, error)
	DeleteUser(id domain.UserId, actor domain.User) (domain.User, error)
}

type Mailer interface {
	Send(recipientEmail, subject, body string) error
	IsCorrect(email domain.Email) error
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

type Gate struct {
	storage GateStorage
	mailer  Mailer
	jwt     Jwt
	cfg     *config.Config
	cache   *revocation.Cache

	sanitizer *bluemonday.Policy
}

func NewGate(storage GateStorage, mailer Mailer, jwt Jwt, cfg *config.Config, cache *revocation.Cache) *Gate {
	return &Gate{
		storage:   storage,
		mailer:    mailer,
		jwt:       jwt,
		cfg:       cfg,
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// clean strips markup from user-supplied free text.
func (g *Gate) clean(s string) string {
	return strings.TrimSpace(g.sanitizer.Sanitize(s))
}

func (g *Gate) cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := g.clean(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// Register creates a pending account from a self-service submission.
// No session or token is issued; the account is unusable until approved.
func (g *Gate) Register(data domain.RegistrationData) (domain.User, error) {
	email := strings.ToLower(data.Email)

	if err := g.mailer.IsCorrect(email); err != nil {
		return domain.User{}, err
	}
	if !data.Role.SelfRegistrable() {
		return domain.User{}, errors.Validation("Only student and faculty accounts can be requested here")
	}
	if len(data.Password) < g.cfg.Public.MinPasswordLen {
		return domain.User{}, errors.Validation(
			fmt.Sprintf("Password must be at least %d characters", g.cfg.Public.MinPasswordLen))
	}
	if err := validateRoleFields(data); err != nil {
		return domain.User{}, err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	dob := data.DateOfBirth
	deptId := data.DepartmentId
	user := domain.User{
		Email:         email,
		PasswordHash:  string(passHash),
		Role:          data.Role,
		Status:        domain.StatusPending,
		FirstName:     g.clean(data.FirstName),
		LastName:      g.clean(data.LastName),
		DateOfBirth:   &dob,
		DepartmentId:  &deptId,
		Semester:      data.Semester,
		AdmissionYear: data.AdmissionYear,
		Designation:   g.cleanPtr(data.Designation),
		Qualification: g.cleanPtr(data.Qualification),
		JoiningDate:   data.JoiningDate,
	}

	created, err := g.storage.CreateUser(user, nil)
	if err != nil {
		return domain.User{}, err
	}
	metrics.CountTransition(string(domain.AuditSubmitted))
	return created, nil
}

func validateRoleFields(data domain.RegistrationData) error {
	if data.DepartmentId == 0 {
		return errors.Validation("Department is required")
	}
	switch data.Role {
	case domain.RoleStudent:
		if data.Semester == nil || data.AdmissionYear == nil {
			return errors.Validation("Student registration requires semester and admission year")
		}
	case domain.RoleFaculty:
		if data.Designation == nil || data.Qualification == nil || data.JoiningDate == nil {
			return errors.Validation("Faculty registration requires designation, qualification and joining date")
		}
	}
	if data.DateOfBirth.IsZero() {
		return errors.Validation("Date of birth is required")
	}
	if !data.DateOfBirth.Before(time.Now()) {
		return errors.Validation("Date of birth must be in the past")
	}
	return nil
}

// Waitlist lists accounts awaiting (or after) a decision. Admins see only
// student/faculty submissions; superadmins also see admin-role records.
// Each call re-reads current state; snapshots may be immediately stale.
func (g *Gate) Waitlist(actor domain.User, filter domain.WaitlistFilter) ([]domain.User, error) {
	if !authz.Can(actor.Role, authz.ResourceWaitlist, authz.ActionRead) {
		return nil, errors.Forbidden("Access denied")
	}

	if filter.Status == "" {
		filter.Status = domain.StatusPending
	}
	if !filter.Status.Valid() {
		return nil, errors.Validation("Unknown status filter")
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, errors.Validation("Unknown role filter")
	}

	scope := []domain.Role{domain.RoleStudent, domain.RoleFaculty}
	if actor.Role == domain.RoleSuperAdmin {
		scope = append(scope, domain.RoleAdmin)
	}
	if filter.Role != "" && !roleInScope(filter.Role, scope) {
		return nil, errors.Forbidden("Access denied")
	}

	return g.storage.Waitlist(filter, scope, g.cfg.Public.WaitlistPageSize)
}

func roleInScope(role domain.Role, scope []domain.Role) bool {
	for _, r := range scope {
		if r == role {
			return true
		}
	}
	return false
}

// Approve transitions a pending or denied account to approved and re-arms
// login. Approving an approved account is a no-op success.
func (g *Gate) Approve(actor domain.User, id domain.UserId) (domain.User, error) {
	target, err := g.storage.UserById(id)
	if err != nil {
		return domain.User{}, err
	}
	if !authz.CanDecide(actor.Role, target.Role, authz.ActionApprove) {
		return domain.User{}, errors.Forbidden("Not authorized to approve this account")
	}

	updated, err := g.storage.ApproveUser(id, actor)
	if err != nil {
		return domain.User{}, err
	}

	metrics.CountTransition(string(domain.AuditApproved))
	g.refreshCache("approve", id)
	g.notify(updated.Email, "Your account has been approved",
		fmt.Sprintf("Hello %s,\n\nYour %s account has been approved. You can log in now.", updated.FirstName, updated.Role))
	return updated, nil
}

// Deny transitions a pending account to denied, keeping the record for
// audit until it is explicitly removed. Approved accounts cannot be denied.
func (g *Gate) Deny(actor domain.User, id domain.UserId, reason *string) (domain.User, error) {
	target, err := g.storage.UserById(id)
	if err != nil {
		return domain.User{}, err
	}
	if !authz.CanDecide(actor.Role, target.Role, authz.ActionDeny) {
		return domain.User{}, errors.Forbidden("Not authorized to deny this account")
	}

	updated, err := g.storage.DenyUser(id, actor, g.cleanPtr(reason))
	if err != nil {
		return domain.User{}, err
	}

	metrics.CountTransition(string(domain.AuditDenied))
	g.refreshCache("deny", id)
	body := fmt.Sprintf("Hello %s,\n\nYour %s account request was not approved.", updated.FirstName, updated.Role)
	if updated.DeniedReason != nil {
		body += "\n\nReason: " + *updated.DeniedReason
	}
	g.notify(updated.Email, "Your account request was denied", body)
	return updated, nil
}

// Remove permanently deletes an account from any status. Irreversible.
func (g *Gate) Remove(actor domain.User, id domain.UserId) error {
	target, err := g.storage.UserById(id)
	if err != nil {
		return err
	}
	if !authz.CanDecide(actor.Role, target.Role, authz.ActionDelete) {
		return errors.Forbidden("Not authorized to remove this account")
	}

	if _, err := g.storage.DeleteUser(id, actor); err != nil {
		return err
	}

	metrics.CountTransition(string(domain.AuditRemoved))
	g.refreshCache("remove", id)
	return nil
}

// Login verifies credentials and the approval gate. Unknown email, wrong
// password and not-yet-approved all answer with the same message so the
// registration status of an email cannot be guessed from the response.
func (g *Gate) Login(creds domain.Credentials) (string, domain.User, error) {
	email := strings.ToLower(creds.Email)

	if err := g.mailer.IsCorrect(email); err != nil {
		return "", domain.User{}, err
	}

	user, err := g.storage.UserByEmail(email)
	if err != nil {
		if errors.Is(err, errors.KindNotFound) {
			return "", domain.User{}, errors.Unauthorized(errors.InvalidCredentialsMessage)
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return "", domain.User{}, errors.Unauthorized(errors.InvalidCredentialsMessage)
	}

	// Password check passed; the gate decides independently.
	if !user.CanLogin() {
		return "", domain.User{}, errors.NotApproved()
	}

	token, err := g.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return "", domain.User{}, err
	}

	return token, user, nil
}

// ProvisionAdmin creates an admin account directly in approved status,
// bypassing the waitlist. Superadmin only.
func (g *Gate) ProvisionAdmin(actor domain.User, data domain.RegistrationData) (domain.User, error) {
	if !authz.Can(actor.Role, authz.ResourceAdminAccount, authz.ActionCreate) {
		return domain.User{}, errors.Forbidden("Only a superadmin can provision admin accounts")
	}

	email := strings.ToLower(data.Email)
	if err := g.mailer.IsCorrect(email); err != nil {
		return domain.User{}, err
	}
	if len(data.Password) < g.cfg.Public.MinPasswordLen {
		return domain.User{}, errors.Validation(
			fmt.Sprintf("Password must be at least %d characters", g.cfg.Public.MinPasswordLen))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		Email:        email,
		PasswordHash: string(passHash),
		Role:         domain.RoleAdmin,
		Status:       domain.StatusApproved,
		FirstName:    g.clean(data.FirstName),
		LastName:     g.clean(data.LastName),
		VerifiedAt:   &now,
		VerifiedBy:   &actor.Id,
	}

	created, err := g.storage.CreateUser(user, &actor)
	if err != nil {
		return domain.User{}, err
	}
	metrics.CountTransition(string(domain.AuditProvisioned))
	return created, nil
}

func (g *Gate) Profile(id domain.UserId) (domain.User, error) {
	return g.storage.UserById(id)
}

// RefreshRevocations forces a revocation cache rebuild.
func (g *Gate) RefreshRevocations() error {
	if g.cache == nil {
		return nil
	}
	return g.cache.Update()
}

// refreshCache triggers an immediate cache update so the decision takes
// effect now. A failure is logged, not surfaced; the background tick
// will catch up.
func (g *Gate) refreshCache(op string, id domain.UserId) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Update(); err != nil {
		logger.Log.Warn("transition applied but revocation cache update failed",
			"op", op,
			"user_id", id,
			"error", err)
	}
}

// notify sends a best-effort email; delivery failure never fails the
// transition that triggered it.
func (g *Gate) notify(email domain.Email, subject, body string) {
	if g.mailer == nil {
		return
	}
	if err := g.mailer.Send(email, subject, body); err != nil {
		logger.Log.Warn("failed to send notification email",
			"recipient", email,
			"error", err)
	}
}
