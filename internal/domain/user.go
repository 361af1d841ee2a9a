package domain

import "time"

// Role determines both what an account is for and what it may decide on.
type Role string

const (
	RoleStudent    Role = "student"
	RoleFaculty    Role = "faculty"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// SelfRegistrable reports whether the role can be requested through the
// public registration form. Admin accounts are provisioned, never requested.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleFaculty
}

// Status is the approval gate state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// CanTransition reports whether a decision may move the account from s to
// target. Approval is reachable from every state (re-approval after a
// denial, idempotent re-approval). Denial only applies before approval;
// revoking an approved account means removing it.
func (s Status) CanTransition(target Status) bool {
	switch target {
	case StatusApproved:
		return true
	case StatusDenied:
		return s == StatusPending || s == StatusDenied
	}
	return false
}

type User struct {
	Id            UserId        `json:"id"`
	Email         Email         `json:"email"`
	PasswordHash  string        `json:"-"`
	Role          Role          `json:"role"`
	Status        Status        `json:"status"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	DateOfBirth   *time.Time    `json:"date_of_birth,omitempty"`
	DepartmentId  *DepartmentId `json:"department_id,omitempty"`
	Semester      *int          `json:"semester,omitempty"`
	AdmissionYear *int          `json:"admission_year,omitempty"`
	Designation   *string       `json:"designation,omitempty"`
	Qualification *string       `json:"qualification,omitempty"`
	JoiningDate   *time.Time    `json:"joining_date,omitempty"`
	DeniedReason  *string       `json:"denied_reason,omitempty"`
	Version       int64         `json:"version"`
	SubmittedAt   time.Time     `json:"submitted_at"`
	VerifiedAt    *time.Time    `json:"verified_at,omitempty"`
	VerifiedBy    *UserId       `json:"verified_by,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CanLogin is the gate itself: credentials alone never grant access.
func (u *User) CanLogin() bool {
	return u.Status == StatusApproved
}

type Credentials struct {
	Email    Email
	Password string
}

// RegistrationData is a validated registration submission, before hashing
// and persistence.
type RegistrationData struct {
	Email         Email
	Password      string
	Role          Role
	FirstName     string
	LastName      string
	DateOfBirth   time.Time
	DepartmentId  DepartmentId
	Semester      *int
	AdmissionYear *int
	Designation   *string
	Qualification *string
	JoiningDate   *time.Time
}

// WaitlistFilter narrows a waitlist listing. Zero values mean "no filter"
// except Status, which callers default to pending.
type WaitlistFilter struct {
	Role   Role
	Status Status
}
