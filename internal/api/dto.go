// Package api defines the wire DTOs shared by handlers and API clients.
package api

import "github.com/unigate-dev/unigate/internal/domain"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Request DTOs

type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=student faculty"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	DateOfBirth  string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	DepartmentId int64  `json:"department_id" validate:"required"`

	Semester      *int `json:"semester,omitempty"`
	AdmissionYear *int `json:"admission_year,omitempty"`

	Designation   *string `json:"designation,omitempty"`
	Qualification *string `json:"qualification,omitempty"`
	JoiningDate   *string `json:"joining_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type DenyRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type ProvisionAdminRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

// Response payloads

type LoginData struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
