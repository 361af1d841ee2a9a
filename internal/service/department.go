package service

import (
	"strings"

	"github.com/unigate-dev/unigate/internal/authz"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
)

type DepartmentService interface {
	Create(actor domain.User, name, code string) (domain.Department, error)
	List() ([]domain.Department, error)
	Delete(actor domain.User, id domain.DepartmentId) error
}

type DepartmentStorage interface {
	CreateDepartment(name, code string) (domain.Department, error)
	Departments() ([]domain.Department, error)
	DeleteDepartment(id domain.DepartmentId) error
}

type Departments struct {
	storage DepartmentStorage
}

func NewDepartments(storage DepartmentStorage) *Departments {
	return &Departments{storage: storage}
}

func (d *Departments) Create(actor domain.User, name, code string) (domain.Department, error) {
	if !authz.Can(actor.Role, authz.ResourceDepartment, authz.ActionCreate) {
		return domain.Department{}, errors.Forbidden("Access denied")
	}

	name = strings.TrimSpace(name)
	code = strings.ToUpper(strings.TrimSpace(code))
	if name == "" || code == "" {
		return domain.Department{}, errors.Validation("Department name and code are required")
	}

	return d.storage.CreateDepartment(name, code)
}

// List is public: the registration form needs it before authentication.
func (d *Departments) List() ([]domain.Department, error) {
	return d.storage.Departments()
}

func (d *Departments) Delete(actor domain.User, id domain.DepartmentId) error {
	if !authz.Can(actor.Role, authz.ResourceDepartment, authz.ActionDelete) {
		return errors.Forbidden("Access denied")
	}
	return d.storage.DeleteDepartment(id)
}
