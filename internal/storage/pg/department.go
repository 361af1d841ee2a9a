package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/unigate-dev/unigate/internal/domain"
	internal_errors "github.com/unigate-dev/unigate/internal/errors"
)

func (s *Storage) CreateDepartment(name, code string) (domain.Department, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var created domain.Department
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.createDepartment(tx, name, code)
		return err
	})
	return created, err
}

func (s *Storage) Departments() ([]domain.Department, error) {
	rows, err := s.db.Query("SELECT id, name, code, created_at FROM departments ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.Id, &d.Name, &d.Code, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (s *Storage) DepartmentById(id domain.DepartmentId) (domain.Department, error) {
	var d domain.Department
	err := s.db.QueryRow("SELECT id, name, code, created_at FROM departments WHERE id = $1", id).
		Scan(&d.Id, &d.Name, &d.Code, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Department{}, internal_errors.NotFound("Department not found")
		}
		return domain.Department{}, fmt.Errorf("failed to query department: %w", err)
	}
	return d, nil
}

// DeleteDepartment removes a department; FK RESTRICT turns a delete of a
// department still referenced by accounts into a conflict.
func (s *Storage) DeleteDepartment(id domain.DepartmentId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM departments WHERE id = $1", id)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return internal_errors.Conflict("Department is still referenced by accounts")
			}
			return fmt.Errorf("failed to delete department: %w", err)
		}
		deleted, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows for department deletion: %w", err)
		}
		if deleted == 0 {
			return internal_errors.NotFound("Department not found")
		}
		return nil
	})
}

func (s *Storage) createDepartment(q Querier, name, code string) (domain.Department, error) {
	var d domain.Department
	err := q.QueryRow(`
		INSERT INTO departments(name, code) VALUES($1, $2)
		RETURNING id, name, code, created_at`,
		name, code).Scan(&d.Id, &d.Name, &d.Code, &d.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.Department{}, internal_errors.Conflict("Department name or code already exists")
		}
		return domain.Department{}, fmt.Errorf("failed to insert department: %w", err)
	}
	return d, nil
}
