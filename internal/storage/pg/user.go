package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/unigate-dev/unigate/internal/domain"
	internal_errors "github.com/unigate-dev/unigate/internal/errors"
)

const userColumns = `id, email, password_hash, role, status, first_name, last_name,
	date_of_birth, department_id, semester, admission_year, designation,
	qualification, joining_date, denied_reason, version, submitted_at,
	verified_at, verified_by, updated_at`

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// CreateUser inserts a new account and its audit row atomically. actor is
// nil for self-service registrations and set for superadmin provisioning.
func (s *Storage) CreateUser(user domain.User, actor *domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var created domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.createUser(tx, user)
		if err != nil {
			return err
		}

		// Accounts born approved were provisioned, not requested. Covers
		// the bootstrap CLI, which has no acting account yet.
		action := domain.AuditSubmitted
		if actor != nil || user.Status == domain.StatusApproved {
			action = domain.AuditProvisioned
		}
		event := newAuditEvent(created, actor, action, nil, &created.Status, nil)
		return s.saveAuditEvent(tx, event)
	})
	return created, err
}

// UserByEmail fetches a single account by email, any status.
func (s *Storage) UserByEmail(email domain.Email) (domain.User, error) {
	return s.userBy(s.db, "email = $1", email)
}

// UserById fetches a single account by id, any status.
func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.userBy(s.db, "id = $1", id)
}

// Waitlist lists accounts matching the filter, restricted to the given
// roles. Reads are snapshot-only; every call re-queries current state.
func (s *Storage) Waitlist(filter domain.WaitlistFilter, roles []domain.Role, limit int) ([]domain.User, error) {
	roleNames := make([]string, 0, len(roles))
	for _, r := range roles {
		roleNames = append(roleNames, string(r))
	}

	query := "SELECT " + userColumns + " FROM users WHERE status = $1 AND role = ANY($2)"
	args := []any{string(filter.Status), pq.Array(roleNames)}
	if filter.Role != "" {
		query += " AND role = $3"
		args = append(args, string(filter.Role))
	}
	query += fmt.Sprintf(" ORDER BY submitted_at ASC LIMIT %d", limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query waitlist: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ApproveUser moves an account to approved under a row lock. Approving an
// already-approved account is a no-op success so retried requests don't
// error. Audit is written in the same transaction.
func (s *Storage) ApproveUser(id domain.UserId, actor domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.lockUser(tx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.StatusApproved {
			updated = current
			return nil
		}
		if !current.Status.CanTransition(domain.StatusApproved) {
			return internal_errors.InvalidTransition(
				fmt.Sprintf("Cannot approve account in status %q", current.Status))
		}

		row := tx.QueryRow(`
			UPDATE users
			SET status = 'approved', verified_at = now(), verified_by = $2,
			    denied_reason = NULL, version = version + 1, updated_at = now()
			WHERE id = $1
			RETURNING `+userColumns,
			id, actor.Id)
		updated, err = scanUser(row)
		if err != nil {
			return fmt.Errorf("failed to approve user: %w", err)
		}

		event := newAuditEvent(updated, &actor, domain.AuditApproved, &current.Status, &updated.Status, nil)
		return s.saveAuditEvent(tx, event)
	})
	return updated, err
}

// DenyUser moves a pending account to denied under a row lock. Denying an
// already-denied account is a no-op success (the reason is updated when
// one is supplied); approved accounts cannot be denied.
func (s *Storage) DenyUser(id domain.UserId, actor domain.User, reason *string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var updated domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.lockUser(tx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.StatusDenied && reason == nil {
			updated = current
			return nil
		}
		if !current.Status.CanTransition(domain.StatusDenied) {
			return internal_errors.InvalidTransition(
				fmt.Sprintf("Cannot deny account in status %q", current.Status))
		}

		row := tx.QueryRow(`
			UPDATE users
			SET status = 'denied', denied_reason = $2,
			    version = version + 1, updated_at = now()
			WHERE id = $1
			RETURNING `+userColumns,
			id, reason)
		updated, err = scanUser(row)
		if err != nil {
			return fmt.Errorf("failed to deny user: %w", err)
		}

		event := newAuditEvent(updated, &actor, domain.AuditDenied, &current.Status, &updated.Status, reason)
		return s.saveAuditEvent(tx, event)
	})
	return updated, err
}

// DeleteUser permanently removes an account from any status and returns
// the deleted snapshot. A concurrent approve/deny waiting on the row lock
// will observe the deletion as NotFound rather than resurrecting the row.
func (s *Storage) DeleteUser(id domain.UserId, actor domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var deleted domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.lockUser(tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.Exec("DELETE FROM users WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		deleted = current

		event := newAuditEvent(current, &actor, domain.AuditRemoved, &current.Status, nil, nil)
		return s.saveAuditEvent(tx, event)
	})
	return deleted, err
}

// RecentlyRevoked returns ids of accounts that lost access after since:
// denied accounts plus removed ones (known only from the audit trail).
func (s *Storage) RecentlyRevoked(since time.Time) ([]domain.UserId, error) {
	rows, err := s.db.Query(`
		SELECT id FROM users WHERE status = 'denied' AND updated_at >= $1
		UNION
		SELECT user_id FROM audit_events WHERE action = 'removed' AND created_at >= $1`,
		since)
	if err != nil {
		return nil, fmt.Errorf("failed to query revoked users: %w", err)
	}
	defer rows.Close()

	var ids []domain.UserId
	for rows.Next() {
		var id domain.UserId
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan revoked user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =========================================================================
// Internal Methods (Core Database Logic)
// These methods accept a Querier and are transaction-agnostic.
// =========================================================================

func (s *Storage) createUser(q Querier, user domain.User) (domain.User, error) {
	row := q.QueryRow(`
		INSERT INTO users(email, password_hash, role, status, first_name, last_name,
			date_of_birth, department_id, semester, admission_year,
			designation, qualification, joining_date, verified_at, verified_by)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.Role, user.Status,
		user.FirstName, user.LastName, user.DateOfBirth, user.DepartmentId,
		user.Semester, user.AdmissionYear, user.Designation, user.Qualification,
		user.JoiningDate, user.VerifiedAt, user.VerifiedBy)

	created, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation on email
				return domain.User{}, internal_errors.DuplicateEmail("Email is already registered")
			case "23503": // foreign_key_violation on department
				return domain.User{}, internal_errors.Validation("Unknown department")
			}
		}
		return domain.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

func (s *Storage) userBy(q Querier, where string, arg any) (domain.User, error) {
	row := q.QueryRow("SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// lockUser fetches a row FOR UPDATE so concurrent transitions serialize.
func (s *Storage) lockUser(tx *sql.Tx, id domain.UserId) (domain.User, error) {
	row := tx.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to lock user row: %w", err)
	}
	return user, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUser(row scannable) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.Id, &u.Email, &u.PasswordHash, &u.Role, &u.Status,
		&u.FirstName, &u.LastName, &u.DateOfBirth, &u.DepartmentId,
		&u.Semester, &u.AdmissionYear, &u.Designation, &u.Qualification,
		&u.JoiningDate, &u.DeniedReason, &u.Version, &u.SubmittedAt,
		&u.VerifiedAt, &u.VerifiedBy, &u.UpdatedAt)
	return u, err
}

func newAuditEvent(target domain.User, actor *domain.User, action domain.AuditAction,
	from, to *domain.Status, reason *string) domain.AuditEvent {
	event := domain.AuditEvent{
		Id:         uuid.NewString(),
		UserId:     target.Id,
		UserEmail:  target.Email,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
	}
	if actor != nil {
		event.ActorId = &actor.Id
		email := actor.Email
		event.ActorEmail = &email
	}
	return event
}
