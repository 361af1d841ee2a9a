package pg

import (
	"fmt"
	"time"

	"github.com/unigate-dev/unigate/internal/domain"
)

const auditColumns = `id, user_id, user_email, actor_id, actor_email, action,
	from_status, to_status, reason, created_at`

// AuditEvents lists trail entries, newest first.
func (s *Storage) AuditEvents(filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	query := "SELECT " + auditColumns + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.UserId != 0 {
		args = append(args, filter.UserId)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuditEvent
	for rows.Next() {
		var e domain.AuditEvent
		if err := rows.Scan(&e.Id, &e.UserId, &e.UserEmail, &e.ActorId, &e.ActorEmail,
			&e.Action, &e.FromStatus, &e.ToStatus, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteAuditEventsBefore trims the trail for retention; returns rows removed.
func (s *Storage) DeleteAuditEventsBefore(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM audit_events WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	return result.RowsAffected()
}

// saveAuditEvent inserts one trail entry, normally inside the transition tx.
func (s *Storage) saveAuditEvent(q Querier, event domain.AuditEvent) error {
	_, err := q.Exec(`
		INSERT INTO audit_events(id, user_id, user_email, actor_id, actor_email,
			action, from_status, to_status, reason)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.Id, event.UserId, event.UserEmail, event.ActorId, event.ActorEmail,
		event.Action, event.FromStatus, event.ToStatus, event.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}
