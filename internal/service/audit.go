package service

import (
	"context"
	"time"

	"github.com/unigate-dev/unigate/internal/authz"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/errors"
	"github.com/unigate-dev/unigate/internal/logger"
)

type AuditService interface {
	Events(actor domain.User, filter domain.AuditFilter) ([]domain.AuditEvent, error)
}

type AuditStorage interface {
	AuditEvents(filter domain.AuditFilter) ([]domain.AuditEvent, error)
	DeleteAuditEventsBefore(cutoff time.Time) (int64, error)
}

type Audit struct {
	storage       AuditStorage
	retention     time.Duration
	sweepInterval time.Duration
}

func NewAudit(storage AuditStorage, retentionDays int, sweepInterval time.Duration) *Audit {
	return &Audit{
		storage:       storage,
		retention:     time.Duration(retentionDays) * 24 * time.Hour,
		sweepInterval: sweepInterval,
	}
}

func (a *Audit) Events(actor domain.User, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	if !authz.Can(actor.Role, authz.ResourceAudit, authz.ActionRead) {
		return nil, errors.Forbidden("Access denied")
	}
	if filter.Action != "" {
		switch filter.Action {
		case domain.AuditSubmitted, domain.AuditApproved, domain.AuditDenied,
			domain.AuditRemoved, domain.AuditProvisioned:
		default:
			return nil, errors.Validation("Unknown audit action filter")
		}
	}
	return a.storage.AuditEvents(filter)
}

// StartRetentionSweeper periodically deletes audit events older than the
// retention window. Retention <= 0 disables sweeping entirely.
func (a *Audit) StartRetentionSweeper(ctx context.Context) {
	if a.retention <= 0 {
		logger.Log.Info("audit retention sweeper disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(a.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (a *Audit) sweep() {
	cutoff := time.Now().UTC().Add(-a.retention)
	deleted, err := a.storage.DeleteAuditEventsBefore(cutoff)
	if err != nil {
		logger.Log.Error("audit retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		logger.Log.Info("audit retention sweep completed", "deleted", deleted, "cutoff", cutoff)
	}
}
