package domain

import "time"

// AuditAction names a lifecycle event recorded in the audit trail.
type AuditAction string

const (
	AuditSubmitted   AuditAction = "submitted"
	AuditApproved    AuditAction = "approved"
	AuditDenied      AuditAction = "denied"
	AuditRemoved     AuditAction = "removed"
	AuditProvisioned AuditAction = "provisioned"
)

// AuditEvent is an append-only record of a gate decision. UserEmail is
// denormalized so the trail stays readable after the account is removed.
type AuditEvent struct {
	Id         string      `json:"id"`
	UserId     UserId      `json:"user_id"`
	UserEmail  Email       `json:"user_email"`
	ActorId    *UserId     `json:"actor_id,omitempty"`
	ActorEmail *Email      `json:"actor_email,omitempty"`
	Action     AuditAction `json:"action"`
	FromStatus *Status     `json:"from_status,omitempty"`
	ToStatus   *Status     `json:"to_status,omitempty"`
	Reason     *string     `json:"reason,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type AuditFilter struct {
	UserId UserId
	Action AuditAction
	Limit  int
}
