package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditActionSubmissionCreated = "submission.created"
	AuditActionSessionCreated    = "session.created"
	AuditActionSessionArchived   = "session.archived"
	AuditActionFeedbackExported  = "feedback.exported"
	AuditActionAdminLogin        = "admin.login"
)

// AuditLog records an action taken on the system.
type AuditLog struct {
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewAuditLog builds an unsaved audit log entry.
func NewAuditLog(actor, action string, metadata map[string]any, now time.Time) *AuditLog {
	return &AuditLog{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: now,
	}
}
