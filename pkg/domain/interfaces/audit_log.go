package interfaces

import (
	"context"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

// AuditLogRepository defines the interface for AuditLog data access
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error

	// List retrieves the latest entries, newest first. Zero limit means all.
	List(ctx context.Context, limit int) ([]*model.AuditLog, error)
}
