package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type auditLogRepository struct {
	mu   sync.RWMutex
	logs []*model.AuditLog
}

func newAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{}
}

func copyAuditLog(l *model.AuditLog) *model.AuditLog {
	copied := *l
	copied.Metadata = maps.Clone(l.Metadata)
	return &copied
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAuditLog(log)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.logs = append(r.logs, created)
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.logs)
	if limit > 0 && limit < n {
		n = limit
	}

	result := make([]*model.AuditLog, 0, n)
	for i := len(r.logs) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, copyAuditLog(r.logs[i]))
	}
	return result, nil
}
