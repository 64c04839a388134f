package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type auditLogRepository struct {
	db *DB
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	id := log.ID
	if id == "" {
		id = uuid.NewString()
	}

	var metadata sql.NullString
	if log.Metadata != nil {
		raw, err := json.Marshal(log.Metadata)
		if err != nil {
			return goerr.Wrap(err, "failed to encode audit metadata", goerr.V("action", log.Action))
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.db.exec(ctx,
		`INSERT INTO audit_logs (id, actor, action, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, log.Actor, log.Action, metadata, toUnix(log.CreatedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to create audit log", goerr.V("action", log.Action))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	query := `SELECT id, actor, action, metadata, created_at FROM audit_logs ORDER BY created_at DESC, seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs")
	}
	defer rows.Close()

	logs := make([]*model.AuditLog, 0)
	for rows.Next() {
		var (
			l         model.AuditLog
			metadata  sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&l.ID, &l.Actor, &l.Action, &metadata, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan audit log")
		}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &l.Metadata); err != nil {
				return nil, goerr.Wrap(err, "failed to decode audit metadata", goerr.V("id", l.ID))
			}
		}
		l.CreatedAt = fromUnix(createdAt)
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate audit logs")
	}
	return logs, nil
}
