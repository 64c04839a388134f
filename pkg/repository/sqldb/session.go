package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
)

const sessionColumns = `id, title, description, target_count, is_archived, created_at, updated_at`

type sessionRepository struct {
	db *DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*model.Session, error) {
	var (
		s                    model.Session
		id                   string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &s.Title, &s.Description, &s.TargetCount, &s.IsArchived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.ID = model.SessionID(id)
	s.CreatedAt = fromUnix(createdAt)
	s.UpdatedAt = fromUnix(updatedAt)
	return &s, nil
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	created := *s
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	_, err := r.db.exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.Title, created.Description, created.TargetCount,
		created.IsArchived, toUnix(created.CreatedAt), toUnix(created.UpdatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("id", created.ID))
	}

	created.CreatedAt = fromUnix(toUnix(created.CreatedAt))
	created.UpdatedAt = fromUnix(toUnix(created.UpdatedAt))
	return &created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	row := r.db.queryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id.String())
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}
	return s, nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	rows, err := r.db.query(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	defer rows.Close()

	sessions := make([]*model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate sessions")
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *model.Session) (*model.Session, error) {
	existing, err := r.Get(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	updated := *s
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = fromUnix(toUnix(time.Now()))

	res, err := r.db.exec(ctx,
		`UPDATE sessions SET title = ?, description = ?, target_count = ?, is_archived = ?, updated_at = ? WHERE id = ?`,
		updated.Title, updated.Description, updated.TargetCount, updated.IsArchived,
		toUnix(updated.UpdatedAt), updated.ID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update session", goerr.V("id", s.ID))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", s.ID))
	}
	return &updated, nil
}
