package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
)

const submissionColumns = `id, session_id, respondent_job, answers, score, level, created_at`

type submissionRepository struct {
	db *DB
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s                             model.Submission
		id, sessionID, answers, level string
		createdAt                     int64
	)
	if err := row.Scan(&id, &sessionID, &s.RespondentJob, &answers, &s.Score, &level, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answers), &s.Answers); err != nil {
		return nil, goerr.Wrap(err, "failed to decode answers", goerr.V("id", id))
	}
	s.ID = model.SubmissionID(id)
	s.SessionID = model.SessionID(sessionID)
	s.Level = types.RiskLevel(level)
	s.CreatedAt = fromUnix(createdAt)
	return &s, nil
}

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	created := *s
	created.Answers = s.Answers.Clone()
	if created.Answers == nil {
		created.Answers = model.Answers{}
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.CreatedAt = fromUnix(toUnix(created.CreatedAt))

	answers, err := json.Marshal(created.Answers)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode answers", goerr.V("id", created.ID))
	}

	_, err = r.db.exec(ctx,
		`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.SessionID.String(), created.RespondentJob,
		string(answers), created.Score, created.Level.String(), toUnix(created.CreatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create submission",
			goerr.V("id", created.ID),
			goerr.V("session_id", created.SessionID))
	}
	return &created, nil
}

func (r *submissionRepository) Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	row := r.db.queryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id.String())
	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get submission", goerr.V("id", id))
	}
	return s, nil
}

func (r *submissionRepository) ListBySession(ctx context.Context, sessionID model.SessionID, opts ...interfaces.ListSubmissionOption) ([]*model.Submission, error) {
	cfg := interfaces.BuildListSubmissionConfig(opts...)

	order := "DESC"
	if cfg.Order() == types.SortOrderAsc {
		order = "ASC"
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE session_id = ?` +
		` ORDER BY created_at ` + order + `, seq ` + order
	args := []any{sessionID.String()}

	// OFFSET without LIMIT is not valid SQLite; -1 and ALL mean unbounded.
	switch {
	case cfg.Limit() > 0:
		query += ` LIMIT ?`
		args = append(args, cfg.Limit())
	case cfg.Offset() > 0 && r.db.dialect.driver == DriverSQLite:
		query += ` LIMIT -1`
	}
	if cfg.Offset() > 0 {
		query += ` OFFSET ?`
		args = append(args, cfg.Offset())
	}

	return r.list(ctx, query, args...)
}

func (r *submissionRepository) CountBySession(ctx context.Context, sessionID model.SessionID) (int, error) {
	var n int
	row := r.db.queryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE session_id = ?`, sessionID.String())
	if err := row.Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count submissions", goerr.V("session_id", sessionID))
	}
	return n, nil
}

func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY created_at DESC, seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

func (r *submissionRepository) list(ctx context.Context, query string, args ...any) ([]*model.Submission, error) {
	rows, err := r.db.query(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list submissions")
	}
	defer rows.Close()

	submissions := make([]*model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan submission")
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate submissions")
	}
	return submissions, nil
}
