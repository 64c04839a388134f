package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type feedbackRepository struct {
	db *DB
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func (r *feedbackRepository) Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error) {
	created := *f
	if created.ID == "" {
		created.ID = model.NewFeedbackID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.CreatedAt = fromUnix(toUnix(created.CreatedAt))

	var answers sql.NullString
	if created.Answers != nil {
		raw, err := json.Marshal(created.Answers)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode answers", goerr.V("id", created.ID))
		}
		answers = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.db.exec(ctx,
		`INSERT INTO feedbacks (id, session_id, submission_id, rating, comment, job, score, answers, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.SessionID.String(), string(created.SubmissionID),
		nullInt(created.Rating), created.Comment, created.Job, nullInt(created.Score),
		answers, toUnix(created.CreatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create feedback", goerr.V("session_id", created.SessionID))
	}
	return &created, nil
}

func (r *feedbackRepository) ListBySession(ctx context.Context, sessionID model.SessionID) ([]*model.Feedback, error) {
	rows, err := r.db.query(ctx,
		`SELECT id, session_id, submission_id, rating, comment, job, score, answers, created_at
		 FROM feedbacks WHERE session_id = ? ORDER BY created_at ASC, seq ASC`,
		sessionID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedbacks", goerr.V("session_id", sessionID))
	}
	defer rows.Close()

	feedbacks := make([]*model.Feedback, 0)
	for rows.Next() {
		var (
			f                     model.Feedback
			id, sid, submissionID string
			rating, score         sql.NullInt64
			answers               sql.NullString
			createdAt             int64
		)
		if err := rows.Scan(&id, &sid, &submissionID, &rating, &f.Comment, &f.Job, &score, &answers, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan feedback")
		}
		if answers.Valid {
			if err := json.Unmarshal([]byte(answers.String), &f.Answers); err != nil {
				return nil, goerr.Wrap(err, "failed to decode answers", goerr.V("id", id))
			}
		}
		f.ID = model.FeedbackID(id)
		f.SessionID = model.SessionID(sid)
		f.SubmissionID = model.SubmissionID(submissionID)
		f.Rating = intPtr(rating)
		f.Score = intPtr(score)
		f.CreatedAt = fromUnix(createdAt)
		feedbacks = append(feedbacks, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate feedbacks")
	}
	return feedbacks, nil
}
