package interfaces

import (
	"context"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

// SubmissionRepository defines the interface for Submission data access.
// Submissions are append-only.
type SubmissionRepository interface {
	Create(ctx context.Context, s *model.Submission) (*model.Submission, error)

	Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error)

	// ListBySession retrieves the submissions of a session ordered by
	// CreatedAt (newest first unless WithOrder says otherwise)
	ListBySession(ctx context.Context, sessionID model.SessionID, opts ...ListSubmissionOption) ([]*model.Submission, error)

	CountBySession(ctx context.Context, sessionID model.SessionID) (int, error)

	// ListRecent retrieves the latest submissions across all sessions
	ListRecent(ctx context.Context, limit int) ([]*model.Submission, error)
}
