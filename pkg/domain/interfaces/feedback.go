package interfaces

import (
	"context"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

// FeedbackRepository defines the interface for Feedback data access
type FeedbackRepository interface {
	Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error)

	// ListBySession retrieves the feedback of a session, oldest first
	ListBySession(ctx context.Context, sessionID model.SessionID) ([]*model.Feedback, error)
}
