package interfaces

import (
	"context"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

// SessionRepository defines the interface for Session data access
type SessionRepository interface {
	// Create stores a new session. The ID is set by the caller.
	Create(ctx context.Context, s *model.Session) (*model.Session, error)

	// Get retrieves a session by ID
	Get(ctx context.Context, id model.SessionID) (*model.Session, error)

	// List retrieves all sessions, newest first
	List(ctx context.Context) ([]*model.Session, error)

	// Update replaces an existing session. CreatedAt is preserved.
	Update(ctx context.Context, s *model.Session) (*model.Session, error)
}
