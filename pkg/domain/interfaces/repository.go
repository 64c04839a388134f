package interfaces

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

// ErrNotFound is wrapped by every repository backend when a record does not
// exist.
var ErrNotFound = goerr.New("not found", goerr.T(errutil.TagNotFound))

// Repository defines the interface for data persistence
type Repository interface {
	Session() SessionRepository
	Submission() SubmissionRepository
	Feedback() FeedbackRepository
	AuditLog() AuditLogRepository

	// Close releases the underlying connection, if any.
	Close() error
}
