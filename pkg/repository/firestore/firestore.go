package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
)

// ErrNotFound is wrapped when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client     *firestore.Client
	session    *sessionRepository
	submission *submissionRepository
	feedback   *feedbackRepository
	auditLog   *auditLogRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, so that tests can
// share a database without colliding.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.session.collectionPrefix = prefix
		f.submission.collectionPrefix = prefix
		f.feedback.collectionPrefix = prefix
		f.auditLog.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		session:    newSessionRepository(client),
		submission: newSubmissionRepository(client),
		feedback:   newFeedbackRepository(client),
		auditLog:   newAuditLogRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Submission() interfaces.SubmissionRepository {
	return f.submission
}

func (f *Firestore) Feedback() interfaces.FeedbackRepository {
	return f.feedback
}

func (f *Firestore) AuditLog() interfaces.AuditLogRepository {
	return f.auditLog
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
