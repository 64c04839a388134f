package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// submissionDoc is the Firestore document representation of model.Submission.
type submissionDoc struct {
	ID            string            `firestore:"ID"`
	SessionID     string            `firestore:"SessionID"`
	RespondentJob string            `firestore:"RespondentJob"`
	Answers       map[string]string `firestore:"Answers"`
	Score         int               `firestore:"Score"`
	Level         string            `firestore:"Level"`
	CreatedAt     time.Time         `firestore:"CreatedAt"`
}

func toSubmissionDoc(s *model.Submission) *submissionDoc {
	return &submissionDoc{
		ID:            s.ID.String(),
		SessionID:     s.SessionID.String(),
		RespondentJob: s.RespondentJob,
		Answers:       s.Answers,
		Score:         s.Score,
		Level:         s.Level.String(),
		CreatedAt:     s.CreatedAt,
	}
}

func fromSubmissionDoc(d *submissionDoc) *model.Submission {
	return &model.Submission{
		ID:            model.SubmissionID(d.ID),
		SessionID:     model.SessionID(d.SessionID),
		RespondentJob: d.RespondentJob,
		Answers:       model.Answers(d.Answers),
		Score:         d.Score,
		Level:         types.RiskLevel(d.Level),
		CreatedAt:     d.CreatedAt,
	}
}

type submissionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSubmissionRepository(client *firestore.Client) *submissionRepository {
	return &submissionRepository{client: client}
}

func (r *submissionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "submissions"))
}

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	created := *s
	created.Answers = s.Answers.Clone()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(created.ID.String()).Create(ctx, toSubmissionDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create submission",
			goerr.V("id", created.ID),
			goerr.V("session_id", created.SessionID))
	}
	return &created, nil
}

func (r *submissionRepository) Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
	}

	docSnap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get submission", goerr.V("id", id))
	}

	var d submissionDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode submission", goerr.V("id", id))
	}
	return fromSubmissionDoc(&d), nil
}

func (r *submissionRepository) ListBySession(ctx context.Context, sessionID model.SessionID, opts ...interfaces.ListSubmissionOption) ([]*model.Submission, error) {
	cfg := interfaces.BuildListSubmissionConfig(opts...)

	dir := firestore.Desc
	if cfg.Order() == types.SortOrderAsc {
		dir = firestore.Asc
	}

	query := r.collection().
		Where("SessionID", "==", sessionID.String()).
		OrderBy("CreatedAt", dir)
	if cfg.Offset() > 0 {
		query = query.Offset(cfg.Offset())
	}
	if cfg.Limit() > 0 {
		query = query.Limit(cfg.Limit())
	}

	return r.collect(query.Documents(ctx))
}

func (r *submissionRepository) CountBySession(ctx context.Context, sessionID model.SessionID) (int, error) {
	docs, err := r.collection().
		Where("SessionID", "==", sessionID.String()).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count submissions", goerr.V("session_id", sessionID))
	}
	return len(docs), nil
}

func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Submission, error) {
	query := r.collection().OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.collect(query.Documents(ctx))
}

func (r *submissionRepository) collect(iter *firestore.DocumentIterator) ([]*model.Submission, error) {
	defer iter.Stop()

	submissions := make([]*model.Submission, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate submissions")
		}

		var d submissionDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode submission", goerr.V("id", docSnap.Ref.ID))
		}
		submissions = append(submissions, fromSubmissionDoc(&d))
	}
	return submissions, nil
}
