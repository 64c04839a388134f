package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// feedbackDoc is the Firestore document representation of model.Feedback.
type feedbackDoc struct {
	ID           string            `firestore:"ID"`
	SessionID    string            `firestore:"SessionID"`
	SubmissionID string            `firestore:"SubmissionID"`
	Rating       *int              `firestore:"Rating"`
	Comment      string            `firestore:"Comment"`
	Job          string            `firestore:"Job"`
	Score        *int              `firestore:"Score"`
	Answers      map[string]string `firestore:"Answers"`
	CreatedAt    time.Time         `firestore:"CreatedAt"`
}

func toFeedbackDoc(f *model.Feedback) *feedbackDoc {
	return &feedbackDoc{
		ID:           f.ID.String(),
		SessionID:    f.SessionID.String(),
		SubmissionID: string(f.SubmissionID),
		Rating:       f.Rating,
		Comment:      f.Comment,
		Job:          f.Job,
		Score:        f.Score,
		Answers:      f.Answers,
		CreatedAt:    f.CreatedAt,
	}
}

func fromFeedbackDoc(d *feedbackDoc) *model.Feedback {
	return &model.Feedback{
		ID:           model.FeedbackID(d.ID),
		SessionID:    model.SessionID(d.SessionID),
		SubmissionID: model.SubmissionID(d.SubmissionID),
		Rating:       d.Rating,
		Comment:      d.Comment,
		Job:          d.Job,
		Score:        d.Score,
		Answers:      model.Answers(d.Answers),
		CreatedAt:    d.CreatedAt,
	}
}

type feedbackRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFeedbackRepository(client *firestore.Client) *feedbackRepository {
	return &feedbackRepository{client: client}
}

func (r *feedbackRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "feedbacks"))
}

func (r *feedbackRepository) Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error) {
	created := *f
	if created.ID == "" {
		created.ID = model.NewFeedbackID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(created.ID.String()).Set(ctx, toFeedbackDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create feedback", goerr.V("session_id", created.SessionID))
	}
	return &created, nil
}

func (r *feedbackRepository) ListBySession(ctx context.Context, sessionID model.SessionID) ([]*model.Feedback, error) {
	iter := r.collection().
		Where("SessionID", "==", sessionID.String()).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	feedbacks := make([]*model.Feedback, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate feedbacks", goerr.V("session_id", sessionID))
		}

		var d feedbackDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode feedback", goerr.V("id", docSnap.Ref.ID))
		}
		feedbacks = append(feedbacks, fromFeedbackDoc(&d))
	}
	return feedbacks, nil
}
