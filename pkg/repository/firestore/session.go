package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// sessionDoc is the Firestore document representation of model.Session.
type sessionDoc struct {
	ID          string    `firestore:"ID"`
	Title       string    `firestore:"Title"`
	Description string    `firestore:"Description"`
	TargetCount int       `firestore:"TargetCount"`
	IsArchived  bool      `firestore:"IsArchived"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
	UpdatedAt   time.Time `firestore:"UpdatedAt"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	return &sessionDoc{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		TargetCount: s.TargetCount,
		IsArchived:  s.IsArchived,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromSessionDoc(d *sessionDoc) *model.Session {
	return &model.Session{
		ID:          model.SessionID(d.ID),
		Title:       d.Title,
		Description: d.Description,
		TargetCount: d.TargetCount,
		IsArchived:  d.IsArchived,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "sessions"))
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	created := *s
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	if _, err := r.collection().Doc(created.ID.String()).Create(ctx, toSessionDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	if id == "" {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}

	docSnap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	var d sessionDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("id", id))
	}
	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	iter := r.collection().OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	sessions := make([]*model.Session, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions")
		}

		var d sessionDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode session", goerr.V("id", docSnap.Ref.ID))
		}
		sessions = append(sessions, fromSessionDoc(&d))
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *model.Session) (*model.Session, error) {
	ref := r.collection().Doc(s.ID.String())

	var updated *model.Session
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", s.ID))
			}
			return goerr.Wrap(err, "failed to get session", goerr.V("id", s.ID))
		}

		var existing sessionDoc
		if err := docSnap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode session", goerr.V("id", s.ID))
		}

		u := *s
		u.CreatedAt = existing.CreatedAt
		u.UpdatedAt = time.Now().UTC()
		if err := tx.Set(ref, toSessionDoc(&u)); err != nil {
			return goerr.Wrap(err, "failed to update session", goerr.V("id", s.ID))
		}
		updated = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
