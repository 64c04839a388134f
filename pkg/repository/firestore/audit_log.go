package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// auditLogDoc is the Firestore document representation of model.AuditLog.
type auditLogDoc struct {
	ID        string         `firestore:"ID"`
	Actor     string         `firestore:"Actor"`
	Action    string         `firestore:"Action"`
	Metadata  map[string]any `firestore:"Metadata"`
	CreatedAt time.Time      `firestore:"CreatedAt"`
}

type auditLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditLogRepository(client *firestore.Client) *auditLogRepository {
	return &auditLogRepository{client: client}
}

func (r *auditLogRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, "audit_logs"))
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	d := &auditLogDoc{
		ID:        log.ID,
		Actor:     log.Actor,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	ref := r.collection().NewDoc()
	if d.ID != "" {
		ref = r.collection().Doc(d.ID)
	} else {
		d.ID = ref.ID
	}

	if _, err := ref.Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to create audit log", goerr.V("action", log.Action))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	query := r.collection().OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	logs := make([]*model.AuditLog, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit logs")
		}

		var d auditLogDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit log", goerr.V("id", docSnap.Ref.ID))
		}
		logs = append(logs, &model.AuditLog{
			ID:        d.ID,
			Actor:     d.Actor,
			Action:    d.Action,
			Metadata:  d.Metadata,
			CreatedAt: d.CreatedAt,
		})
	}
	return logs, nil
}
