package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type sessionEntry struct {
	session *model.Session
	seq     int64
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*sessionEntry
	seq      int64
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[model.SessionID]*sessionEntry),
	}
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	return &copied
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return nil, goerr.New("session already exists", goerr.V("id", s.ID))
	}

	created := copySession(s)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	r.seq++
	r.sessions[created.ID] = &sessionEntry{session: created, seq: r.seq}
	return copySession(created), nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}
	return copySession(entry.session), nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].session, entries[j].session
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	sessions := make([]*model.Session, len(entries))
	for i, e := range entries {
		sessions[i] = copySession(e.session)
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.sessions[s.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", s.ID))
	}

	updated := copySession(s)
	updated.CreatedAt = entry.session.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	entry.session = updated
	return copySession(updated), nil
}
