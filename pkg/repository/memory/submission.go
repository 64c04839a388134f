package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
)

type submissionEntry struct {
	submission *model.Submission
	seq        int64
}

type submissionRepository struct {
	mu          sync.RWMutex
	submissions map[model.SubmissionID]*submissionEntry
	bySession   map[model.SessionID][]*submissionEntry
	seq         int64
}

func newSubmissionRepository() *submissionRepository {
	return &submissionRepository{
		submissions: make(map[model.SubmissionID]*submissionEntry),
		bySession:   make(map[model.SessionID][]*submissionEntry),
	}
}

func copySubmission(s *model.Submission) *model.Submission {
	copied := *s
	copied.Answers = s.Answers.Clone()
	return &copied
}

// sortSubmissions orders entries by CreatedAt, breaking ties by insertion.
func sortSubmissions(entries []*submissionEntry, order types.SortOrder) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.submission.CreatedAt.Equal(b.submission.CreatedAt) {
			if order == types.SortOrderAsc {
				return a.submission.CreatedAt.Before(b.submission.CreatedAt)
			}
			return a.submission.CreatedAt.After(b.submission.CreatedAt)
		}
		if order == types.SortOrderAsc {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})
}

func (r *submissionRepository) Create(ctx context.Context, s *model.Submission) (*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.submissions[s.ID]; exists {
		return nil, goerr.New("submission already exists", goerr.V("id", s.ID))
	}

	created := copySubmission(s)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.seq++
	entry := &submissionEntry{submission: created, seq: r.seq}
	r.submissions[created.ID] = entry
	r.bySession[created.SessionID] = append(r.bySession[created.SessionID], entry)
	return copySubmission(created), nil
}

func (r *submissionRepository) Get(ctx context.Context, id model.SubmissionID) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.submissions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "submission not found", goerr.V("id", id))
	}
	return copySubmission(entry.submission), nil
}

func (r *submissionRepository) ListBySession(ctx context.Context, sessionID model.SessionID, opts ...interfaces.ListSubmissionOption) ([]*model.Submission, error) {
	cfg := interfaces.BuildListSubmissionConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := append([]*submissionEntry(nil), r.bySession[sessionID]...)
	sortSubmissions(entries, cfg.Order())

	if cfg.Offset() >= len(entries) {
		return []*model.Submission{}, nil
	}
	entries = entries[cfg.Offset():]
	if cfg.Limit() > 0 && cfg.Limit() < len(entries) {
		entries = entries[:cfg.Limit()]
	}

	result := make([]*model.Submission, len(entries))
	for i, e := range entries {
		result[i] = copySubmission(e.submission)
	}
	return result, nil
}

func (r *submissionRepository) CountBySession(ctx context.Context, sessionID model.SessionID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bySession[sessionID]), nil
}

func (r *submissionRepository) ListRecent(ctx context.Context, limit int) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*submissionEntry, 0, len(r.submissions))
	for _, e := range r.submissions {
		entries = append(entries, e)
	}
	sortSubmissions(entries, types.SortOrderDesc)
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	result := make([]*model.Submission, len(entries))
	for i, e := range entries {
		result[i] = copySubmission(e.submission)
	}
	return result, nil
}
