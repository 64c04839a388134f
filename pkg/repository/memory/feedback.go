package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yonnovia/iawashing/pkg/domain/model"
)

type feedbackEntry struct {
	feedback *model.Feedback
	seq      int64
}

type feedbackRepository struct {
	mu        sync.RWMutex
	seq       int64
	bySession map[model.SessionID][]*feedbackEntry
}

func newFeedbackRepository() *feedbackRepository {
	return &feedbackRepository{
		bySession: make(map[model.SessionID][]*feedbackEntry),
	}
}

func copyFeedback(f *model.Feedback) *model.Feedback {
	copied := *f
	if f.Rating != nil {
		v := *f.Rating
		copied.Rating = &v
	}
	if f.Score != nil {
		v := *f.Score
		copied.Score = &v
	}
	copied.Answers = f.Answers.Clone()
	return &copied
}

func (r *feedbackRepository) Create(ctx context.Context, f *model.Feedback) (*model.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyFeedback(f)
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.seq++
	r.bySession[created.SessionID] = append(r.bySession[created.SessionID], &feedbackEntry{feedback: created, seq: r.seq})
	return copyFeedback(created), nil
}

// ListBySession returns feedback oldest first, breaking CreatedAt ties by insertion.
func (r *feedbackRepository) ListBySession(ctx context.Context, sessionID model.SessionID) ([]*model.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := append([]*feedbackEntry(nil), r.bySession[sessionID]...)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.feedback.CreatedAt.Equal(b.feedback.CreatedAt) {
			return a.feedback.CreatedAt.Before(b.feedback.CreatedAt)
		}
		return a.seq < b.seq
	})

	result := make([]*model.Feedback, len(entries))
	for i, e := range entries {
		result[i] = copyFeedback(e.feedback)
	}
	return result, nil
}
