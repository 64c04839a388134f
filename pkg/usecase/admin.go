package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage        = 1
	DefaultPageSize    = 20
	MaxPageSize        = 100
	// MaxPage keeps (page-1)*pageSize within int32 for every backend.
	MaxPage            = math.MaxInt32 / MaxPageSize
	DefaultHistorySize = 50
	countConcurrency   = 8
)

type AdminUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// SessionSummary is a session with its submission count.
type SessionSummary struct {
	ID               model.SessionID `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	TargetCount      int             `json:"targetCount"`
	IsArchived       bool            `json:"isArchived"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	SubmissionsCount int             `json:"submissionsCount"`
}

func newSessionSummary(s *model.Session, count int) *SessionSummary {
	return &SessionSummary{
		ID:               s.ID,
		Title:            s.Title,
		Description:      s.Description,
		TargetCount:      s.TargetCount,
		IsArchived:       s.IsArchived,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
		SubmissionsCount: count,
	}
}

// SubmissionView is a stored submission with its interpretation.
type SubmissionView struct {
	ID             model.SubmissionID `json:"id"`
	SessionID      model.SessionID    `json:"sessionId"`
	RespondentJob  string             `json:"respondentJob"`
	Answers        model.Answers      `json:"answers"`
	Score          int                `json:"score"`
	Level          string             `json:"level"`
	Interpretation string             `json:"interpretation"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func newSubmissionView(s *model.Submission) *SubmissionView {
	return &SubmissionView{
		ID:             s.ID,
		SessionID:      s.SessionID,
		RespondentJob:  s.RespondentJob,
		Answers:        s.Answers,
		Score:          s.Score,
		Level:          s.Level.String(),
		Interpretation: s.Interpretation(),
		CreatedAt:      s.CreatedAt,
	}
}

// SubmissionPage is one page of a session's submissions, newest first.
type SubmissionPage struct {
	Items    []*SubmissionView `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// CreateSessionInput is the body of a session creation request.
type CreateSessionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetCount int    `json:"targetCount"`
}

// ListSessions returns all sessions newest first with their submission
// counts, which are fetched concurrently.
func (uc *AdminUseCase) ListSessions(ctx context.Context) ([]*SessionSummary, error) {
	sessions, err := uc.repo.Session().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}

	result := make([]*SessionSummary, len(sessions))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(countConcurrency)
	for i, s := range sessions {
		eg.Go(func() error {
			n, err := uc.repo.Submission().CountBySession(ctx, s.ID)
			if err != nil {
				return goerr.Wrap(err, "failed to count submissions", goerr.V(SessionIDKey, s.ID))
			}
			result[i] = newSessionSummary(s, n)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *AdminUseCase) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionSummary, error) {
	session, err := model.NewSession(input.Title, input.Description, input.TargetCount, uc.now())
	if err != nil {
		return nil, err
	}

	created, err := uc.repo.Session().Create(ctx, session)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}

	uc.audit(ctx, model.AuditActionSessionCreated, map[string]any{
		"sessionId": created.ID.String(),
		"title":     created.Title,
	})
	return newSessionSummary(created, 0), nil
}

func findSession(ctx context.Context, repo interfaces.Repository, rawID string) (*model.Session, error) {
	id := model.SessionID(strings.TrimSpace(rawID))
	if id == "" {
		return nil, goerr.Wrap(ErrSessionIDRequired, "invalid request")
	}

	session, err := repo.Session().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrSessionNotFound, "unknown session", goerr.V(SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(SessionIDKey, id))
	}
	return session, nil
}

// ArchiveSession closes a session to new submissions. Archiving twice is a
// no-op.
func (uc *AdminUseCase) ArchiveSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	session, err := findSession(ctx, uc.repo, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsArchived {
		session.IsArchived = true
		session, err = uc.repo.Session().Update(ctx, session)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to archive session", goerr.V(SessionIDKey, sessionID))
		}
		uc.audit(ctx, model.AuditActionSessionArchived, map[string]any{
			"sessionId": session.ID.String(),
		})
	}

	n, err := uc.repo.Submission().CountBySession(ctx, session.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count submissions", goerr.V(SessionIDKey, session.ID))
	}
	return newSessionSummary(session, n), nil
}

// NormalizePage applies defaults and bounds: page is clamped to
// [1, MaxPage] and pageSize to [1, MaxPageSize]. Zero values select the
// defaults.
func NormalizePage(page, pageSize int) (int, int) {
	if page == 0 {
		page = DefaultPage
	}
	page = max(1, min(MaxPage, page))
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	pageSize = max(1, min(MaxPageSize, pageSize))
	return page, pageSize
}

func (uc *AdminUseCase) ListSubmissions(ctx context.Context, sessionID string, page, pageSize int) (*SubmissionPage, error) {
	id := model.SessionID(strings.TrimSpace(sessionID))
	if id == "" {
		return nil, goerr.Wrap(ErrSessionIDRequired, "invalid request")
	}
	page, pageSize = NormalizePage(page, pageSize)

	total, err := uc.repo.Submission().CountBySession(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count submissions", goerr.V(SessionIDKey, id))
	}

	subs, err := uc.repo.Submission().ListBySession(ctx, id,
		interfaces.WithLimit(pageSize),
		interfaces.WithOffset((page-1)*pageSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list submissions", goerr.V(SessionIDKey, id))
	}

	items := make([]*SubmissionView, len(subs))
	for i, s := range subs {
		items[i] = newSubmissionView(s)
	}
	return &SubmissionPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// SessionStats aggregates all submissions of an existing session.
func (uc *AdminUseCase) SessionStats(ctx context.Context, sessionID model.SessionID) (*model.SessionStats, error) {
	session, err := findSession(ctx, uc.repo, sessionID.String())
	if err != nil {
		return nil, err
	}

	subs, err := uc.repo.Submission().ListBySession(ctx, session.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list submissions", goerr.V(SessionIDKey, session.ID))
	}
	return model.ComputeSessionStats(session.ID, subs), nil
}

// History returns the latest submissions across sessions.
func (uc *AdminUseCase) History(ctx context.Context, limit int) ([]*SubmissionView, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	limit = min(limit, MaxPageSize)

	subs, err := uc.repo.Submission().ListRecent(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent submissions")
	}

	items := make([]*SubmissionView, len(subs))
	for i, s := range subs {
		items[i] = newSubmissionView(s)
	}
	return items, nil
}

func (uc *AdminUseCase) AuditLogs(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	limit = min(limit, MaxPageSize)

	logs, err := uc.repo.AuditLog().List(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs")
	}
	return logs, nil
}

func (uc *AdminUseCase) audit(ctx context.Context, action string, metadata map[string]any) {
	log := model.NewAuditLog(auth.Actor(ctx), action, metadata, uc.now())
	if err := uc.repo.AuditLog().Create(ctx, log); err != nil {
		_ = errutil.Handle(ctx, err, "failed to write audit log")
	}
}
