package usecase_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/usecase"
)

func TestAdminUseCase_Sessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first := env.createSession(t, "Premier")
	second := env.createSession(t, "Second")
	for range 3 {
		_, err := env.uc.Survey.Submit(ctx, first.String(), bestAnswers(), "")
		gt.NoError(t, err).Required()
	}

	sessions, err := env.uc.Admin.ListSessions(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, sessions).Length(2).Required()
	gt.Value(t, sessions[0].ID).Equal(second)
	gt.Value(t, sessions[0].SubmissionsCount).Equal(0)
	gt.Value(t, sessions[1].ID).Equal(first)
	gt.Value(t, sessions[1].SubmissionsCount).Equal(3)

	t.Run("title is required", func(t *testing.T) {
		_, err := env.uc.Admin.CreateSession(ctx, usecase.CreateSessionInput{Title: "  "})
		gt.Error(t, err).Is(model.ErrTitleRequired)
	})

	t.Run("archive is idempotent", func(t *testing.T) {
		archived, err := env.uc.Admin.ArchiveSession(ctx, first.String())
		gt.NoError(t, err).Required()
		gt.Bool(t, archived.IsArchived).True()
		gt.Value(t, archived.SubmissionsCount).Equal(3)

		again, err := env.uc.Admin.ArchiveSession(ctx, first.String())
		gt.NoError(t, err).Required()
		gt.Bool(t, again.IsArchived).True()

		logs, err := env.uc.Admin.AuditLogs(ctx, 0)
		gt.NoError(t, err).Required()
		archivedCount := 0
		for _, l := range logs {
			if l.Action == model.AuditActionSessionArchived {
				archivedCount++
			}
		}
		gt.Value(t, archivedCount).Equal(1)
	})

	t.Run("archive unknown session", func(t *testing.T) {
		_, err := env.uc.Admin.ArchiveSession(ctx, "missing")
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
	})
}

func TestNormalizePage(t *testing.T) {
	testCases := []struct {
		name             string
		page, pageSize   int
		wantPage, wantPS int
	}{
		{name: "defaults", page: 0, pageSize: 0, wantPage: 1, wantPS: 20},
		{name: "negative page", page: -3, pageSize: 10, wantPage: 1, wantPS: 10},
		{name: "page size above max", page: 2, pageSize: 500, wantPage: 2, wantPS: 100},
		{name: "negative page size", page: 1, pageSize: -5, wantPage: 1, wantPS: 1},
		{name: "unchanged", page: 4, pageSize: 50, wantPage: 4, wantPS: 50},
		{name: "huge page", page: math.MaxInt, pageSize: 100, wantPage: usecase.MaxPage, wantPS: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, pageSize := usecase.NormalizePage(tc.page, tc.pageSize)
			gt.Value(t, page).Equal(tc.wantPage)
			gt.Value(t, pageSize).Equal(tc.wantPS)
		})
	}
}

func TestAdminUseCase_ListSubmissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sessionID := env.createSession(t, "Campagne")

	var ids []model.SubmissionID
	for range 5 {
		result, err := env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), "")
		gt.NoError(t, err).Required()
		ids = append(ids, result.ID)
	}

	t.Run("newest first with pagination", func(t *testing.T) {
		page, err := env.uc.Admin.ListSubmissions(ctx, sessionID.String(), 2, 2)
		gt.NoError(t, err).Required()
		gt.Value(t, page.Total).Equal(5)
		gt.Value(t, page.Page).Equal(2)
		gt.Value(t, page.PageSize).Equal(2)
		gt.Array(t, page.Items).Length(2).Required()
		gt.Value(t, page.Items[0].ID).Equal(ids[2])
		gt.Value(t, page.Items[1].ID).Equal(ids[1])
		gt.String(t, page.Items[0].Interpretation).NotEqual("")
	})

	t.Run("last partial page", func(t *testing.T) {
		page, err := env.uc.Admin.ListSubmissions(ctx, sessionID.String(), 3, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, page.Items).Length(1).Required()
		gt.Value(t, page.Items[0].ID).Equal(ids[0])
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		page, err := env.uc.Admin.ListSubmissions(ctx, sessionID.String(), 10, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, page.Items).Length(0)
		gt.Value(t, page.Total).Equal(5)
	})

	t.Run("huge page does not wrap around to the first page", func(t *testing.T) {
		page, err := env.uc.Admin.ListSubmissions(ctx, sessionID.String(), math.MaxInt, 100)
		gt.NoError(t, err).Required()
		gt.Value(t, page.Page).Equal(usecase.MaxPage)
		gt.Array(t, page.Items).Length(0)
		gt.Value(t, page.Total).Equal(5)
	})

	t.Run("session ID is required", func(t *testing.T) {
		_, err := env.uc.Admin.ListSubmissions(ctx, " ", 1, 20)
		gt.Error(t, err).Is(usecase.ErrSessionIDRequired)
	})
}

func TestAdminUseCase_StatsAndHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sessionID := env.createSession(t, "Campagne")
	other := env.createSession(t, "Autre")

	_, err := env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), "")
	gt.NoError(t, err).Required()
	_, err = env.uc.Survey.Submit(ctx, sessionID.String(), map[string]any{}, "")
	gt.NoError(t, err).Required()
	last, err := env.uc.Survey.Submit(ctx, other.String(), bestAnswers(), "")
	gt.NoError(t, err).Required()

	stats, err := env.uc.Admin.SessionStats(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, stats.Total).Equal(2)
	gt.Value(t, stats.Faible).Equal(1)
	gt.Value(t, stats.Eleve).Equal(1)
	gt.Value(t, stats.AverageScore).Equal(50.0)

	_, err = env.uc.Admin.SessionStats(ctx, model.SessionID("missing"))
	gt.Error(t, err).Is(usecase.ErrSessionNotFound)

	history, err := env.uc.Admin.History(ctx, 2)
	gt.NoError(t, err).Required()
	gt.Array(t, history).Length(2).Required()
	gt.Value(t, history[0].ID).Equal(last.ID)

	all, err := env.uc.Admin.History(ctx, 0)
	gt.NoError(t, err).Required()
	gt.Array(t, all).Length(3)

	logs, err := env.uc.Admin.AuditLogs(ctx, 1)
	gt.NoError(t, err).Required()
	gt.Array(t, logs).Length(1).Required()
	gt.Value(t, logs[0].Action).Equal(model.AuditActionSubmissionCreated)
}
