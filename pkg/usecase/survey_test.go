package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/types"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/async"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

func TestSurveyUseCase_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("scores, stores and publishes", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")

		result, err := env.uc.Survey.Submit(ctx, "  "+sessionID.String()+"\n", bestAnswers(), "DSI")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Score).Equal(0)
		gt.Value(t, result.Level).Equal(types.RiskLevelLow.String())
		gt.Value(t, result.Interpretation).Equal(types.RiskLevelLow.Interpretation())
		gt.Bool(t, result.CreatedAt.IsZero()).False()

		stored, err := env.repo.Submission().Get(ctx, result.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.SessionID).Equal(sessionID)
		gt.Value(t, stored.RespondentJob).Equal("DSI")
		gt.Value(t, stored.Answers["q3"]).Equal("3+")

		async.Wait()
		events := env.publisher.published()
		gt.Array(t, events).Length(1).Required()
		gt.Value(t, events[0].Event).Equal(model.EventSessionUpdate)
		gt.Value(t, events[0].SessionID).Equal(sessionID)
		gt.Value(t, events[0].Submission.ID).Equal(result.ID)

		gt.Array(t, env.metrics.levels).Length(1)

		logs, err := env.repo.AuditLog().List(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Value(t, logs[0].Action).Equal(model.AuditActionSubmissionCreated)
	})

	t.Run("empty answers object is accepted and scores 100", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")

		result, err := env.uc.Survey.Submit(ctx, sessionID.String(), map[string]any{}, "")
		gt.NoError(t, err).Required()
		gt.Value(t, result.Score).Equal(100)
		gt.Value(t, result.Level).Equal(types.RiskLevelHigh.String())
	})

	t.Run("numeric answers are stringified", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")

		answers := bestAnswers()
		answers["q3"] = float64(0)
		answers["q9"] = "Oui"
		result, err := env.uc.Survey.Submit(ctx, sessionID.String(), answers, "")
		gt.NoError(t, err).Required()
		// U = 0.5 → 15 points lost, plus the communication flag
		gt.Value(t, result.Score).Equal(30)
	})

	t.Run("nil answers are rejected", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")

		_, err := env.uc.Survey.Submit(ctx, sessionID.String(), nil, "")
		gt.Error(t, err).Is(usecase.ErrAnswersRequired)
		gt.Value(t, errutil.StatusCode(err)).Equal(400)
	})

	t.Run("unknown session", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Survey.Submit(ctx, model.NewSessionID().String(), bestAnswers(), "")
		gt.Error(t, err).Is(usecase.ErrSessionNotFound)
		gt.Value(t, errutil.StatusCode(err)).Equal(404)
		async.Wait()
		gt.Array(t, env.publisher.published()).Length(0)
	})

	t.Run("blank session", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.uc.Survey.Submit(ctx, "   ", bestAnswers(), "")
		gt.Error(t, err).Is(usecase.ErrSessionIDRequired)
	})

	t.Run("archived session", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		_, err := env.uc.Admin.ArchiveSession(ctx, sessionID.String())
		gt.NoError(t, err).Required()

		_, err = env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), "")
		gt.Error(t, err).Is(usecase.ErrSessionArchived)
		gt.Bool(t, goerr.HasTag(err, errutil.TagConflict)).True()
	})

	t.Run("job too long", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		_, err := env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), strings.Repeat("x", 121))
		gt.Error(t, err).Is(model.ErrJobTooLong)
		gt.Value(t, errutil.StatusCode(err)).Equal(400)
	})

	t.Run("publisher failure does not fail the submission", func(t *testing.T) {
		env := newTestEnv(t)
		env.publisher.err = errors.New("redis down")
		sessionID := env.createSession(t, "Campagne")

		result, err := env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), "")
		gt.NoError(t, err).Required()

		_, err = env.repo.Submission().Get(ctx, result.ID)
		gt.NoError(t, err)
		async.Wait()
		gt.Array(t, env.publisher.published()).Length(1)
	})
}

func TestSurveyUseCase_SaveFeedback(t *testing.T) {
	ctx := context.Background()
	rating := func(v int) *int { return &v }

	t.Run("stores feedback linked to a submission", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		result, err := env.uc.Survey.Submit(ctx, sessionID.String(), bestAnswers(), "")
		gt.NoError(t, err).Required()

		saved, err := env.uc.Survey.SaveFeedback(ctx, sessionID.String(), usecase.FeedbackInput{
			SubmissionID: result.ID.String(),
			Rating:       rating(5),
			Comment:      " Parfait ",
			Answers:      map[string]any{"q1": "Oui"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, saved.SubmissionID).Equal(result.ID)
		gt.Value(t, saved.Comment).Equal("Parfait")
		gt.Value(t, saved.Answers["q1"]).Equal("Oui")

		list, err := env.repo.Feedback().ListBySession(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(1)
	})

	t.Run("feedback without rating", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		_, err := env.uc.Survey.SaveFeedback(ctx, sessionID.String(), usecase.FeedbackInput{Comment: "ok"})
		gt.NoError(t, err)
	})

	t.Run("rating out of range", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		_, err := env.uc.Survey.SaveFeedback(ctx, sessionID.String(), usecase.FeedbackInput{Rating: rating(6)})
		gt.Error(t, err).Is(model.ErrInvalidRating)
		gt.Value(t, errutil.StatusCode(err)).Equal(400)
	})

	t.Run("submission from another session", func(t *testing.T) {
		env := newTestEnv(t)
		first := env.createSession(t, "A")
		second := env.createSession(t, "B")
		result, err := env.uc.Survey.Submit(ctx, first.String(), bestAnswers(), "")
		gt.NoError(t, err).Required()

		_, err = env.uc.Survey.SaveFeedback(ctx, second.String(), usecase.FeedbackInput{SubmissionID: result.ID.String()})
		gt.Error(t, err).Is(usecase.ErrSubmissionMismatch)
	})

	t.Run("unknown submission", func(t *testing.T) {
		env := newTestEnv(t)
		sessionID := env.createSession(t, "Campagne")
		_, err := env.uc.Survey.SaveFeedback(ctx, sessionID.String(), usecase.FeedbackInput{SubmissionID: "missing"})
		gt.Error(t, err).Is(usecase.ErrSubmissionNotFound)
	})
}
