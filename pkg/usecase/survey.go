package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/utils/async"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

type SurveyUseCase struct {
	repo          interfaces.Repository
	questionnaire *model.Questionnaire
	publisher     interfaces.EventPublisher
	metrics       interfaces.MetricsRecorder
	now           func() time.Time
}

// SubmitResult is returned to the respondent after scoring.
type SubmitResult struct {
	ID             model.SubmissionID `json:"id"`
	Score          int                `json:"score"`
	Level          string             `json:"level"`
	Interpretation string             `json:"interpretation"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// FeedbackInput is the optional rating a respondent leaves after seeing the
// result.
type FeedbackInput struct {
	SubmissionID string         `json:"submissionId"`
	Rating       *int           `json:"rating"`
	Comment      string         `json:"comment"`
	Job          string         `json:"job"`
	Score        *int           `json:"score"`
	Answers      map[string]any `json:"answers"`
}

// Questions returns the questionnaire shown to respondents.
func (uc *SurveyUseCase) Questions() *model.Questionnaire {
	return uc.questionnaire
}

// openSession returns the session if it exists and accepts submissions.
func openSession(ctx context.Context, repo interfaces.Repository, rawID string) (*model.Session, error) {
	session, err := findSession(ctx, repo, rawID)
	if err != nil {
		return nil, err
	}
	if session.IsArchived {
		return nil, goerr.Wrap(ErrSessionArchived, "survey is closed", goerr.V(SessionIDKey, session.ID))
	}
	return session, nil
}

// Submit scores the answers and stores the submission. Metrics, audit log
// and dashboard push are best effort and never fail the submission. The
// push runs in the background.
func (uc *SurveyUseCase) Submit(ctx context.Context, sessionID string, answers map[string]any, job string) (*SubmitResult, error) {
	session, err := openSession(ctx, uc.repo, sessionID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		return nil, goerr.Wrap(ErrAnswersRequired, "invalid submission", goerr.V(SessionIDKey, session.ID))
	}

	submission, err := model.NewSubmission(session.ID, model.NewAnswers(answers), job, uc.now())
	if err != nil {
		return nil, err
	}

	saved, err := uc.repo.Submission().Create(ctx, submission)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save submission", goerr.V(SessionIDKey, session.ID))
	}

	logger := logging.From(ctx)
	logger.Info("submission scored",
		"session_id", saved.SessionID,
		"submission_id", saved.ID,
		"score", saved.Score,
		"level", saved.Level,
		"answer_keys", len(saved.Answers))

	if uc.metrics != nil {
		uc.metrics.RecordSubmission(saved.Level.String(), saved.Score)
	}

	auditLog := model.NewAuditLog(auth.Actor(ctx), model.AuditActionSubmissionCreated, map[string]any{
		"sessionId":    saved.SessionID.String(),
		"submissionId": saved.ID.String(),
		"score":        saved.Score,
		"level":        saved.Level.String(),
	}, saved.CreatedAt)
	if err := uc.repo.AuditLog().Create(ctx, auditLog); err != nil {
		_ = errutil.Handle(ctx, err, "failed to write audit log")
	}

	if uc.publisher != nil {
		event := model.NewSessionUpdateEvent(saved)
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := uc.publisher.Publish(ctx, event); err != nil {
				return goerr.Wrap(err, "failed to publish session update", goerr.V(SessionIDKey, event.SessionID))
			}
			return nil
		})
	}

	return &SubmitResult{
		ID:             saved.ID,
		Score:          saved.Score,
		Level:          saved.Level.String(),
		Interpretation: saved.Interpretation(),
		CreatedAt:      saved.CreatedAt,
	}, nil
}

// SaveFeedback stores a respondent's feedback. When a submission ID is given
// it must belong to the same session.
func (uc *SurveyUseCase) SaveFeedback(ctx context.Context, sessionID string, input FeedbackInput) (*model.Feedback, error) {
	session, err := openSession(ctx, uc.repo, sessionID)
	if err != nil {
		return nil, err
	}

	submissionID := model.SubmissionID(strings.TrimSpace(input.SubmissionID))
	if submissionID != "" {
		sub, err := uc.repo.Submission().Get(ctx, submissionID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrSubmissionNotFound, "invalid feedback",
					goerr.V(SubmissionIDKey, submissionID))
			}
			return nil, goerr.Wrap(err, "failed to get submission", goerr.V(SubmissionIDKey, submissionID))
		}
		if sub.SessionID != session.ID {
			return nil, goerr.Wrap(ErrSubmissionMismatch, "invalid feedback",
				goerr.V(SessionIDKey, session.ID),
				goerr.V(SubmissionIDKey, submissionID))
		}
	}

	feedback, err := model.NewFeedback(session.ID, submissionID, input.Rating, input.Comment, input.Job, uc.now())
	if err != nil {
		return nil, err
	}
	feedback.Score = input.Score
	if input.Answers != nil {
		feedback.Answers = model.NewAnswers(input.Answers)
	}

	saved, err := uc.repo.Feedback().Create(ctx, feedback)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save feedback", goerr.V(SessionIDKey, session.ID))
	}
	return saved, nil
}
