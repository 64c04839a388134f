package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/types"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

// SubmissionID identifies a scored questionnaire response.
type SubmissionID string

// NewSubmissionID returns a random submission ID.
func NewSubmissionID() SubmissionID {
	return SubmissionID(uuid.NewString())
}

func (x SubmissionID) String() string { return string(x) }

// Submission is a scored response. It is never modified after creation.
type Submission struct {
	ID            SubmissionID
	SessionID     SessionID
	RespondentJob string
	Answers       Answers
	Score         int
	Level         types.RiskLevel
	CreatedAt     time.Time
}

// NewSubmission scores answers and builds an unsaved submission.
func NewSubmission(sessionID SessionID, answers Answers, job string, now time.Time) (*Submission, error) {
	job = strings.TrimSpace(job)
	if utf8.RuneCountInString(job) > MaxRespondentJobLength {
		return nil, goerr.Wrap(ErrJobTooLong, "invalid submission",
			goerr.V("length", utf8.RuneCountInString(job)),
			goerr.V("max", MaxRespondentJobLength),
			goerr.T(errutil.TagValidation))
	}

	result := Assess(answers)
	return &Submission{
		ID:            NewSubmissionID(),
		SessionID:     sessionID,
		RespondentJob: job,
		Answers:       answers.Clone(),
		Score:         result.Score,
		Level:         result.Level,
		CreatedAt:     now,
	}, nil
}

// Interpretation returns the fixed sentence for the submission's level.
func (s *Submission) Interpretation() string {
	return s.Level.Interpretation()
}
