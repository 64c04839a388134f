package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackID identifies a feedback entry.
type FeedbackID string

// NewFeedbackID returns a random feedback ID.
func NewFeedbackID() FeedbackID {
	return FeedbackID(uuid.NewString())
}

func (x FeedbackID) String() string { return string(x) }

// Feedback is the optional rating and comment a respondent leaves after
// seeing their result.
type Feedback struct {
	ID           FeedbackID
	SessionID    SessionID
	SubmissionID SubmissionID
	Rating       *int
	Comment      string
	Job          string
	Score        *int
	Answers      Answers
	CreatedAt    time.Time
}

// Validate checks the rating range.
func (f *Feedback) Validate() error {
	if f.Rating != nil && (*f.Rating < MinRating || *f.Rating > MaxRating) {
		return goerr.Wrap(ErrInvalidRating, "invalid feedback",
			goerr.V("rating", *f.Rating),
			goerr.T(errutil.TagValidation))
	}
	return nil
}

// NewFeedback builds a validated, unsaved feedback entry.
func NewFeedback(sessionID SessionID, submissionID SubmissionID, rating *int, comment, job string, now time.Time) (*Feedback, error) {
	f := &Feedback{
		ID:           NewFeedbackID(),
		SessionID:    sessionID,
		SubmissionID: submissionID,
		Rating:       rating,
		Comment:      strings.TrimSpace(comment),
		Job:          strings.TrimSpace(job),
		CreatedAt:    now,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
