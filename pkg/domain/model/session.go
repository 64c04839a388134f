package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

const (
	MaxSessionTitleLength  = 160
	MaxRespondentJobLength = 120
)

// Validation errors
var (
	ErrTitleRequired = goerr.New("session title is required")
	ErrTitleTooLong  = goerr.New("session title is too long")
	ErrInvalidTarget = goerr.New("target count must not be negative")
	ErrJobTooLong    = goerr.New("respondent job is too long")
	ErrInvalidRating = goerr.New("rating must be between 1 and 5")
)

// SessionID identifies a survey campaign.
type SessionID string

// NewSessionID returns a random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (x SessionID) String() string { return string(x) }

// Session is a survey campaign with a shareable link.
type Session struct {
	ID          SessionID
	Title       string
	Description string
	TargetCount int
	IsArchived  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSession builds a validated, unsaved session.
func NewSession(title, description string, targetCount int, now time.Time) (*Session, error) {
	s := &Session{
		ID:          NewSessionID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		TargetCount: targetCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session fields.
func (s *Session) Validate() error {
	if s.Title == "" {
		return goerr.Wrap(ErrTitleRequired, "invalid session", goerr.T(errutil.TagValidation))
	}
	if utf8.RuneCountInString(s.Title) > MaxSessionTitleLength {
		return goerr.Wrap(ErrTitleTooLong, "invalid session",
			goerr.V("length", utf8.RuneCountInString(s.Title)),
			goerr.V("max", MaxSessionTitleLength),
			goerr.T(errutil.TagValidation))
	}
	if s.TargetCount < 0 {
		return goerr.Wrap(ErrInvalidTarget, "invalid session",
			goerr.V("target_count", s.TargetCount),
			goerr.T(errutil.TagValidation))
	}
	return nil
}
