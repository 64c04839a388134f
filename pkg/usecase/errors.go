package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrSessionNotFound    = goerr.New("session not found", goerr.T(errutil.TagNotFound))
	ErrSubmissionNotFound = goerr.New("submission not found", goerr.T(errutil.TagNotFound))

	// Status errors
	ErrSessionArchived = goerr.New("session is archived", goerr.T(errutil.TagConflict))

	// Input errors
	ErrSessionIDRequired  = goerr.New("sessionId is required", goerr.T(errutil.TagValidation))
	ErrAnswersRequired    = goerr.New("body must contain an \"answers\" object", goerr.T(errutil.TagValidation))
	ErrSubmissionMismatch = goerr.New("submission does not belong to the session", goerr.T(errutil.TagValidation))

	// Access control errors
	ErrInvalidCredentials = goerr.New("invalid credentials", goerr.T(errutil.TagUnauthorized))
	ErrInvalidToken       = goerr.New("invalid token", goerr.T(errutil.TagUnauthorized))
)

// Context keys for error values
const (
	SessionIDKey    = "session_id"
	SubmissionIDKey = "submission_id"
)
