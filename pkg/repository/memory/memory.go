package memory

import (
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
)

// ErrNotFound is wrapped when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	session    *sessionRepository
	submission *submissionRepository
	feedback   *feedbackRepository
	auditLog   *auditLogRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		session:    newSessionRepository(),
		submission: newSubmissionRepository(),
		feedback:   newFeedbackRepository(),
		auditLog:   newAuditLogRepository(),
	}
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Submission() interfaces.SubmissionRepository {
	return m.submission
}

func (m *Memory) Feedback() interfaces.FeedbackRepository {
	return m.feedback
}

func (m *Memory) AuditLog() interfaces.AuditLogRepository {
	return m.auditLog
}

func (m *Memory) Close() error {
	return nil
}
