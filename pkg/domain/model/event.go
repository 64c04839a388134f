package model

import "time"

// Dashboard event names
const (
	EventSessionUpdate = "session:update"
	EventSessionStats  = "session:stats"
)

// SubmissionSummary is the part of a submission pushed to dashboards.
type SubmissionSummary struct {
	ID             SubmissionID `json:"id"`
	Score          int          `json:"score"`
	Level          string       `json:"level"`
	Interpretation string       `json:"interpretation"`
	Job            string       `json:"job,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// DashboardEvent is a message pushed to admin dashboards subscribed to a
// session.
type DashboardEvent struct {
	Event      string             `json:"event"`
	SessionID  SessionID          `json:"sessionId"`
	Submission *SubmissionSummary `json:"submission,omitempty"`
	Stats      *SessionStats      `json:"stats,omitempty"`
}

// NewSessionUpdateEvent builds the event emitted after a submission.
func NewSessionUpdateEvent(s *Submission) *DashboardEvent {
	return &DashboardEvent{
		Event:     EventSessionUpdate,
		SessionID: s.SessionID,
		Submission: &SubmissionSummary{
			ID:             s.ID,
			Score:          s.Score,
			Level:          s.Level.String(),
			Interpretation: s.Interpretation(),
			Job:            s.RespondentJob,
			CreatedAt:      s.CreatedAt,
		},
	}
}

// NewSessionStatsEvent builds a periodic stats event.
func NewSessionStatsEvent(stats *SessionStats) *DashboardEvent {
	return &DashboardEvent{
		Event:     EventSessionStats,
		SessionID: stats.SessionID,
		Stats:     stats,
	}
}
