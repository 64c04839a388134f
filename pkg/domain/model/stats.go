package model

import (
	"math"

	"github.com/yonnovia/iawashing/pkg/domain/types"
)

// SessionStats aggregates the submissions of a session by level.
type SessionStats struct {
	SessionID    SessionID `json:"sessionId"`
	Total        int       `json:"total"`
	Faible       int       `json:"faible"`
	Moyen        int       `json:"moyen"`
	Eleve        int       `json:"eleve"`
	AverageScore float64   `json:"averageScore"`
}

// ComputeSessionStats aggregates submissions. The average is rounded to
// one decimal place.
func ComputeSessionStats(sessionID SessionID, submissions []*Submission) *SessionStats {
	stats := &SessionStats{SessionID: sessionID}
	sum := 0
	for _, s := range submissions {
		stats.Total++
		sum += s.Score
		switch s.Level {
		case types.RiskLevelLow:
			stats.Faible++
		case types.RiskLevelMedium:
			stats.Moyen++
		case types.RiskLevelHigh:
			stats.Eleve++
		}
	}
	if stats.Total > 0 {
		stats.AverageScore = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	}
	return stats
}
