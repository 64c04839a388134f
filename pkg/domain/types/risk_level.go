package types

import "fmt"

// RiskLevel is the three-level IAwashing classification derived from a score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Faible"
	RiskLevelMedium RiskLevel = "Moyen"
	RiskLevelHigh   RiskLevel = "Élevé"
)

// Score thresholds. A score below LowThreshold is Faible, below
// HighThreshold is Moyen, anything else is Élevé.
const (
	LowThreshold  = 40
	HighThreshold = 70
)

// AllRiskLevels returns the levels ordered from lowest to highest risk.
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
	}
}

// RiskLevelFromScore classifies an integer score.
func RiskLevelFromScore(score int) RiskLevel {
	switch {
	case score < LowThreshold:
		return RiskLevelLow
	case score < HighThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// IsValid checks if the level is one of the known levels
func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// Interpretation returns the human-readable sentence shown to respondents.
func (l RiskLevel) Interpretation() string {
	switch l {
	case RiskLevelMedium:
		return "Votre démarche IA est prometteuse mais manque de concrétisation ou de transparence."
	case RiskLevelHigh:
		return "Votre organisation semble communiquer davantage qu’elle ne déploie — attention au risque d’IAwashing."
	default:
		return "Votre gouvernance IA semble robuste et alignée sur vos usages."
	}
}

// String returns the string representation of the level
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	level := RiskLevel(s)
	if !level.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return level, nil
}
