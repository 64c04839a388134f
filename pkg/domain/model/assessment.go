package model

import (
	"math"

	"github.com/yonnovia/iawashing/pkg/domain/types"
)

// Weights of each sub-index in the 100 point deduction.
const (
	GovernanceWeight     = 25.0
	UseCaseWeight        = 30.0
	TrustWeight          = 20.0
	EthicsSecurityWeight = 25.0
)

// Flag penalties added on top of the weighted deduction.
const (
	CommunicationFlagPoints = 15
	StalledPilotFlagPoints  = 10
)

const stalledPilotAnswer = ">12 mois"

// ScoreBreakdown exposes the intermediate values of a score.
type ScoreBreakdown struct {
	Governance     float64 `json:"governance"`
	UseCase        float64 `json:"useCase"`
	Trust          float64 `json:"trust"`
	EthicsSecurity float64 `json:"ethicsSecurity"`
	Weighted       float64 `json:"weighted"`
	Flags          int     `json:"flags"`
}

// Assessment is the result of scoring an answer set.
type Assessment struct {
	Score          int             `json:"score"`
	Level          types.RiskLevel `json:"level"`
	Interpretation string          `json:"interpretation"`
	Breakdown      ScoreBreakdown  `json:"breakdown"`
}

// Assess scores an answer set. It never fails: unknown or missing answers
// contribute nothing to the maturity indices.
func Assess(answers Answers) *Assessment {
	q1 := triState(answers.Get(types.Q1))
	q2 := binary(answers.Get(types.Q2))
	q3raw := answers.Get(types.Q3)
	q3 := ordinal(q3raw)
	q4 := partial(answers.Get(types.Q4))
	q5 := transparency(answers.Get(types.Q5))
	q6 := partial(answers.Get(types.Q6))
	q7 := binary(answers.Get(types.Q7))
	q8 := partial(answers.Get(types.Q8))
	q9 := binary(answers.Get(types.Q9))
	q10 := answers.Get(types.Q10)

	b := ScoreBreakdown{
		Governance:     (q1 + q2) / 2,
		UseCase:        (q3 + q4) / 2,
		Trust:          (q5 + q6) / 2,
		EthicsSecurity: (q7 + q8) / 2,
	}
	b.Weighted = b.Governance*GovernanceWeight +
		b.UseCase*UseCaseWeight +
		b.Trust*TrustWeight +
		b.EthicsSecurity*EthicsSecurityWeight

	// Communication outpaces real deployment.
	if q9 == 1 && (q3raw == "0" || q3raw == "1-2") {
		b.Flags += CommunicationFlagPoints
	}
	if q10 == stalledPilotAnswer {
		b.Flags += StalledPilotFlagPoints
	}

	raw := 100 - b.Weighted + float64(b.Flags)
	score := int(math.Floor(clamp(raw, 0, 100) + 0.5))
	level := types.RiskLevelFromScore(score)

	return &Assessment{
		Score:          score,
		Level:          level,
		Interpretation: level.Interpretation(),
		Breakdown:      b,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func triState(v string) float64 {
	switch v {
	case "Oui":
		return 1
	case "En cours":
		return 0.5
	default:
		return 0
	}
}

func binary(v string) float64 {
	if v == "Oui" {
		return 1
	}
	return 0
}

func ordinal(v string) float64 {
	switch v {
	case "3+":
		return 1
	case "1-2":
		return 0.5
	default:
		return 0
	}
}

func partial(v string) float64 {
	switch v {
	case "Oui":
		return 1
	case "Partiel":
		return 0.5
	default:
		return 0
	}
}

func transparency(v string) float64 {
	switch v {
	case "Oui":
		return 1
	case "Je ne sais pas":
		return 0.25
	default:
		return 0
	}
}
