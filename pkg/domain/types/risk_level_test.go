package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/domain/types"
)

func TestRiskLevelFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  types.RiskLevel
	}{
		{0, types.RiskLevelLow},
		{39, types.RiskLevelLow},
		{40, types.RiskLevelMedium},
		{69, types.RiskLevelMedium},
		{70, types.RiskLevelHigh},
		{100, types.RiskLevelHigh},
	}

	for _, tt := range tests {
		gt.Value(t, types.RiskLevelFromScore(tt.score)).Equal(tt.want)
	}
}

func TestRiskLevel_Interpretation(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range types.AllRiskLevels() {
		text := level.Interpretation()
		gt.String(t, text).NotEqual("")
		gt.Bool(t, seen[text]).False()
		seen[text] = true
	}
	gt.String(t, types.RiskLevelHigh.Interpretation()).Contains("IAwashing")
}

func TestParseRiskLevel(t *testing.T) {
	level, err := types.ParseRiskLevel("Élevé")
	gt.NoError(t, err)
	gt.Value(t, level).Equal(types.RiskLevelHigh)

	_, err = types.ParseRiskLevel("High")
	gt.Value(t, err).NotNil()
}
