package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
)

func TestEuroSCOREII_LowRiskYoungElective(t *testing.T) {
	result := EuroSCOREII(EuroSCOREIIInput{
		Age:            40,
		Sex:            domain.SEX_MALE,
		EGFR:           90,
		LVEF:           60,
		SurgeryUrgency: SURGERY_ELECTIVE,
	})

	// log-odds = -5.324537 + 1.141 -> ~1.5% predicted mortality
	assert.Equal(t, "low", result.RiskCategory)
	require.NotNil(t, result.RiskPercentage)
	assert.InDelta(t, 1.5, *result.RiskPercentage, 0.05)
	assert.Equal(t, 1.5, result.ScoreValue)
	assert.Nil(t, result.MaxScore)

	require.Len(t, result.Components, 1)
	assert.Equal(t, "Age", result.Components[0].Name)
	assert.Equal(t, 1.141, result.Components[0].Value)
}

func TestEuroSCOREII_IntermediateRisk(t *testing.T) {
	result := EuroSCOREII(EuroSCOREIIInput{
		Age:            70,
		Sex:            domain.SEX_MALE,
		EGFR:           70,
		LVEF:           60,
		SurgeryUrgency: SURGERY_ELECTIVE,
	})

	// age 1.996 + renal 0.2 -> ~4.2%
	assert.Equal(t, "intermediate", result.RiskCategory)
	assert.InDelta(t, 4.2, *result.RiskPercentage, 0.1)
	assert.Contains(t, result.Recommendation, "Heart Team")
}

func TestEuroSCOREII_HighRiskSalvage(t *testing.T) {
	result := EuroSCOREII(EuroSCOREIIInput{
		Age:                80,
		Sex:                domain.SEX_FEMALE,
		EGFR:               25,
		LVEF:               60,
		CriticalPreopState: true,
		SurgeryUrgency:     SURGERY_SALVAGE,
	})

	assert.Equal(t, "high", result.RiskCategory)
	assert.Greater(t, *result.RiskPercentage, 8.0)
	assert.Contains(t, result.Recommendation, "transcatheter")

	female, ok := result.Component("Female sex")
	require.True(t, ok)
	assert.Equal(t, 0.22, female)

	urgency, ok := result.Component("Surgery urgency")
	require.True(t, ok)
	assert.Equal(t, 1.5, urgency)
}

func TestEuroSCOREII_RenalBands(t *testing.T) {
	base := EuroSCOREIIInput{Age: 60, Sex: domain.SEX_MALE, LVEF: 60, SurgeryUrgency: SURGERY_ELECTIVE}

	tests := []struct {
		egfr   float64
		weight float64
	}{
		{25, 1.0},
		{45, 0.5},
		{75, 0.2},
	}
	for _, tt := range tests {
		in := base
		in.EGFR = tt.egfr
		weight, ok := EuroSCOREII(in).Component("Renal impairment")
		require.True(t, ok, "eGFR %.0f", tt.egfr)
		assert.Equal(t, tt.weight, weight)
	}

	normal := base
	normal.EGFR = 90
	_, ok := EuroSCOREII(normal).Component("Renal impairment")
	assert.False(t, ok)
}

func TestEuroSCOREII_LVEFBands(t *testing.T) {
	base := EuroSCOREIIInput{Age: 60, Sex: domain.SEX_MALE, EGFR: 90, SurgeryUrgency: SURGERY_ELECTIVE}

	tests := []struct {
		lvef float64
		name string
	}{
		{18, "LVEF < 21%"},
		{25, "LVEF 21-30%"},
		{45, "LVEF 31-50%"},
	}
	for _, tt := range tests {
		in := base
		in.LVEF = tt.lvef
		_, ok := EuroSCOREII(in).Component(tt.name)
		assert.True(t, ok, "LVEF %.0f", tt.lvef)
	}
}

func TestEuroSCOREII_VHDCitation(t *testing.T) {
	result := EuroSCOREII(EuroSCOREIIInput{Age: 65, Sex: domain.SEX_MALE, EGFR: 90, LVEF: 55})
	require.NotNil(t, result.Citation)
	assert.Equal(t, "esc_vhd_2021", result.Citation.GuidelineKey)
	assert.Contains(t, result.Citation.Studies, "Nashef SA et al. Eur J Cardiothorac Surg 2012")
}
