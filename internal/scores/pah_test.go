package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iptr(v int) *int { return &v }

func TestPAHBaselineRisk_LowRiskProfile(t *testing.T) {
	result := PAHBaselineRisk(PAHBaselineInput{
		WHOFunctionalClass: 2,
		SixMinWalkDistance: iptr(480),
		NTProBNP:           floatPtr(150),
		RAArea:             floatPtr(15),
		CardiacIndex:       floatPtr(2.8),
	})

	assert.Equal(t, 1.0, result.ScoreValue)
	assert.Equal(t, "low", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "dual oral combination")

	// Score is an average, never a sum.
	assert.GreaterOrEqual(t, result.ScoreValue, 1.0)
	assert.LessOrEqual(t, result.ScoreValue, 3.0)
	assert.NotEqual(t, result.ComponentSum(), result.ScoreValue)
}

func TestPAHBaselineRisk_HighRiskProfile(t *testing.T) {
	result := PAHBaselineRisk(PAHBaselineInput{
		WHOFunctionalClass:  4,
		SixMinWalkDistance:  iptr(120),
		NTProBNP:            floatPtr(2400),
		PericardialEffusion: "moderate",
		RVFailureSigns:      true,
		SymptomProgression:  "rapid",
		Syncope:             "repeated",
	})

	assert.Equal(t, "high", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "prostacyclin")
	require.NotNil(t, result.Citation)
	assert.Equal(t, "esc_ph_2022", result.Citation.GuidelineKey)
}

func TestPAHBaselineRisk_DefaultParameters(t *testing.T) {
	// With only the clinical defaults (no effusion, stable symptoms, no
	// syncope, no RV failure) every scored parameter is low risk.
	result := PAHBaselineRisk(PAHBaselineInput{WHOFunctionalClass: 1})
	assert.Equal(t, "low", result.RiskCategory)

	// An invalid WHO-FC leaves only the default parameters.
	result = PAHBaselineRisk(PAHBaselineInput{})
	assert.GreaterOrEqual(t, result.ScoreValue, 1.0)
	assert.LessOrEqual(t, result.ScoreValue, 3.0)
}

func TestPAHBaselineRisk_ScoreAlwaysWithinStrata(t *testing.T) {
	inputs := []PAHBaselineInput{
		{},
		{WHOFunctionalClass: 4, RVFailureSigns: true, SymptomProgression: "rapid", Syncope: "repeated", PericardialEffusion: "large"},
		{WHOFunctionalClass: 3, BNP: floatPtr(400)},
		{WHOFunctionalClass: 2, SvO2: floatPtr(70), SVI: floatPtr(40), RAP: floatPtr(5), TAPSESPAPRatio: floatPtr(0.4)},
	}
	for _, in := range inputs {
		result := PAHBaselineRisk(in)
		assert.GreaterOrEqual(t, result.ScoreValue, 1.0)
		assert.LessOrEqual(t, result.ScoreValue, 3.0)
	}
}

func TestPAHFollowUpRisk_FourStrata(t *testing.T) {
	low := PAHFollowUpRisk(PAHFollowUpInput{
		WHOFunctionalClass: 2,
		SixMinWalkDistance: iptr(480),
		NTProBNP:           floatPtr(200),
	})
	assert.Equal(t, 1.0, low.ScoreValue)
	assert.Equal(t, "low", low.RiskCategory)

	high := PAHFollowUpRisk(PAHFollowUpInput{
		WHOFunctionalClass: 4,
		SixMinWalkDistance: iptr(100),
		NTProBNP:           floatPtr(3000),
	})
	assert.Equal(t, 4.0, high.ScoreValue)
	assert.Equal(t, "high", high.RiskCategory)
	assert.Contains(t, high.Recommendation, "Urgent")
}

func TestPAHFollowUpRisk_NoParametersReturnsDefault(t *testing.T) {
	// Default average 2.5 rounds up to stratum 3 (intermediate-high).
	result := PAHFollowUpRisk(PAHFollowUpInput{})
	assert.Equal(t, 3.0, result.ScoreValue)
	assert.Equal(t, "intermediate_high", result.RiskCategory)
	assert.Contains(t, result.Interpretation, "REVEAL")
}

func TestPAHFollowUpRisk_IntermediateStrata(t *testing.T) {
	// WHO-FC 3 (3) + 6MWD 350 (2) + NT-proBNP 500 (2) -> avg 2.33 -> stratum 2.
	result := PAHFollowUpRisk(PAHFollowUpInput{
		WHOFunctionalClass: 3,
		SixMinWalkDistance: iptr(350),
		NTProBNP:           floatPtr(500),
	})
	assert.Equal(t, 2.0, result.ScoreValue)
	assert.Equal(t, "intermediate_low", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "selexipag")
}

func TestClassifyPHHemodynamics(t *testing.T) {
	tests := []struct {
		name           string
		in             PHHemodynamicsInput
		classification string
		hasPH          bool
	}{
		{"no PH", PHHemodynamicsInput{MeanPAP: 18, PAWP: 10, PVR: 1.5}, "No PH", false},
		{"pre-capillary", PHHemodynamicsInput{MeanPAP: 45, PAWP: 10, PVR: 6}, "Pre-capillary PH", true},
		{"isolated post-capillary", PHHemodynamicsInput{MeanPAP: 30, PAWP: 20, PVR: 1.8}, "Isolated post-capillary PH (IpcPH)", true},
		{"combined", PHHemodynamicsInput{MeanPAP: 40, PAWP: 20, PVR: 4}, "Combined post- and pre-capillary PH (CpcPH)", true},
		{"indeterminate", PHHemodynamicsInput{MeanPAP: 25, PAWP: 12, PVR: 1.5}, "Indeterminate", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyPHHemodynamics(tt.in)
			assert.Equal(t, tt.classification, result.Classification)
			assert.Equal(t, tt.hasPH, result.HasPH)
			assert.NotEmpty(t, result.NextSteps)
		})
	}
}

func TestClassifyPHHemodynamics_TranspulmonaryGradient(t *testing.T) {
	result := ClassifyPHHemodynamics(PHHemodynamicsInput{MeanPAP: 45, PAWP: 12, PVR: 5})
	assert.Equal(t, 33.0, result.TranspulmonaryGradient)
	assert.Contains(t, result.SuggestedGroup, "Group 1")
}
