package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPESI_RiskClasses(t *testing.T) {
	tests := []struct {
		name     string
		in       PESIInput
		score    float64
		category string
	}{
		{
			name:     "young healthy class I",
			in:       PESIInput{Age: 40, PulseRate: 80, SystolicBP: 120, RespiratoryRate: 16, Temperature: 37, O2Saturation: 98},
			score:    40,
			category: "very_low",
		},
		{
			name: "elderly male with cancer class IV",
			in: PESIInput{
				Age: 78, Male: true, Cancer: true,
				PulseRate: 90, SystolicBP: 130, RespiratoryRate: 18, Temperature: 36.8, O2Saturation: 95,
			},
			score:    118,
			category: "high",
		},
		{
			name: "male with cancer at the class IV lower band",
			in: PESIInput{
				Age: 70, Male: true, Cancer: true,
				PulseRate: 80, SystolicBP: 120, RespiratoryRate: 16, Temperature: 37.0, O2Saturation: 98,
			},
			score:    110,
			category: "high",
		},
		{
			name: "shock and altered mental status class V",
			in: PESIInput{
				Age: 70, Male: true, AlteredMentalStatus: true,
				PulseRate: 120, SystolicBP: 85, RespiratoryRate: 32, Temperature: 35.5, O2Saturation: 85,
			},
			score:    250,
			category: "very_high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PESI(tt.in)
			assert.Equal(t, tt.score, result.ScoreValue)
			assert.Equal(t, tt.category, result.RiskCategory)
			assert.Equal(t, result.ComponentSum(), result.ScoreValue)
			assert.Nil(t, result.MaxScore)
		})
	}
}

func TestPESI_AgeAlwaysFirstComponent(t *testing.T) {
	result := PESI(PESIInput{Age: 55, PulseRate: 80, SystolicBP: 120, RespiratoryRate: 16, Temperature: 37, O2Saturation: 98})
	require.NotEmpty(t, result.Components)
	assert.Equal(t, "age", result.Components[0].Name)
	assert.Equal(t, 55.0, result.Components[0].Value)
}

func TestSPESI_ZeroIsLowRisk(t *testing.T) {
	result := SPESI(SPESIInput{})
	assert.Equal(t, 0.0, result.ScoreValue)
	assert.Equal(t, "low", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "outpatient")
}

func TestSPESI_AnyPointIsHighRisk(t *testing.T) {
	result := SPESI(SPESIInput{Cancer: true})
	assert.Equal(t, 1.0, result.ScoreValue)
	assert.Equal(t, "high", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "admission")
}

func TestGeneva_SimplifiedVersusOriginalWeights(t *testing.T) {
	in := GenevaInput{
		PreviousPEDVT: true,
		HeartRate:     100,
		DVTSigns:      true,
		AgeOver65:     true,
	}

	in.Simplified = true
	simplified := Geneva(in)
	assert.Equal(t, 5.0, simplified.ScoreValue) // 1 + 2 + 1 + 1
	assert.Equal(t, "high", simplified.RiskCategory)

	in.Simplified = false
	original := Geneva(in)
	assert.Equal(t, 13.0, original.ScoreValue) // 3 + 5 + 4 + 1
	assert.Equal(t, "high", original.RiskCategory)
	assert.Contains(t, original.Interpretation, "CTPA")
}

func TestGeneva_HeartRateBands(t *testing.T) {
	low := Geneva(GenevaInput{HeartRate: 70, Simplified: true})
	assert.Equal(t, 0.0, low.ScoreValue)

	mid := Geneva(GenevaInput{HeartRate: 80, Simplified: true})
	assert.Equal(t, 1.0, mid.ScoreValue)
	_, ok := mid.Component("heart_rate_75_94")
	assert.True(t, ok)

	high := Geneva(GenevaInput{HeartRate: 95, Simplified: true})
	assert.Equal(t, 2.0, high.ScoreValue)
	_, ok = high.Component("heart_rate_95_plus")
	assert.True(t, ok)
}

func TestGeneva_TwoLevelCut(t *testing.T) {
	unlikely := Geneva(GenevaInput{HeartRate: 80, Hemoptysis: true, Simplified: true})
	assert.Contains(t, unlikely.Recommendation, "D-dimer")

	likely := Geneva(GenevaInput{HeartRate: 95, Hemoptysis: true, Simplified: true})
	assert.Contains(t, likely.Recommendation, "CTPA")
}

func TestWellsPE_ThreeTiers(t *testing.T) {
	low := WellsPE(WellsPEInput{Hemoptysis: true})
	assert.Equal(t, 1.0, low.ScoreValue)
	assert.Equal(t, "low", low.RiskCategory)

	moderate := WellsPE(WellsPEInput{ClinicalSignsDVT: true, Hemoptysis: true})
	assert.Equal(t, 4.0, moderate.ScoreValue)
	assert.Equal(t, "moderate", moderate.RiskCategory)

	justOver := WellsPE(WellsPEInput{ClinicalSignsDVT: true, HeartRateAbove100: true})
	assert.Equal(t, 4.5, justOver.ScoreValue)
	assert.Equal(t, "high", justOver.RiskCategory)

	high := WellsPE(WellsPEInput{
		ClinicalSignsDVT:      true,
		PEMostLikelyDiagnosis: true,
		HeartRateAbove100:     true,
	})
	assert.Equal(t, 7.5, high.ScoreValue)
	assert.Equal(t, "high", high.RiskCategory)
	assert.Contains(t, high.Recommendation, "CTPA")
	assert.Nil(t, high.Citation)
}

func TestAgeAdjustedDDimer(t *testing.T) {
	tests := []struct {
		age      int
		cutoff   int
		applied  bool
		expected int
	}{
		{30, 500, false, 500},
		{50, 500, false, 500},
		{51, 500, true, 510},
		{60, 500, true, 600},
		{80, 500, true, 800},
	}

	for _, tt := range tests {
		result := AgeAdjustedDDimer(tt.age, tt.cutoff)
		assert.Equal(t, tt.applied, result.AdjustmentApplied, "age %d", tt.age)
		assert.Equal(t, tt.expected, result.AdjustedCutoff, "age %d", tt.age)
		// Both cutoffs are always reported.
		assert.Equal(t, tt.cutoff, result.StandardCutoff)
	}
}

func TestAgeAdjustedDDimer_DefaultBaseline(t *testing.T) {
	result := AgeAdjustedDDimer(40, 0)
	assert.Equal(t, 500, result.StandardCutoff)
	assert.Equal(t, 500, result.AdjustedCutoff)
	assert.False(t, result.AdjustmentApplied)
}
