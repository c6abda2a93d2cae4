package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLMNARisk_FactorCounts(t *testing.T) {
	tests := []struct {
		name string
		in   LMNAInput
		risk float64
	}{
		{"no factors", LMNAInput{LVEF: 60}, 3.0},
		{"one factor", LMNAInput{LVEF: 45}, 7.0},
		{"two factors", LMNAInput{LVEF: 45, NSVT: true}, 15.0},
		{"three factors", LMNAInput{LVEF: 45, NSVT: true, Male: true}, 25.0},
		{"four factors", LMNAInput{LVEF: 45, NSVT: true, Male: true, AVConductionDelay: true}, 35.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LMNARisk(tt.in)
			assert.Equal(t, tt.risk, result.Risk5YearPercent)
		})
	}
}

func TestLMNARisk_ICDThresholds(t *testing.T) {
	high := LMNARisk(LMNAInput{LVEF: 45, NSVT: true})
	assert.Equal(t, "Class IIa", high.ICDRecommendation)

	borderline := LMNARisk(LMNAInput{LVEF: 45})
	assert.Equal(t, "Class IIb", borderline.ICDRecommendation)

	low := LMNARisk(LMNAInput{LVEF: 60})
	assert.Equal(t, "Not routinely indicated", low.ICDRecommendation)

	require.NotNil(t, high.Citation)
	assert.Equal(t, "esc_va_scd_2022", high.Citation.GuidelineKey)
	assert.Contains(t, high.Note, "preserved LVEF")
}

func TestLQTSRisk_SecondaryPrevention(t *testing.T) {
	result := LQTSRisk(LQTSInput{
		QTc:                520,
		Genotype:           "LQT3",
		Male:               true,
		Age:                30,
		PriorCardiacArrest: true,
	})

	assert.Equal(t, "very_high", result.RiskCategory)
	// QTc 3 + LQT3 2 + arrest 5 = 10 (no sex-age point for adult male)
	assert.Equal(t, 10, result.RiskPoints)
	assert.Contains(t, result.Management[0], "ICD recommended (Class I)")
	assert.Contains(t, result.GenotypeSpecificAdvice, "mexiletine")
}

func TestLQTSRisk_PointTiers(t *testing.T) {
	high := LQTSRisk(LQTSInput{QTc: 505, Genotype: "LQT2", Male: true, Age: 40})
	// QTc 3 + LQT2 1 = 4
	assert.Equal(t, 4, high.RiskPoints)
	assert.Equal(t, "high", high.RiskCategory)

	intermediate := LQTSRisk(LQTSInput{QTc: 475, Genotype: "LQT1", Male: true, Age: 40})
	assert.Equal(t, 2, intermediate.RiskPoints)
	assert.Equal(t, "intermediate", intermediate.RiskCategory)

	lower := LQTSRisk(LQTSInput{QTc: 455, Genotype: "LQT1", Male: true, Age: 40})
	assert.Equal(t, 1, lower.RiskPoints)
	assert.Equal(t, "lower", lower.RiskCategory)
}

func TestLQTSRisk_SexAgeInteraction(t *testing.T) {
	boy := LQTSRisk(LQTSInput{QTc: 440, Male: true, Age: 10})
	assert.Equal(t, 1, boy.RiskPoints)
	assert.Contains(t, boy.RiskFactors, "Male child (<15 years)")

	adultWoman := LQTSRisk(LQTSInput{QTc: 440, Male: false, Age: 35})
	assert.Equal(t, 1, adultWoman.RiskPoints)
	assert.Contains(t, adultWoman.RiskFactors, "Female adolescent/adult")

	adultMan := LQTSRisk(LQTSInput{QTc: 440, Male: true, Age: 35})
	assert.Equal(t, 0, adultMan.RiskPoints)
}

func TestLQTSRisk_UnknownGenotypeAdvice(t *testing.T) {
	result := LQTSRisk(LQTSInput{QTc: 480, Genotype: "VUS", Age: 40, Male: true})
	assert.Contains(t, result.GenotypeSpecificAdvice, "genetic testing")
}

func TestBrugadaRisk_SecondaryPrevention(t *testing.T) {
	result := BrugadaRisk(BrugadaInput{DocumentedVTVF: true, Male: true})
	assert.Equal(t, "high_secondary_prevention", result.RiskCategory)
	assert.Equal(t, "Class I", result.ICDRecommendationClass)
	assert.Contains(t, result.RiskFactors, "Documented spontaneous sustained VT/VF")
}

func TestBrugadaRisk_SymptomaticSpontaneousType1(t *testing.T) {
	result := BrugadaRisk(BrugadaInput{
		SpontaneousType1:           true,
		SyncopeSuspectedArrhythmic: true,
	})
	assert.Equal(t, "high_symptomatic", result.RiskCategory)
	assert.Equal(t, "Class IIa", result.ICDRecommendationClass)
}

func TestBrugadaRisk_AsymptomaticSpontaneousType1(t *testing.T) {
	withFH := BrugadaRisk(BrugadaInput{SpontaneousType1: true, FamilyHistorySCD: true})
	assert.Equal(t, "intermediate", withFH.RiskCategory)
	assert.Equal(t, "Class IIb", withFH.ICDRecommendationClass)

	female := BrugadaRisk(BrugadaInput{SpontaneousType1: true})
	assert.Equal(t, "lower", female.RiskCategory)
	assert.Equal(t, "Not routinely indicated", female.ICDRecommendationClass)
}

func TestBrugadaRisk_DrugInducedOnlyIsClassIII(t *testing.T) {
	result := BrugadaRisk(BrugadaInput{InducedType1Only: true, Male: true})
	assert.Equal(t, "lower", result.RiskCategory)
	assert.Equal(t, "Class III", result.ICDRecommendationClass)
	assert.Contains(t, result.ICDRecommendation, "NOT recommended")
}

func TestBrugadaRisk_IndeterminateWithoutPattern(t *testing.T) {
	result := BrugadaRisk(BrugadaInput{Male: true})
	assert.Equal(t, "indeterminate", result.RiskCategory)
	assert.Equal(t, "N/A", result.ICDRecommendationClass)
}

func TestBrugadaRisk_TriggerList(t *testing.T) {
	result := BrugadaRisk(BrugadaInput{SpontaneousType1: true})
	assert.Contains(t, result.TriggersToAvoid, "Excessive alcohol")
	assert.Contains(t, result.TriggersToAvoid[len(result.TriggersToAvoid)-1], "brugadadrugs.org")
}
