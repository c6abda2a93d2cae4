package scores

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
)

func TestCHA2DS2VASc_ElderlyFemaleWithRiskFactors(t *testing.T) {
	result := CHA2DS2VASc(CHA2DS2VAScInput{
		Age:             72,
		Sex:             domain.SEX_FEMALE,
		HasCHF:          true,
		HasHypertension: true,
	})

	assert.Equal(t, "CHA2DS2-VASc", result.ScoreName)
	assert.Equal(t, 4.0, result.ScoreValue)
	assert.Equal(t, "high", result.RiskCategory)

	// Evaluation order: CHF, hypertension, age band, then female sex.
	require.Len(t, result.Components, 4)
	assert.Equal(t, "CHF/LV dysfunction", result.Components[0].Name)
	assert.Equal(t, "Hypertension", result.Components[1].Name)
	assert.Equal(t, "Age 65-74", result.Components[2].Name)
	assert.Equal(t, "Female sex", result.Components[3].Name)

	require.NotNil(t, result.RiskPercentage)
	assert.Equal(t, 4.8, *result.RiskPercentage)

	require.NotNil(t, result.Citation)
	assert.Equal(t, "esc_af_2020", result.Citation.GuidelineKey)
	assert.Equal(t, domain.CLASS_I, result.Citation.EvidenceClass)
	assert.Equal(t, domain.LEVEL_A, result.Citation.EvidenceLevel)
}

func TestCHA2DS2VASc_SexAdjustedThresholds(t *testing.T) {
	// A woman with only the sex point is low risk: the point does not
	// count towards the treatment decision.
	womanOnly := CHA2DS2VASc(CHA2DS2VAScInput{Age: 50, Sex: domain.SEX_FEMALE})
	assert.Equal(t, 1.0, womanOnly.ScoreValue)
	assert.Equal(t, "low", womanOnly.RiskCategory)

	// A man with one point is moderate risk.
	manHTN := CHA2DS2VASc(CHA2DS2VAScInput{Age: 50, Sex: domain.SEX_MALE, HasHypertension: true})
	assert.Equal(t, 1.0, manHTN.ScoreValue)
	assert.Equal(t, "moderate", manHTN.RiskCategory)

	// A woman with one clinical point is also moderate (raw score 2).
	womanHTN := CHA2DS2VASc(CHA2DS2VAScInput{Age: 50, Sex: domain.SEX_FEMALE, HasHypertension: true})
	assert.Equal(t, 2.0, womanHTN.ScoreValue)
	assert.Equal(t, "moderate", womanHTN.RiskCategory)
}

func TestCHA2DS2VASc_AgeBands(t *testing.T) {
	tests := []struct {
		age    int
		points float64
		name   string
	}{
		{64, 0, ""},
		{65, 1, "Age 65-74"},
		{74, 1, "Age 65-74"},
		{75, 2, "Age >= 75"},
		{90, 2, "Age >= 75"},
	}
	for _, tt := range tests {
		result := CHA2DS2VASc(CHA2DS2VAScInput{Age: tt.age, Sex: domain.SEX_MALE})
		assert.Equal(t, tt.points, result.ScoreValue, "age %d", tt.age)
		if tt.name != "" {
			require.Len(t, result.Components, 1)
			assert.Equal(t, tt.name, result.Components[0].Name)
		}
	}
}

func TestCHA2DS2VASc_MaxScore(t *testing.T) {
	result := CHA2DS2VASc(CHA2DS2VAScInput{
		Age:                80,
		Sex:                domain.SEX_FEMALE,
		HasCHF:             true,
		HasHypertension:    true,
		HasStrokeTIATE:     true,
		HasVascularDisease: true,
		HasDiabetes:        true,
	})
	assert.Equal(t, 9.0, result.ScoreValue)
	require.NotNil(t, result.RiskPercentage)
	assert.Equal(t, 12.2, *result.RiskPercentage)
}

func TestHASBLED_HighRiskIsNotContraindication(t *testing.T) {
	result := HASBLED(HASBLEDInput{
		HasHypertension:   true,
		BleedingHistory:   true,
		AgeOver65:         true,
		DrugsPredisposing: true,
	})

	assert.Equal(t, 4.0, result.ScoreValue)
	assert.Equal(t, "high", result.RiskCategory)
	assert.Contains(t, result.Recommendation, "NOT a contraindication")
	assert.Contains(t, result.Recommendation, "MODIFIABLE")

	require.NotNil(t, result.RiskPercentage)
	assert.Equal(t, 8.70, *result.RiskPercentage)

	require.NotNil(t, result.Citation)
	assert.Equal(t, domain.CLASS_IIA, result.Citation.EvidenceClass)
	assert.Equal(t, domain.LEVEL_B, result.Citation.EvidenceLevel)
}

func TestHASBLED_RiskCategories(t *testing.T) {
	zero := HASBLED(HASBLEDInput{})
	assert.Equal(t, 0.0, zero.ScoreValue)
	assert.Equal(t, "low", zero.RiskCategory)
	assert.Empty(t, zero.Components)

	two := HASBLED(HASBLEDInput{HasStroke: true, LabileINR: true})
	assert.Equal(t, "moderate", two.RiskCategory)

	three := HASBLED(HASBLEDInput{HasStroke: true, LabileINR: true, AlcoholExcess: true})
	assert.Equal(t, "high", three.RiskCategory)
}

func TestAdditiveScoresSumInvariant(t *testing.T) {
	// Across randomized inputs the score must equal the sum of its
	// components for every additive calculator.
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		flip := func() bool { return rng.Intn(2) == 1 }
		sex := domain.SEX_MALE
		if flip() {
			sex = domain.SEX_FEMALE
		}

		chads := CHA2DS2VASc(CHA2DS2VAScInput{
			Age:                20 + rng.Intn(80),
			Sex:                sex,
			HasCHF:             flip(),
			HasHypertension:    flip(),
			HasStrokeTIATE:     flip(),
			HasVascularDisease: flip(),
			HasDiabetes:        flip(),
		})
		assert.Equal(t, chads.ComponentSum(), chads.ScoreValue)

		hasbled := HASBLED(HASBLEDInput{
			HasHypertension:       flip(),
			AbnormalRenalFunction: flip(),
			AbnormalLiverFunction: flip(),
			HasStroke:             flip(),
			BleedingHistory:       flip(),
			LabileINR:             flip(),
			AgeOver65:             flip(),
			DrugsPredisposing:     flip(),
			AlcoholExcess:         flip(),
		})
		assert.Equal(t, hasbled.ComponentSum(), hasbled.ScoreValue)

		pesi := PESI(PESIInput{
			Age:                 20 + rng.Intn(80),
			Male:                flip(),
			Cancer:              flip(),
			HeartFailure:        flip(),
			ChronicLungDisease:  flip(),
			PulseRate:           50 + rng.Intn(120),
			SystolicBP:          80 + rng.Intn(100),
			RespiratoryRate:     10 + rng.Intn(30),
			Temperature:         35 + rng.Float64()*4,
			AlteredMentalStatus: flip(),
			O2Saturation:        85 + rng.Float64()*15,
		})
		assert.Equal(t, pesi.ComponentSum(), pesi.ScoreValue)

		maggic := MAGGIC(MAGGICInput{
			Age:                 40 + rng.Intn(50),
			Male:                flip(),
			LVEF:                15 + rng.Float64()*50,
			NYHAClass:           1 + rng.Intn(4),
			SystolicBP:          90 + rng.Intn(80),
			BMI:                 14 + rng.Float64()*25,
			Creatinine:          0.5 + rng.Float64()*3,
			CurrentSmoker:       flip(),
			Diabetes:            flip(),
			COPD:                flip(),
			HFDiagnosed18Months: flip(),
			OnBetaBlocker:       flip(),
			OnACEIARB:           flip(),
		})
		assert.Equal(t, maggic.ComponentSum(), maggic.ScoreValue)
	}
}
