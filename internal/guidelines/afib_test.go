package guidelines

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
)

func TestAssessStrokeRiskHighRisk(t *testing.T) {
	p := &domain.Patient{
		Age:               iptr(72),
		Sex:               domain.SEX_FEMALE,
		HasHypertension:   true,
		HasPriorStrokeTIA: true,
	}

	got := AssessStrokeRisk(p)

	assert.Equal(t, 5.0, got.CHA2DS2VASc.ScoreValue)
	assert.Equal(t, 3.0, got.HASBLED.ScoreValue)
	assert.True(t, got.AnticoagulationIndicated)
	assert.Equal(t, OAC_RECOMMENDED, got.AnticoagulationStrength)

	require.Len(t, got.Recommendations, 2)
	oac := got.Recommendations[0]
	assert.Contains(t, oac.Action, "RECOMMENDED")
	assert.Equal(t, domain.CLASS_I, oac.Citation.EvidenceClass)
	assert.Equal(t, domain.LEVEL_A, oac.Citation.EvidenceLevel)
	assert.Contains(t, oac.Rationale, "CHA2DS2-VASc 5")
	assert.Contains(t, oac.Citation.Studies, "ARISTOTLE")

	bleed := got.Recommendations[1]
	assert.Contains(t, bleed.Action, "High HAS-BLED (3)")
	assert.Contains(t, bleed.Action, "does NOT contraindicate")
	assert.Equal(t, domain.CATEGORY_MONITORING, bleed.Category)
}

func TestAssessStrokeRiskSexAdjustment(t *testing.T) {
	// Female sex alone scores a CHA2DS2-VASc point but does not by itself
	// indicate anticoagulation.
	p := &domain.Patient{Age: iptr(62), Sex: domain.SEX_FEMALE}

	got := AssessStrokeRisk(p)

	assert.Equal(t, 1.0, got.CHA2DS2VASc.ScoreValue)
	assert.False(t, got.AnticoagulationIndicated)
	assert.Equal(t, OAC_NOT_RECOMMENDED, got.AnticoagulationStrength)
	require.Len(t, got.Recommendations, 1)
	assert.Contains(t, got.Recommendations[0].Action, "NOT recommended")
}

func TestAssessStrokeRiskShouldConsider(t *testing.T) {
	p := &domain.Patient{Age: iptr(68), Sex: domain.SEX_MALE}

	got := AssessStrokeRisk(p)

	assert.Equal(t, 1.0, got.CHA2DS2VASc.ScoreValue)
	assert.True(t, got.AnticoagulationIndicated)
	assert.Equal(t, OAC_SHOULD_CONSIDER, got.AnticoagulationStrength)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, domain.CLASS_IIA, got.Recommendations[0].Citation.EvidenceClass)
	assert.Contains(t, got.Recommendations[0].Action, "SHOULD BE CONSIDERED")
}

func TestAssessStrokeRiskReducedLVEFCountsAsCHF(t *testing.T) {
	p := &domain.Patient{Age: iptr(50), Sex: domain.SEX_MALE, LVEFValue: fptr(30)}

	got := AssessStrokeRisk(p)

	assert.Equal(t, 1.0, got.CHA2DS2VASc.ScoreValue)
	assert.Equal(t, OAC_SHOULD_CONSIDER, got.AnticoagulationStrength)
}

func TestAnticoagulationRecommendations(t *testing.T) {
	t.Run("indicated includes agent selection", func(t *testing.T) {
		p := &domain.Patient{
			Age:               iptr(72),
			Sex:               domain.SEX_FEMALE,
			HasHypertension:   true,
			HasPriorStrokeTIA: true,
		}

		set := AnticoagulationRecommendations(p)

		assert.Equal(t, "AF Anticoagulation Recommendations", set.Title)
		assert.Equal(t, "CHA2DS2-VASc: 5, HAS-BLED: 3", set.Description)
		assert.Equal(t, "ESC AF 2020", set.PrimaryGuideline)

		var sawDOAC bool
		for _, rec := range set.Recommendations {
			if strings.HasPrefix(rec.Action, "DOAC") {
				sawDOAC = true
			}
		}
		assert.True(t, sawDOAC, "expected DOAC selection recommendation")
	})

	t.Run("not indicated skips agent selection", func(t *testing.T) {
		p := &domain.Patient{Age: iptr(45), Sex: domain.SEX_MALE}

		set := AnticoagulationRecommendations(p)

		assert.Equal(t, "CHA2DS2-VASc: 0, HAS-BLED: 0", set.Description)
		assert.Equal(t, 1, set.Count())
	})
}

func TestSelectAnticoagulantMechanicalValve(t *testing.T) {
	p := &domain.Patient{
		Age:       iptr(60),
		Diagnoses: []domain.Diagnosis{{Name: "mechanical_valve", IsActive: true}},
	}

	set := SelectAnticoagulant(p)

	require.Equal(t, 1, set.Count())
	rec := set.Recommendations[0]
	assert.Contains(t, rec.Action, "WARFARIN")
	assert.Equal(t, domain.CLASS_I, rec.Citation.EvidenceClass)
	assert.Equal(t, domain.LEVEL_B, rec.Citation.EvidenceLevel)
	assert.NotEmpty(t, rec.Contraindications)
}

func TestSelectAnticoagulantMitralStenosis(t *testing.T) {
	p := &domain.Patient{
		Age:  iptr(60),
		Echo: &domain.EchoFindings{MitralValveArea: fptr(1.0)},
	}

	set := SelectAnticoagulant(p)

	require.Equal(t, 1, set.Count())
	assert.Contains(t, set.Recommendations[0].Action, "WARFARIN")
	assert.Equal(t, domain.LEVEL_C, set.Recommendations[0].Citation.EvidenceLevel)
}

func TestSelectAnticoagulantDefault(t *testing.T) {
	p := &domain.Patient{Age: iptr(55)}

	set := SelectAnticoagulant(p)

	require.Equal(t, 2, set.Count())
	assert.Contains(t, set.Recommendations[0].Action, "DOAC")
	assert.Contains(t, set.Recommendations[1].Action, "Standard doses")
}

func TestSelectAnticoagulantRenalDosing(t *testing.T) {
	tests := []struct {
		name string
		egfr float64
		want string
	}{
		{"severe ckd", 25, "Severe CKD"},
		{"moderate ckd", 40, "Moderate CKD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &domain.Patient{
				Age:  iptr(55),
				Labs: &domain.LabValues{EGFR: fptr(tt.egfr)},
			}

			set := SelectAnticoagulant(p)

			require.Equal(t, 3, set.Count())
			assert.Contains(t, set.Recommendations[1].Action, tt.want)
		})
	}
}

func TestSelectAnticoagulantElderly(t *testing.T) {
	p := &domain.Patient{Age: iptr(82)}

	set := SelectAnticoagulant(p)

	require.Equal(t, 3, set.Count())
	assert.Contains(t, set.Recommendations[1].Action, "Apixaban has best safety data")
	assert.Contains(t, set.Recommendations[1].Citation.Studies, "ELDERCARE-AF")
}

func TestPeriproceduralAnticoagulation(t *testing.T) {
	onDOAC := &domain.Patient{
		Medications: []domain.Medication{{Name: "Apixaban", IsActive: true}},
	}

	t.Run("urgent on doac", func(t *testing.T) {
		set := PeriproceduralAnticoagulation(onDOAC, BLEED_RISK_HIGH, true)
		require.Equal(t, 1, set.Count())
		assert.Contains(t, set.Recommendations[0].Action, "anti-Xa")
		assert.Equal(t, domain.URGENCY_URGENT, set.Recommendations[0].Urgency)
	})

	t.Run("urgent not anticoagulated", func(t *testing.T) {
		set := PeriproceduralAnticoagulation(&domain.Patient{}, BLEED_RISK_HIGH, true)
		assert.Equal(t, 0, set.Count())
	})

	t.Run("low bleed risk", func(t *testing.T) {
		set := PeriproceduralAnticoagulation(onDOAC, BLEED_RISK_LOW, false)
		require.Equal(t, 1, set.Count())
		assert.Contains(t, set.Recommendations[0].Action, "uninterrupted")
		assert.Contains(t, set.Recommendations[0].Citation.Studies, "BRUISE CONTROL")
	})

	t.Run("high bleed risk", func(t *testing.T) {
		set := PeriproceduralAnticoagulation(onDOAC, BLEED_RISK_HIGH, false)
		require.Equal(t, 1, set.Count())
		assert.Contains(t, set.Recommendations[0].Action, "Stop DOAC 24-48h")
		assert.Contains(t, set.Recommendations[0].Action, "Bridging generally NOT recommended")
	})
}
