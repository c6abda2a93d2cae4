package reasoning

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/guidelines"
)

func newTestReasoner() *ClinicalReasoner {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewClinicalReasoner(logger)
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }

func afPatient() *domain.Patient {
	return &domain.Patient{
		Age:               iptr(72),
		Sex:               domain.SEX_FEMALE,
		AFType:            domain.AF_PAROXYSMAL,
		HasHypertension:   true,
		HasPriorStrokeTIA: true,
	}
}

func TestReasonDirectGuidelineMatch(t *testing.T) {
	r := newTestReasoner()

	result := r.Reason(afPatient(), "Should we start anticoagulation?", false)

	assert.Equal(t, STRATEGY_DIRECT_GUIDELINE, result.Strategy)
	assert.True(t, result.EvidenceFound)
	assert.Equal(t, 1.0, result.OverallConfidence)
	assert.False(t, result.IsSynthesis())
	assert.Equal(t, []string{"atrial_fibrillation"}, result.GuidelinesConsulted)
	assert.NotEmpty(t, result.Answer)
	assert.NotEmpty(t, result.Recommendations)

	require.Len(t, result.ReasoningChain, 2)
	assert.Equal(t, 1, result.ReasoningChain[0].StepNumber)
	assert.Contains(t, result.ReasoningChain[0].Description, "1 potentially relevant guidelines")
	assert.Equal(t, "esc_af_2020", result.ReasoningChain[1].Source)
}

func TestReasonDirectMatchHFTherapy(t *testing.T) {
	r := newTestReasoner()
	p := &domain.Patient{Age: iptr(64), LVEFValue: fptr(30)}

	result := r.Reason(p, "What heart failure treatment should we use?", false)

	assert.Equal(t, STRATEGY_DIRECT_GUIDELINE, result.Strategy)
	assert.Contains(t, result.Answer, "GDMT Optimization for HFrEF")
	assert.NotEmpty(t, result.Recommendations)
}

func TestReasonRequireGuidelineEarlyExit(t *testing.T) {
	r := newTestReasoner()

	result := r.Reason(&domain.Patient{}, "statin dosing question", true)

	assert.Equal(t, STRATEGY_FIRST_PRINCIPLES, result.Strategy)
	assert.False(t, result.EvidenceFound)
	assert.Equal(t, 0.0, result.OverallConfidence)
	assert.Contains(t, result.Answer, "No direct guideline recommendation found")
	assert.Contains(t, result.Answer, "Synthesis was not requested")
	assert.Empty(t, result.Recommendations)
	require.Len(t, result.ReasoningChain, 2)
	assert.Equal(t, "No direct guideline match found", result.ReasoningChain[1].Description)
}

func TestReasonMultiGuidelineSynthesis(t *testing.T) {
	r := newTestReasoner()
	p := afPatient()
	p.LVEFValue = fptr(35)

	result := r.Reason(p, "Anticoagulation and heart failure treatment plan?", false)

	assert.Equal(t, STRATEGY_MULTI_GUIDELINE, result.Strategy)
	assert.True(t, result.IsSynthesis())
	assert.Equal(t, 0.7, result.OverallConfidence)
	assert.NotEmpty(t, result.UncertaintyFactors)
	assert.Contains(t, result.Answer, " | ")

	require.Len(t, result.ReasoningChain, 4)
	last := result.ReasoningChain[3]
	assert.Equal(t, "Synthesized recommendation from 2 guidelines", last.Description)
	assert.Equal(t, "heart_failure, atrial_fibrillation", last.Source)

	// The blend itself is flagged; the borrowed per-guideline entries keep
	// their own provenance.
	blend := result.Recommendations[len(result.Recommendations)-1]
	assert.Equal(t, domain.SOURCE_SYNTHESIS, blend.SourceType)
	assert.Equal(t, []string{"esc_hf_2021", "esc_af_2020"}, blend.SourceGuidelines)
}

func TestReasonExtrapolationFallback(t *testing.T) {
	r := newTestReasoner()

	result := r.Reason(&domain.Patient{}, "Is garlic helpful here?", false)

	assert.Equal(t, STRATEGY_EXPERT_EXTRAPOLATION, result.Strategy)
	assert.True(t, result.IsSynthesis())
	assert.Equal(t, 0.4, result.OverallConfidence)
	assert.Equal(t, []string{
		"Outside explicit guideline scope",
		"Individual patient factors may apply",
		"Recommend multidisciplinary discussion",
	}, result.UncertaintyFactors)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, domain.SOURCE_SYNTHESIS, rec.SourceType)
	assert.Equal(t, domain.CATEGORY_REFERRAL, rec.Category)
	assert.Contains(t, rec.Action, "specialist consultation")

	require.Len(t, result.ReasoningChain, 4)
	for i, step := range result.ReasoningChain {
		assert.Equal(t, i+1, step.StepNumber)
	}
}

func TestReasonNeverFails(t *testing.T) {
	r := newTestReasoner()

	questions := []string{"", "   ", "xyzzy", strings.Repeat("?", 500)}
	patients := []*domain.Patient{{}, afPatient(), {LVEFValue: fptr(20)}}

	for _, q := range questions {
		for _, p := range patients {
			result := r.Reason(p, q, false)
			assert.NotEmpty(t, result.Strategy)
			assert.NotEmpty(t, result.ReasoningChain)
			assert.NotEmpty(t, result.Answer)
		}
	}
}

func TestRegisterMatcherOverride(t *testing.T) {
	r := newTestReasoner()
	r.RegisterMatcher(guidelines.FAMILY_VHD, func(p *domain.Patient, q string) *DirectMatch {
		return &DirectMatch{Guideline: "esc_vhd_2021", Answer: "Intervene at symptom onset"}
	})

	result := r.Reason(&domain.Patient{}, "Severe aortic stenosis - when to intervene?", false)

	assert.Equal(t, STRATEGY_DIRECT_GUIDELINE, result.Strategy)
	assert.Equal(t, "Intervene at symptom onset", result.Answer)
}

func TestFormatForDisplay(t *testing.T) {
	r := newTestReasoner()

	t.Run("synthesis banner", func(t *testing.T) {
		result := r.Reason(&domain.Patient{}, "nonsense", false)
		out := result.FormatForDisplay()

		assert.Contains(t, out, "! SYNTHESIS / EXTRAPOLATION - NOT DIRECT GUIDELINE")
		assert.Contains(t, out, "Reasoning strategy: expert_extrapolation")
		assert.Contains(t, out, "Overall confidence: 40%")
		assert.Less(t, strings.Index(out, "Question: nonsense"), strings.Index(out, "Answer:"))
		assert.Contains(t, out, "Reasoning Chain:")
	})

	t.Run("direct output has no banner", func(t *testing.T) {
		result := r.Reason(afPatient(), "Should we start anticoagulation?", false)
		out := result.FormatForDisplay()

		assert.NotContains(t, out, "! SYNTHESIS")
		assert.Contains(t, out, "Guidelines consulted: atrial_fibrillation")
	})
}

func TestFormatReasoningChain(t *testing.T) {
	result := ReasoningResult{
		ReasoningChain: []ReasoningStep{
			{StepNumber: 1, Description: "Identified guidelines", Source: "registry", Confidence: 1.0},
			{StepNumber: 2, Description: "No direct match", Confidence: 0.8},
		},
	}

	out := result.FormatReasoningChain()

	assert.Contains(t, out, "1. Identified guidelines [registry] (confidence: 100%)")
	assert.Contains(t, out, "2. No direct match (confidence: 80%)")
}

func TestExplainGap(t *testing.T) {
	r := newTestReasoner()

	tests := []struct {
		name    string
		patient *domain.Patient
		want    string
	}{
		{
			name:    "very elderly",
			patient: &domain.Patient{Age: iptr(90)},
			want:    "exceeds typical RCT inclusion criteria",
		},
		{
			name:    "severe ckd",
			patient: &domain.Patient{Labs: &domain.LabValues{EGFR: fptr(20)}},
			want:    "Severe CKD (eGFR < 25)",
		},
		{
			name: "frailty",
			patient: &domain.Patient{
				Diagnoses: []domain.Diagnosis{{Name: "frailty", IsActive: true}},
			},
			want: "Frailty was exclusion criterion",
		},
		{
			name:    "generic",
			patient: &domain.Patient{Age: iptr(60)},
			want:    "Individualized judgment required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := r.ExplainGap("any question", tt.patient)
			assert.True(t, strings.HasPrefix(out, "GUIDELINE GAP EXPLANATION:\n"))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestDefaultReasonerSingleton(t *testing.T) {
	assert.Same(t, DefaultReasoner(), DefaultReasoner())
}
