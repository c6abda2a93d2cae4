package reasoning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
)

func TestConfidenceLevelNumericValue(t *testing.T) {
	assert.Equal(t, 0.95, CONFIDENCE_VERY_HIGH.NumericValue())
	assert.Equal(t, 0.85, CONFIDENCE_HIGH.NumericValue())
	assert.Equal(t, 0.70, CONFIDENCE_MODERATE.NumericValue())
	assert.Equal(t, 0.50, CONFIDENCE_LOW.NumericValue())
	assert.Equal(t, 0.30, CONFIDENCE_VERY_LOW.NumericValue())
	assert.Equal(t, 0.0, ConfidenceLevel("bogus").NumericValue())
}

func TestConfidenceLevelText(t *testing.T) {
	assert.Contains(t, CONFIDENCE_VERY_HIGH.DisplayText(), "Strong guideline evidence")
	assert.Contains(t, CONFIDENCE_LOW.DisplayText(), "Synthesis or extrapolation")
	assert.Contains(t, CONFIDENCE_VERY_LOW.ActionGuidance(), "specialist consultation")
	assert.Contains(t, CONFIDENCE_VERY_HIGH.ActionGuidance(), "high assurance")
}

func TestAdjustedConfidence(t *testing.T) {
	t.Run("stacked factors discount base", func(t *testing.T) {
		a := UncertaintyAssessment{
			BaseConfidence: CONFIDENCE_HIGH,
			UncertaintyFactors: []UncertaintyFactor{
				{Source: UNCERTAINTY_MULTIPLE_GUIDELINES, Impact: 0.15},
				{Source: UNCERTAINTY_POPULATION_MISMATCH, Impact: 0.20},
			},
		}
		assert.Equal(t, 0.5, a.AdjustedConfidence())
		assert.Equal(t, CONFIDENCE_LOW, a.AdjustedConfidenceLevel())
	})

	t.Run("floors at 0.1", func(t *testing.T) {
		a := UncertaintyAssessment{
			BaseConfidence: CONFIDENCE_VERY_LOW,
			UncertaintyFactors: []UncertaintyFactor{
				{Impact: 0.5}, {Impact: 0.5},
			},
		}
		assert.Equal(t, 0.1, a.AdjustedConfidence())
		assert.Equal(t, CONFIDENCE_VERY_LOW, a.AdjustedConfidenceLevel())
	})

	t.Run("no factors keeps base", func(t *testing.T) {
		a := UncertaintyAssessment{BaseConfidence: CONFIDENCE_VERY_HIGH}
		assert.Equal(t, 0.95, a.AdjustedConfidence())
		assert.Equal(t, CONFIDENCE_VERY_HIGH, a.AdjustedConfidenceLevel())
	})
}

func TestAdjustedConfidenceLevelCutoffs(t *testing.T) {
	tests := []struct {
		base   ConfidenceLevel
		impact float64
		want   ConfidenceLevel
	}{
		{CONFIDENCE_VERY_HIGH, 0.0, CONFIDENCE_VERY_HIGH}, // 0.95
		{CONFIDENCE_VERY_HIGH, 0.10, CONFIDENCE_HIGH},     // 0.85
		{CONFIDENCE_VERY_HIGH, 0.25, CONFIDENCE_MODERATE}, // 0.70
		{CONFIDENCE_VERY_HIGH, 0.45, CONFIDENCE_LOW},      // 0.50
		{CONFIDENCE_VERY_HIGH, 0.65, CONFIDENCE_VERY_LOW}, // 0.30
	}

	for _, tt := range tests {
		a := UncertaintyAssessment{
			BaseConfidence:     tt.base,
			UncertaintyFactors: []UncertaintyFactor{{Impact: tt.impact}},
		}
		assert.Equal(t, tt.want, a.AdjustedConfidenceLevel(), "impact %.2f", tt.impact)
	}
}

func TestAssessEvidenceQualityBaseBuckets(t *testing.T) {
	tests := []struct {
		name  string
		class domain.EvidenceClass
		level domain.EvidenceLevel
		want  ConfidenceLevel
	}{
		{"class I level A", domain.CLASS_I, domain.LEVEL_A, CONFIDENCE_VERY_HIGH},
		{"class I level B", domain.CLASS_I, domain.LEVEL_B, CONFIDENCE_HIGH},
		{"class IIa level A", domain.CLASS_IIA, domain.LEVEL_A, CONFIDENCE_HIGH},
		{"class IIb", domain.CLASS_IIB, domain.LEVEL_B, CONFIDENCE_MODERATE},
		{"level C", domain.CLASS_I, domain.LEVEL_C, CONFIDENCE_MODERATE},
		{"class III", domain.CLASS_III, domain.LEVEL_B, CONFIDENCE_LOW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessEvidenceQuality(tt.class, tt.level, false, false, 0)
			assert.Equal(t, tt.want, got.BaseConfidence)
		})
	}
}

func TestAssessEvidenceQualityFactors(t *testing.T) {
	got := AssessEvidenceQuality(domain.CLASS_I, domain.LEVEL_A, true, true, 5)

	require.Len(t, got.UncertaintyFactors, 3)
	assert.Equal(t, UNCERTAINTY_MULTIPLE_GUIDELINES, got.UncertaintyFactors[0].Source)
	assert.Equal(t, 0.15, got.UncertaintyFactors[0].Impact)
	assert.Equal(t, UNCERTAINTY_POPULATION_MISMATCH, got.UncertaintyFactors[1].Source)
	assert.Equal(t, 0.20, got.UncertaintyFactors[1].Impact)
	assert.Equal(t, UNCERTAINTY_OUTDATED, got.UncertaintyFactors[2].Source)
	assert.Contains(t, got.UncertaintyFactors[2].Description, "5 years old")
	assert.InDelta(t, 0.10, got.UncertaintyFactors[2].Impact, 1e-9)

	assert.Equal(t, 0.5, got.AdjustedConfidence())
	assert.Equal(t, CONFIDENCE_LOW, got.AdjustedConfidenceLevel())
}

func TestAssessEvidenceQualityLevelC(t *testing.T) {
	got := AssessEvidenceQuality(domain.CLASS_IIA, domain.LEVEL_C, false, false, 0)

	require.Len(t, got.UncertaintyFactors, 1)
	assert.Equal(t, UNCERTAINTY_EXPERT_OPINION, got.UncertaintyFactors[0].Source)
	assert.Contains(t, got.EvidenceGaps, "Limited randomized trial data")
	assert.Equal(t, 0.6, got.AdjustedConfidence())
}

func TestAssessEvidenceQualityRecentGuidelineNoAgePenalty(t *testing.T) {
	got := AssessEvidenceQuality(domain.CLASS_I, domain.LEVEL_A, false, false, 3)
	assert.Empty(t, got.UncertaintyFactors)
}

func TestUncertaintyFormatForDisplay(t *testing.T) {
	a := UncertaintyAssessment{
		BaseConfidence: CONFIDENCE_HIGH,
		UncertaintyFactors: []UncertaintyFactor{
			{
				Source:            UNCERTAINTY_POPULATION_MISMATCH,
				Description:       "Patient older than trial populations",
				Impact:            0.20,
				MitigatingFactors: []string{"Robust functional status"},
			},
		},
		SupportingEvidence: []string{"PARADIGM-HF"},
		EvidenceGaps:       []string{"No octogenarian subgroup data"},
		PatientFactorsIncreasingUncertainty: []string{
			"Age 88",
		},
	}

	out := a.FormatForDisplay()

	assert.True(t, strings.HasPrefix(out, "UNCERTAINTY ASSESSMENT\n"))
	assert.Contains(t, out, "Base confidence: High Confidence - Good guideline evidence")
	assert.Contains(t, out, "Adjusted confidence: 65% (moderate)")
	assert.Contains(t, out, "  + PARADIGM-HF")
	assert.Contains(t, out, "  - Patient older than trial populations (impact: -20%)")
	assert.Contains(t, out, "    * Mitigator: Robust functional status")
	assert.Contains(t, out, "  ? No octogenarian subgroup data")
	assert.Contains(t, out, "  ! Age 88")
	assert.Contains(t, out, "Recommended action: Consider recommendation but review patient-specific factors")

	// Section order is fixed.
	assert.Less(t, strings.Index(out, "Supporting evidence:"), strings.Index(out, "Uncertainty factors:"))
	assert.Less(t, strings.Index(out, "Uncertainty factors:"), strings.Index(out, "Evidence gaps:"))
	assert.Less(t, strings.Index(out, "Evidence gaps:"), strings.Index(out, "Recommended action:"))
}
