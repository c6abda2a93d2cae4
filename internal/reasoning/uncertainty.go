package reasoning

import (
	"fmt"
	"math"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// ConfidenceLevel buckets recommendation confidence for clinicians.
type ConfidenceLevel string

const (
	CONFIDENCE_VERY_HIGH ConfidenceLevel = "very_high" // direct Class I / Level A
	CONFIDENCE_HIGH      ConfidenceLevel = "high"      // direct guideline, Class I-IIa
	CONFIDENCE_MODERATE  ConfidenceLevel = "moderate"  // caveats or Class IIb
	CONFIDENCE_LOW       ConfidenceLevel = "low"       // synthesis or extrapolation
	CONFIDENCE_VERY_LOW  ConfidenceLevel = "very_low"  // significant uncertainty
)

// NumericValue returns the confidence score in [0,1] for the bucket.
func (c ConfidenceLevel) NumericValue() float64 {
	switch c {
	case CONFIDENCE_VERY_HIGH:
		return 0.95
	case CONFIDENCE_HIGH:
		return 0.85
	case CONFIDENCE_MODERATE:
		return 0.70
	case CONFIDENCE_LOW:
		return 0.50
	case CONFIDENCE_VERY_LOW:
		return 0.30
	}
	return 0
}

// DisplayText is the clinician-facing label for the bucket.
func (c ConfidenceLevel) DisplayText() string {
	switch c {
	case CONFIDENCE_VERY_HIGH:
		return "Very High Confidence - Strong guideline evidence"
	case CONFIDENCE_HIGH:
		return "High Confidence - Good guideline evidence"
	case CONFIDENCE_MODERATE:
		return "Moderate Confidence - Limited or mixed evidence"
	case CONFIDENCE_LOW:
		return "Low Confidence - Synthesis or extrapolation"
	case CONFIDENCE_VERY_LOW:
		return "Very Low Confidence - Significant uncertainty"
	}
	return ""
}

// ActionGuidance tells the clinician how to act on this confidence level.
func (c ConfidenceLevel) ActionGuidance() string {
	switch c {
	case CONFIDENCE_VERY_HIGH:
		return "Follow recommendation with high assurance"
	case CONFIDENCE_HIGH:
		return "Follow recommendation with reasonable assurance"
	case CONFIDENCE_MODERATE:
		return "Consider recommendation but review patient-specific factors"
	case CONFIDENCE_LOW:
		return "Use clinical judgment; consider specialist input"
	case CONFIDENCE_VERY_LOW:
		return "Seek specialist consultation; individualized decision required"
	}
	return ""
}

// UncertaintySource names where uncertainty comes from.
type UncertaintySource string

const (
	UNCERTAINTY_EVIDENCE_GAP        UncertaintySource = "evidence_gap"
	UNCERTAINTY_POPULATION_MISMATCH UncertaintySource = "population_mismatch"
	UNCERTAINTY_CONFLICTING         UncertaintySource = "conflicting_evidence"
	UNCERTAINTY_OUTDATED            UncertaintySource = "outdated_evidence"
	UNCERTAINTY_EXPERT_OPINION      UncertaintySource = "expert_opinion"
	UNCERTAINTY_MULTIPLE_GUIDELINES UncertaintySource = "multiple_guidelines"
	UNCERTAINTY_PATIENT_SPECIFIC    UncertaintySource = "patient_specific"
)

// UncertaintyFactor is a single factor reducing confidence.
type UncertaintyFactor struct {
	Source            UncertaintySource `json:"source"`
	Description       string            `json:"description"`
	Impact            float64           `json:"impact"` // confidence reduction in [0,1]
	MitigatingFactors []string          `json:"mitigating_factors,omitempty"`
}

// UncertaintyAssessment is the complete uncertainty picture for one
// recommendation: what supports it, what is unknown, and how much the
// unknowns discount the base confidence.
type UncertaintyAssessment struct {
	BaseConfidence     ConfidenceLevel     `json:"base_confidence"`
	UncertaintyFactors []UncertaintyFactor `json:"uncertainty_factors,omitempty"`

	SupportingEvidence []string `json:"supporting_evidence,omitempty"`
	EvidenceGaps       []string `json:"evidence_gaps,omitempty"`

	PatientFactorsIncreasingUncertainty    []string `json:"patient_factors_increasing_uncertainty,omitempty"`
	PatientFactorsSupportingRecommendation []string `json:"patient_factors_supporting_recommendation,omitempty"`
}

// AdjustedConfidence discounts the base confidence by every stacked
// factor, floored at 0.1. A fully floored recommendation is still
// actionable as very-low confidence, never "no confidence".
func (a *UncertaintyAssessment) AdjustedConfidence() float64 {
	base := a.BaseConfidence.NumericValue()
	total := 0.0
	for _, f := range a.UncertaintyFactors {
		total += f.Impact
	}
	return math.Round(math.Max(0.1, base-total)*100) / 100
}

// AdjustedConfidenceLevel rebuckets the adjusted score.
func (a *UncertaintyAssessment) AdjustedConfidenceLevel() ConfidenceLevel {
	score := a.AdjustedConfidence()
	switch {
	case score >= 0.9:
		return CONFIDENCE_VERY_HIGH
	case score >= 0.75:
		return CONFIDENCE_HIGH
	case score >= 0.55:
		return CONFIDENCE_MODERATE
	case score >= 0.35:
		return CONFIDENCE_LOW
	default:
		return CONFIDENCE_VERY_LOW
	}
}

// FormatForDisplay renders the assessment for clinical display.
func (a *UncertaintyAssessment) FormatForDisplay() string {
	lines := []string{
		"UNCERTAINTY ASSESSMENT",
		strings.Repeat("=", 40),
		"Base confidence: " + a.BaseConfidence.DisplayText(),
		fmt.Sprintf("Adjusted confidence: %.0f%% (%s)", a.AdjustedConfidence()*100, a.AdjustedConfidenceLevel()),
		"",
	}

	if len(a.SupportingEvidence) > 0 {
		lines = append(lines, "Supporting evidence:")
		for _, evidence := range a.SupportingEvidence {
			lines = append(lines, "  + "+evidence)
		}
		lines = append(lines, "")
	}

	if len(a.UncertaintyFactors) > 0 {
		lines = append(lines, "Uncertainty factors:")
		for _, factor := range a.UncertaintyFactors {
			lines = append(lines, fmt.Sprintf("  - %s (impact: -%.0f%%)", factor.Description, factor.Impact*100))
			for _, m := range factor.MitigatingFactors {
				lines = append(lines, "    * Mitigator: "+m)
			}
		}
		lines = append(lines, "")
	}

	if len(a.EvidenceGaps) > 0 {
		lines = append(lines, "Evidence gaps:")
		for _, gap := range a.EvidenceGaps {
			lines = append(lines, "  ? "+gap)
		}
		lines = append(lines, "")
	}

	if len(a.PatientFactorsIncreasingUncertainty) > 0 {
		lines = append(lines, "Patient factors increasing uncertainty:")
		for _, factor := range a.PatientFactorsIncreasingUncertainty {
			lines = append(lines, "  ! "+factor)
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Recommended action: "+a.AdjustedConfidenceLevel().ActionGuidance())
	return strings.Join(lines, "\n")
}

// AssessEvidenceQuality builds an uncertainty assessment from the
// evidence grading plus recommendation context. Base confidence comes
// from the (class, level) lookup; synthesis, population mismatch,
// guideline age beyond a 3-year grace period, and Level C evidence each
// stack a discount.
func AssessEvidenceQuality(class domain.EvidenceClass, level domain.EvidenceLevel,
	isSynthesis, patientExcludedPopulation bool, guidelineAgeYears int) UncertaintyAssessment {

	var base ConfidenceLevel
	switch {
	case class == domain.CLASS_I && level == domain.LEVEL_A:
		base = CONFIDENCE_VERY_HIGH
	case (class == domain.CLASS_I || class == domain.CLASS_IIA) &&
		(level == domain.LEVEL_A || level == domain.LEVEL_B):
		base = CONFIDENCE_HIGH
	case class == domain.CLASS_IIB || level == domain.LEVEL_C:
		base = CONFIDENCE_MODERATE
	case class == domain.CLASS_III:
		base = CONFIDENCE_LOW
	default:
		base = CONFIDENCE_MODERATE
	}

	assessment := UncertaintyAssessment{BaseConfidence: base}

	if isSynthesis {
		assessment.UncertaintyFactors = append(assessment.UncertaintyFactors, UncertaintyFactor{
			Source:      UNCERTAINTY_MULTIPLE_GUIDELINES,
			Description: "Recommendation synthesized from multiple sources",
			Impact:      0.15,
		})
	}

	if patientExcludedPopulation {
		assessment.UncertaintyFactors = append(assessment.UncertaintyFactors, UncertaintyFactor{
			Source:      UNCERTAINTY_POPULATION_MISMATCH,
			Description: "Patient characteristics differ from trial populations",
			Impact:      0.20,
		})
	}

	if guidelineAgeYears > 3 {
		assessment.UncertaintyFactors = append(assessment.UncertaintyFactors, UncertaintyFactor{
			Source:      UNCERTAINTY_OUTDATED,
			Description: fmt.Sprintf("Guideline is %d years old; newer evidence may exist", guidelineAgeYears),
			Impact:      0.05 * float64(guidelineAgeYears-3),
		})
	}

	if level == domain.LEVEL_C {
		assessment.UncertaintyFactors = append(assessment.UncertaintyFactors, UncertaintyFactor{
			Source:      UNCERTAINTY_EXPERT_OPINION,
			Description: "Based primarily on expert consensus, not RCT data",
			Impact:      0.10,
		})
		assessment.EvidenceGaps = append(assessment.EvidenceGaps, "Limited randomized trial data")
	}

	return assessment
}
