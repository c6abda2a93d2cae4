// Package domain contains core business entities and types for
// guideline-based cardiology decision support following the ESC
// (European Society of Cardiology) recommendation grading system.
//
// Reference: ESC Clinical Practice Guidelines recommendation tables,
// classes of recommendation and levels of evidence.
package domain

import (
	"errors"
	"fmt"
)

// EvidenceClass represents the ESC class of recommendation, i.e. the
// strength with which a guideline recommends (or advises against) an
// intervention.
type EvidenceClass string

const (
	CLASS_I   EvidenceClass = "I"
	CLASS_IIA EvidenceClass = "IIa"
	CLASS_IIB EvidenceClass = "IIb"
	CLASS_III EvidenceClass = "III"
)

// IsValid checks if the evidence class is a recognized ESC class
func (c EvidenceClass) IsValid() bool {
	switch c {
	case CLASS_I, CLASS_IIA, CLASS_IIB, CLASS_III:
		return true
	}
	return false
}

// String returns the string representation of the evidence class
func (c EvidenceClass) String() string {
	return string(c)
}

// Description returns the guideline wording for the class
func (c EvidenceClass) Description() string {
	switch c {
	case CLASS_I:
		return "Is recommended or is indicated"
	case CLASS_IIA:
		return "Should be considered"
	case CLASS_IIB:
		return "May be considered"
	case CLASS_III:
		return "Is not recommended"
	default:
		return "Unknown"
	}
}

// StrengthText returns a short strength label for display
func (c EvidenceClass) StrengthText() string {
	switch c {
	case CLASS_I:
		return "Strong recommendation"
	case CLASS_IIA:
		return "Moderate recommendation"
	case CLASS_IIB:
		return "Weak recommendation"
	case CLASS_III:
		return "Recommendation against"
	default:
		return "Unknown"
	}
}

// EvidenceLevel represents the ESC level of evidence, i.e. the quality
// of the data behind a recommendation.
type EvidenceLevel string

const (
	LEVEL_A EvidenceLevel = "A"
	LEVEL_B EvidenceLevel = "B"
	LEVEL_C EvidenceLevel = "C"
)

// IsValid checks if the evidence level is recognized
func (l EvidenceLevel) IsValid() bool {
	switch l {
	case LEVEL_A, LEVEL_B, LEVEL_C:
		return true
	}
	return false
}

// String returns the string representation of the evidence level
func (l EvidenceLevel) String() string {
	return string(l)
}

// Description returns the guideline wording for the level
func (l EvidenceLevel) Description() string {
	switch l {
	case LEVEL_A:
		return "Data derived from multiple randomized clinical trials or meta-analyses"
	case LEVEL_B:
		return "Data derived from a single randomized clinical trial or large non-randomized studies"
	case LEVEL_C:
		return "Consensus of opinion of the experts and/or small studies, retrospective studies, registries"
	default:
		return "Unknown"
	}
}

// SourceType identifies where a recommendation came from. Anything other
// than a direct guideline citation degrades confidence and may require a
// disclaimer when displayed.
type SourceType string

const (
	SOURCE_GUIDELINE           SourceType = "guideline"
	SOURCE_GUIDELINE_EXPERT    SourceType = "guideline_expert"
	SOURCE_SYNTHESIS           SourceType = "synthesis"
	SOURCE_EXTRAPOLATION       SourceType = "extrapolation"
	SOURCE_CLINICAL_EXPERIENCE SourceType = "clinical_experience"
)

// IsValid checks if the source type is recognized
func (s SourceType) IsValid() bool {
	switch s {
	case SOURCE_GUIDELINE, SOURCE_GUIDELINE_EXPERT, SOURCE_SYNTHESIS,
		SOURCE_EXTRAPOLATION, SOURCE_CLINICAL_EXPERIENCE:
		return true
	}
	return false
}

// String returns the string representation of the source type
func (s SourceType) String() string {
	return string(s)
}

// RequiresDisclaimer reports whether display of a recommendation from
// this source must carry a non-guideline disclaimer.
func (s SourceType) RequiresDisclaimer() bool {
	return s != SOURCE_GUIDELINE
}

// ConfidenceModifier returns the multiplier applied to base confidence
// for recommendations from this source.
func (s SourceType) ConfidenceModifier() float64 {
	switch s {
	case SOURCE_GUIDELINE:
		return 1.0
	case SOURCE_GUIDELINE_EXPERT:
		return 0.95
	case SOURCE_SYNTHESIS:
		return 0.7
	case SOURCE_EXTRAPOLATION:
		return 0.6
	case SOURCE_CLINICAL_EXPERIENCE:
		return 0.5
	default:
		return 0.5
	}
}

// RecommendationCategory classifies the kind of clinical action recommended
type RecommendationCategory string

const (
	CATEGORY_DIAGNOSTIC       RecommendationCategory = "diagnostic"
	CATEGORY_PHARMACOTHERAPY  RecommendationCategory = "pharmacotherapy"
	CATEGORY_DEVICE           RecommendationCategory = "device"
	CATEGORY_PROCEDURE        RecommendationCategory = "procedure"
	CATEGORY_LIFESTYLE        RecommendationCategory = "lifestyle"
	CATEGORY_MONITORING       RecommendationCategory = "monitoring"
	CATEGORY_REFERRAL         RecommendationCategory = "referral"
	CATEGORY_CONTRAINDICATION RecommendationCategory = "contraindication"
)

// IsValid checks if the category is recognized
func (c RecommendationCategory) IsValid() bool {
	switch c {
	case CATEGORY_DIAGNOSTIC, CATEGORY_PHARMACOTHERAPY, CATEGORY_DEVICE,
		CATEGORY_PROCEDURE, CATEGORY_LIFESTYLE, CATEGORY_MONITORING,
		CATEGORY_REFERRAL, CATEGORY_CONTRAINDICATION:
		return true
	}
	return false
}

// String returns the string representation of the category
func (c RecommendationCategory) String() string {
	return string(c)
}

// Urgency represents how quickly a recommended action should happen
type Urgency string

const (
	URGENCY_EMERGENT Urgency = "emergent"
	URGENCY_URGENT   Urgency = "urgent"
	URGENCY_SOON     Urgency = "soon"
	URGENCY_ROUTINE  Urgency = "routine"
	URGENCY_ELECTIVE Urgency = "elective"
)

// IsValid checks if the urgency is recognized
func (u Urgency) IsValid() bool {
	switch u {
	case URGENCY_EMERGENT, URGENCY_URGENT, URGENCY_SOON, URGENCY_ROUTINE, URGENCY_ELECTIVE:
		return true
	}
	return false
}

// String returns the string representation of the urgency
func (u Urgency) String() string {
	return string(u)
}

// Timeframe returns the expected window for acting on the recommendation
func (u Urgency) Timeframe() string {
	switch u {
	case URGENCY_EMERGENT:
		return "Immediate action required"
	case URGENCY_URGENT:
		return "Within 24 hours"
	case URGENCY_SOON:
		return "Within days to weeks"
	case URGENCY_ROUTINE:
		return "Routine scheduling"
	case URGENCY_ELECTIVE:
		return "Elective, patient preference"
	default:
		return "Unknown"
	}
}

// ConfidenceLevel buckets numeric confidence for synthesized content.
// It is deliberately a separate vocabulary from EvidenceClass/EvidenceLevel:
// synthesized recommendations never carry ESC evidence grades.
type ConfidenceLevel string

const (
	CONFIDENCE_VERY_HIGH ConfidenceLevel = "very_high"
	CONFIDENCE_HIGH      ConfidenceLevel = "high"
	CONFIDENCE_MODERATE  ConfidenceLevel = "moderate"
	CONFIDENCE_LOW       ConfidenceLevel = "low"
	CONFIDENCE_VERY_LOW  ConfidenceLevel = "very_low"
)

// IsValid checks if the confidence level is recognized
func (c ConfidenceLevel) IsValid() bool {
	switch c {
	case CONFIDENCE_VERY_HIGH, CONFIDENCE_HIGH, CONFIDENCE_MODERATE,
		CONFIDENCE_LOW, CONFIDENCE_VERY_LOW:
		return true
	}
	return false
}

// String returns the string representation of the confidence level
func (c ConfidenceLevel) String() string {
	return string(c)
}

// NumericValue returns the canonical numeric confidence for the bucket
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
	default:
		return 0.30
	}
}

// DisplayText returns a human-readable label for the bucket
func (c ConfidenceLevel) DisplayText() string {
	switch c {
	case CONFIDENCE_VERY_HIGH:
		return "Very High Confidence"
	case CONFIDENCE_HIGH:
		return "High Confidence"
	case CONFIDENCE_MODERATE:
		return "Moderate Confidence"
	case CONFIDENCE_LOW:
		return "Low Confidence"
	case CONFIDENCE_VERY_LOW:
		return "Very Low Confidence"
	default:
		return "Unknown Confidence"
	}
}

// ActionGuidance returns what a clinician should do with a recommendation
// at this confidence level.
func (c ConfidenceLevel) ActionGuidance() string {
	switch c {
	case CONFIDENCE_VERY_HIGH:
		return "Can be applied with standard clinical judgment"
	case CONFIDENCE_HIGH:
		return "Apply with attention to patient-specific factors"
	case CONFIDENCE_MODERATE:
		return "Consider alternatives and individualize"
	case CONFIDENCE_LOW:
		return "Use as starting point; strongly consider specialist input"
	case CONFIDENCE_VERY_LOW:
		return "Specialist consultation recommended before acting"
	default:
		return "Interpret with caution"
	}
}

// NYHAClass represents the New York Heart Association functional class
type NYHAClass int

const (
	NYHA_I   NYHAClass = 1
	NYHA_II  NYHAClass = 2
	NYHA_III NYHAClass = 3
	NYHA_IV  NYHAClass = 4
)

// IsValid checks if the NYHA class is within I-IV
func (n NYHAClass) IsValid() bool {
	return n >= NYHA_I && n <= NYHA_IV
}

// String returns the Roman-numeral representation
func (n NYHAClass) String() string {
	switch n {
	case NYHA_I:
		return "I"
	case NYHA_II:
		return "II"
	case NYHA_III:
		return "III"
	case NYHA_IV:
		return "IV"
	default:
		return "?"
	}
}

// Description returns the functional limitation description for the class
func (n NYHAClass) Description() string {
	switch n {
	case NYHA_I:
		return "No limitation of physical activity"
	case NYHA_II:
		return "Slight limitation; comfortable at rest"
	case NYHA_III:
		return "Marked limitation; comfortable only at rest"
	case NYHA_IV:
		return "Symptoms at rest; unable to carry on any physical activity without discomfort"
	default:
		return "Unknown functional class"
	}
}

// HFPhenotype represents the ejection-fraction-based heart failure phenotype
type HFPhenotype string

const (
	HFREF  HFPhenotype = "HFrEF"
	HFMREF HFPhenotype = "HFmrEF"
	HFPEF  HFPhenotype = "HFpEF"
)

// IsValid checks if the phenotype is recognized
func (p HFPhenotype) IsValid() bool {
	switch p {
	case HFREF, HFMREF, HFPEF:
		return true
	}
	return false
}

// String returns the string representation of the phenotype
func (p HFPhenotype) String() string {
	return string(p)
}

// ReasoningStrategy identifies which stage of the reasoning fallback
// chain produced an answer.
type ReasoningStrategy string

const (
	STRATEGY_DIRECT_GUIDELINE     ReasoningStrategy = "direct_guideline"
	STRATEGY_ANALOGICAL           ReasoningStrategy = "analogical"
	STRATEGY_MULTI_GUIDELINE      ReasoningStrategy = "multi_guideline"
	STRATEGY_EXPERT_EXTRAPOLATION ReasoningStrategy = "expert_extrapolation"
	STRATEGY_FIRST_PRINCIPLES     ReasoningStrategy = "first_principles"
)

// IsValid checks if the strategy is recognized
func (s ReasoningStrategy) IsValid() bool {
	switch s {
	case STRATEGY_DIRECT_GUIDELINE, STRATEGY_ANALOGICAL, STRATEGY_MULTI_GUIDELINE,
		STRATEGY_EXPERT_EXTRAPOLATION, STRATEGY_FIRST_PRINCIPLES:
		return true
	}
	return false
}

// String returns the string representation of the strategy
func (s ReasoningStrategy) String() string {
	return string(s)
}

// IsSynthesis reports whether answers produced under this strategy are
// synthesized rather than directly cited from a single guideline.
func (s ReasoningStrategy) IsSynthesis() bool {
	return s != STRATEGY_DIRECT_GUIDELINE
}

// Sentinel errors for domain validation
var (
	ErrInvalidEvidenceClass = errors.New("invalid evidence class")
	ErrInvalidEvidenceLevel = errors.New("invalid evidence level")
	ErrInvalidCategory      = errors.New("invalid recommendation category")
	ErrInvalidUrgency       = errors.New("invalid urgency")
	ErrEmptyAction          = errors.New("recommendation action cannot be empty")
	ErrMissingSection       = errors.New("guideline recommendation requires a section citation")
	ErrUnknownGuideline     = errors.New("unknown guideline identifier")
	ErrUnknownScore         = errors.New("unknown score name")
)

// LogFields returns structured logging fields for a recommendation grading
func LogFields(class EvidenceClass, level EvidenceLevel, source SourceType) map[string]interface{} {
	return map[string]interface{}{
		"evidence_class": class.String(),
		"evidence_level": level.String(),
		"source_type":    source.String(),
	}
}

// ValidateGrading checks that a class/level pair forms a valid ESC grading
func ValidateGrading(class EvidenceClass, level EvidenceLevel) error {
	if !class.IsValid() {
		return fmt.Errorf("grading check failed: %w: %q", ErrInvalidEvidenceClass, class)
	}
	if !level.IsValid() {
		return fmt.Errorf("grading check failed: %w: %q", ErrInvalidEvidenceLevel, level)
	}
	return nil
}
