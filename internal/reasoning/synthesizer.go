// Package reasoning integrates guideline rule functions and applies
// clinical reasoning when no single guideline answers a question.
//
// Every synthesized answer is explicitly flagged: the clinician must
// always be able to tell guideline-based from synthesized or
// extrapolated content.
package reasoning

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/guidelines"
)

// ReasoningStrategy names how an answer was derived.
type ReasoningStrategy string

const (
	STRATEGY_DIRECT_GUIDELINE     ReasoningStrategy = "direct_guideline"
	STRATEGY_ANALOGICAL           ReasoningStrategy = "analogical"
	STRATEGY_MULTI_GUIDELINE      ReasoningStrategy = "multi_guideline"
	STRATEGY_EXPERT_EXTRAPOLATION ReasoningStrategy = "expert_extrapolation"
	STRATEGY_FIRST_PRINCIPLES     ReasoningStrategy = "first_principles"
)

// ReasoningStep is one entry in the reasoning audit chain.
type ReasoningStep struct {
	StepNumber  int     `json:"step_number"`
	Description string  `json:"description"`
	Source      string  `json:"source,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// ReasoningResult carries the answer plus the full reasoning chain for
// transparency and audit. The chain grows monotonically as the reasoner
// moves through its fallback stages and is never rewritten.
type ReasoningResult struct {
	Question string            `json:"question"`
	Answer   string            `json:"answer"`
	Strategy ReasoningStrategy `json:"strategy"`

	ReasoningChain []ReasoningStep `json:"reasoning_chain"`

	GuidelinesConsulted []string `json:"guidelines_consulted"`
	EvidenceFound       bool     `json:"evidence_found"`

	OverallConfidence  float64  `json:"overall_confidence"`
	UncertaintyFactors []string `json:"uncertainty_factors,omitempty"`

	Recommendations []domain.Recommendation `json:"recommendations,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// IsSynthesis reports whether the result involved reasoning beyond a
// direct guideline citation.
func (r *ReasoningResult) IsSynthesis() bool {
	return r.Strategy != STRATEGY_DIRECT_GUIDELINE
}

// FormatReasoningChain renders the audit chain for display.
func (r *ReasoningResult) FormatReasoningChain() string {
	lines := []string{"Reasoning Chain:", strings.Repeat("-", 40)}
	for _, step := range r.ReasoningChain {
		source := ""
		if step.Source != "" {
			source = fmt.Sprintf(" [%s]", step.Source)
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s (confidence: %.0f%%)",
			step.StepNumber, step.Description, source, step.Confidence*100))
	}
	return strings.Join(lines, "\n")
}

// FormatForDisplay renders the complete result. Synthesized output leads
// with an unmissable banner.
func (r *ReasoningResult) FormatForDisplay() string {
	var lines []string

	if r.IsSynthesis() {
		bang := strings.Repeat("!", 60)
		lines = append(lines, bang, "! SYNTHESIS / EXTRAPOLATION - NOT DIRECT GUIDELINE", bang)
		lines = append(lines, fmt.Sprintf("Reasoning strategy: %s", r.Strategy))
		lines = append(lines, fmt.Sprintf("Overall confidence: %.0f%%", r.OverallConfidence*100))
		if len(r.UncertaintyFactors) > 0 {
			lines = append(lines, "Uncertainty factors:")
			for _, factor := range r.UncertaintyFactors {
				lines = append(lines, "  - "+factor)
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, "Question: "+r.Question, "", "Answer: "+r.Answer, "")

	if len(r.GuidelinesConsulted) > 0 {
		lines = append(lines, "Guidelines consulted: "+strings.Join(r.GuidelinesConsulted, ", "))
	}

	lines = append(lines, "", r.FormatReasoningChain())

	if len(r.Recommendations) > 0 {
		lines = append(lines, "\n"+strings.Repeat("=", 40), "Recommendations:")
		for i := range r.Recommendations {
			lines = append(lines, r.Recommendations[i].FormatForDisplay())
		}
	}

	return strings.Join(lines, "\n")
}

// DirectMatch is a resolved single-guideline answer.
type DirectMatch struct {
	Guideline       string
	Answer          string
	Recommendations []domain.Recommendation
}

// MatchFunc attempts to resolve a question directly against one
// guideline family's rule functions. Returns nil when the family cannot
// answer the question for this patient.
type MatchFunc func(p *domain.Patient, question string) *DirectMatch

// ClinicalReasoner applies the staged fallback chain: direct guideline
// match, multi-guideline synthesis, then expert extrapolation. The
// extrapolation stage always succeeds, so Reason never fails.
type ClinicalReasoner struct {
	logger   *logrus.Logger
	matchers map[guidelines.Family]MatchFunc
}

// NewClinicalReasoner creates a reasoner with the built-in family
// matchers installed.
func NewClinicalReasoner(logger *logrus.Logger) *ClinicalReasoner {
	r := &ClinicalReasoner{
		logger:   logger,
		matchers: make(map[guidelines.Family]MatchFunc),
	}
	r.matchers[guidelines.FAMILY_ATRIAL_FIBRILLATION] = matchAFAnticoagulation
	r.matchers[guidelines.FAMILY_HEART_FAILURE] = matchHFTreatment
	r.matchers[guidelines.FAMILY_ACS] = matchACSRisk
	return r
}

// RegisterMatcher installs or replaces the direct matcher for a family.
func (r *ClinicalReasoner) RegisterMatcher(family guidelines.Family, fn MatchFunc) {
	r.matchers[family] = fn
}

// Reason answers a clinical question for a patient. With
// requireGuideline set, only a direct guideline match is returned;
// otherwise the reasoner falls back to synthesis and finally to flagged
// expert extrapolation, which always produces an answer.
func (r *ClinicalReasoner) Reason(p *domain.Patient, question string, requireGuideline bool) ReasoningResult {
	result := ReasoningResult{
		Question:    question,
		Strategy:    STRATEGY_FIRST_PRINCIPLES,
		GeneratedAt: time.Now(),
	}

	families := guidelines.RelevantFamilies(p, question)
	for _, f := range families {
		result.GuidelinesConsulted = append(result.GuidelinesConsulted, string(f))
	}

	r.logger.WithFields(logrus.Fields{
		"relevant_families": len(families),
		"require_guideline": requireGuideline,
	}).Debug("Starting clinical reasoning")

	stepNum := 1
	result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
		StepNumber:  stepNum,
		Description: fmt.Sprintf("Identified %d potentially relevant guidelines", len(families)),
		Source:      "CardioCode guideline registry",
		Confidence:  1.0,
	})

	match := r.findDirectMatch(p, question, families)

	stepNum++
	if match != nil {
		result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
			StepNumber:  stepNum,
			Description: "Found direct guideline recommendation",
			Source:      match.Guideline,
			Confidence:  1.0,
		})
		result.Strategy = STRATEGY_DIRECT_GUIDELINE
		result.EvidenceFound = true
		result.Answer = match.Answer
		result.OverallConfidence = 1.0
		result.Recommendations = match.Recommendations

		r.logger.WithField("guideline", match.Guideline).Debug("Direct guideline match")
		return result
	}
	result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
		StepNumber:  stepNum,
		Description: "No direct guideline match found",
		Confidence:  1.0,
	})

	if requireGuideline {
		result.Answer = "No direct guideline recommendation found for this clinical scenario. " +
			"Synthesis was not requested."
		result.OverallConfidence = 0.0
		return result
	}

	stepNum++
	result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
		StepNumber:  stepNum,
		Description: "Attempting synthesis from multiple guidelines",
		Confidence:  0.8,
	})

	if synthesis := r.synthesize(p, question, families); synthesis != nil {
		result.Strategy = STRATEGY_MULTI_GUIDELINE
		result.Answer = synthesis.answer
		result.OverallConfidence = synthesis.confidence
		result.UncertaintyFactors = synthesis.uncertainties
		result.Recommendations = synthesis.recommendations

		stepNum++
		result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
			StepNumber:  stepNum,
			Description: fmt.Sprintf("Synthesized recommendation from %d guidelines", len(synthesis.sources)),
			Source:      strings.Join(synthesis.sources, ", "),
			Confidence:  result.OverallConfidence,
		})

		r.logger.WithField("sources", len(synthesis.sources)).Debug("Multi-guideline synthesis")
		return result
	}

	stepNum++
	result.ReasoningChain = append(result.ReasoningChain, ReasoningStep{
		StepNumber:  stepNum,
		Description: "Applying clinical reasoning beyond guideline scope",
		Confidence:  0.5,
	})

	result.Strategy = STRATEGY_EXPERT_EXTRAPOLATION
	result.Answer = "No direct guideline recommendation available for this scenario. " +
		"Clinical judgment required. Consider specialist consultation."
	result.OverallConfidence = 0.4
	result.UncertaintyFactors = []string{
		"Outside explicit guideline scope",
		"Individual patient factors may apply",
		"Recommend multidisciplinary discussion",
	}
	result.Recommendations = []domain.Recommendation{
		domain.SynthesisRecommendation(
			"Consider specialist consultation for individualized management",
			"Clinical scenario not directly addressed by available guidelines",
			[]string{"General cardiology practice"},
			"No direct guideline match; expert opinion recommended",
			0.4,
			domain.CATEGORY_REFERRAL,
			domain.URGENCY_ROUTINE,
		),
	}

	r.logger.Debug("Expert extrapolation fallback")
	return result
}

// findDirectMatch resolves the question against exactly one relevant
// guideline. With several families in play no single guideline owns the
// answer; that is the synthesis stage's job.
func (r *ClinicalReasoner) findDirectMatch(p *domain.Patient, question string, families []guidelines.Family) *DirectMatch {
	if len(families) != 1 {
		return nil
	}
	matcher, ok := r.matchers[families[0]]
	if !ok {
		return nil
	}
	return matcher(p, question)
}

type synthesisOutcome struct {
	answer          string
	confidence      float64
	uncertainties   []string
	sources         []string
	recommendations []domain.Recommendation
}

// synthesize combines answers from two or more relevant families into a
// single flagged result.
func (r *ClinicalReasoner) synthesize(p *domain.Patient, question string, families []guidelines.Family) *synthesisOutcome {
	var sources []string
	var keys []string
	var recs []domain.Recommendation
	var parts []string

	for _, f := range families {
		matcher, ok := r.matchers[f]
		if !ok {
			continue
		}
		match := matcher(p, question)
		if match == nil {
			continue
		}
		sources = append(sources, string(f))
		keys = append(keys, match.Guideline)
		recs = append(recs, match.Recommendations...)
		parts = append(parts, match.Answer)
	}

	if len(sources) < 2 {
		return nil
	}

	recs = append(recs, domain.SynthesisRecommendation(
		"Integrate the above guideline recommendations; no single guideline covers this combination",
		fmt.Sprintf("Question spans %d guideline families (%s)", len(sources), strings.Join(sources, ", ")),
		keys,
		"Combined recommendations from multiple guidelines that individually address parts of the question",
		0.7,
		domain.CATEGORY_MONITORING,
		domain.URGENCY_ROUTINE,
	))

	return &synthesisOutcome{
		answer:     strings.Join(parts, " | "),
		confidence: 0.7,
		uncertainties: []string{
			"Recommendation synthesized from multiple guidelines",
			"No single guideline addresses this exact combination",
		},
		sources:         sources,
		recommendations: recs,
	}
}

// matchAFAnticoagulation answers anticoagulation questions for patients
// with documented AF.
func matchAFAnticoagulation(p *domain.Patient, question string) *DirectMatch {
	hasAF := p.AFType != "" || (p.ECG != nil && p.ECG.AFPresent)
	if !hasAF {
		return nil
	}
	q := strings.ToLower(question)
	if !strings.Contains(q, "anticoagul") && !strings.Contains(q, "stroke prevention") {
		return nil
	}

	assessment := guidelines.AssessStrokeRisk(p)
	set := guidelines.AnticoagulationRecommendations(p)
	return &DirectMatch{
		Guideline:       guidelines.FAMILY_ATRIAL_FIBRILLATION.GuidelineKey(),
		Answer:          assessment.Recommendations[0].Action,
		Recommendations: set.Recommendations,
	}
}

// matchHFTreatment answers therapy questions when the HF phenotype is
// determinable from LVEF.
func matchHFTreatment(p *domain.Patient, question string) *DirectMatch {
	if _, ok := p.HFPhenotypeFromLVEF(); !ok {
		return nil
	}
	q := strings.ToLower(question)
	if !strings.Contains(q, "gdmt") && !strings.Contains(q, "treatment") &&
		!strings.Contains(q, "therapy") && !strings.Contains(q, "medication") {
		return nil
	}

	set := guidelines.GDMTForPhenotype(p)
	return &DirectMatch{
		Guideline:       guidelines.FAMILY_HEART_FAILURE.GuidelineKey(),
		Answer:          fmt.Sprintf("%s: %d guideline-directed recommendations", set.Title, set.Count()),
		Recommendations: set.Recommendations,
	}
}

// matchACSRisk answers invasive-timing questions when GRACE inputs are
// recorded.
func matchACSRisk(p *domain.Patient, question string) *DirectMatch {
	q := strings.ToLower(question)
	if !strings.Contains(q, "invasive") && !strings.Contains(q, "nstemi") &&
		!strings.Contains(q, "acute coronary") && !strings.Contains(q, "risk") {
		return nil
	}

	set := guidelines.AssessACSRisk(p)
	if set.Description == "" {
		return nil
	}
	return &DirectMatch{
		Guideline:       guidelines.FAMILY_ACS.GuidelineKey(),
		Answer:          set.Description,
		Recommendations: set.Recommendations,
	}
}

// ExplainGap explains why guidelines may not apply to a specific case.
func (r *ClinicalReasoner) ExplainGap(question string, p *domain.Patient) string {
	var gaps []string

	if p.Age != nil && *p.Age > 85 {
		gaps = append(gaps,
			"Patient age (>85 years) exceeds typical RCT inclusion criteria. "+
				"Most trials excluded patients over 75-80 years.")
	}

	if egfr := p.EGFR(); egfr != nil && *egfr < 25 {
		gaps = append(gaps,
			"Severe CKD (eGFR < 25) often excluded from major trials. "+
				"Dosing and safety data may be limited.")
	}

	if p.HasDiagnosis("frailty") {
		gaps = append(gaps,
			"Frailty was exclusion criterion in most major trials. "+
				"Risk-benefit may differ from trial populations.")
	}

	if len(gaps) == 0 {
		gaps = append(gaps,
			"This specific clinical combination may not be directly addressed "+
				"in available guidelines. Individualized judgment required.")
	}

	lines := append([]string{"GUIDELINE GAP EXPLANATION:", strings.Repeat("-", 40)}, gaps...)
	return strings.Join(lines, "\n")
}

var (
	defaultReasoner     *ClinicalReasoner
	defaultReasonerOnce sync.Once
)

// DefaultReasoner returns the process-wide reasoner. Prefer
// NewClinicalReasoner with an injected logger at application boundaries;
// this exists for convenience call sites.
func DefaultReasoner() *ClinicalReasoner {
	defaultReasonerOnce.Do(func() {
		defaultReasoner = NewClinicalReasoner(logrus.StandardLogger())
	})
	return defaultReasoner
}
