package domain

import (
	"fmt"
	"strings"
	"time"
)

// Recommendation is a single clinical recommendation with full evidence
// provenance. A Recommendation is immutable once constructed.
//
// Every recommendation must make it possible to tell, without reading
// prose, whether it is a direct guideline citation or a synthesized
// blend. Direct citations carry a Citation with ESC class/level;
// synthesized recommendations carry SourceGuidelines, a synthesis
// rationale, and a numeric confidence instead. IsSynthesis enforces the
// distinction.
type Recommendation struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale,omitempty"`

	Category RecommendationCategory `json:"category"`
	Urgency  Urgency                `json:"urgency"`

	// Provenance for direct citations
	Citation   *Citation  `json:"citation,omitempty"`
	SourceType SourceType `json:"source_type"`

	// Provenance when SourceType is synthesis or extrapolation
	SynthesisRationale string   `json:"synthesis_rationale,omitempty"`
	SourceGuidelines   []string `json:"source_guidelines,omitempty"`
	ConfidenceScore    float64  `json:"confidence_score,omitempty"` // 0.0-1.0

	Conditions        []string `json:"conditions,omitempty"`
	Contraindications []string `json:"contraindications,omitempty"`
	Monitoring        string   `json:"monitoring,omitempty"`
	FollowUp          string   `json:"follow_up,omitempty"`
	Alternatives      []string `json:"alternatives,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// IsGuidelineBased reports whether the recommendation comes directly
// from a guideline document.
func (r *Recommendation) IsGuidelineBased() bool {
	return r.SourceType == SOURCE_GUIDELINE || r.SourceType == SOURCE_GUIDELINE_EXPERT
}

// IsSynthesis reports whether the recommendation is synthesized rather
// than a verbatim guideline citation.
func (r *Recommendation) IsSynthesis() bool {
	return !r.IsGuidelineBased()
}

// RequiresDisclaimer reports whether display must carry the
// non-guideline disclaimer.
func (r *Recommendation) RequiresDisclaimer() bool {
	return r.SourceType.RequiresDisclaimer()
}

// EvidenceClass returns the cited class or "" for synthesized content
func (r *Recommendation) EvidenceClass() EvidenceClass {
	if r.Citation == nil {
		return ""
	}
	return r.Citation.EvidenceClass
}

// EvidenceLevel returns the cited level or "" for synthesized content
func (r *Recommendation) EvidenceLevel() EvidenceLevel {
	if r.Citation == nil {
		return ""
	}
	return r.Citation.EvidenceLevel
}

// FormatForDisplay renders the recommendation for clinical display.
// Guideline-based output leads with the citation; synthesized output
// leads with the disclaimer. Section ordering is load-bearing for
// downstream display tooling.
func (r *Recommendation) FormatForDisplay() string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	if r.IsGuidelineBased() {
		b.WriteString("SOURCE: GUIDELINE\n")
		if r.Citation != nil {
			b.WriteString("  " + r.Citation.FormatShort() + "\n")
			if len(r.Citation.Studies) > 0 {
				b.WriteString("  Studies: " + strings.Join(r.Citation.Studies, ", ") + "\n")
			}
		}
	} else {
		b.WriteString("SOURCE: " + strings.ToUpper(r.SourceType.String()) + "\n")
		if r.ConfidenceScore > 0 {
			b.WriteString(fmt.Sprintf("  Confidence: %.0f%%\n", r.ConfidenceScore*100))
		}
		if len(r.SourceGuidelines) > 0 {
			b.WriteString("  Based on: " + strings.Join(r.SourceGuidelines, ", ") + "\n")
		}
		b.WriteString("  " + strings.Repeat("-", 40) + "\n")
		b.WriteString("  NOTE: This is NOT a direct guideline recommendation.\n")
		if r.SynthesisRationale != "" {
			b.WriteString("  Reasoning: " + r.SynthesisRationale + "\n")
		}
	}
	b.WriteString(rule + "\n\n")

	b.WriteString("RECOMMENDATION: " + r.Action + "\n")
	if r.Rationale != "" {
		b.WriteString("  Rationale: " + r.Rationale + "\n")
	}
	b.WriteString("  Category: " + r.Category.String() + "\n")
	b.WriteString("  Urgency: " + r.Urgency.String() + "\n")
	if len(r.Conditions) > 0 {
		b.WriteString("  Applies when: " + strings.Join(r.Conditions, "; ") + "\n")
	}
	if len(r.Contraindications) > 0 {
		b.WriteString("  Avoid if: " + strings.Join(r.Contraindications, "; ") + "\n")
	}
	if r.Monitoring != "" {
		b.WriteString("  Monitor: " + r.Monitoring + "\n")
	}
	if r.FollowUp != "" {
		b.WriteString("  Follow-up: " + r.FollowUp + "\n")
	}
	if len(r.Alternatives) > 0 {
		b.WriteString("  Alternatives: " + strings.Join(r.Alternatives, "; ") + "\n")
	}
	return b.String()
}

// RecommendationSet is an ordered collection of related recommendations.
// Insertion order is preserved exactly (it mirrors the guideline
// document's own presentation order) and duplicates are never removed;
// overlapping rule functions may legitimately emit the same statement
// for different sub-populations.
type RecommendationSet struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Recommendations []Recommendation `json:"recommendations"`

	PatientContext   string `json:"patient_context,omitempty"`
	ClinicalQuestion string `json:"clinical_question,omitempty"`

	PrimaryGuideline string    `json:"primary_guideline,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// NewRecommendationSet creates an empty set with the given title
func NewRecommendationSet(title string) *RecommendationSet {
	return &RecommendationSet{
		Title:       title,
		GeneratedAt: time.Now(),
	}
}

// Add appends a recommendation. No sorting, no de-duplication.
func (s *RecommendationSet) Add(rec Recommendation) {
	s.Recommendations = append(s.Recommendations, rec)
}

// AddAll appends each recommendation in order
func (s *RecommendationSet) AddAll(recs []Recommendation) {
	s.Recommendations = append(s.Recommendations, recs...)
}

// Count returns the number of recommendations in the set
func (s *RecommendationSet) Count() int {
	return len(s.Recommendations)
}

// HasSynthesis reports whether any member requires a synthesis disclaimer
func (s *RecommendationSet) HasSynthesis() bool {
	for i := range s.Recommendations {
		if s.Recommendations[i].RequiresDisclaimer() {
			return true
		}
	}
	return false
}

// GuidelineBasedCount counts direct-citation members
func (s *RecommendationSet) GuidelineBasedCount() int {
	n := 0
	for i := range s.Recommendations {
		if s.Recommendations[i].IsGuidelineBased() {
			n++
		}
	}
	return n
}

// SynthesisCount counts synthesized members
func (s *RecommendationSet) SynthesisCount() int {
	return s.Count() - s.GuidelineBasedCount()
}

// ByCategory returns members of the given category in insertion order
func (s *RecommendationSet) ByCategory(category RecommendationCategory) []Recommendation {
	var out []Recommendation
	for _, r := range s.Recommendations {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// ByUrgency returns members with the given urgency in insertion order
func (s *RecommendationSet) ByUrgency(urgency Urgency) []Recommendation {
	var out []Recommendation
	for _, r := range s.Recommendations {
		if r.Urgency == urgency {
			out = append(out, r)
		}
	}
	return out
}

// ByEvidenceClass returns directly cited members of the given class
func (s *RecommendationSet) ByEvidenceClass(class EvidenceClass) []Recommendation {
	var out []Recommendation
	for _, r := range s.Recommendations {
		if r.Citation != nil && r.Citation.EvidenceClass == class {
			out = append(out, r)
		}
	}
	return out
}

// FormatForDisplay renders the whole set for clinical display
func (s *RecommendationSet) FormatForDisplay() string {
	var b strings.Builder
	rule := strings.Repeat("#", 60)

	b.WriteString(rule + "\n")
	b.WriteString("# " + s.Title + "\n")
	b.WriteString(rule + "\n")
	if s.Description != "" {
		b.WriteString("\n" + s.Description + "\n")
	}
	if s.ClinicalQuestion != "" {
		b.WriteString("Question: " + s.ClinicalQuestion + "\n")
	}
	if s.PatientContext != "" {
		b.WriteString("Patient: " + s.PatientContext + "\n")
	}

	b.WriteString(fmt.Sprintf("\nTotal recommendations: %d\n", s.Count()))
	b.WriteString(fmt.Sprintf("  - Guideline-based: %d\n", s.GuidelineBasedCount()))
	if n := s.SynthesisCount(); n > 0 {
		b.WriteString(fmt.Sprintf("  - Synthesized: %d (see disclaimers)\n", n))
	}
	b.WriteString("\n" + strings.Repeat("-", 60) + "\n")

	for i := range s.Recommendations {
		b.WriteString(fmt.Sprintf("\n[%d/%d]\n", i+1, s.Count()))
		b.WriteString(s.Recommendations[i].FormatForDisplay())
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("Generated: " + s.GeneratedAt.Format("2006-01-02 15:04") + "\n")
	if s.PrimaryGuideline != "" {
		b.WriteString("Primary source: " + s.PrimaryGuideline + "\n")
	}
	return b.String()
}

// GuidelineRecOptions carries the optional fields of a direct guideline
// recommendation.
type GuidelineRecOptions struct {
	Page              int
	Section           string
	SectionTitle      string
	Studies           []string
	Rationale         string
	Monitoring        string
	Conditions        []string
	Contraindications []string
}

// GuidelineRecommendation creates a direct guideline citation. It stamps
// the guideline source type and requires a resolvable registry key plus
// ESC class/level: a direct citation always carries traceable
// provenance.
func GuidelineRecommendation(action, guidelineKey string, class EvidenceClass, level EvidenceLevel,
	category RecommendationCategory, urgency Urgency, opts *GuidelineRecOptions) (Recommendation, error) {

	if action == "" {
		return Recommendation{}, ErrEmptyAction
	}
	if opts == nil {
		opts = &GuidelineRecOptions{}
	}

	citationOpts := []CitationOption{}
	if opts.Section != "" || opts.SectionTitle != "" {
		citationOpts = append(citationOpts, WithSection(opts.Section, opts.SectionTitle))
	}
	if opts.Page > 0 {
		citationOpts = append(citationOpts, WithPage(opts.Page))
	}
	if len(opts.Studies) > 0 {
		citationOpts = append(citationOpts, WithStudies(opts.Studies...))
	}

	citation, err := NewCitation(guidelineKey, class, level, citationOpts...)
	if err != nil {
		return Recommendation{}, fmt.Errorf("guideline recommendation: %w", err)
	}

	return Recommendation{
		Action:            action,
		Rationale:         opts.Rationale,
		Category:          category,
		Urgency:           urgency,
		Citation:          citation,
		SourceType:        SOURCE_GUIDELINE,
		Monitoring:        opts.Monitoring,
		Conditions:        opts.Conditions,
		Contraindications: opts.Contraindications,
		GeneratedAt:       time.Now(),
	}, nil
}

// MustGuidelineRecommendation is GuidelineRecommendation for statically
// known registry keys. Panics on failure, which for a literal key is a
// programmer error.
func MustGuidelineRecommendation(action, guidelineKey string, class EvidenceClass, level EvidenceLevel,
	category RecommendationCategory, urgency Urgency, opts *GuidelineRecOptions) Recommendation {

	rec, err := GuidelineRecommendation(action, guidelineKey, class, level, category, urgency, opts)
	if err != nil {
		panic(err)
	}
	return rec
}

// SynthesisRecommendation creates a synthesized recommendation. It stamps
// the synthesis source type, carries no ESC evidence grading (there is
// none), and records which guidelines were blended plus the reasoning
// and a numeric confidence. Display always includes the disclaimer.
func SynthesisRecommendation(action, rationale string, sourceGuidelines []string,
	synthesisRationale string, confidenceScore float64,
	category RecommendationCategory, urgency Urgency) Recommendation {

	if synthesisRationale == "" {
		synthesisRationale = "Derived from clinical reasoning"
	}
	if confidenceScore <= 0 {
		confidenceScore = SOURCE_SYNTHESIS.ConfidenceModifier()
	}

	return Recommendation{
		Action:             action,
		Rationale:          rationale,
		Category:           category,
		Urgency:            urgency,
		SourceType:         SOURCE_SYNTHESIS,
		SynthesisRationale: synthesisRationale,
		SourceGuidelines:   sourceGuidelines,
		ConfidenceScore:    confidenceScore,
		GeneratedAt:        time.Now(),
	}
}
