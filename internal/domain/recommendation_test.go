package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuidelineRecommendation(t *testing.T) {
	rec, err := GuidelineRecommendation(
		"Oral anticoagulation is recommended",
		"esc_af_2020", CLASS_I, LEVEL_A,
		CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE,
		&GuidelineRecOptions{
			Section: "10.2.2",
			Studies: []string{"ARISTOTLE", "ROCKET AF"},
		},
	)
	require.NoError(t, err)

	assert.False(t, rec.IsSynthesis())
	assert.True(t, rec.IsGuidelineBased())
	assert.False(t, rec.RequiresDisclaimer())
	assert.Equal(t, CLASS_I, rec.EvidenceClass())
	assert.Equal(t, LEVEL_A, rec.EvidenceLevel())
	require.NotNil(t, rec.Citation)
	assert.Equal(t, "ESC AF 2020", rec.Citation.GuidelineShort)
	assert.Equal(t, "10.2.2", rec.Citation.Section)
}

func TestGuidelineRecommendation_UnknownGuideline(t *testing.T) {
	_, err := GuidelineRecommendation("x", "esc_unknown_9999", CLASS_I, LEVEL_A,
		CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownGuideline)
}

func TestGuidelineRecommendation_EmptyAction(t *testing.T) {
	_, err := GuidelineRecommendation("", "esc_af_2020", CLASS_I, LEVEL_A,
		CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
	assert.ErrorIs(t, err, ErrEmptyAction)
}

func TestSynthesisRecommendation(t *testing.T) {
	rec := SynthesisRecommendation(
		"Consider specialist consultation",
		"Scenario spans multiple guideline domains",
		[]string{"esc_hf_2021", "esc_af_2020"},
		"Combined HF and AF guidance",
		0.7,
		CATEGORY_REFERRAL, URGENCY_SOON,
	)

	assert.True(t, rec.IsSynthesis())
	assert.True(t, rec.RequiresDisclaimer())
	assert.Nil(t, rec.Citation, "synthesized recommendations carry no ESC grading")
	assert.Equal(t, EvidenceClass(""), rec.EvidenceClass())
	assert.Equal(t, 0.7, rec.ConfidenceScore)
	assert.Equal(t, []string{"esc_hf_2021", "esc_af_2020"}, rec.SourceGuidelines)
}

func TestSynthesisRecommendation_Defaults(t *testing.T) {
	rec := SynthesisRecommendation("act", "", nil, "", 0, CATEGORY_MONITORING, URGENCY_ROUTINE)
	assert.Equal(t, "Derived from clinical reasoning", rec.SynthesisRationale)
	assert.Equal(t, SOURCE_SYNTHESIS.ConfidenceModifier(), rec.ConfidenceScore)
}

func TestRecommendationSet_InsertionOrderPreserved(t *testing.T) {
	set := NewRecommendationSet("Test")
	actions := []string{"first", "second", "third"}
	for _, a := range actions {
		rec, err := GuidelineRecommendation(a, "esc_hf_2021", CLASS_I, LEVEL_A,
			CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
		require.NoError(t, err)
		set.Add(rec)
	}

	require.Equal(t, 3, set.Count())
	for i, a := range actions {
		assert.Equal(t, a, set.Recommendations[i].Action)
	}
}

func TestRecommendationSet_NoDeduplication(t *testing.T) {
	rec, err := GuidelineRecommendation("Beta-blocker is recommended", "esc_hf_2021",
		CLASS_I, LEVEL_A, CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
	require.NoError(t, err)

	set := NewRecommendationSet("Dup test")
	set.Add(rec)
	set.Add(rec)
	assert.Equal(t, 2, set.Count(), "identical recommendations must both be kept")

	set2 := NewRecommendationSet("AddAll dup test")
	set2.AddAll([]Recommendation{rec, rec, rec})
	assert.Equal(t, 3, set2.Count())
}

func TestRecommendationSet_Filters(t *testing.T) {
	set := NewRecommendationSet("Filters")
	r1, _ := GuidelineRecommendation("drug", "esc_hf_2021", CLASS_I, LEVEL_A,
		CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
	r2, _ := GuidelineRecommendation("monitor", "esc_hf_2021", CLASS_IIA, LEVEL_B,
		CATEGORY_MONITORING, URGENCY_URGENT, nil)
	r3 := SynthesisRecommendation("refer", "", []string{"esc_hf_2021"}, "blend", 0.6,
		CATEGORY_REFERRAL, URGENCY_SOON)
	set.AddAll([]Recommendation{r1, r2, r3})

	assert.Len(t, set.ByCategory(CATEGORY_PHARMACOTHERAPY), 1)
	assert.Len(t, set.ByUrgency(URGENCY_URGENT), 1)
	assert.Len(t, set.ByEvidenceClass(CLASS_I), 1)
	assert.Equal(t, 2, set.GuidelineBasedCount())
	assert.Equal(t, 1, set.SynthesisCount())
	assert.True(t, set.HasSynthesis())
}

func TestRecommendation_FormatForDisplay(t *testing.T) {
	t.Run("guideline", func(t *testing.T) {
		rec, err := GuidelineRecommendation("Start ACE inhibitor", "esc_hf_2021",
			CLASS_I, LEVEL_A, CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE,
			&GuidelineRecOptions{Studies: []string{"SOLVD"}})
		require.NoError(t, err)

		out := rec.FormatForDisplay()
		assert.Contains(t, out, "SOURCE: GUIDELINE")
		assert.Contains(t, out, "Class I, Level A")
		assert.Contains(t, out, "RECOMMENDATION: Start ACE inhibitor")
		assert.NotContains(t, out, "NOT a direct guideline recommendation")
	})

	t.Run("synthesis carries disclaimer", func(t *testing.T) {
		rec := SynthesisRecommendation("Consider therapy", "", []string{"esc_hf_2021"},
			"blended", 0.65, CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE)

		out := rec.FormatForDisplay()
		assert.Contains(t, out, "SOURCE: SYNTHESIS")
		assert.Contains(t, out, "NOT a direct guideline recommendation")
		assert.Contains(t, out, "Confidence: 65%")
	})

	t.Run("section order", func(t *testing.T) {
		rec, _ := GuidelineRecommendation("Start drug", "esc_hf_2021", CLASS_I, LEVEL_A,
			CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE,
			&GuidelineRecOptions{Rationale: "mortality benefit", Monitoring: "renal function"})

		out := rec.FormatForDisplay()
		idxSource := strings.Index(out, "SOURCE:")
		idxRec := strings.Index(out, "RECOMMENDATION:")
		idxMon := strings.Index(out, "Monitor:")
		assert.True(t, idxSource < idxRec && idxRec < idxMon, "header before body before monitoring")
	})
}

func TestRecommendationSet_FormatForDisplay(t *testing.T) {
	set := NewRecommendationSet("HFrEF Treatment")
	set.Description = "Foundational therapy"
	rec, _ := GuidelineRecommendation("Start beta-blocker", "esc_hf_2021", CLASS_I, LEVEL_A,
		CATEGORY_PHARMACOTHERAPY, URGENCY_ROUTINE, nil)
	set.Add(rec)
	set.Add(SynthesisRecommendation("Consider x", "", nil, "r", 0.5, CATEGORY_REFERRAL, URGENCY_SOON))

	out := set.FormatForDisplay()
	assert.Contains(t, out, "# HFrEF Treatment")
	assert.Contains(t, out, "Total recommendations: 2")
	assert.Contains(t, out, "Synthesized: 1")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "[2/2]")
}

func TestCitationFormats(t *testing.T) {
	c, err := NewCitation("esc_af_2020", CLASS_I, LEVEL_A,
		WithSection("11.2.1", "Stroke risk assessment"),
		WithStudies("Lip GY et al. Chest 2010", "GARFIELD-AF"))
	require.NoError(t, err)

	assert.Equal(t, "ESC AF 2020, Class I, Level A", c.FormatShort())
	full := c.FormatFull()
	assert.Contains(t, full, "Section 11.2.1")
	assert.Contains(t, full, "GARFIELD-AF")
}
