package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/reasoning"
)

func newTestAdvisor() *Advisor {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewAdvisor(logger)
}

func afTestPatient() *domain.Patient {
	age := 72
	return &domain.Patient{
		PatientID:         "pt-af-01",
		Age:               &age,
		Sex:               domain.SEX_FEMALE,
		AFType:            domain.AF_PAROXYSMAL,
		HasHypertension:   true,
		HasPriorStrokeTIA: true,
	}
}

func TestAdvisorRequiresQuestion(t *testing.T) {
	a := newTestAdvisor()

	_, err := a.Advise(context.Background(), &AdviseParams{Question: "   "})
	require.Error(t, err)

	_, err = a.Advise(context.Background(), nil)
	require.Error(t, err)
}

func TestAdvisorRespectsContext(t *testing.T) {
	a := newTestAdvisor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Advise(ctx, &AdviseParams{Question: "anticoagulation choice"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAdvisorDirectGuidelineAnswer(t *testing.T) {
	a := newTestAdvisor()

	result, err := a.Advise(context.Background(), &AdviseParams{
		Patient:  afTestPatient(),
		Question: "What anticoagulation should we start?",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, reasoning.STRATEGY_DIRECT_GUIDELINE, result.Reasoning.Strategy)
	assert.Equal(t, 1.0, result.Reasoning.OverallConfidence)

	require.Contains(t, result.PatientScores, "cha2ds2_vasc")
	assert.Equal(t, 5.0, result.PatientScores["cha2ds2_vasc"].ScoreValue)
}

func TestAdvisorMemoizesIdenticalRequests(t *testing.T) {
	a := newTestAdvisor()
	params := &AdviseParams{
		Patient:  afTestPatient(),
		Question: "What anticoagulation should we start?",
	}

	first, err := a.Advise(context.Background(), params)
	require.NoError(t, err)
	second, err := a.Advise(context.Background(), params)
	require.NoError(t, err)

	assert.Same(t, first, second)

	// A different question is a different cache entry.
	third, err := a.Advise(context.Background(), &AdviseParams{
		Patient:  afTestPatient(),
		Question: "Is garlic helpful here?",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RequestID, third.RequestID)
}

func TestAdvisorRecommendationsSingleFamily(t *testing.T) {
	a := newTestAdvisor()

	lvef := 30.0
	p := &domain.Patient{LVEFValue: &lvef}

	sets := a.Recommendations(p, "")
	require.Len(t, sets, 1)
	assert.Equal(t, "GDMT Optimization for HFrEF", sets[0].Title)
	assert.Positive(t, sets[0].Count())
}

func TestAdvisorRecommendationsMultipleFamilies(t *testing.T) {
	a := newTestAdvisor()

	p := afTestPatient()
	lvef := 35.0
	p.LVEFValue = &lvef

	sets := a.Recommendations(p, "")
	require.Len(t, sets, 2)
	assert.Equal(t, "GDMT Optimization for HFrEF", sets[0].Title)
	assert.Positive(t, sets[1].Count())
}

func TestAdvisorRecommendationsNoFamilies(t *testing.T) {
	a := newTestAdvisor()

	sets := a.Recommendations(&domain.Patient{}, "statin dosing question")
	assert.Empty(t, sets)
}

func TestAdvisorStrokeRisk(t *testing.T) {
	a := newTestAdvisor()

	assessment := a.StrokeRisk(afTestPatient())
	assert.Equal(t, 5.0, assessment.CHA2DS2VASc.ScoreValue)
	assert.True(t, assessment.AnticoagulationIndicated)
}

func TestAdvisorAssessUncertainty(t *testing.T) {
	a := newTestAdvisor()

	ua := a.AssessUncertainty(domain.CLASS_I, domain.LEVEL_A, false, false, 2)
	assert.Equal(t, reasoning.CONFIDENCE_VERY_HIGH.NumericValue(), ua.BaseConfidence)
	assert.Empty(t, ua.UncertaintyFactors)
}

func TestAdvisorExplainGap(t *testing.T) {
	a := newTestAdvisor()

	text := a.ExplainGap("Rare combination of conditions", &domain.Patient{})
	assert.Contains(t, text, "GUIDELINE GAP EXPLANATION:")
}
