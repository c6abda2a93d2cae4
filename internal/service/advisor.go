package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/cache"
	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/guidelines"
	"github.com/cardiocode-mcp-server/internal/reasoning"
	"github.com/cardiocode-mcp-server/internal/scores"
)

// Advisor orchestrates the clinical reasoning workflow: patient-derived
// scores, guideline rule functions, and the staged reasoner. It holds no
// patient state between calls; the cache memoizes deterministic outputs
// keyed by the full request.
type Advisor struct {
	logger      *logrus.Logger
	scoreEngine *ScoreEngine
	reasoner    *reasoning.ClinicalReasoner
	memo        *cache.Memory[string, *AdviseResult]
}

// AdviseParams is a clinical question asked in the context of a patient
// record.
type AdviseParams struct {
	Patient          *domain.Patient `json:"patient"`
	Question         string          `json:"question"`
	RequireGuideline bool            `json:"require_guideline,omitempty"`
}

// AdviseResult is the full advisory output for one question.
type AdviseResult struct {
	RequestID     string                        `json:"request_id"`
	Question      string                        `json:"question"`
	Reasoning     reasoning.ReasoningResult     `json:"reasoning"`
	PatientScores map[string]scores.ScoreResult `json:"patient_scores,omitempty"`
	GeneratedAt   time.Time                     `json:"generated_at"`
}

// NewAdvisor creates an advisor with its own score engine and reasoner.
func NewAdvisor(logger *logrus.Logger) *Advisor {
	return &Advisor{
		logger:      logger,
		scoreEngine: NewScoreEngine(logger),
		reasoner:    reasoning.NewClinicalReasoner(logger),
		memo:        cache.NewMemory[string, *AdviseResult](256, 10*time.Minute),
	}
}

// ScoreEngine exposes the advisor's calculator registry for the serving
// layers.
func (a *Advisor) ScoreEngine() *ScoreEngine {
	return a.scoreEngine
}

// Advise answers a clinical question for a patient. It computes every
// score the record supports, then runs the staged reasoner. Identical
// requests within the cache window return the memoized result.
func (a *Advisor) Advise(ctx context.Context, params *AdviseParams) (*AdviseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil || strings.TrimSpace(params.Question) == "" {
		return nil, fmt.Errorf("clinical question is required")
	}

	key := adviseCacheKey(params)
	if cached, ok := a.memo.Get(key); ok {
		a.logger.WithFields(logrus.Fields{
			"request_id": cached.RequestID,
			"question":   params.Question,
		}).Debug("Returning cached advisory result")
		return cached, nil
	}

	requestID := uuid.New().String()
	a.logger.WithFields(logrus.Fields{
		"request_id":        requestID,
		"question":          params.Question,
		"require_guideline": params.RequireGuideline,
	}).Info("Starting clinical advisory")

	var patientScores map[string]scores.ScoreResult
	if params.Patient != nil {
		patientScores = a.scoreEngine.CalculateForPatient(params.Patient)
	}

	result := a.reasoner.Reason(params.Patient, params.Question, params.RequireGuideline)

	a.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"strategy":   string(result.Strategy),
		"confidence": result.OverallConfidence,
	}).Info("Clinical advisory complete")

	out := &AdviseResult{
		RequestID:     requestID,
		Question:      params.Question,
		Reasoning:     result,
		PatientScores: patientScores,
		GeneratedAt:   time.Now().UTC(),
	}
	a.memo.Set(key, out)
	return out, nil
}

// StrokeRisk assesses AF stroke and bleeding risk for a patient.
func (a *Advisor) StrokeRisk(p *domain.Patient) guidelines.StrokeRiskAssessment {
	return guidelines.AssessStrokeRisk(p)
}

// Recommendations runs the rule functions of every guideline family the
// patient record makes relevant. The question, when supplied, widens the
// family match by keyword.
func (a *Advisor) Recommendations(p *domain.Patient, question string) []*domain.RecommendationSet {
	families := guidelines.RelevantFamilies(p, question)

	var sets []*domain.RecommendationSet
	for _, family := range families {
		var set *domain.RecommendationSet
		switch family {
		case guidelines.FAMILY_HEART_FAILURE:
			set = guidelines.GDMTForPhenotype(p)
		case guidelines.FAMILY_ATRIAL_FIBRILLATION:
			set = guidelines.AnticoagulationRecommendations(p)
		case guidelines.FAMILY_ACS:
			set = guidelines.AssessACSRisk(p)
		default:
			continue
		}
		if set != nil && set.Count() > 0 {
			sets = append(sets, set)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"families": len(families),
		"sets":     len(sets),
	}).Debug("Collected guideline recommendations")
	return sets
}

// ExplainGap explains why no direct guideline answer exists for the
// question.
func (a *Advisor) ExplainGap(question string, p *domain.Patient) string {
	return a.reasoner.ExplainGap(question, p)
}

// AssessUncertainty grades the confidence in a recommendation from its
// evidence class/level and the patient and guideline context.
func (a *Advisor) AssessUncertainty(class domain.EvidenceClass, level domain.EvidenceLevel, isSynthesis, patientExcluded bool, guidelineAgeYears int) reasoning.UncertaintyAssessment {
	return reasoning.AssessEvidenceQuality(class, level, isSynthesis, patientExcluded, guidelineAgeYears)
}

func adviseCacheKey(params *AdviseParams) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return params.Question
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
