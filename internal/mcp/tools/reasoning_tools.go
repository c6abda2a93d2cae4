package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/internal/service"
)

// =============================================================================
// Clinical Reason Tool
// =============================================================================

// ClinicalReasonTool implements the clinical_reason MCP tool
type ClinicalReasonTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// NewClinicalReasonTool creates a new clinical_reason tool
func NewClinicalReasonTool(logger *logrus.Logger, advisor *service.Advisor) *ClinicalReasonTool {
	return &ClinicalReasonTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for clinical_reason
func (t *ClinicalReasonTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "clinical_reason",
		Description: "Answer a clinical question for a patient through the staged reasoner: direct guideline match, multi-guideline synthesis, then first-principles extrapolation. Synthesized answers are flagged and carry reduced confidence. The full reasoning chain is returned for audit.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"patient": patientSchema("Patient record the question is asked about (optional; without it the answer is generic)."),
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The clinical question",
				},
				"require_guideline": map[string]interface{}{
					"type":        "boolean",
					"description": "When true, refuse to synthesize: answer only from a direct guideline match.",
				},
			},
			"required": []string{"question"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ClinicalReasonTool) ValidateParams(params interface{}) error {
	var p service.AdviseParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

// HandleTool handles the clinical_reason tool request
func (t *ClinicalReasonTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params service.AdviseParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	advice, err := t.advisor.Advise(ctx, &params)
	if err != nil {
		t.logger.WithError(err).Error("Clinical reasoning failed")
		return internalError("Clinical reasoning failed", err.Error())
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"advice":  advice,
			"display": advice.Reasoning.FormatForDisplay(),
		},
	}
}

// =============================================================================
// Explain Gap Tool
// =============================================================================

// ExplainGapTool implements the explain_gap MCP tool
type ExplainGapTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// ExplainGapParams defines parameters for the explain_gap tool
type ExplainGapParams struct {
	Question string          `json:"question"`
	Patient  *domain.Patient `json:"patient,omitempty"`
}

// NewExplainGapTool creates a new explain_gap tool
func NewExplainGapTool(logger *logrus.Logger, advisor *service.Advisor) *ExplainGapTool {
	return &ExplainGapTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for explain_gap
func (t *ExplainGapTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "explain_gap",
		Description: "Explain why no direct guideline answer exists for a question: which families were consulted, what the nearest covered scenarios are, and what kind of evidence is missing.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The clinical question that lacked a direct answer",
				},
				"patient": patientSchema("Patient record for context (optional)."),
			},
			"required": []string{"question"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ExplainGapTool) ValidateParams(params interface{}) error {
	var p ExplainGapParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

// HandleTool handles the explain_gap tool request
func (t *ExplainGapTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params ExplainGapParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	explanation := t.advisor.ExplainGap(params.Question, params.Patient)

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"explanation": explanation,
		},
	}
}

// =============================================================================
// Assess Uncertainty Tool
// =============================================================================

// AssessUncertaintyTool implements the assess_uncertainty MCP tool
type AssessUncertaintyTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// AssessUncertaintyParams defines parameters for the assess_uncertainty tool
type AssessUncertaintyParams struct {
	EvidenceClass     string `json:"evidence_class"`
	EvidenceLevel     string `json:"evidence_level"`
	IsSynthesis       bool   `json:"is_synthesis,omitempty"`
	PatientExcluded   bool   `json:"patient_excluded,omitempty"`
	GuidelineAgeYears int    `json:"guideline_age_years,omitempty"`
}

// NewAssessUncertaintyTool creates a new assess_uncertainty tool
func NewAssessUncertaintyTool(logger *logrus.Logger, advisor *service.Advisor) *AssessUncertaintyTool {
	return &AssessUncertaintyTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for assess_uncertainty
func (t *AssessUncertaintyTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "assess_uncertainty",
		Description: "Grade the confidence in a recommendation from its ESC class/level of evidence, discounted for synthesis, trial-population mismatch, and guideline age.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"evidence_class": map[string]interface{}{
					"type":        "string",
					"description": "ESC class of recommendation",
					"enum":        []string{"I", "IIa", "IIb", "III"},
				},
				"evidence_level": map[string]interface{}{
					"type":        "string",
					"description": "ESC level of evidence",
					"enum":        []string{"A", "B", "C"},
				},
				"is_synthesis": map[string]interface{}{
					"type":        "boolean",
					"description": "The recommendation was synthesized across guidelines rather than cited directly",
				},
				"patient_excluded": map[string]interface{}{
					"type":        "boolean",
					"description": "The patient would have been excluded from the underlying trials",
				},
				"guideline_age_years": map[string]interface{}{
					"type":        "integer",
					"description": "Years since the source guideline was published",
				},
			},
			"required": []string{"evidence_class", "evidence_level"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *AssessUncertaintyTool) ValidateParams(params interface{}) error {
	var p AssessUncertaintyParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	return domain.ValidateGrading(domain.EvidenceClass(p.EvidenceClass), domain.EvidenceLevel(p.EvidenceLevel))
}

// HandleTool handles the assess_uncertainty tool request
func (t *AssessUncertaintyTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params AssessUncertaintyParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	assessment := t.advisor.AssessUncertainty(
		domain.EvidenceClass(params.EvidenceClass),
		domain.EvidenceLevel(params.EvidenceLevel),
		params.IsSynthesis,
		params.PatientExcluded,
		params.GuidelineAgeYears,
	)

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"assessment":          assessment,
			"adjusted_confidence": assessment.AdjustedConfidence(),
			"display":             assessment.FormatForDisplay(),
		},
	}
}
