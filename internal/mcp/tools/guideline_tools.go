package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/internal/service"
)

// =============================================================================
// Assess Stroke Risk Tool
// =============================================================================

// AssessStrokeRiskTool implements the assess_stroke_risk MCP tool
type AssessStrokeRiskTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// AssessStrokeRiskParams defines parameters for the assess_stroke_risk tool
type AssessStrokeRiskParams struct {
	Patient *domain.Patient `json:"patient"`
}

// NewAssessStrokeRiskTool creates a new assess_stroke_risk tool
func NewAssessStrokeRiskTool(logger *logrus.Logger, advisor *service.Advisor) *AssessStrokeRiskTool {
	return &AssessStrokeRiskTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for assess_stroke_risk
func (t *AssessStrokeRiskTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "assess_stroke_risk",
		Description: "Assess atrial fibrillation stroke and bleeding risk for a patient: CHA2DS2-VASc, HAS-BLED, and the sex-adjusted anticoagulation decision with graded recommendations.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"patient": patientSchema("Patient record. Stroke risk factors (age, sex, hypertension, diabetes, prior stroke/TIA, vascular disease) drive the scores."),
			},
			"required": []string{"patient"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *AssessStrokeRiskTool) ValidateParams(params interface{}) error {
	var p AssessStrokeRiskParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.Patient == nil {
		return fmt.Errorf("patient is required")
	}
	return nil
}

// HandleTool handles the assess_stroke_risk tool request
func (t *AssessStrokeRiskTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params AssessStrokeRiskParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	assessment := t.advisor.StrokeRisk(params.Patient)

	t.logger.WithFields(logrus.Fields{
		"anticoagulation_indicated": assessment.AnticoagulationIndicated,
		"recommendations":           len(assessment.Recommendations),
	}).Debug("Stroke risk assessed")

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"assessment": assessment,
		},
	}
}

// =============================================================================
// Get Recommendations Tool
// =============================================================================

// GetRecommendationsTool implements the get_recommendations MCP tool
type GetRecommendationsTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// GetRecommendationsParams defines parameters for the get_recommendations tool
type GetRecommendationsParams struct {
	Patient  *domain.Patient `json:"patient"`
	Question string          `json:"question,omitempty"`
}

// NewGetRecommendationsTool creates a new get_recommendations tool
func NewGetRecommendationsTool(logger *logrus.Logger, advisor *service.Advisor) *GetRecommendationsTool {
	return &GetRecommendationsTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for get_recommendations
func (t *GetRecommendationsTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "get_recommendations",
		Description: "Run the rule functions of every guideline family the patient record makes relevant (heart failure, atrial fibrillation, acute coronary syndromes) and return the graded recommendation sets.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"patient": patientSchema("Patient record used for family selection and rule evaluation."),
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Optional clinical question; widens the family match by keyword.",
				},
			},
			"required": []string{"patient"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *GetRecommendationsTool) ValidateParams(params interface{}) error {
	var p GetRecommendationsParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.Patient == nil {
		return fmt.Errorf("patient is required")
	}
	return nil
}

// HandleTool handles the get_recommendations tool request
func (t *GetRecommendationsTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params GetRecommendationsParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	sets := t.advisor.Recommendations(params.Patient, params.Question)

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"recommendation_sets": sets,
			"count":               len(sets),
		},
	}
}
