package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/internal/service"
)

// =============================================================================
// Calculate Score Tool
// =============================================================================

// CalculateScoreTool implements the calculate_score MCP tool
type CalculateScoreTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// CalculateScoreParams defines parameters for the calculate_score tool
type CalculateScoreParams struct {
	ScoreName string          `json:"score_name"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// NewCalculateScoreTool creates a new calculate_score tool
func NewCalculateScoreTool(logger *logrus.Logger, advisor *service.Advisor) *CalculateScoreTool {
	return &CalculateScoreTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for calculate_score
func (t *CalculateScoreTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "calculate_score",
		Description: "Calculate a named cardiovascular risk score (CHA2DS2-VASc, HAS-BLED, GRACE, MAGGIC, PESI, EuroSCORE II, and others). Use list_scores to discover available calculators and their categories.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"score_name": map[string]interface{}{
					"type":        "string",
					"description": "Registered calculator name, e.g. cha2ds2_vasc, grace, pesi",
				},
				"params": map[string]interface{}{
					"type":        "object",
					"description": "Calculator-specific inputs. Missing fields take their zero values.",
				},
			},
			"required": []string{"score_name"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *CalculateScoreTool) ValidateParams(params interface{}) error {
	var p CalculateScoreParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.ScoreName) == "" {
		return fmt.Errorf("score_name is required")
	}
	return nil
}

// HandleTool handles the calculate_score tool request
func (t *CalculateScoreTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	var params CalculateScoreParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	calc, err := t.advisor.ScoreEngine().Calculate(params.ScoreName, params.Params)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownScore) {
			known := strings.Join(t.advisor.ScoreEngine().ScoreNames(), ", ")
			return invalidParamsError(fmt.Sprintf("Unknown score %q", params.ScoreName), "known scores: "+known)
		}
		return invalidParamsError("Score calculation failed", err.Error())
	}

	t.logger.WithField("score", params.ScoreName).Debug("Score tool completed")

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"calculation": calc,
		},
	}
}

// =============================================================================
// List Scores Tool
// =============================================================================

// ListScoresTool implements the list_scores MCP tool
type ListScoresTool struct {
	logger  *logrus.Logger
	advisor *service.Advisor
}

// NewListScoresTool creates a new list_scores tool
func NewListScoresTool(logger *logrus.Logger, advisor *service.Advisor) *ListScoresTool {
	return &ListScoresTool{
		logger:  logger,
		advisor: advisor,
	}
}

// GetToolInfo returns the tool information for list_scores
func (t *ListScoresTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "list_scores",
		Description: "List every registered risk-score calculator with its description and clinical category.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ListScoresTool) ValidateParams(params interface{}) error {
	return nil
}

// HandleTool handles the list_scores tool request
func (t *ListScoresTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	infos := t.advisor.ScoreEngine().ListScores()

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"scores": infos,
			"count":  len(infos),
		},
	}
}
