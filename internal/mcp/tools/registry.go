package tools

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/audit"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/internal/service"
	"github.com/cardiocode-mcp-server/pkg/external"
)

// ToolRegistry wires the engine's services into the MCP router and
// manages registration of all tools.
type ToolRegistry struct {
	logger    *logrus.Logger
	router    *protocol.MessageRouter
	advisor   *service.Advisor
	store     audit.Store
	citations external.CitationService
	exportDir string
}

// NewToolRegistry creates a new tool registry. The store and citation
// service may be nil; the tools that need them report a resource error
// when called.
func NewToolRegistry(logger *logrus.Logger, router *protocol.MessageRouter, advisor *service.Advisor,
	store audit.Store, citations external.CitationService, exportDir string) *ToolRegistry {
	return &ToolRegistry{
		logger:    logger,
		router:    router,
		advisor:   advisor,
		store:     store,
		citations: citations,
		exportDir: exportDir,
	}
}

// RegisterAllTools registers every clinical tool with the MCP router
func (tr *ToolRegistry) RegisterAllTools() error {
	tr.logger.Info("Registering clinical tools")

	// Score tools
	tr.register("calculate_score", NewCalculateScoreTool(tr.logger, tr.advisor))
	tr.register("list_scores", NewListScoresTool(tr.logger, tr.advisor))

	// Guideline tools
	tr.register("assess_stroke_risk", NewAssessStrokeRiskTool(tr.logger, tr.advisor))
	tr.register("get_recommendations", NewGetRecommendationsTool(tr.logger, tr.advisor))

	// Reasoning tools
	tr.register("clinical_reason", NewClinicalReasonTool(tr.logger, tr.advisor))
	tr.register("explain_gap", NewExplainGapTool(tr.logger, tr.advisor))
	tr.register("assess_uncertainty", NewAssessUncertaintyTool(tr.logger, tr.advisor))

	// Audit log tools
	tr.register("save_assessment", NewSaveAssessmentTool(tr.logger, tr.store))
	tr.register("list_assessments", NewListAssessmentsTool(tr.logger, tr.store))
	tr.register("export_assessments", NewExportAssessmentsTool(tr.logger, tr.store, tr.exportDir))

	// Citation tools
	tr.register("lookup_citation", NewLookupCitationTool(tr.logger, tr.citations))

	tr.logger.Info("Successfully registered all clinical tools")
	return nil
}

func (tr *ToolRegistry) register(name string, handler protocol.ToolHandler) {
	tr.router.RegisterToolHandler(name, handler)
	tr.logger.WithField("tool", name).Debug("Registered tool")
}

// ExecuteTool dispatches a request to the handler registered under the
// request method. The transport bridge uses this to serve tool calls
// arriving through the MCP SDK.
func (tr *ToolRegistry) ExecuteTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	handler, ok := tr.router.GetToolHandler(req.Method)
	if !ok {
		return &protocol.JSONRPC2Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &protocol.RPCError{
				Code:    protocol.MethodNotFound,
				Message: fmt.Sprintf("Unknown tool: %s", req.Method),
			},
		}
	}

	resp := handler.HandleTool(ctx, req)
	if resp != nil {
		resp.JSONRPC = "2.0"
		resp.ID = req.ID
	}
	return resp
}

// GetRegisteredToolsInfo returns information about all registered tools
func (tr *ToolRegistry) GetRegisteredToolsInfo() []protocol.ToolInfo {
	toolHandlers := tr.router.GetToolHandlers()
	toolsInfo := make([]protocol.ToolInfo, 0, len(toolHandlers))

	for _, handler := range toolHandlers {
		toolsInfo = append(toolsInfo, handler.GetToolInfo())
	}

	return toolsInfo
}

// ValidateAllTools checks every registered tool exposes complete
// metadata.
func (tr *ToolRegistry) ValidateAllTools() error {
	toolHandlers := tr.router.GetToolHandlers()

	for name, handler := range toolHandlers {
		toolInfo := handler.GetToolInfo()
		if toolInfo.Name == "" {
			return fmt.Errorf("tool %q has no name in its tool info", name)
		}
		if toolInfo.Name != name {
			return fmt.Errorf("tool registered as %q reports name %q", name, toolInfo.Name)
		}
		if toolInfo.Description == "" {
			tr.logger.WithField("tool", name).Warn("Tool missing description")
		}
		if toolInfo.InputSchema == nil {
			tr.logger.WithField("tool", name).Warn("Tool missing input schema")
		}
	}

	tr.logger.WithField("tools", len(toolHandlers)).Info("Tool validation completed")
	return nil
}
