package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/pkg/external"
)

// =============================================================================
// Lookup Citation Tool
// =============================================================================

// LookupCitationTool implements the lookup_citation MCP tool
type LookupCitationTool struct {
	logger    *logrus.Logger
	citations external.CitationService
}

// LookupCitationParams defines parameters for the lookup_citation tool
type LookupCitationParams struct {
	StudyName  string `json:"study_name,omitempty"`
	PMID       string `json:"pmid,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

// NewLookupCitationTool creates a new lookup_citation tool
func NewLookupCitationTool(logger *logrus.Logger, citations external.CitationService) *LookupCitationTool {
	return &LookupCitationTool{
		logger:    logger,
		citations: citations,
	}
}

// GetToolInfo returns the tool information for lookup_citation
func (t *LookupCitationTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "lookup_citation",
		Description: "Resolve the PubMed citations behind a named clinical trial (e.g. PARADIGM-HF, ARISTOTLE) or fetch a single citation by PMID.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"study_name": map[string]interface{}{
					"type":        "string",
					"description": "Trial or study name to search for",
				},
				"pmid": map[string]interface{}{
					"type":        "string",
					"description": "PubMed identifier for a direct fetch; takes precedence over study_name",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum citations for a study-name search (default 5)",
				},
			},
		},
	}
}

// ValidateParams validates the input parameters
func (t *LookupCitationTool) ValidateParams(params interface{}) error {
	var p LookupCitationParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.StudyName) == "" && strings.TrimSpace(p.PMID) == "" {
		return fmt.Errorf("study_name or pmid is required")
	}
	return nil
}

// HandleTool handles the lookup_citation tool request
func (t *LookupCitationTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	if t.citations == nil {
		return resourceError("Citation lookup is not configured", "")
	}

	var params LookupCitationParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	if pmid := strings.TrimSpace(params.PMID); pmid != "" {
		citation, err := t.citations.FetchByPMID(ctx, pmid)
		if err != nil {
			t.logger.WithError(err).WithField("pmid", pmid).Warn("Citation fetch failed")
			return resourceError("Citation fetch failed", err.Error())
		}
		return &protocol.JSONRPC2Response{
			Result: map[string]interface{}{
				"citation": citation,
			},
		}
	}

	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	citations, err := t.citations.LookupStudy(ctx, params.StudyName, maxResults)
	if err != nil {
		t.logger.WithError(err).WithField("study", params.StudyName).Warn("Citation lookup failed")
		return resourceError("Citation lookup failed", err.Error())
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"citations": citations,
			"count":     len(citations),
		},
	}
}
