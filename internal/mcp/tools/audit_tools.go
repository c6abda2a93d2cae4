package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/audit"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
)

const storeUnavailableMsg = "Assessment storage is not configured"

// =============================================================================
// Save Assessment Tool
// =============================================================================

// SaveAssessmentTool implements the save_assessment MCP tool
type SaveAssessmentTool struct {
	logger *logrus.Logger
	store  audit.Store
}

// SaveAssessmentParams defines parameters for the save_assessment tool
type SaveAssessmentParams struct {
	ID        string `json:"id,omitempty"`
	PatientID string `json:"patient_id,omitempty"`
	Question  string `json:"question"`

	Strategy    string  `json:"strategy,omitempty"`
	Answer      string  `json:"answer"`
	Confidence  float64 `json:"confidence,omitempty"`
	IsSynthesis bool    `json:"is_synthesis,omitempty"`

	GuidelinesConsulted []string        `json:"guidelines_consulted,omitempty"`
	Detail              json.RawMessage `json:"detail,omitempty"`

	ReviewStatus string `json:"review_status,omitempty"`
	ReviewNotes  string `json:"review_notes,omitempty"`
}

// SaveAssessmentResult defines the result of save_assessment
type SaveAssessmentResult struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Assessment *audit.Assessment `json:"assessment,omitempty"`
}

// NewSaveAssessmentTool creates a new save_assessment tool
func NewSaveAssessmentTool(logger *logrus.Logger, store audit.Store) *SaveAssessmentTool {
	return &SaveAssessmentTool{
		logger: logger,
		store:  store,
	}
}

// GetToolInfo returns the tool information for save_assessment
func (t *SaveAssessmentTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "save_assessment",
		Description: "Persist a clinical_reason output to the audit log, optionally with a clinician review verdict. Resubmitting with the same id updates the stored record.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Assessment ID to update; omit to store a new record (typically the clinical_reason request_id)",
				},
				"patient_id": map[string]interface{}{
					"type":        "string",
					"description": "Opaque patient identifier (optional)",
				},
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The clinical question that was answered",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Reasoning strategy that produced the answer",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "The answer being recorded",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Overall confidence of the answer, 0 to 1",
				},
				"is_synthesis": map[string]interface{}{
					"type":        "boolean",
					"description": "The answer was synthesized rather than cited directly",
				},
				"guidelines_consulted": map[string]interface{}{
					"type":        "array",
					"description": "Guideline documents consulted",
					"items":       map[string]interface{}{"type": "string"},
				},
				"detail": map[string]interface{}{
					"type":        "object",
					"description": "Full serialized reasoning result (optional)",
				},
				"review_status": map[string]interface{}{
					"type":        "string",
					"description": "Clinician review verdict",
					"enum":        []string{"pending", "accepted", "rejected"},
				},
				"review_notes": map[string]interface{}{
					"type":        "string",
					"description": "Reviewer notes (optional)",
				},
			},
			"required": []string{"question", "answer"},
		},
	}
}

// ValidateParams validates the input parameters
func (t *SaveAssessmentTool) ValidateParams(params interface{}) error {
	var p SaveAssessmentParams
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.Question) == "" {
		return fmt.Errorf("question is required")
	}
	if strings.TrimSpace(p.Answer) == "" {
		return fmt.Errorf("answer is required")
	}
	switch audit.ReviewStatus(p.ReviewStatus) {
	case "", audit.ReviewPending, audit.ReviewAccepted, audit.ReviewRejected:
	default:
		return fmt.Errorf("review_status must be pending, accepted, or rejected")
	}
	return nil
}

// HandleTool handles the save_assessment tool request
func (t *SaveAssessmentTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	if t.store == nil {
		return resourceError(storeUnavailableMsg, "")
	}

	var params SaveAssessmentParams
	if err := ParseParams(req.Params, &params); err != nil {
		return invalidParamsError("Invalid parameters", err.Error())
	}
	if err := t.ValidateParams(req.Params); err != nil {
		return invalidParamsError(err.Error())
	}

	status := audit.ReviewStatus(params.ReviewStatus)
	if status == "" {
		status = audit.ReviewPending
	}

	assessment := &audit.Assessment{
		ID:                  params.ID,
		PatientID:           params.PatientID,
		Question:            params.Question,
		Strategy:            params.Strategy,
		Answer:              params.Answer,
		Confidence:          params.Confidence,
		IsSynthesis:         params.IsSynthesis,
		GuidelinesConsulted: params.GuidelinesConsulted,
		Detail:              params.Detail,
		ReviewStatus:        status,
		ReviewNotes:         params.ReviewNotes,
	}

	if err := t.store.Save(ctx, assessment); err != nil {
		t.logger.WithError(err).Error("Failed to save assessment")
		return internalError("Failed to save assessment", err.Error())
	}

	msg := "Assessment saved for review"
	if status != audit.ReviewPending {
		msg = fmt.Sprintf("Assessment saved with review status %q", status)
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"assessment": SaveAssessmentResult{Success: true, Message: msg, Assessment: assessment},
		},
	}
}

// =============================================================================
// List Assessments Tool
// =============================================================================

// ListAssessmentsTool implements the list_assessments MCP tool
type ListAssessmentsTool struct {
	logger *logrus.Logger
	store  audit.Store
}

// ListAssessmentsParams defines parameters for the list_assessments tool
type ListAssessmentsParams struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// NewListAssessmentsTool creates a new list_assessments tool
func NewListAssessmentsTool(logger *logrus.Logger, store audit.Store) *ListAssessmentsTool {
	return &ListAssessmentsTool{
		logger: logger,
		store:  store,
	}
}

// GetToolInfo returns the tool information for list_assessments
func (t *ListAssessmentsTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "list_assessments",
		Description: "List stored assessments newest first with pagination.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum entries to return (default 50)",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Entries to skip (default 0)",
				},
			},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ListAssessmentsTool) ValidateParams(params interface{}) error {
	var p ListAssessmentsParams
	if params == nil {
		return nil
	}
	if err := ParseParams(params, &p); err != nil {
		return err
	}
	if p.Limit < 0 || p.Offset < 0 {
		return fmt.Errorf("limit and offset must be non-negative")
	}
	return nil
}

// HandleTool handles the list_assessments tool request
func (t *ListAssessmentsTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	if t.store == nil {
		return resourceError(storeUnavailableMsg, "")
	}

	var params ListAssessmentsParams
	if req.Params != nil {
		if err := ParseParams(req.Params, &params); err != nil {
			return invalidParamsError("Invalid parameters", err.Error())
		}
		if params.Limit < 0 || params.Offset < 0 {
			return invalidParamsError("limit and offset must be non-negative")
		}
	}

	if params.Limit <= 0 {
		params.Limit = 50
	}

	assessments, err := t.store.List(ctx, params.Limit, params.Offset)
	if err != nil {
		t.logger.WithError(err).Error("Failed to list assessments")
		return internalError("Failed to list assessments", err.Error())
	}

	total, err := t.store.Count(ctx)
	if err != nil {
		t.logger.WithError(err).Error("Failed to count assessments")
		return internalError("Failed to count assessments", err.Error())
	}

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"assessments": assessments,
			"total":       total,
			"limit":       params.Limit,
			"offset":      params.Offset,
		},
	}
}

// =============================================================================
// Export Assessments Tool
// =============================================================================

// ExportAssessmentsTool implements the export_assessments MCP tool
type ExportAssessmentsTool struct {
	logger    *logrus.Logger
	store     audit.Store
	exportDir string
}

// ExportAssessmentsResult defines the result of export_assessments
type ExportAssessmentsResult struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Count    int64  `json:"count"`
	Message  string `json:"message"`
}

// NewExportAssessmentsTool creates a new export_assessments tool
func NewExportAssessmentsTool(logger *logrus.Logger, store audit.Store, exportDir string) *ExportAssessmentsTool {
	return &ExportAssessmentsTool{
		logger:    logger,
		store:     store,
		exportDir: exportDir,
	}
}

// GetToolInfo returns the tool information for export_assessments
func (t *ExportAssessmentsTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        "export_assessments",
		Description: "Export all stored assessments to a timestamped JSON file in the configured export directory.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}
}

// ValidateParams validates the input parameters
func (t *ExportAssessmentsTool) ValidateParams(params interface{}) error {
	return nil
}

// HandleTool handles the export_assessments tool request
func (t *ExportAssessmentsTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	if t.store == nil {
		return resourceError(storeUnavailableMsg, "")
	}

	if err := os.MkdirAll(t.exportDir, 0755); err != nil {
		t.logger.WithError(err).Error("Failed to create export directory")
		return internalError("Failed to create export directory", err.Error())
	}

	filename := fmt.Sprintf("assessments_export_%s.json", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(t.exportDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		t.logger.WithError(err).Error("Failed to create export file")
		return internalError("Failed to create export file", err.Error())
	}
	defer file.Close()

	if err := t.store.ExportJSON(ctx, file); err != nil {
		t.logger.WithError(err).Error("Failed to export assessments")
		return internalError("Failed to export assessments", err.Error())
	}

	count, err := t.store.Count(ctx)
	if err != nil {
		count = -1
	}

	t.logger.WithFields(logrus.Fields{
		"file":  filePath,
		"count": count,
	}).Info("Assessments exported")

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"export": ExportAssessmentsResult{
				Success:  true,
				FilePath: filePath,
				Count:    count,
				Message:  fmt.Sprintf("Exported %d assessments to %s", count, filePath),
			},
		},
	}
}
