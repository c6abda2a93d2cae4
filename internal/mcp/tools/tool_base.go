// Package tools implements the MCP tool handlers that expose the
// recommendation engine: score calculators, guideline rule functions,
// the staged clinical reasoner, the assessment audit log, and PubMed
// citation lookup.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
)

// ParseParams parses generic parameters from interface{} to a target
// struct. This eliminates the duplicate marshal/unmarshal pattern found
// across all tool handlers.
//
// Usage:
//
//	var params MyParams
//	if err := ParseParams(req.Params, &params); err != nil {
//	    return invalidParamsError("Invalid parameters", err.Error())
//	}
func ParseParams(params interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("missing required parameters")
	}

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	if err := json.Unmarshal(paramsBytes, target); err != nil {
		return fmt.Errorf("failed to parse parameters: %w", err)
	}

	return nil
}

// Error response helpers to reduce boilerplate
func invalidParamsError(msg string, data ...string) *protocol.JSONRPC2Response {
	resp := &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.InvalidParams,
			Message: msg,
		},
	}
	if len(data) > 0 && data[0] != "" {
		resp.Error.Data = data[0]
	}
	return resp
}

func internalError(msg string, data string) *protocol.JSONRPC2Response {
	return &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.InternalError,
			Message: msg,
			Data:    data,
		},
	}
}

func resourceError(msg string, data string) *protocol.JSONRPC2Response {
	return &protocol.JSONRPC2Response{
		Error: &protocol.RPCError{
			Code:    protocol.MCPResourceError,
			Message: msg,
			Data:    data,
		},
	}
}

// patientSchema is the shared input-schema fragment for tools that take
// a patient record. The full record shape is defined by the domain
// package; the schema stays open so clients can send any subset.
func patientSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"patient_id": map[string]interface{}{
				"type":        "string",
				"description": "Opaque patient identifier for the audit log (optional)",
			},
			"age": map[string]interface{}{
				"type":        "integer",
				"description": "Age in years",
			},
			"sex": map[string]interface{}{
				"type": "string",
				"enum": []string{"male", "female"},
			},
			"diagnoses": map[string]interface{}{
				"type":        "array",
				"description": "Active diagnoses with ICD-10 codes",
			},
			"medications": map[string]interface{}{
				"type": "array",
			},
			"lvef": map[string]interface{}{
				"type":        "number",
				"description": "Left ventricular ejection fraction in percent",
			},
			"af_type": map[string]interface{}{
				"type": "string",
				"enum": []string{"paroxysmal", "persistent", "long_standing_persistent", "permanent"},
			},
		},
		"additionalProperties": true,
	}
}
