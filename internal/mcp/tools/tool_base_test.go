package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
)

func TestParseParams(t *testing.T) {
	type params struct {
		ScoreName string  `json:"score_name"`
		Limit     int     `json:"limit,omitempty"`
		Dry       bool    `json:"dry,omitempty"`
		Threshold float64 `json:"threshold,omitempty"`
	}

	input := map[string]interface{}{
		"score_name": "cha2ds2_vasc",
		"limit":      25,
		"dry":        true,
		"threshold":  0.85,
	}

	var target params
	require.NoError(t, ParseParams(input, &target))
	assert.Equal(t, "cha2ds2_vasc", target.ScoreName)
	assert.Equal(t, 25, target.Limit)
	assert.True(t, target.Dry)
	assert.InDelta(t, 0.85, target.Threshold, 0.001)
}

func TestParseParams_NilParams(t *testing.T) {
	type params struct {
		Question string `json:"question"`
	}

	var target params
	err := ParseParams(nil, &target)
	require.Error(t, err)
	assert.Equal(t, "missing required parameters", err.Error())
}

func TestParseParams_TypeMismatch(t *testing.T) {
	type params struct {
		Limit int `json:"limit"`
	}

	var target params
	err := ParseParams(map[string]interface{}{"limit": "fifty"}, &target)
	assert.Error(t, err)
}

func TestParseParams_PatientPayload(t *testing.T) {
	type params struct {
		Patient *domain.Patient `json:"patient"`
	}

	input := map[string]interface{}{
		"patient": map[string]interface{}{
			"patient_id": "pt-001",
			"age":        72,
			"sex":        "female",
			"af_type":    "paroxysmal",
			"diagnoses": []interface{}{
				map[string]interface{}{
					"name":       "atrial_fibrillation",
					"icd10_code": "I48.91",
					"is_active":  true,
				},
			},
		},
	}

	var target params
	require.NoError(t, ParseParams(input, &target))
	require.NotNil(t, target.Patient)
	require.NotNil(t, target.Patient.Age)
	assert.Equal(t, 72, *target.Patient.Age)
	assert.Equal(t, domain.SEX_FEMALE, target.Patient.Sex)
	assert.Equal(t, domain.AF_PAROXYSMAL, target.Patient.AFType)
	require.Len(t, target.Patient.Diagnoses, 1)
	assert.Equal(t, "I48.91", target.Patient.Diagnoses[0].ICD10Code)
}

func TestErrorHelpers(t *testing.T) {
	resp := invalidParamsError("Patient is required")
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	assert.Equal(t, "Patient is required", resp.Error.Message)
	assert.Nil(t, resp.Error.Data)

	resp = invalidParamsError("Unknown score", "known scores: cha2ds2_vasc")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "known scores: cha2ds2_vasc", resp.Error.Data)

	resp = internalError("Reasoning failed", "boom")
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.InternalError, resp.Error.Code)

	resp = resourceError("Assessment storage is not configured", "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.MCPResourceError, resp.Error.Code)
}

func TestPatientSchema(t *testing.T) {
	schema := patientSchema("Patient clinical context")

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, "Patient clinical context", schema["description"])

	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, field := range []string{"patient_id", "age", "sex", "lvef", "af_type", "diagnoses", "medications"} {
		assert.Contains(t, props, field)
	}

	sex, ok := props["sex"].(map[string]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"male", "female"}, sex["enum"])
}
