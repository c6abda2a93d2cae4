package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/audit"
	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/service"
)

// stubConfigManager satisfies domain.ConfigManager for handler tests
type stubConfigManager struct {
	cfg *domain.Config
}

func (s *stubConfigManager) GetConfig() *domain.Config                 { return s.cfg }
func (s *stubConfigManager) GetServerConfig() *domain.ServerConfig     { return &s.cfg.Server }
func (s *stubConfigManager) GetDatabaseConfig() *domain.DatabaseConfig { return &s.cfg.Database }
func (s *stubConfigManager) Validate() error                           { return nil }
func (s *stubConfigManager) Reload() error                             { return nil }

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &domain.Config{
		Environment: "test",
		Server:      domain.ServerConfig{Host: "127.0.0.1", Port: 0, APIKey: apiKey},
		Logging:     domain.LoggingConfig{Level: "error"},
	}

	store, err := audit.NewSQLiteStore(t.TempDir() + "/assessments.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewServer(&stubConfigManager{cfg: cfg}, service.NewAdvisor(logger), store, logger)
}

func doRequest(srv *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(srv, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestListScoresEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(srv, http.MethodGet, "/api/v1/scores", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Scores []service.ScoreInfo `json:"scores"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, len(payload.Scores), payload.Count)
	assert.Equal(t, "cha2ds2_vasc", payload.Scores[0].Name)
}

func TestCalculateScoreEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	body := []byte(`{"age": 80, "heart_rate": 110, "systolic_bp": 85, "creatinine": 1.5, "killip_class": 1, "st_deviation": true, "elevated_troponin": true}`)
	w := doRequest(srv, http.MethodPost, "/api/v1/scores/grace", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Score  string `json:"score"`
		Result struct {
			ScoreValue   float64 `json:"score_value"`
			RiskCategory string  `json:"risk_category"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "grace", payload.Score)
	assert.Equal(t, "high", payload.Result.RiskCategory)
}

func TestCalculateScoreUnknownName(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(srv, http.MethodPost, "/api/v1/scores/no_such_score", []byte(`{}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculateScoreBadParams(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(srv, http.MethodPost, "/api/v1/scores/grace", []byte(`{"age": "eighty"}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid score parameters")
}

func TestReasonEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	age := 72
	params := service.AdviseParams{
		Question: "What anticoagulation should we start?",
		Patient: &domain.Patient{
			PatientID:         "pt-rest-01",
			Age:               &age,
			Sex:               domain.SEX_FEMALE,
			AFType:            domain.AF_PAROXYSMAL,
			HasHypertension:   true,
			HasPriorStrokeTIA: true,
		},
	}
	body, err := json.Marshal(params)
	require.NoError(t, err)

	w := doRequest(srv, http.MethodPost, "/api/v1/reason", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result service.AdviseResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, params.Question, result.Question)
	assert.NotEmpty(t, result.Reasoning.Answer)
}

func TestReasonEndpointRequiresQuestion(t *testing.T) {
	srv := newTestServer(t, "")

	w := doRequest(srv, http.MethodPost, "/api/v1/reason", []byte(`{}`), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssessmentEndpoints(t *testing.T) {
	srv := newTestServer(t, "")

	saved := &audit.Assessment{
		PatientID:  "pt-af-01",
		Question:   "Anticoagulate?",
		Strategy:   "direct_guideline",
		Answer:     "DOAC recommended",
		Confidence: 1.0,
	}
	require.NoError(t, srv.store.Save(context.Background(), saved))

	w := doRequest(srv, http.MethodGet, "/api/v1/assessments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Assessments []audit.Assessment `json:"assessments"`
		Total       int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)

	w = doRequest(srv, http.MethodGet, "/api/v1/assessments/"+saved.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got audit.Assessment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, saved.Question, got.Question)

	w = doRequest(srv, http.MethodGet, "/api/v1/assessments/missing-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIKeyProtection(t *testing.T) {
	srv := newTestServer(t, "rest-secret")

	w := doRequest(srv, http.MethodGet, "/api/v1/scores", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/v1/scores", nil, map[string]string{"X-API-Key": "rest-secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open for load balancer probes
	w = doRequest(srv, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
