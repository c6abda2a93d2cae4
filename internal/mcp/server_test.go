package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	litecfg "github.com/cardiocode-mcp-server/internal/config"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/pkg/external"
)

func newLiteTestConfig(t *testing.T) *litecfg.LiteConfig {
	t.Helper()
	cfg := litecfg.DefaultLiteConfig()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "error"
	return cfg
}

func newLiteTestServer(t *testing.T) *LiteServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	server, err := NewLiteServer(newLiteTestConfig(t), WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return server
}

func TestNewLiteServer(t *testing.T) {
	server := newLiteTestServer(t)

	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.Advisor())
	assert.NotNil(t, server.AuditStore())
	assert.NotNil(t, server.toolRegistry)
}

func TestLiteServerRegistersAllTools(t *testing.T) {
	server := newLiteTestServer(t)

	infos := server.toolRegistry.GetRegisteredToolsInfo()
	assert.Len(t, infos, 11)
}

func TestLiteServerAuditStoreWorks(t *testing.T) {
	server := newLiteTestServer(t)

	count, err := server.AuditStore().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLiteServerStats(t *testing.T) {
	server := newLiteTestServer(t)

	stats := server.Stats()
	assert.Contains(t, stats, "registered_methods")
	assert.Contains(t, stats, "active_sessions")
}

func TestLiteServerWithCitationService(t *testing.T) {
	logger, _ := test.NewNullLogger()
	client := external.NewPubMedClient(external.PubMedConfig{
		BaseURL:   "http://localhost:1/",
		Timeout:   time.Second,
		RateLimit: 1,
	})
	citations := external.NewResilientCitationClient(client, nil, logger)

	server, err := NewLiteServer(newLiteTestConfig(t),
		WithLogger(logger), WithCitationService(citations))
	require.NoError(t, err)
	defer server.Close()

	assert.Equal(t, citations, server.citations)
}

func TestProtocolCoreServesRouterMethods(t *testing.T) {
	server := newLiteTestServer(t)

	require.NoError(t, server.protocolCore.InitializeClient("test-client", nil))
	defer server.protocolCore.CleanupClient("test-client")

	raw := []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	respBytes, err := server.protocolCore.ProcessMessage(context.Background(), "test-client", raw)
	require.NoError(t, err)

	var resp protocol.JSONRPC2Response
	require.NoError(t, json.Unmarshal(respBytes, &resp))
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	toolList := result["tools"].([]interface{})
	assert.Len(t, toolList, 11)
}
