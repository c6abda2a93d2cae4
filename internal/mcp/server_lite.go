// Package mcp provides the MCP server implementation.
// This file contains the lightweight server that requires no external databases.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/audit"
	litecfg "github.com/cardiocode-mcp-server/internal/config"
	"github.com/cardiocode-mcp-server/internal/mcp/protocol"
	"github.com/cardiocode-mcp-server/internal/mcp/tools"
	"github.com/cardiocode-mcp-server/internal/mcp/transport"
	"github.com/cardiocode-mcp-server/internal/service"
	"github.com/cardiocode-mcp-server/pkg/external"
)

const (
	serverName    = "cardiocode-mcp-server"
	serverVersion = "v0.1.0"
)

// LiteServer is a lightweight MCP server that requires no external databases.
// It uses in-memory caching and SQLite for persistence.
type LiteServer struct {
	config          *litecfg.LiteConfig
	mcpServer       *mcp.Server
	transportMgr    *transport.Manager
	activeTransport transport.Transport
	protocolCore    *protocol.ProtocolCore
	toolRegistry    *tools.ToolRegistry
	advisor         *service.Advisor
	auditStore      audit.Store
	citations       external.CitationService
	logger          *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithAuditStore sets a custom assessment store.
func WithAuditStore(store audit.Store) LiteServerOption {
	return func(s *LiteServer) error {
		s.auditStore = store
		return nil
	}
}

// WithCitationService sets a custom citation service.
func WithCitationService(citations external.CitationService) LiteServerOption {
	return func(s *LiteServer) error {
		s.citations = citations
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
// It requires no external databases - uses in-memory cache and SQLite.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	// Create server with default logger
	server := &LiteServer{
		config: cfg,
		logger: logrus.New(),
	}

	// Configure default logger
	if cfg.LogFormat == "text" {
		server.logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		server.logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	server.logger.SetLevel(level)

	// Apply options
	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	// Ensure data directory exists
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Initialize assessment store if not provided
	if server.auditStore == nil {
		store, err := audit.NewSQLiteStore(cfg.AuditDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create assessment store: %w", err)
		}
		server.auditStore = store
	}

	// Initialize the citation service if not provided
	if server.citations == nil {
		citations, err := createCitationService(cfg, server.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create citation service: %w", err)
		}
		server.citations = citations
	}

	// Create the advisor with its score engine and reasoner
	server.advisor = service.NewAdvisor(server.logger)

	// Create transport manager and message router
	transportMgr := transport.NewManager(server.logger, &transport.Config{
		Type:     cfg.Transport,
		HTTPPort: cfg.HTTPPort,
	})
	router := protocol.NewMessageRouter(server.logger, protocol.ServerInfo{
		Name:    serverName,
		Version: serverVersion,
	})

	// Create tool registry and register tools
	toolRegistry := tools.NewToolRegistry(server.logger, router, server.advisor,
		server.auditStore, server.citations, cfg.ExportDir())
	if err := toolRegistry.RegisterAllTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	if err := toolRegistry.ValidateAllTools(); err != nil {
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}

	// The protocol core serves raw JSON-RPC on the HTTP-SSE transport,
	// with per-client sessions and rate limiting. Every router method is
	// dispatched through it.
	core := protocol.NewProtocolCore(server.logger)
	for _, method := range router.GetSupportedMethods() {
		core.RegisterHandler(method, router)
	}

	// Create MCP server
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	// Complete server setup
	server.mcpServer = mcpServer
	server.transportMgr = transportMgr
	server.protocolCore = core
	server.toolRegistry = toolRegistry

	// Register MCP tools
	if err := server.registerMCPTools(mcpServer, toolRegistry); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	server.logger.Info("Lite server initialized successfully")
	return server, nil
}

// registerMCPTools registers tools with the MCP SDK.
func (s *LiteServer) registerMCPTools(mcpServer *mcp.Server, toolRegistry *tools.ToolRegistry) error {
	s.logger.Info("Registering tools with MCP SDK...")

	toolsInfo := toolRegistry.GetRegisteredToolsInfo()

	for _, toolInfo := range toolsInfo {
		// The SDK requires a *jsonschema.Schema; convert the registry's
		// map-based schema via JSON.
		schemaJSON, err := json.Marshal(toolInfo.InputSchema)
		if err != nil {
			return fmt.Errorf("failed to marshal input schema for tool %q: %w", toolInfo.Name, err)
		}
		var schema jsonschema.Schema
		if err := json.Unmarshal(schemaJSON, &schema); err != nil {
			return fmt.Errorf("failed to parse input schema for tool %q: %w", toolInfo.Name, err)
		}

		toolDef := &mcp.Tool{
			Name:        toolInfo.Name,
			Description: toolInfo.Description,
			InputSchema: &schema,
		}

		handler := NewMCPToolHandler(toolRegistry, toolInfo.Name, s.logger)
		mcpServer.AddTool(toolDef, handler)

		s.logger.WithField("tool_name", toolInfo.Name).Debug("Registered MCP tool")
	}

	s.logger.WithField("tool_count", len(toolsInfo)).Info("Successfully registered all tools")
	return nil
}

// Start starts the lite MCP server and blocks until the context is
// cancelled or the transport closes.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting CardioCode MCP Server (Lite)...")

	// Start transport
	activeTransport, err := s.transportMgr.StartTransport(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.activeTransport = activeTransport
	s.logger.WithField("transport_type", activeTransport.GetType()).Info("Transport initialized")

	// The HTTP-SSE surface speaks raw JSON-RPC through the protocol
	// core; stdio clients go through the MCP SDK.
	if activeTransport.GetType() == string(transport.TypeHTTPSSE) {
		return s.serveJSONRPC(ctx, activeTransport)
	}

	mcpTransport := NewMCPTransportBridge(activeTransport, s.logger)
	if err := s.mcpServer.Run(ctx, mcpTransport); err != nil {
		s.activeTransport.Close()
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}

// serveJSONRPC pumps messages from the transport through the protocol
// core. HTTP clients share one protocol session; the SSE transport
// already tracks individual subscribers.
func (s *LiteServer) serveJSONRPC(ctx context.Context, t transport.Transport) error {
	const clientID = "http"

	if err := s.protocolCore.InitializeClient(clientID, nil); err != nil {
		return fmt.Errorf("failed to initialize protocol client: %w", err)
	}
	defer s.protocolCore.CleanupClient(clientID)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := t.ReadMessage()
		if err != nil {
			if err == io.EOF || t.IsClosed() {
				s.logger.Info("Transport closed, stopping JSON-RPC loop")
				return nil
			}
			return fmt.Errorf("transport read failed: %w", err)
		}

		resp, err := s.protocolCore.ProcessMessage(ctx, clientID, raw)
		if err != nil {
			s.logger.WithError(err).Error("Failed to process message")
			continue
		}

		if err := t.WriteMessage(resp); err != nil {
			s.logger.WithError(err).Warn("Failed to write response")
		}
	}
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.auditStore != nil {
		if err := s.auditStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close assessment store")
		}
	}
	if s.citations != nil {
		if err := s.citations.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close citation service")
		}
	}
	if s.activeTransport != nil {
		s.activeTransport.Close()
	}
	return nil
}

// Advisor returns the clinical advisor for external access.
func (s *LiteServer) Advisor() *service.Advisor {
	return s.advisor
}

// AuditStore returns the assessment store for external access.
func (s *LiteServer) AuditStore() audit.Store {
	return s.auditStore
}

// Stats reports protocol-level counters for diagnostics.
func (s *LiteServer) Stats() map[string]interface{} {
	return s.protocolCore.GetStats()
}

// createCitationService builds the resilient PubMed client. An empty
// Redis URL falls back to the no-op citation cache.
func createCitationService(cfg *litecfg.LiteConfig, logger *logrus.Logger) (external.CitationService, error) {
	rateLimit := 3
	if cfg.PubMedAPIKey != "" {
		// NCBI allows 10 rps with an API key
		rateLimit = 10
	}

	client := external.NewPubMedClient(external.PubMedConfig{
		BaseURL:   "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/",
		APIKey:    cfg.PubMedAPIKey,
		Timeout:   30 * time.Second,
		RateLimit: rateLimit,
	})

	citationCache, err := external.NewCitationCache(cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	return external.NewResilientCitationClient(client, citationCache, logger), nil
}
