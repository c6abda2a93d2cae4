package protocol

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// MessageRouter routes MCP messages to tool and system handlers
type MessageRouter struct {
	logger         *logrus.Logger
	toolHandlers   map[string]ToolHandler
	systemHandlers map[string]SystemHandler
	serverInfo     ServerInfo
	mu             sync.RWMutex
}

// ToolHandler defines the interface for MCP tool handlers
type ToolHandler interface {
	HandleTool(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response
	GetToolInfo() ToolInfo
	ValidateParams(params interface{}) error
}

// SystemHandler defines the interface for MCP system handlers
type SystemHandler interface {
	HandleSystem(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response
	GetSystemInfo() SystemInfo
}

// ToolInfo contains metadata about a tool
type ToolInfo struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema,omitempty"`
}

// SystemInfo contains metadata about system handlers
type SystemInfo struct {
	Method      string `json:"method"`
	Description string `json:"description"`
}

// ServerInfo identifies the server during initialize
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewMessageRouter creates a new message router
func NewMessageRouter(logger *logrus.Logger, serverInfo ServerInfo) *MessageRouter {
	router := &MessageRouter{
		logger:         logger,
		toolHandlers:   make(map[string]ToolHandler),
		systemHandlers: make(map[string]SystemHandler),
		serverInfo:     serverInfo,
	}

	router.registerSystemHandlers()

	return router
}

// registerSystemHandlers registers built-in MCP system message handlers
func (mr *MessageRouter) registerSystemHandlers() {
	mr.systemHandlers["initialize"] = &InitializeHandler{logger: mr.logger, serverInfo: mr.serverInfo}
	mr.systemHandlers["ping"] = &PingHandler{}
	mr.systemHandlers["tools/list"] = &ToolsListHandler{logger: mr.logger, router: mr}
	mr.systemHandlers["tools/call"] = &ToolsCallHandler{logger: mr.logger, router: mr}

	mr.logger.Debug("Registered system message handlers")
}

// HandleRequest implements MessageHandler for routing messages
func (mr *MessageRouter) HandleRequest(ctx context.Context, req *JSONRPC2Request) *JSONRPC2Response {
	mr.logger.WithField("method", req.Method).Debug("Routing message")

	mr.mu.RLock()
	handler, exists := mr.systemHandlers[req.Method]
	mr.mu.RUnlock()

	if exists {
		return handler.HandleSystem(ctx, req)
	}

	return &JSONRPC2Response{
		Error: &RPCError{
			Code:    MethodNotFound,
			Message: "Method not found",
			Data:    fmt.Sprintf("No handler found for method: %s", req.Method),
		},
	}
}

// GetSupportedMethods returns all supported methods
func (mr *MessageRouter) GetSupportedMethods() []string {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	methods := make([]string, 0, len(mr.systemHandlers))
	for method := range mr.systemHandlers {
		methods = append(methods, method)
	}

	return methods
}

// RegisterToolHandler registers a tool handler
func (mr *MessageRouter) RegisterToolHandler(name string, handler ToolHandler) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.toolHandlers[name] = handler
	mr.logger.WithField("tool_name", name).Debug("Registered tool handler")
}

// GetToolHandlers returns a copy of all registered tool handlers
func (mr *MessageRouter) GetToolHandlers() map[string]ToolHandler {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handlers := make(map[string]ToolHandler, len(mr.toolHandlers))
	for name, handler := range mr.toolHandlers {
		handlers[name] = handler
	}
	return handlers
}

// GetToolHandler retrieves a specific tool handler
func (mr *MessageRouter) GetToolHandler(name string) (ToolHandler, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	handler, exists := mr.toolHandlers[name]
	return handler, exists
}

// GetStats returns router statistics
func (mr *MessageRouter) GetStats() map[string]interface{} {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	return map[string]interface{}{
		"registered_tools": len(mr.toolHandlers),
		"system_handlers":  len(mr.systemHandlers),
	}
}
