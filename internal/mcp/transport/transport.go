// Package transport provides the byte-level transports the MCP server
// can speak over: stdio for local agent integrations and HTTP with
// Server-Sent Events for remote agents.
package transport

import (
	"context"
)

// Transport defines the interface for MCP transport mechanisms
type Transport interface {
	// Start initializes the transport
	Start(ctx context.Context) error

	// ReadMessage reads a message from the transport
	ReadMessage() ([]byte, error)

	// WriteMessage sends a message via the transport
	WriteMessage(message []byte) error

	// WriteJSONMessage sends a JSON object as a message
	WriteJSONMessage(obj interface{}) error

	// Close closes the transport and cleans up resources
	Close() error

	// IsClosed returns whether the transport is closed
	IsClosed() bool

	// GetType returns the transport type identifier
	GetType() string
}

// Type represents the type of transport
type Type string

const (
	TypeStdio   Type = "stdio"
	TypeHTTPSSE Type = "http-sse"
)

// Config holds configuration for transport creation
type Config struct {
	Type     string `json:"transport_type"`
	HTTPHost string `json:"http_host,omitempty"`
	HTTPPort int    `json:"http_port,omitempty"`
}
