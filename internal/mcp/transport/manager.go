package transport

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager handles transport creation, auto-detection, and lifecycle
type Manager struct {
	logger    *logrus.Logger
	config    *Config
	transport Transport
	mu        sync.RWMutex
}

// NewManager creates a new transport manager
func NewManager(logger *logrus.Logger, config *Config) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// AutoDetectTransport picks the transport type from command line
// arguments, environment, configuration, then terminal heuristics.
func (m *Manager) AutoDetectTransport() (Type, error) {
	m.logger.Debug("Auto-detecting MCP transport type")

	for _, arg := range os.Args[1:] {
		switch arg {
		case "--stdio", "-stdio":
			m.logger.Info("Detected stdio transport via command line argument")
			return TypeStdio, nil
		case "--http", "-http":
			m.logger.Info("Detected HTTP transport via command line argument")
			return TypeHTTPSSE, nil
		}
	}

	if transportType := os.Getenv("CARDIO_TRANSPORT"); transportType != "" {
		switch transportType {
		case "stdio":
			return TypeStdio, nil
		case "http", "http-sse":
			return TypeHTTPSSE, nil
		default:
			m.logger.WithField("transport_type", transportType).Warn("Unknown transport type in CARDIO_TRANSPORT")
		}
	}

	if m.config != nil && m.config.Type != "" {
		switch m.config.Type {
		case "stdio":
			return TypeStdio, nil
		case "http", "http-sse":
			return TypeHTTPSSE, nil
		default:
			m.logger.WithField("transport_type", m.config.Type).Warn("Unknown transport type in configuration")
		}
	}

	// MCP servers default to stdio
	m.logger.Info("No specific transport detected, defaulting to stdio")
	return TypeStdio, nil
}

// CreateTransport creates a transport instance based on the specified type
func (m *Manager) CreateTransport(transportType Type) (Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch transportType {
	case TypeStdio:
		return NewStdioTransport(m.logger), nil

	case TypeHTTPSSE:
		host := "localhost"
		port := 8080

		if m.config != nil {
			if m.config.HTTPHost != "" {
				host = m.config.HTTPHost
			}
			if m.config.HTTPPort > 0 {
				port = m.config.HTTPPort
			}
		}

		if envPort := os.Getenv("CARDIO_HTTP_PORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil && p > 0 {
				port = p
			}
		}

		m.logger.WithFields(logrus.Fields{
			"host": host,
			"port": port,
		}).Info("Creating HTTP SSE transport")

		return NewHTTPSSETransport(m.logger, host, port), nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}

// StartTransport auto-detects, creates, and starts the transport
func (m *Manager) StartTransport(ctx context.Context) (Transport, error) {
	transportType, err := m.AutoDetectTransport()
	if err != nil {
		return nil, fmt.Errorf("failed to detect transport: %w", err)
	}

	transport, err := m.CreateTransport(transportType)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	if err := transport.Start(ctx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("failed to start transport: %w", err)
	}

	m.mu.Lock()
	m.transport = transport
	m.mu.Unlock()

	m.logger.WithField("transport_type", transport.GetType()).Info("Transport started")

	return transport, nil
}

// GetActiveTransport returns the currently active transport
func (m *Manager) GetActiveTransport() Transport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transport
}

// Shutdown gracefully shuts down the active transport
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.transport != nil {
		if err := m.transport.Close(); err != nil {
			return err
		}
		m.transport = nil
	}

	m.logger.Info("Transport manager shutdown complete")
	return nil
}
