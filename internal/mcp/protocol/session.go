package protocol

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ClientSession represents an active MCP client session
type ClientSession struct {
	ID            string                 `json:"id"`
	ClientName    string                 `json:"client_name,omitempty"`
	ClientVersion string                 `json:"client_version,omitempty"`
	ConnectedAt   time.Time              `json:"connected_at"`
	LastActivity  time.Time              `json:"last_activity"`
	Capabilities  map[string]interface{} `json:"capabilities"`
	RequestCount  int64                  `json:"request_count"`
}

// SessionManager tracks connected MCP client sessions
type SessionManager struct {
	logger   *logrus.Logger
	sessions map[string]*ClientSession
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(logger *logrus.Logger) *SessionManager {
	return &SessionManager{
		logger:   logger,
		sessions: make(map[string]*ClientSession),
	}
}

// CreateSession creates a new client session
func (sm *SessionManager) CreateSession(clientID string, capabilities map[string]interface{}) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[clientID]; exists {
		return fmt.Errorf("session already exists for client %s", clientID)
	}

	clientName, clientVersion := extractClientInfo(capabilities)

	now := time.Now()
	sm.sessions[clientID] = &ClientSession{
		ID:            clientID,
		ClientName:    clientName,
		ClientVersion: clientVersion,
		ConnectedAt:   now,
		LastActivity:  now,
		Capabilities:  capabilities,
	}

	sm.logger.WithFields(logrus.Fields{
		"client_id":      clientID,
		"client_name":    clientName,
		"client_version": clientVersion,
	}).Info("Created new MCP client session")

	return nil
}

// extractClientInfo pulls name and version from initialize capabilities
func extractClientInfo(capabilities map[string]interface{}) (string, string) {
	name, version := "unknown", "unknown"

	clientInfo, ok := capabilities["clientInfo"].(map[string]interface{})
	if !ok {
		return name, version
	}

	if n, ok := clientInfo["name"].(string); ok {
		name = n
	}
	if v, ok := clientInfo["version"].(string); ok {
		version = v
	}

	return name, version
}

// GetSession retrieves a client session
func (sm *SessionManager) GetSession(clientID string) (*ClientSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[clientID]
	return session, exists
}

// UpdateClientActivity bumps the activity timestamp and request count
func (sm *SessionManager) UpdateClientActivity(clientID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[clientID]; exists {
		session.LastActivity = time.Now()
		session.RequestCount++
	}
}

// RemoveSession removes a client session
func (sm *SessionManager) RemoveSession(clientID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, exists := sm.sessions[clientID]; exists {
		delete(sm.sessions, clientID)
		sm.logger.WithFields(logrus.Fields{
			"client_id": clientID,
			"duration":  time.Since(session.ConnectedAt).String(),
			"requests":  session.RequestCount,
		}).Info("Removed MCP client session")
	}
}

// GetSessionCount returns the number of active sessions
func (sm *SessionManager) GetSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}
