package protocol

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `json:"enabled"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
	CleanupInterval   time.Duration `json:"cleanup_interval"`
	InactiveThreshold time.Duration `json:"inactive_threshold"`
}

// DefaultRateLimitConfig returns limits sized for interactive clinical
// sessions: one request per second sustained with short bursts allowed.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             10,
		CleanupInterval:   10 * time.Minute,
		InactiveThreshold: time.Hour,
	}
}

// clientLimiter pairs a token bucket with its last-seen timestamp
type clientLimiter struct {
	limiter    *rate.Limiter
	lastActive time.Time
	denied     int64
}

// RateLimiter enforces per-client request limits for MCP clients
type RateLimiter struct {
	logger  *logrus.Logger
	config  *RateLimitConfig
	clients map[string]*clientLimiter
	mu      sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(logger *logrus.Logger, config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}

	rl := &RateLimiter{
		logger:  logger,
		config:  config,
		clients: make(map[string]*clientLimiter),
	}

	if config.Enabled {
		go rl.cleanupLoop()
	}

	return rl
}

// InitializeClient creates limiter state for a new client
func (rl *RateLimiter) InitializeClient(clientID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.ensureClient(clientID)

	rl.logger.WithFields(logrus.Fields{
		"client_id":           clientID,
		"requests_per_second": rl.config.RequestsPerSecond,
		"burst":               rl.config.Burst,
	}).Debug("Initialized rate limiter for client")
}

// AllowRequest reports whether a request from the client may proceed.
// Clients that were never initialized are registered on first use.
func (rl *RateLimiter) AllowRequest(clientID string) bool {
	if !rl.config.Enabled {
		return true
	}

	rl.mu.Lock()
	client := rl.ensureClient(clientID)
	client.lastActive = time.Now()
	rl.mu.Unlock()

	if client.limiter.Allow() {
		return true
	}

	rl.mu.Lock()
	client.denied++
	denied := client.denied
	rl.mu.Unlock()

	rl.logger.WithFields(logrus.Fields{
		"client_id":    clientID,
		"denied_count": denied,
	}).Warn("Request denied: rate limit exceeded")

	return false
}

// ensureClient returns the limiter for a client, creating it if needed.
// Caller must hold rl.mu.
func (rl *RateLimiter) ensureClient(clientID string) *clientLimiter {
	client, exists := rl.clients[clientID]
	if !exists {
		client = &clientLimiter{
			limiter:    rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
			lastActive: time.Now(),
		}
		rl.clients[clientID] = client
	}
	return client
}

// RemoveClient removes rate limiting state for a client
func (rl *RateLimiter) RemoveClient(clientID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.clients, clientID)
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	totalDenied := int64(0)
	for _, client := range rl.clients {
		totalDenied += client.denied
	}

	return map[string]interface{}{
		"enabled":             rl.config.Enabled,
		"total_clients":       len(rl.clients),
		"total_denied":        totalDenied,
		"requests_per_second": rl.config.RequestsPerSecond,
		"burst":               rl.config.Burst,
	}
}

// cleanupLoop periodically drops limiter state for inactive clients
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.removeInactive()
	}
}

func (rl *RateLimiter) removeInactive() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.config.InactiveThreshold)
	removed := 0
	for clientID, client := range rl.clients {
		if client.lastActive.Before(cutoff) {
			delete(rl.clients, clientID)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.WithField("cleaned_count", removed).Info("Cleaned up inactive rate limiter state")
	}
}
