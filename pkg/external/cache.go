package external

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CitationCache caches resolved study citations. A miss returns found ==
// false with a nil error; cache failures are soft and never block a
// lookup.
type CitationCache interface {
	Get(ctx context.Context, key string) ([]StudyCitation, bool, error)
	Set(ctx context.Context, key string, citations []StudyCitation, ttl time.Duration) error
	Close() error
}

// NewCitationCache returns a Redis-backed cache when redisURL is set and
// reachable, otherwise a no-op cache so the citation client works without
// any cache infrastructure.
func NewCitationCache(redisURL string, defaultTTL time.Duration) (CitationCache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return NoopCitationCache{}, nil
	}
	return NewRedisCitationCache(redisURL, defaultTTL)
}

// NoopCitationCache never stores anything.
type NoopCitationCache struct{}

func (NoopCitationCache) Get(ctx context.Context, key string) ([]StudyCitation, bool, error) {
	return nil, false, nil
}

func (NoopCitationCache) Set(ctx context.Context, key string, citations []StudyCitation, ttl time.Duration) error {
	return nil
}

func (NoopCitationCache) Close() error { return nil }

// RedisCitationCache stores citation lookups in Redis.
type RedisCitationCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// cachedCitations is the stored envelope.
type cachedCitations struct {
	Citations []StudyCitation `json:"citations"`
	CachedAt  time.Time       `json:"cached_at"`
}

// NewRedisCitationCache creates a Redis-backed citation cache.
func NewRedisCitationCache(redisURL string, defaultTTL time.Duration) (*RedisCitationCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}

	return &RedisCitationCache{
		redis:      client,
		defaultTTL: defaultTTL,
	}, nil
}

// Get retrieves cached citations.
func (c *RedisCitationCache) Get(ctx context.Context, key string) ([]StudyCitation, bool, error) {
	val, err := c.redis.Get(ctx, citationKey(key)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get citation cache: %w", err)
	}

	var cached cachedCitations
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Drop corrupted entries rather than failing the lookup
		c.redis.Del(ctx, citationKey(key))
		return nil, false, nil
	}

	return cached.Citations, true, nil
}

// Set caches citations under key.
func (c *RedisCitationCache) Set(ctx context.Context, key string, citations []StudyCitation, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	cached := cachedCitations{
		Citations: citations,
		CachedAt:  time.Now(),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal citation cache data: %w", err)
	}

	return c.redis.Set(ctx, citationKey(key), jsonData, ttl).Err()
}

// Close releases the Redis connection.
func (c *RedisCitationCache) Close() error {
	return c.redis.Close()
}

// citationKey namespaces and hashes the lookup key.
func citationKey(key string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(key))))
	return "cardiocode:citation:" + hex.EncodeToString(sum[:16])
}
