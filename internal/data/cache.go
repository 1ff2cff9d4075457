package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"
)

// CacheEntry is one cached PVGIS response body.
type CacheEntry struct {
	Body      []byte
	ExpiresAt time.Time
}

// ResponseCache keeps PVGIS responses in memory during local development.
// It is disabled unless ENABLE_PVGIS_CACHE=true and never active when
// API_ENV=production. A nil *ResponseCache is a valid, always-missing cache.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
}

var globalCache *ResponseCache
var cacheOnce sync.Once

// GetCache returns the process cache, or nil when caching is disabled.
func GetCache() *ResponseCache {
	if os.Getenv("ENABLE_PVGIS_CACHE") != "true" {
		return nil
	}
	if os.Getenv("API_ENV") == "production" {
		return nil
	}

	cacheOnce.Do(func() {
		ttl := 24 * time.Hour
		if ttlStr := os.Getenv("PVGIS_CACHE_TTL"); ttlStr != "" {
			if parsed, err := time.ParseDuration(ttlStr); err == nil {
				ttl = parsed
			}
		}
		globalCache = NewResponseCache(ttl).StartCleanup()
	})
	return globalCache
}

// NewResponseCache creates a standalone cache.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
	}
}

// Get returns a cached body if present and not expired.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Body, true
}

func (c *ResponseCache) Set(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = &CacheEntry{Body: body, ExpiresAt: time.Now().Add(c.ttl)}
}

func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]*CacheEntry)
}

// StartCleanup evicts expired entries every five minutes for the life of
// the process.
func (c *ResponseCache) StartCleanup() *ResponseCache {
	go c.cleanup()
	return c
}

func (c *ResponseCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.store {
			if now.After(entry.ExpiresAt) {
				delete(c.store, key)
			}
		}
		c.mu.Unlock()
	}
}

// GenerateCacheKey hashes the request parameters.
func GenerateCacheKey(p SeriesParams) string {
	keyStr := fmt.Sprintf("%.5f:%.5f:%d:%d:%.2f:%.2f", p.Lat, p.Lon, p.StartYear, p.EndYear, p.Angle, p.Aspect)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
