// Package cache keeps parsed schema files keyed by a hash of their path
// and content, so unchanged files are not parsed again in watch mode or
// across repeated checks by one process.
//
// Key Format Version: v1
// Format: sha256(path + \0 + content), hex encoded
//
// Cached files are shared between runs. This is safe because a
// schema.File is never modified after parsing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/protocheck/pkg/schema"
)

// Config configures the parse cache
type Config struct {
	MaxEntries int
	// TTL of zero disables expiry. A positive TTL starts a sweeper
	// goroutine that lives as long as the process.
	TTL time.Duration
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 1024,
		TTL:        10 * time.Minute,
	}
}

// Stats reports cache effectiveness
type Stats struct {
	Hits      int64
	Misses    int64
	ItemCount int64
	HitRate   float64
}

// ParseCache is an in-memory LRU of parsed files with TTL expiry
type ParseCache struct {
	config *Config
	cache  *lru.LRU[string, *schema.File]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewParseCache creates a parse cache
func NewParseCache(config *Config) *ParseCache {
	if config == nil {
		config = DefaultConfig()
	}
	size := config.MaxEntries
	if size < 1 {
		size = 1
	}

	return &ParseCache{
		config: config,
		cache:  lru.NewLRU[string, *schema.File](size, nil, config.TTL),
	}
}

// Key derives the cache key for a file. The path is part of the key
// because it ends up in the parsed file and in its diagnostics.
func Key(path string, content []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(path))
	hasher.Write([]byte{0})
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Get returns the cached file for key
func (c *ParseCache) Get(key string) (*schema.File, bool) {
	file, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return file, true
}

// Add stores a parsed file
func (c *ParseCache) Add(key string, file *schema.File) {
	if file == nil {
		return
	}
	c.cache.Add(key, file)
}

// Len returns the number of cached files
func (c *ParseCache) Len() int {
	return c.cache.Len()
}

// Purge drops every entry
func (c *ParseCache) Purge() {
	c.cache.Purge()
}

// Stats returns cache statistics
func (c *ParseCache) Stats() Stats {
	stats := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: int64(c.cache.Len()),
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}
