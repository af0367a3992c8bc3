// Package cache provides a file-backed cache of per-file metric blocks.
// Entries are keyed by content hash so results invalidate automatically
// when source code changes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codestats/metrics"
)

// Entry represents the cached metrics for one file content.
type Entry struct {
	// Key is the cache key (content hash + language)
	Key string `json:"key"`

	// ContentHash is the SHA256 hash of the source content
	ContentHash string `json:"content_hash"`

	// Language is the internal language name the content was parsed as
	Language string `json:"language"`

	// Blocks are the metric blocks computed for the content
	Blocks []metrics.Block `json:"blocks"`

	// CreatedAt is when the entry was created
	CreatedAt time.Time `json:"created_at"`
}

// Stats tracks cache performance.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Writes    int64 `json:"writes"`
	Evictions int64 `json:"evictions"`
}

// Cache is a file-backed cache of metric results.
type Cache struct {
	dir     string
	ttl     time.Duration
	stats   Stats
	mu      sync.RWMutex
	enabled bool
}

// Options configures the cache.
type Options struct {
	// Dir is the cache directory (default: .codestats/cache)
	Dir string

	// TTL is the cache entry TTL (0 = no expiry)
	TTL time.Duration

	// Enabled controls whether caching is active
	Enabled bool
}

// DefaultOptions returns default cache options.
func DefaultOptions() Options {
	return Options{
		Dir:     filepath.Join(".codestats", "cache"),
		TTL:     0, // No expiry
		Enabled: true,
	}
}

// New creates a new cache.
func New(opts Options) (*Cache, error) {
	if !opts.Enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Cache{
		dir:     opts.Dir,
		ttl:     opts.TTL,
		enabled: true,
	}, nil
}

// MakeKey creates a cache key from content hash and language.
func MakeKey(contentHash, language string) string {
	combined := fmt.Sprintf("%s:%s", contentHash, language)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes for shorter keys
}

// ContentHash computes a SHA256 hash of source content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// Get retrieves a cached entry by key.
func (c *Cache) Get(key string) (*Entry, bool) {
	if !c.enabled {
		return nil, false
	}

	c.mu.RLock()
	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	c.mu.RUnlock()

	if err != nil {
		c.recordMiss()
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.recordMiss()
		return nil, false
	}

	// Check TTL
	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		os.Remove(path)
		c.recordMiss()
		return nil, false
	}

	c.recordHit()
	return &entry, true
}

// GetBlocks retrieves cached metric blocks by content hash and language.
func (c *Cache) GetBlocks(contentHash, language string) ([]metrics.Block, bool) {
	entry, ok := c.Get(MakeKey(contentHash, language))
	if !ok {
		return nil, false
	}
	return entry.Blocks, true
}

// SetBlocks stores metric blocks for a content hash and language.
func (c *Cache) SetBlocks(contentHash, language string, blocks []metrics.Block) error {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := Entry{
		Key:         MakeKey(contentHash, language),
		ContentHash: contentHash,
		Language:    language,
		Blocks:      blocks,
		CreatedAt:   time.Now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	if err := os.WriteFile(c.keyPath(entry.Key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	c.stats.Writes++
	return nil
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, entry.Name()))
			c.stats.Evictions++
		}
	}

	return nil
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() error {
	if !c.enabled || c.ttl == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var cached Entry
		if err := json.Unmarshal(data, &cached); err != nil {
			continue
		}

		if now.Sub(cached.CreatedAt) > c.ttl {
			os.Remove(path)
			c.stats.Evictions++
		}
	}

	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// HitRate returns the cache hit rate.
func (c *Cache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	if !c.enabled {
		return 0
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}
	return count
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// keyPath returns the file path for a cache key.
func (c *Cache) keyPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}
