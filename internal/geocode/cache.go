// internal/geocode/cache.go
package geocode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klanec/pic2pin/internal/geo"
	"github.com/klanec/pic2pin/internal/logger"
)

// Cache persists resolved addresses across runs so repeated scans of the
// same photo set do not hit the lookup service again.
type Cache struct {
	mu         sync.Mutex
	path       string
	Entries    map[string]CacheEntry `json:"entries"`
	batchCount int
}

// CacheEntry is one resolved coordinate.
type CacheEntry struct {
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates a cache backed by the given file. An empty path puts the
// cache in the user's home directory.
func NewCache(path string) *Cache {
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".pic2pin-geocode-cache.json")
		} else {
			path = ".pic2pin-geocode-cache.json"
		}
	}

	return &Cache{
		path:    path,
		Entries: make(map[string]CacheEntry),
	}
}

// cacheKey rounds to ~1m precision: photos taken at the same spot share a
// lookup.
func cacheKey(c geo.Coordinate) string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}

// Load loads the cache from disk. A missing file is a fresh cache, not an
// error.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No geocode cache at %s, starting fresh", c.path)
			return nil
		}
		return err
	}

	var loaded Cache
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded.Entries != nil {
		c.Entries = loaded.Entries
	}
	logger.Debug("Loaded geocode cache with %d entries from %s", len(c.Entries), c.path)
	return nil
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save()
}

func (c *Cache) save() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

// Get returns the cached address for a coordinate, if any.
func (c *Cache) Get(coord geo.Coordinate) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.Entries[cacheKey(coord)]
	return entry.Address, ok
}

// Put stores a resolved address. Every 20 entries the cache is flushed so
// an interrupted run keeps most of its lookups.
func (c *Cache) Put(coord geo.Coordinate, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries[cacheKey(coord)] = CacheEntry{
		Address:   address,
		Timestamp: time.Now(),
	}

	c.batchCount++
	if c.batchCount >= 20 {
		c.batchCount = 0
		if err := c.save(); err != nil {
			logger.Warn("Failed to save geocode cache: %v", err)
		}
	}
}
