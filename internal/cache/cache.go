// Package cache is an LRU of detection results keyed by image digest, so
// repeated uploads of the same webcam frame skip the remote analyzer.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"moodtrack/internal/models"
)

const MaxCacheSize = 64

type cacheEntry struct {
	key       string
	detection *models.Detection
	timestamp time.Time
}

type Cache struct {
	mu      sync.RWMutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
}

func New() *Cache {
	return &Cache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: MaxCacheSize,
	}
}

// Key derives the cache key for an uploaded image.
func Key(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

func (c *Cache) Get(key string) (*models.Detection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		return entry.detection, true
	}
	return nil, false
}

func (c *Cache) Set(key string, detection *models.Detection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.detection = detection
		entry.timestamp = time.Now()
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			entry := oldest.Value.(*cacheEntry)
			delete(c.items, entry.key)
			c.order.Remove(oldest)
		}
	}

	entry := &cacheEntry{
		key:       key,
		detection: detection,
		timestamp: time.Now(),
	}
	elem := c.order.PushFront(entry)
	c.items[key] = elem
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order = list.New()
}
