// Package modelcache caches parsed model descriptions by FMU file name.
//
// The cache lets simulation telemetry look up variable causality without
// parsing the model description again. Keys are the exact file identifier
// passed to the simulation call; no normalization beyond that is applied.
//
// Example usage:
//
//	cache := modelcache.New(0) // unbounded
//	cache.Put("BouncingBall.fmu", md)
//	md, ok := cache.Get("BouncingBall.fmu")
package modelcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fyrsmithlabs/otelfmu/pkg/fmu"
)

// Entry is a cached model description.
type Entry struct {
	// FileID is the file identifier the description was parsed from.
	FileID string

	// Description is the parsed model description.
	Description *fmu.ModelDescription

	// CreatedAt is when this entry was stored.
	CreatedAt time.Time
}

// Cache is a thread-safe in-memory map from file identifier to model
// description with optional LRU eviction.
//
// An unbounded cache is a plain map. A bounded cache is a golang-lru cache,
// where Get and Put both count as a use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry // unbounded mode
	bounded *lru.Cache[string, *Entry]
	now     func() time.Time
}

// New creates a cache. maxEntries <= 0 disables eviction, which matches the
// process-lifetime cache of the instrumented library.
func New(maxEntries int) *Cache {
	c := &Cache{now: time.Now}
	if maxEntries > 0 {
		// lru.New only fails for a non-positive size.
		c.bounded, _ = lru.New[string, *Entry](maxEntries)
		return c
	}
	c.entries = make(map[string]*Entry)
	return c
}

// Put stores md for fileID, replacing any previous entry. When the cache is
// bounded and full, the least recently used entry is evicted first.
func (c *Cache) Put(fileID string, md *fmu.ModelDescription) {
	if md == nil {
		return
	}
	entry := &Entry{FileID: fileID, Description: md, CreatedAt: c.now()}

	if c.bounded != nil {
		c.bounded.Add(fileID, entry)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fileID] = entry
}

// Get returns the description cached for fileID.
func (c *Cache) Get(fileID string) (*fmu.ModelDescription, bool) {
	var entry *Entry
	var ok bool
	if c.bounded != nil {
		entry, ok = c.bounded.Get(fileID)
	} else {
		c.mu.RLock()
		entry, ok = c.entries[fileID]
		c.mu.RUnlock()
	}
	if !ok {
		return nil, false
	}
	return entry.Description, true
}

// Delete removes the entry for fileID. It is a no-op if none exists.
func (c *Cache) Delete(fileID string) {
	if c.bounded != nil {
		c.bounded.Remove(fileID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fileID)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	if c.bounded != nil {
		c.bounded.Purge()
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Len returns the number of cached descriptions.
func (c *Cache) Len() int {
	if c.bounded != nil {
		return c.bounded.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
