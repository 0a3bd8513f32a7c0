package suppress

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fallbackTTL is the cache lifetime used when a directory can't be
// watched (fsnotify unavailable, e.g. some sandboxes) — never a hard
// failure, per spec.md §4.H / SPEC_FULL.md §4.H.
const fallbackTTL = 10 * time.Second

// Cache memoizes the result of FindUpward per directory, invalidated by
// fsnotify watches on every directory it has cached a result for — the
// same "detect changes, invalidate, don't poll forever" shape as
// aretext/editor/file/watcher.go, with a real kernel-event watch standing
// in for that file's poll loop.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

type cacheEntry struct {
	ignore    *IgnoreFile
	cachedAt  time.Time
	watched   bool
}

// NewCache creates a Cache, starting an fsnotify watcher in the
// background. If the watcher can't be created, the cache still works,
// falling back to the TTL.
func NewCache(log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	c := &Cache{entries: make(map[string]cacheEntry), log: log}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("suppress: fsnotify unavailable, falling back to TTL cache", "error", err)
		return c
	}
	c.watcher = w
	go c.drainEvents()
	return c
}

func (c *Cache) drainEvents() {
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.invalidate(ev.Name)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("suppress: fsnotify watch error", "error", err)
		}
	}
}

// invalidate drops the entry for a watched directory when an event names
// the directory itself or an entry directly inside it.
func (c *Cache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for d := range c.entries {
		if d == name || d == filepath.Dir(name) {
			delete(c.entries, d)
		}
	}
}

// Lookup returns the .bashrsignore found by walking up from dir, using a
// cached result when one is fresh.
func (c *Cache) Lookup(dir string) (*IgnoreFile, error) {
	c.mu.Lock()
	if e, ok := c.entries[dir]; ok {
		if e.watched || time.Since(e.cachedAt) < fallbackTTL {
			c.mu.Unlock()
			return e.ignore, nil
		}
	}
	c.mu.Unlock()

	ig, err := FindUpward(dir)
	if err != nil {
		return nil, err
	}

	watched := false
	if c.watcher != nil {
		if err := c.watcher.Add(dir); err == nil {
			watched = true
		}
	}

	c.mu.Lock()
	c.entries[dir] = cacheEntry{ignore: ig, cachedAt: time.Now(), watched: watched}
	c.mu.Unlock()
	return ig, nil
}

// Close stops the background watcher, if one was started.
func (c *Cache) Close() error {
	if c.watcher == nil {
		return nil
	}
	return c.watcher.Close()
}
