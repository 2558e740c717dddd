// Package cache persists project size results between runs.
//
// The cache is a single JSON document keyed by a hash of the project path.
// An entry is served only while its TTL holds and the project shows no
// modification signal newer than the one recorded when the entry was
// written; see projectLastModified for what counts as a signal. Writes are
// atomic, so a crash mid-save leaves the previous document intact.
//
// The cache assumes a single writer process at a time. Concurrent
// processes sharing one cache file race on the full-document rewrite and
// the last writer wins.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/projsweep/projsweep/errors"
	"github.com/projsweep/projsweep/metrics"
)

// SizeCache is a persistent store of project size results. A single
// instance is safe for concurrent use.
type SizeCache struct {
	cfg  Config
	fs   billy.Filesystem
	path string
	now  func() time.Time

	mu   sync.RWMutex
	data *storeData
}

// Option configures a SizeCache.
type Option func(*SizeCache)

// WithFilesystem overrides the filesystem the cache file lives on.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *SizeCache) {
		c.fs = fs
	}
}

// WithPath overrides the location of the cache file.
func WithPath(path string) Option {
	return func(c *SizeCache) {
		c.path = path
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SizeCache) {
		c.now = now
	}
}

// New opens the size cache, loading the store from disk. A disabled cache
// performs no IO and is returned immediately.
func New(cfg Config, opts ...Option) (*SizeCache, error) {
	c := &SizeCache{
		cfg: cfg,
		fs:  osfs.New("/"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !cfg.Enabled {
		c.data = newStoreData(c.now().Unix())
		return c, nil
	}

	if c.path == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		c.path = path
	}

	c.data = loadStore(c.fs, c.path, c.now().Unix())
	return c, nil
}

// DefaultPath returns the per-user location of the cache file.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeCacheFailed, "failed to resolve user cache directory")
	}
	return filepath.Join(dir, "projsweep", "size_cache.json"), nil
}

// Path returns the location of the cache file.
func (c *SizeCache) Path() string {
	return c.path
}

// Get returns the cached entry for projectPath if one exists, its TTL has
// not elapsed, and the project's modification signal is no newer than the
// one stored with the entry. All other cases are misses; Get never fails.
func (c *SizeCache) Get(projectPath string) (Entry, bool) {
	if !c.cfg.Enabled {
		return Entry{}, false
	}

	c.mu.RLock()
	entry, ok := c.data.Entries[cacheKey(projectPath)]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheMisses.WithLabelValues("absent").Inc()
		return Entry{}, false
	}

	if entry.expired(c.cfg.ExpiryDuration, c.now()) {
		metrics.CacheMisses.WithLabelValues("expired").Inc()
		return Entry{}, false
	}

	// A signal that cannot be computed means the project is gone or
	// unreadable; the entry no longer describes anything servable.
	signal, ok := projectLastModified(c.fs, projectPath)
	if !ok || signal > entry.LastModified {
		metrics.CacheMisses.WithLabelValues("stale").Inc()
		return Entry{}, false
	}

	metrics.CacheHits.Inc()
	return entry, true
}

// Put stores a record for projectPath and persists the document. The
// entry is stamped with the current time and the project's modification
// signal; when the entry limit is exceeded, the oldest-created entries are
// evicted first.
func (c *SizeCache) Put(projectPath string, record SizeRecord, isGitRepo bool) error {
	if !c.cfg.Enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	key := cacheKey(projectPath)

	signal, _ := projectLastModified(c.fs, projectPath)
	c.data.Entries[key] = Entry{
		ProjectPath:  projectPath,
		Record:       record,
		CreatedAt:    now.Unix(),
		LastModified: signal,
		IsGitRepo:    isGitRepo,
		createdAt:    now,
	}

	c.evictLocked(key)

	return saveStore(c.fs, c.path, c.data, now.Unix())
}

// evictLocked removes oldest-created entries until the entry limit holds.
// The entry named by keep is never evicted. Caller holds c.mu.
func (c *SizeCache) evictLocked(keep string) {
	if c.cfg.MaxEntries <= 0 || len(c.data.Entries) <= c.cfg.MaxEntries {
		return
	}

	type aged struct {
		key       string
		createdAt int64
	}
	candidates := make([]aged, 0, len(c.data.Entries))
	for key, entry := range c.data.Entries {
		if key != keep {
			candidates = append(candidates, aged{key, entry.CreatedAt})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].createdAt < candidates[j].createdAt
	})

	for _, cand := range candidates {
		if len(c.data.Entries) <= c.cfg.MaxEntries {
			break
		}
		delete(c.data.Entries, cand.key)
		metrics.CacheEvictions.Inc()
	}
}

// CleanupExpired removes every TTL-expired entry, persisting the document
// when anything was removed. Returns the number of removed entries.
func (c *SizeCache) CleanupExpired() (int, error) {
	if !c.cfg.Enabled {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.data.Entries {
		if entry.expired(c.cfg.ExpiryDuration, now) {
			delete(c.data.Entries, key)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, saveStore(c.fs, c.path, c.data, now.Unix())
}

// ClearAll drops every entry and persists the empty document.
func (c *SizeCache) ClearAll() error {
	if !c.cfg.Enabled {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data.Entries = make(map[string]Entry)
	return saveStore(c.fs, c.path, c.data, c.now().Unix())
}

// Status reports whether projectPath is cached and whether its TTL holds.
// Unlike Get, Status does not consult the modification signal.
func (c *SizeCache) Status(projectPath string) Status {
	if !c.cfg.Enabled {
		return StatusNotCached
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data.Entries[cacheKey(projectPath)]
	if !ok {
		return StatusNotCached
	}
	if entry.expired(c.cfg.ExpiryDuration, c.now()) {
		return StatusExpired
	}
	return StatusValid
}

// Stats summarizes the store contents and the cache file size.
func (c *SizeCache) Stats() Stats {
	if !c.cfg.Enabled {
		return Stats{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := Stats{
		TotalEntries: len(c.data.Entries),
		LastUpdated:  c.data.Metadata.UpdatedAt,
	}
	for _, entry := range c.data.Entries {
		if entry.expired(c.cfg.ExpiryDuration, now) {
			stats.ExpiredEntries++
		}
		if entry.IsGitRepo {
			stats.GitRepoCount++
		}
		stats.TotalSize += entry.Record.TotalSize
		stats.CodeSize += entry.Record.CodeSize
		stats.DependencySize += entry.Record.DependencySize
	}

	if fi, err := c.fs.Stat(c.path); err == nil {
		stats.FileSize = fi.Size()
	}
	return stats
}

// cacheKey derives the stable store key for a project path.
func cacheKey(projectPath string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(projectPath))
}
