package cache

import "time"

// Config controls the behavior of the size cache.
type Config struct {
	// Enabled toggles the cache. A disabled cache performs no disk IO and
	// answers every lookup as a miss.
	Enabled bool

	// ExpiryDuration is the time-to-live of an entry measured from its
	// creation.
	ExpiryDuration time.Duration

	// MaxEntries bounds the number of cached projects. When exceeded, the
	// oldest-created entries are evicted first.
	MaxEntries int
}

// DefaultConfig returns the cache defaults: enabled, 24 hour TTL, 1000
// entries.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		ExpiryDuration: 24 * time.Hour,
		MaxEntries:     1000,
	}
}

// SizeRecord is the persisted size breakdown of a single project. All
// sizes are bytes; LastModified is the latest file mtime observed during
// the scan, as Unix seconds, or zero when no files were seen.
type SizeRecord struct {
	CodeSize                   int64 `json:"code_size"`
	DependencySize             int64 `json:"dependency_size"`
	TotalSize                  int64 `json:"total_size"`
	GitignoreExcludedSize      int64 `json:"gitignore_excluded_size"`
	CodeFileCount              int   `json:"code_file_count"`
	DependencyFileCount        int   `json:"dependency_file_count"`
	TotalFileCount             int   `json:"total_file_count"`
	GitignoreExcludedFileCount int   `json:"gitignore_excluded_file_count"`
	LastModified               int64 `json:"last_modified,omitempty"`
}

// Entry wraps a SizeRecord with the bookkeeping the cache needs to judge
// validity. Timestamps are Unix seconds. LastModified records the
// project's modification signal at write time; a newer signal on disk
// invalidates the entry.
type Entry struct {
	ProjectPath  string     `json:"project_path"`
	Record       SizeRecord `json:"size_info"`
	CreatedAt    int64      `json:"created_at"`
	LastModified int64      `json:"last_modified"`
	IsGitRepo    bool       `json:"is_git_repo"`

	// createdAt keeps the full-precision creation stamp for entries
	// written by this process, so sub-second TTLs expire accurately. The
	// persisted document carries whole seconds only; reloaded entries
	// fall back to that.
	createdAt time.Time
}

// creationTime returns the most precise creation stamp available.
func (e Entry) creationTime() time.Time {
	if !e.createdAt.IsZero() {
		return e.createdAt
	}
	return time.Unix(e.CreatedAt, 0)
}

// expired reports whether the entry's TTL has elapsed at now.
func (e Entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.creationTime()) > ttl
}

// Status describes what the cache knows about a project path.
type Status int

const (
	// StatusNotCached means no entry exists for the path.
	StatusNotCached Status = iota

	// StatusValid means an entry exists and its TTL has not elapsed. The
	// status check is TTL-only; Get additionally verifies the project has
	// not been modified since the entry was written.
	StatusValid

	// StatusExpired means an entry exists but its TTL has elapsed.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	default:
		return "not-cached"
	}
}

// Stats summarizes the cache contents.
type Stats struct {
	// TotalEntries is the number of entries in the store.
	TotalEntries int

	// ExpiredEntries is how many of those have an elapsed TTL.
	ExpiredEntries int

	// GitRepoCount is how many cached projects were Git repositories.
	GitRepoCount int

	// TotalSize, CodeSize, and DependencySize sum the corresponding
	// fields across all entries.
	TotalSize      int64
	CodeSize       int64
	DependencySize int64

	// FileSize is the size of the cache file on disk in bytes, or zero if
	// it does not exist.
	FileSize int64

	// LastUpdated is the Unix timestamp of the store's last persist.
	LastUpdated int64
}
