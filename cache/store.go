package cache

import (
	"encoding/json"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/projsweep/projsweep/errors"
	"github.com/projsweep/projsweep/internal/logging"
)

const storeVersion = 1

// storeData is the on-disk shape of the cache file.
type storeData struct {
	Entries  map[string]Entry `json:"entries"`
	Metadata storeMetadata    `json:"metadata"`
}

type storeMetadata struct {
	Version   int   `json:"version"`
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

func newStoreData(now int64) *storeData {
	return &storeData{
		Entries: make(map[string]Entry),
		Metadata: storeMetadata{
			Version:   storeVersion,
			CreatedAt: now,
		},
	}
}

// loadStore reads the cache file at path. A missing file yields a fresh
// empty store. A corrupt or version-mismatched file also yields a fresh
// store: the cache is a derived artifact and is cheaper to rebuild than to
// repair.
func loadStore(fs billy.Filesystem, path string, now int64) *storeData {
	if _, err := fs.Stat(path); os.IsNotExist(err) {
		return newStoreData(now)
	}

	data, err := util.ReadFile(fs, path)
	if err != nil {
		logging.Warn("failed to read size cache, starting empty",
			zap.String("path", path), zap.Error(err))
		return newStoreData(now)
	}

	var store storeData
	if err := json.Unmarshal(data, &store); err != nil {
		logging.Warn("size cache is corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		return newStoreData(now)
	}

	if store.Metadata.Version != storeVersion {
		logging.Warn("size cache version mismatch, starting empty",
			zap.String("path", path), zap.Int("version", store.Metadata.Version))
		return newStoreData(now)
	}

	if store.Entries == nil {
		store.Entries = make(map[string]Entry)
	}
	return &store
}

// saveStore writes the store atomically: the document is written to a
// temporary sibling file and renamed over the target.
func saveStore(fs billy.Filesystem, path string, store *storeData, now int64) error {
	store.Metadata.UpdatedAt = now

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to marshal size cache")
	}

	if dir := parentDir(path); dir != "" && dir != path {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeCacheFailed, "failed to create cache directory")
		}
	}

	tmpPath := path + ".tmp"
	if err := util.WriteFile(fs, tmpPath, data, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeCacheFailed, "failed to write temporary cache file")
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		_ = fs.Remove(tmpPath)
		return errors.Wrap(err, errors.CodeCacheFailed, "failed to replace cache file")
	}

	return nil
}
