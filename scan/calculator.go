// Package scan measures the on-disk footprint of software projects,
// partitioning each tree into code, dependency, and Git-ignored buckets.
//
// Calculator is the cache-aware entry point; ParallelScanner is an
// alternative progress-reporting traversal for very large trees.
package scan

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/projsweep/projsweep/cache"
	"github.com/projsweep/projsweep/classify"
	"github.com/projsweep/projsweep/errors"
	"github.com/projsweep/projsweep/ignore"
	"github.com/projsweep/projsweep/internal/logging"
	"github.com/projsweep/projsweep/metrics"
)

// Calculator computes ProjectSizeInfo for project roots, memoizing results
// in an optional size cache.
type Calculator struct {
	fs         billy.Filesystem
	cache      *cache.SizeCache
	ignoreExts map[string]bool
	depDirs    map[string]bool
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithCache attaches a size cache consulted before computing and updated
// after. The calculator takes ownership of the cache for the duration of
// its calls; callers must not mutate it concurrently.
func WithCache(c *cache.SizeCache) CalculatorOption {
	return func(calc *Calculator) {
		calc.cache = c
	}
}

// WithIgnoreExtensions overrides the extension set excluded from the code
// bucket.
func WithIgnoreExtensions(exts map[string]bool) CalculatorOption {
	return func(calc *Calculator) {
		calc.ignoreExts = exts
	}
}

// WithDependencyDirs overrides the set of directory names summed wholesale
// as dependencies.
func WithDependencyDirs(dirs map[string]bool) CalculatorOption {
	return func(calc *Calculator) {
		calc.depDirs = dirs
	}
}

// NewCalculator returns a Calculator reading from fs.
func NewCalculator(fs billy.Filesystem, opts ...CalculatorOption) *Calculator {
	calc := &Calculator{
		fs:         fs,
		ignoreExts: classify.DefaultIgnoreExtensions(),
		depDirs:    classify.DefaultDependencyDirs(),
	}
	for _, opt := range opts {
		opt(calc)
	}
	return calc
}

// CalculateProjectSize produces the size summary for the project rooted at
// path. A valid cache entry is returned directly; otherwise the tree is
// walked, the result is written back to the cache on a best-effort basis,
// and a cache-write failure never fails the call.
func (c *Calculator) CalculateProjectSize(ctx context.Context, path string) (ProjectSizeInfo, error) {
	if c.cache != nil {
		if entry, ok := c.cache.Get(path); ok {
			metrics.ScansTotal.WithLabelValues("cache").Inc()
			return infoFromRecord(entry.Record, entry.IsGitRepo), nil
		}
	}

	timer := prometheus.NewTimer(metrics.ScanDuration)
	defer timer.ObserveDuration()

	set, err := ignore.New(c.fs, path)
	if err != nil {
		return ProjectSizeInfo{}, err
	}

	var info ProjectSizeInfo
	if set.IsGitRepository() {
		info, err = c.calculateGit(ctx, path, set)
	} else {
		info, err = c.calculateNonGit(ctx, path)
	}
	if err != nil {
		return ProjectSizeInfo{}, err
	}

	c.storeResult(path, info)
	return info, nil
}

// storeResult records scan metrics and writes the result back to the
// cache on a best-effort basis.
func (c *Calculator) storeResult(path string, info ProjectSizeInfo) {
	metrics.ScansTotal.WithLabelValues("scan").Inc()
	metrics.BytesScanned.Add(float64(info.TotalSize))

	if c.cache != nil {
		if err := c.cache.Put(path, info.record(), info.IsGitRepo); err != nil {
			logging.Warn("failed to cache size result",
				zap.String("path", path), zap.Error(err))
		}
	}
}

// calculateGit measures a Git project in three steps: walkable (not
// ignored) files, Git-ignored dependency directories summed wholesale, and
// the remaining Git-ignored content.
func (c *Calculator) calculateGit(ctx context.Context, root string, set *ignore.IgnoreSet) (ProjectSizeInfo, error) {
	info := ProjectSizeInfo{IsGitRepo: true}

	for _, entry := range set.WalkableEntries() {
		if err := ctx.Err(); err != nil {
			return ProjectSizeInfo{}, errors.Wrap(err, errors.CodeCancelled, "size calculation cancelled")
		}

		fi, err := c.fs.Lstat(entry)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		info.TotalSize += fi.Size()
		info.TotalFileCount++
		if !classify.IsIgnorableFile(fi.Name(), c.ignoreExts) {
			info.CodeSize += fi.Size()
			info.CodeFileCount++
		}
		if mt := fi.ModTime(); mt.After(info.LastModified) {
			info.LastModified = mt
		}
	}

	// Dependency directories are usually gitignored and therefore invisible
	// to the walk above. Sum each one wholesale, but only when it really is
	// ignored: a committed vendor tree was already counted file by file.
	for _, name := range sortedNames(c.depDirs) {
		dir := c.fs.Join(root, name)
		fi, err := c.fs.Lstat(dir)
		if err != nil || !fi.IsDir() || !set.ShouldIgnore(dir) {
			continue
		}

		size, count, modified, err := c.sumTree(ctx, dir)
		if err != nil {
			return ProjectSizeInfo{}, err
		}
		info.DependencySize += size
		info.DependencyFileCount += count
		info.TotalSize += size
		info.TotalFileCount += count
		if modified.After(info.LastModified) {
			info.LastModified = modified
		}
	}

	// Everything else the ignore rules exclude, minus the dependency
	// directories already counted above.
	excludedSize, excludedCount := set.IgnoredSize(sortedNames(c.depDirs))
	info.GitignoreExcludedSize = excludedSize
	info.GitignoreExcludedFileCount = excludedCount

	return info, nil
}

// calculateNonGit measures a plain directory tree: dependency directories
// are summed wholesale, hidden directories are skipped, and remaining
// files are classified individually.
func (c *Calculator) calculateNonGit(ctx context.Context, root string) (ProjectSizeInfo, error) {
	var info ProjectSizeInfo

	queue := []string{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return ProjectSizeInfo{}, errors.Wrap(err, errors.CodeCancelled, "size calculation cancelled")
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := c.fs.ReadDir(dir)
		if err != nil {
			return ProjectSizeInfo{}, errors.Wrapf(err, errors.CodeIO, "failed to read directory %s", dir)
		}

		for _, fi := range entries {
			path := c.fs.Join(dir, fi.Name())

			if fi.IsDir() {
				switch {
				case strings.HasPrefix(fi.Name(), ".") && fi.Name() != ".git":
					// Hidden directories land in no bucket, even the ones
					// whose names appear in the dependency set (.venv,
					// .idea, ...). Only .git falls through and is summed
					// as a dependency.
				case c.depDirs[fi.Name()]:
					size, count, modified, err := c.sumTree(ctx, path)
					if err != nil {
						return ProjectSizeInfo{}, err
					}
					info.DependencySize += size
					info.DependencyFileCount += count
					info.TotalSize += size
					info.TotalFileCount += count
					if modified.After(info.LastModified) {
						info.LastModified = modified
					}
				default:
					queue = append(queue, path)
				}
				continue
			}

			if !fi.Mode().IsRegular() {
				continue
			}

			info.TotalSize += fi.Size()
			info.TotalFileCount++
			if !classify.IsIgnorableFile(fi.Name(), c.ignoreExts) {
				info.CodeSize += fi.Size()
				info.CodeFileCount++
			}
			if mt := fi.ModTime(); mt.After(info.LastModified) {
				info.LastModified = mt
			}
		}
	}

	return info, nil
}

// CalculateProjectSizeParallel is the progress-reporting variant of
// CalculateProjectSize. It consults the cache the same way, and Git roots
// fall back to the sequential Git-aware computation so the ignore and
// dependency breakdown is never silently lost; only plain trees run the
// three-stage pipeline. progress may be nil.
func (c *Calculator) CalculateProjectSizeParallel(ctx context.Context, path string, progress ProgressFunc) (ProjectSizeInfo, error) {
	if c.cache != nil {
		if entry, ok := c.cache.Get(path); ok {
			metrics.ScansTotal.WithLabelValues("cache").Inc()
			return infoFromRecord(entry.Record, entry.IsGitRepo), nil
		}
	}

	timer := prometheus.NewTimer(metrics.ScanDuration)
	defer timer.ObserveDuration()

	set, err := ignore.New(c.fs, path)
	if err != nil {
		return ProjectSizeInfo{}, err
	}

	if set.IsGitRepository() {
		info, err := c.calculateGit(ctx, path, set)
		if err != nil {
			return ProjectSizeInfo{}, err
		}
		if progress != nil {
			progress(Progress{
				ProjectName:    baseName(path),
				ProcessedFiles: info.TotalFileCount,
				TotalFiles:     info.TotalFileCount,
				BytesProcessed: info.TotalSize,
				Stage:          StageCompleted,
			})
		}
		c.storeResult(path, info)
		return info, nil
	}

	scanner := NewParallelScanner(c.fs)
	files, err := scanner.Scan(ctx, path, progress)
	if err != nil {
		return ProjectSizeInfo{}, err
	}

	result := ResultFromFileInfos(files)
	info := ProjectSizeInfo{
		CodeSize:            result.CodeSize,
		DependencySize:      result.DependencySize,
		TotalSize:           result.TotalSize,
		CodeFileCount:       result.CodeFileCount,
		DependencyFileCount: result.DependencyFileCount,
		TotalFileCount:      result.TotalFileCount,
	}
	c.storeResult(path, info)
	return info, nil
}

// CalculateCodeSize sums only the recognized source files under path,
// skipping hidden and dependency directories.
func (c *Calculator) CalculateCodeSize(ctx context.Context, path string) (int64, error) {
	var total int64

	queue := []string{path}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, errors.Wrap(err, errors.CodeCancelled, "code size calculation cancelled")
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := c.fs.ReadDir(dir)
		if err != nil {
			return 0, errors.Wrapf(err, errors.CodeIO, "failed to read directory %s", dir)
		}

		for _, fi := range entries {
			if fi.IsDir() {
				if !c.depDirs[fi.Name()] && !strings.HasPrefix(fi.Name(), ".") {
					queue = append(queue, c.fs.Join(dir, fi.Name()))
				}
				continue
			}
			if fi.Mode().IsRegular() && classify.IsCodeFile(fi.Name(), c.ignoreExts) {
				total += fi.Size()
			}
		}
	}

	return total, nil
}

// DependencyDirectories lists the recognized dependency directories
// directly under path with their recursive sizes, largest first.
func (c *Calculator) DependencyDirectories(ctx context.Context, path string) ([]DirectorySizeInfo, error) {
	entries, err := c.fs.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeIO, "failed to read directory %s", path)
	}

	var dirs []DirectorySizeInfo
	for _, fi := range entries {
		if !fi.IsDir() || !c.depDirs[fi.Name()] {
			continue
		}

		dirPath := c.fs.Join(path, fi.Name())
		size, count, _, err := c.sumTree(ctx, dirPath)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, DirectorySizeInfo{
			Path:         dirPath,
			Size:         size,
			FileCount:    count,
			IsDependency: true,
		})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Size > dirs[j].Size })
	return dirs, nil
}

// sumTree recursively sums regular-file sizes under dir. Unreadable
// subtrees contribute nothing; dependency trees routinely contain entries
// we lack permission to stat.
func (c *Calculator) sumTree(ctx context.Context, dir string) (int64, int, time.Time, error) {
	var size int64
	var count int
	var modified time.Time

	queue := []string{dir}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, 0, time.Time{}, errors.Wrap(err, errors.CodeCancelled, "size calculation cancelled")
		}

		d := queue[0]
		queue = queue[1:]

		entries, err := c.fs.ReadDir(d)
		if err != nil {
			continue
		}

		for _, fi := range entries {
			if fi.IsDir() {
				queue = append(queue, c.fs.Join(d, fi.Name()))
				continue
			}
			if fi.Mode().IsRegular() {
				size += fi.Size()
				count++
				if mt := fi.ModTime(); mt.After(modified) {
					modified = mt
				}
			}
		}
	}

	return size, count, modified, nil
}

// sortedNames returns the keys of set in lexical order, for deterministic
// traversal.
func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
