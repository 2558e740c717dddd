package scan

import (
	"time"

	"github.com/projsweep/projsweep/cache"
)

// ProjectSizeInfo is the size and file-count summary for one project root.
// It partitions the tree into code, dependency, and (for Git projects)
// Git-ignored buckets.
type ProjectSizeInfo struct {
	// CodeSize is the byte sum of files classified as code.
	CodeSize int64

	// DependencySize is the byte sum of recognized dependency and
	// build-artifact directories, counted wholesale.
	DependencySize int64

	// TotalSize is the byte sum of everything counted: code, ignorable
	// files, and dependency directories.
	TotalSize int64

	// GitignoreExcludedSize is the byte sum of Git-ignored content
	// outside dependency directories. Zero for non-Git projects.
	GitignoreExcludedSize int64

	CodeFileCount              int
	DependencyFileCount        int
	TotalFileCount             int
	GitignoreExcludedFileCount int

	// LastModified is the latest mtime observed across processed files.
	// Zero when no files were seen.
	LastModified time.Time

	// IsGitRepo reports which traversal strategy produced the result.
	IsGitRepo bool
}

// record converts the result into its persisted projection.
func (p ProjectSizeInfo) record() cache.SizeRecord {
	rec := cache.SizeRecord{
		CodeSize:                   p.CodeSize,
		DependencySize:             p.DependencySize,
		TotalSize:                  p.TotalSize,
		GitignoreExcludedSize:      p.GitignoreExcludedSize,
		CodeFileCount:              p.CodeFileCount,
		DependencyFileCount:        p.DependencyFileCount,
		TotalFileCount:             p.TotalFileCount,
		GitignoreExcludedFileCount: p.GitignoreExcludedFileCount,
	}
	if !p.LastModified.IsZero() {
		rec.LastModified = p.LastModified.Unix()
	}
	return rec
}

// infoFromRecord rebuilds a ProjectSizeInfo from its persisted projection.
func infoFromRecord(rec cache.SizeRecord, isGitRepo bool) ProjectSizeInfo {
	info := ProjectSizeInfo{
		CodeSize:                   rec.CodeSize,
		DependencySize:             rec.DependencySize,
		TotalSize:                  rec.TotalSize,
		GitignoreExcludedSize:      rec.GitignoreExcludedSize,
		CodeFileCount:              rec.CodeFileCount,
		DependencyFileCount:        rec.DependencyFileCount,
		TotalFileCount:             rec.TotalFileCount,
		GitignoreExcludedFileCount: rec.GitignoreExcludedFileCount,
		IsGitRepo:                  isGitRepo,
	}
	if rec.LastModified != 0 {
		info.LastModified = time.Unix(rec.LastModified, 0)
	}
	return info
}

// DirectorySizeInfo is the recursive size of one subdirectory.
type DirectorySizeInfo struct {
	Path         string
	Size         int64
	FileCount    int
	IsDependency bool
}

// FileInfo is one file found by the parallel scanner, with the two
// classifications the reducer partitions on.
type FileInfo struct {
	Path             string
	Size             int64
	IsCodeFile       bool
	IsDependencyFile bool
}

// Stage identifies where in the pipeline a progress event was emitted.
type Stage int

const (
	// StageDiscovery enumerates and filters candidate paths.
	StageDiscovery Stage = iota

	// StageMetadata collects file sizes and classifications.
	StageMetadata

	// StageCalculation aggregates collected records. No additional IO is
	// performed.
	StageCalculation

	// StageCompleted carries the final processed count and byte sum.
	StageCompleted
)

func (s Stage) String() string {
	switch s {
	case StageDiscovery:
		return "discovery"
	case StageMetadata:
		return "metadata"
	case StageCalculation:
		return "calculation"
	case StageCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Progress is one scan progress event. Events arrive in the order chunks
// happen to complete, not in a stable path order.
type Progress struct {
	ProjectName    string
	ProcessedFiles int

	// TotalFiles is the known total for the stage, or zero while the
	// total is still being discovered.
	TotalFiles int

	CurrentPath    string
	BytesProcessed int64
	Stage          Stage
}

// ProgressFunc receives progress events. It is invoked from a single
// goroutine.
type ProgressFunc func(Progress)

// SizeCalculationResult is the aggregate produced by reducing a flat
// FileInfo list.
type SizeCalculationResult struct {
	CodeSize            int64
	DependencySize      int64
	TotalSize           int64
	CodeFileCount       int
	DependencyFileCount int
	TotalFileCount      int
}

// ResultFromFileInfos reduces files into bucketed totals. Dependency
// membership takes precedence over the code classification, mirroring how
// dependency directories are summed wholesale elsewhere.
func ResultFromFileInfos(files []FileInfo) SizeCalculationResult {
	var result SizeCalculationResult

	for _, f := range files {
		result.TotalSize += f.Size
		result.TotalFileCount++

		switch {
		case f.IsDependencyFile:
			result.DependencySize += f.Size
			result.DependencyFileCount++
		case f.IsCodeFile:
			result.CodeSize += f.Size
			result.CodeFileCount++
		}
	}

	return result
}
