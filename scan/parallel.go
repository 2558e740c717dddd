package scan

import (
	"context"
	"runtime"
	"strings"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"github.com/projsweep/projsweep/classify"
	"github.com/projsweep/projsweep/errors"
)

const (
	defaultChunkSize = 100
	defaultQueueSize = 1000

	// progressInterval amortizes metadata-stage progress callbacks: one
	// event per N collected records instead of one per file.
	progressInterval = 10

	// discoveryProgressInterval paces discovery-stage events, which cover
	// much cheaper per-item work.
	discoveryProgressInterval = 1000
)

// ParallelScanner walks a tree with a three-stage pipeline: discover
// candidate paths, fetch metadata on a bounded worker pool, and aggregate.
// Progress events are emitted per stage from a single consumer goroutine.
type ParallelScanner struct {
	fs         billy.Filesystem
	workers    int
	chunkSize  int
	queueSize  int
	ignoreDirs map[string]bool
}

// ScannerOption configures a ParallelScanner.
type ScannerOption func(*ParallelScanner)

// WithWorkers bounds the worker pool. Defaults to the CPU count.
func WithWorkers(n int) ScannerOption {
	return func(s *ParallelScanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithChunkSize sets how many paths each worker claims at a time.
func WithChunkSize(n int) ScannerOption {
	return func(s *ParallelScanner) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithIgnoreDirs overrides the directory names filtered out during
// discovery.
func WithIgnoreDirs(dirs map[string]bool) ScannerOption {
	return func(s *ParallelScanner) {
		s.ignoreDirs = dirs
	}
}

// NewParallelScanner returns a scanner reading from fs.
func NewParallelScanner(fs billy.Filesystem, opts ...ScannerOption) *ParallelScanner {
	s := &ParallelScanner{
		fs:         fs,
		workers:    runtime.NumCPU(),
		chunkSize:  defaultChunkSize,
		queueSize:  defaultQueueSize,
		ignoreDirs: classify.DefaultScanIgnoreDirs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the tree under root and returns one FileInfo per surviving
// file. Events are delivered to progress (which may be nil) in chunk
// completion order, not a stable path order. Cancellation is cooperative:
// workers stop claiming new chunks, in-flight stats complete naturally,
// and no partial result is returned.
func (s *ParallelScanner) Scan(ctx context.Context, root string, progress ProgressFunc) ([]FileInfo, error) {
	if progress == nil {
		progress = func(Progress) {}
	}
	projectName := baseName(root)

	if _, err := s.fs.Stat(root); err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "scan root %s not found", root)
	}

	candidates, err := s.discover(ctx, root, projectName, progress)
	if err != nil {
		return nil, err
	}

	files, bytesProcessed, err := s.collectMetadata(ctx, root, projectName, candidates, progress)
	if err != nil {
		return nil, err
	}

	progress(Progress{
		ProjectName:    projectName,
		ProcessedFiles: len(files),
		TotalFiles:     len(candidates),
		BytesProcessed: bytesProcessed,
		Stage:          StageCalculation,
	})
	progress(Progress{
		ProjectName:    projectName,
		ProcessedFiles: len(files),
		TotalFiles:     len(files),
		BytesProcessed: bytesProcessed,
		Stage:          StageCompleted,
	})

	return files, nil
}

// discover enumerates every file path under root, then filters out paths
// beneath ignored directory names. Enumeration is a sequential worklist
// walk; the filter is a pure computation over the enumerated list and runs
// chunked across the worker pool.
func (s *ParallelScanner) discover(ctx context.Context, root, projectName string, progress ProgressFunc) ([]string, error) {
	var paths []string

	queue := []string{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "scan cancelled")
		}

		dir := queue[0]
		queue = queue[1:]

		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, fi := range entries {
			path := s.fs.Join(dir, fi.Name())
			if fi.IsDir() {
				queue = append(queue, path)
				continue
			}
			paths = append(paths, path)
			if len(paths)%discoveryProgressInterval == 0 {
				progress(Progress{
					ProjectName:    projectName,
					ProcessedFiles: len(paths),
					CurrentPath:    dir,
					Stage:          StageDiscovery,
				})
			}
		}
	}

	chunks := chunkStrings(paths, s.chunkSize)
	kept := make([][]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var surviving []string
			for _, path := range chunk {
				if !s.beneathIgnoredDir(root, path) {
					surviving = append(surviving, path)
				}
			}
			kept[i] = surviving
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCancelled, "scan cancelled")
	}

	var candidates []string
	for _, chunk := range kept {
		candidates = append(candidates, chunk...)
	}
	return candidates, nil
}

// collectMetadata stats candidates on the worker pool. Workers push
// FileInfo records onto a bounded channel; the calling goroutine is the
// single consumer and emits amortized progress events.
func (s *ParallelScanner) collectMetadata(ctx context.Context, root, projectName string, candidates []string, progress ProgressFunc) ([]FileInfo, int64, error) {
	ch := make(chan FileInfo, s.queueSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	go func() {
		for _, chunk := range chunkStrings(candidates, s.chunkSize) {
			chunk := chunk
			g.Go(func() error {
				for _, path := range chunk {
					fi, err := s.fs.Lstat(path)
					if err != nil || !fi.Mode().IsRegular() {
						continue
					}

					record := FileInfo{
						Path:             path,
						Size:             fi.Size(),
						IsCodeFile:       classify.IsCodeFile(fi.Name(), nil),
						IsDependencyFile: classify.IsDependencyPath(relativeTo(root, path)),
					}
					select {
					case ch <- record:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				return nil
			})
		}
		_ = g.Wait()
		close(ch)
	}()

	files := make([]FileInfo, 0, len(candidates))
	var bytesProcessed int64
	for record := range ch {
		files = append(files, record)
		bytesProcessed += record.Size
		if len(files)%progressInterval == 0 {
			progress(Progress{
				ProjectName:    projectName,
				ProcessedFiles: len(files),
				TotalFiles:     len(candidates),
				CurrentPath:    record.Path,
				BytesProcessed: bytesProcessed,
				Stage:          StageMetadata,
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeCancelled, "scan cancelled")
	}
	return files, bytesProcessed, nil
}

// beneathIgnoredDir reports whether any path component below root is an
// ignored directory name. Components of the root itself are never
// consulted, so a project living under a directory named like an ignored
// one is still scanned.
func (s *ParallelScanner) beneathIgnoredDir(root, path string) bool {
	for _, part := range strings.Split(relativeTo(root, path), "/") {
		if s.ignoreDirs[part] {
			return true
		}
	}
	return false
}

// chunkStrings splits items into slices of at most size elements.
func chunkStrings(items []string, size int) [][]string {
	if size <= 0 {
		size = defaultChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// relativeTo strips the root prefix from path, leaving a slash-separated
// relative path.
func relativeTo(root, path string) string {
	return strings.Trim(strings.TrimPrefix(path, root), "/")
}

// baseName returns the last component of a slash-separated path.
func baseName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
