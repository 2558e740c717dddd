// Package ignore resolves which filesystem paths under a project root are
// excluded by Git ignore rules.
//
// The ignored set is computed as a set difference: the tree is walked once
// with ignore rules disabled (the universe of paths) and once with the
// gitignore matcher enabled (the allowed subset); ignored = universe −
// allowed, plus the .git directory added explicitly. The patternless diff
// avoids precedence bugs when combining multiple ignore sources
// (per-directory .gitignore files, repository excludes, global excludes).
package ignore

import (
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/projsweep/projsweep/errors"
)

const gitDirName = ".git"

// IgnoreSet answers ignore queries for a single project root.
//
// IgnoreSet snapshots the ignored set at construction time; create a new
// one to observe filesystem changes.
type IgnoreSet struct {
	fs      billy.Filesystem
	root    string
	gitRoot string // repository root discovered by ancestor walk, "" if none
	matcher gitignore.Matcher

	ignored map[string]bool
	allowed []string // walkable entries for Git roots, in walk order
}

// Stats summarizes the Git-ignored content of a project.
type Stats struct {
	// TotalIgnoredPaths is the number of entries in the ignored set.
	TotalIgnoredPaths int

	// IsGitRepo reports whether the root belongs to a Git repository.
	IsGitRepo bool

	// IgnoredFilesSize is the byte sum of ignored content. Zero unless
	// produced by DetailedStats.
	IgnoredFilesSize int64

	// IgnoredFilesCount is the number of ignored files. Zero unless
	// produced by DetailedStats.
	IgnoredFilesCount int
}

// New builds an IgnoreSet for the project rooted at root.
//
// The repository is discovered by probing for a .git directory on root and
// each of its ancestors. For non-Git roots the ignored set is empty and
// every query degrades to "not ignored".
//
// Unreadable subtrees encountered while building the set are skipped; a
// permission error on a handful of files must not abort a project scan.
func New(fs billy.Filesystem, root string) (*IgnoreSet, error) {
	fi, err := fs.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeNotFound, "project root %s not found", root)
	}
	if !fi.IsDir() {
		return nil, errors.Newf(errors.CodeInvalidInput, "project root %s is not a directory", root)
	}

	s := &IgnoreSet{
		fs:      fs,
		root:    root,
		gitRoot: discoverGitRoot(fs, root),
		ignored: make(map[string]bool),
	}

	if s.gitRoot != "" {
		s.matcher = buildMatcher(fs, s.gitRoot)
		s.buildIgnoredSet()
	}

	return s, nil
}

// IsGitRepository reports whether a Git repository was discovered by
// walking ancestors from the root.
func (s *IgnoreSet) IsGitRepository() bool {
	return s.gitRoot != ""
}

// Root returns the project root this set was built for.
func (s *IgnoreSet) Root() string {
	return s.root
}

// ShouldIgnore reports whether path or any of its ancestors (up to the
// project root) is a member of the ignored set. Non-Git roots always
// return false.
func (s *IgnoreSet) ShouldIgnore(path string) bool {
	if s.gitRoot == "" {
		return false
	}

	cur := path
	for {
		if s.ignored[cur] {
			return true
		}
		if cur == s.root {
			return false
		}
		parent := parentDir(cur)
		if parent == cur {
			return false
		}
		cur = parent
	}
}

// WalkableEntries returns every path reachable under the root that is not
// ignored (for Git roots) or all paths (for non-Git roots). The .git
// directory is never included, regardless of ignore rules.
func (s *IgnoreSet) WalkableEntries() []string {
	if s.gitRoot != "" {
		out := make([]string, len(s.allowed))
		copy(out, s.allowed)
		return out
	}
	entries, _ := s.walk(false)
	return entries
}

// IgnoredSize recursively sums the size and file count of every ignored
// path, skipping any ignored directory whose base name is in
// excludeDirNames. The exclusion list prevents double counting directories
// that are separately classified as dependency directories.
func (s *IgnoreSet) IgnoredSize(excludeDirNames []string) (int64, int) {
	if s.gitRoot == "" {
		return 0, 0
	}

	excluded := make(map[string]bool, len(excludeDirNames))
	for _, name := range excludeDirNames {
		excluded[name] = true
	}

	var totalSize int64
	var fileCount int

	for path := range s.ignored {
		// Descendants of an ignored directory are covered by the recursive
		// sum over that directory.
		if parent := parentDir(path); parent != path && s.ignored[parent] {
			continue
		}

		fi, err := s.fs.Lstat(path)
		if err != nil {
			continue
		}

		if fi.IsDir() {
			if excluded[baseName(path)] {
				continue
			}
			size, count := s.sumDirectory(path)
			totalSize += size
			fileCount += count
			continue
		}

		if fi.Mode().IsRegular() {
			totalSize += fi.Size()
			fileCount++
		}
	}

	return totalSize, fileCount
}

// Stats returns the cheap summary of the ignored set. The size fields are
// zero; use DetailedStats to compute them.
func (s *IgnoreSet) Stats() Stats {
	return Stats{
		TotalIgnoredPaths: len(s.ignored),
		IsGitRepo:         s.gitRoot != "",
	}
}

// DetailedStats returns the ignored-set summary including the recursive
// size and file count of ignored content.
func (s *IgnoreSet) DetailedStats() Stats {
	stats := s.Stats()
	stats.IgnoredFilesSize, stats.IgnoredFilesCount = s.IgnoredSize(nil)
	return stats
}

// buildIgnoredSet populates s.ignored and s.allowed via the two-walk set
// difference.
func (s *IgnoreSet) buildIgnoredSet() {
	universe, _ := s.walk(false)
	allowed, allowedSet := s.walk(true)

	for _, path := range universe {
		if !allowedSet[path] {
			s.ignored[path] = true
		}
	}

	// The .git directory never appears in either walk; account for it
	// explicitly so ancestor queries and ignored-size sums cover it.
	s.ignored[s.fs.Join(s.root, gitDirName)] = true
	s.allowed = allowed
}

// walk traverses the tree under the root with an explicit FIFO worklist,
// returning the visited paths in walk order plus a membership set. With
// useMatcher set, paths matched by the gitignore matcher are pruned
// (ignored directories are not descended into). The .git directory is
// always pruned. Unreadable directories are skipped silently.
func (s *IgnoreSet) walk(useMatcher bool) ([]string, map[string]bool) {
	var entries []string
	seen := make(map[string]bool)

	queue := []string{s.root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		infos, err := s.fs.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, fi := range infos {
			path := s.fs.Join(dir, fi.Name())

			if fi.IsDir() && fi.Name() == gitDirName {
				continue
			}
			if useMatcher && s.matcher.Match(s.components(path), fi.IsDir()) {
				continue
			}

			entries = append(entries, path)
			seen[path] = true

			if fi.IsDir() {
				queue = append(queue, path)
			}
		}
	}

	return entries, seen
}

// sumDirectory recursively sums regular-file sizes under dir using a
// worklist. Unreadable subtrees contribute nothing.
func (s *IgnoreSet) sumDirectory(dir string) (int64, int) {
	var size int64
	var count int

	queue := []string{dir}
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]

		infos, err := s.fs.ReadDir(d)
		if err != nil {
			continue
		}

		for _, fi := range infos {
			if fi.IsDir() {
				queue = append(queue, s.fs.Join(d, fi.Name()))
			} else if fi.Mode().IsRegular() {
				size += fi.Size()
				count++
			}
		}
	}

	return size, count
}

// components splits path into gitignore matcher components relative to the
// repository root.
func (s *IgnoreSet) components(path string) []string {
	rel := strings.TrimPrefix(path, s.gitRoot)
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}

// discoverGitRoot probes root and each ancestor for a .git directory,
// returning the first directory that has one, or "".
func discoverGitRoot(fs billy.Filesystem, root string) string {
	cur := root
	for {
		fi, err := fs.Stat(fs.Join(cur, gitDirName))
		if err == nil && fi.IsDir() {
			return cur
		}

		parent := parentDir(cur)
		if parent == cur {
			return ""
		}
		cur = parent
	}
}

// buildMatcher loads the repository's ignore sources: per-directory
// .gitignore files and .git/info/exclude via ReadPatterns, plus the user's
// global excludes on a best-effort basis.
func buildMatcher(fs billy.Filesystem, gitRoot string) gitignore.Matcher {
	var patterns []gitignore.Pattern

	if global, err := gitignore.LoadGlobalPatterns(fs); err == nil {
		patterns = append(patterns, global...)
	}

	repoFS, err := fs.Chroot(gitRoot)
	if err == nil {
		if repo, err := gitignore.ReadPatterns(repoFS, nil); err == nil {
			patterns = append(patterns, repo...)
		}
	}

	return gitignore.NewMatcher(patterns)
}

// parentDir returns the parent of a slash-separated path.
func parentDir(path string) string {
	idx := strings.LastIndex(strings.TrimRight(path, "/"), "/")
	if idx <= 0 {
		if strings.HasPrefix(path, "/") && path != "/" {
			return "/"
		}
		return path
	}
	return path[:idx]
}

// baseName returns the last component of a slash-separated path.
func baseName(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
