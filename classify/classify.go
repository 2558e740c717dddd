// Package classify holds the closed classification tables shared by the
// scanner, the ignore resolver, and the cache invalidation signal: which
// directory names hold dependencies or build artifacts, which file names are
// project manifests, and which files are excluded from the code bucket.
//
// Keeping the tables in one leaf package means the classifier, the
// gitignore exclusion list, and the cache staleness check can never drift
// apart.
package classify

import (
	"path/filepath"
	"strings"
)

// dependencyDirs is the fixed set of well-known dependency and
// build-artifact directory names. Their contents are summed wholesale and
// never classified file by file.
var dependencyDirs = map[string]bool{
	// Package managers and build outputs
	"node_modules":     true,
	"target":           true,
	"build":            true,
	"dist":             true,
	"out":              true,
	"bin":              true,
	"obj":              true,
	"vendor":           true,
	"bower_components": true,

	// Python
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	".venv":         true,
	".env":          true,
	"site-packages": true,

	// Version control
	".git": true,
	".svn": true,
	".hg":  true,

	// IDE and editor state
	".vscode": true,
	".idea":   true,
	".vs":     true,
}

// scanIgnoreDirs holds the directory names the parallel scanner's
// discovery stage filters out: VCS internals, IDE state, and tool caches.
// Package-manager directories are deliberately absent so their files reach
// the metadata stage and land in the dependency bucket.
var scanIgnoreDirs = map[string]bool{
	".git":          true,
	".svn":          true,
	".hg":           true,
	".bzr":          true,
	".vscode":       true,
	".idea":         true,
	".vs":           true,
	"__pycache__":   true,
	".pytest_cache": true,
}

// ignoreExtensions is the default set of file extensions excluded from the
// code bucket: compiled artifacts, logs, temp and backup files.
var ignoreExtensions = map[string]bool{
	// Compiled artifacts
	"o":     true,
	"obj":   true,
	"exe":   true,
	"dll":   true,
	"so":    true,
	"dylib": true,
	"a":     true,
	"lib":   true,
	"class": true,
	"pyc":   true,
	"pyo":   true,

	// Logs and temp files
	"log":   true,
	"tmp":   true,
	"temp":  true,
	"cache": true,
	"lock":  true,

	// Backups
	"bak":    true,
	"backup": true,
	"swp":    true,
}

// codeExtensions is the set of extensions the parallel scanner treats as
// source code when partitioning FileInfo records.
var codeExtensions = map[string]bool{
	"rs": true, "js": true, "ts": true, "py": true, "java": true,
	"cpp": true, "c": true, "h": true, "go": true, "php": true,
	"rb": true, "swift": true, "kt": true, "scala": true, "cs": true,
	"vue": true, "jsx": true, "tsx": true, "html": true, "css": true,
	"scss": true, "less": true,
}

// ManifestFiles lists the per-language manifest files whose modification
// invalidates a cached size result: editing one can change which
// directories count as dependencies.
var ManifestFiles = []string{
	"Cargo.toml",
	"package.json",
	"requirements.txt",
	"go.mod",
	"pom.xml",
}

// IsDependencyDir reports whether name is a well-known dependency
// directory name.
func IsDependencyDir(name string) bool {
	return dependencyDirs[name]
}

// DependencyDirNames returns the dependency directory names as a slice,
// for use as a gitignore-accounting exclusion list.
func DependencyDirNames() []string {
	names := make([]string, 0, len(dependencyDirs))
	for name := range dependencyDirs {
		names = append(names, name)
	}
	return names
}

// DefaultDependencyDirs returns a copy of the dependency directory set so
// callers can extend it without mutating the shared table.
func DefaultDependencyDirs() map[string]bool {
	dirs := make(map[string]bool, len(dependencyDirs))
	for name := range dependencyDirs {
		dirs[name] = true
	}
	return dirs
}

// DefaultIgnoreExtensions returns a copy of the default ignore-extension set.
func DefaultIgnoreExtensions() map[string]bool {
	exts := make(map[string]bool, len(ignoreExtensions))
	for ext := range ignoreExtensions {
		exts[ext] = true
	}
	return exts
}

// DefaultScanIgnoreDirs returns a copy of the directory names the parallel
// scanner's discovery stage filters out.
func DefaultScanIgnoreDirs() map[string]bool {
	dirs := make(map[string]bool, len(scanIgnoreDirs))
	for name := range scanIgnoreDirs {
		dirs[name] = true
	}
	return dirs
}

// IsDependencyPath reports whether any component of path is a dependency
// directory name.
func IsDependencyPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if dependencyDirs[part] {
			return true
		}
	}
	return false
}

// IsIgnorableFile reports whether the file should be excluded from the
// code bucket: hidden names, temp-file suffixes, or an extension in exts.
// Pass nil to use the default extension set.
func IsIgnorableFile(name string, exts map[string]bool) bool {
	if exts == nil {
		exts = ignoreExtensions
	}

	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".tmp") || strings.HasSuffix(name, ".temp") {
		return true
	}

	if ext := extension(name); ext != "" && exts[ext] {
		return true
	}
	return false
}

// IsCodeFile reports whether the file has a recognized source extension
// that is not in the ignore-extension set. Pass nil exts for the default set.
func IsCodeFile(name string, exts map[string]bool) bool {
	if exts == nil {
		exts = ignoreExtensions
	}
	ext := extension(name)
	return ext != "" && codeExtensions[ext] && !exts[ext]
}

// extension returns the lower-cased extension of name without the dot, or
// "" if the name has none.
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
