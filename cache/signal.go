package cache

import (
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/projsweep/projsweep/classify"
)

// projectLastModified derives the staleness signal for a project: the
// latest modification time (Unix seconds) among the project directory
// itself, its .gitignore, and the well-known per-language manifest files.
// Content changes deep in the tree do not move the signal; manifest and
// ignore-rule edits do, because they can change how sizes are classified.
//
// The second return is false when the project directory cannot be
// inspected at all; callers treat an unreadable project as uncacheable.
func projectLastModified(fs billy.Filesystem, projectPath string) (int64, bool) {
	fi, err := fs.Stat(projectPath)
	if err != nil {
		return 0, false
	}
	latest := fi.ModTime().Unix()

	probe := func(name string) {
		if fi, err := fs.Stat(fs.Join(projectPath, name)); err == nil {
			if mt := fi.ModTime().Unix(); mt > latest {
				latest = mt
			}
		}
	}

	probe(".gitignore")
	for _, manifest := range classify.ManifestFiles {
		probe(manifest)
	}

	return latest, true
}

// parentDir returns the parent of a slash-separated path, or "" when the
// path has no parent component.
func parentDir(path string) string {
	trimmed := strings.TrimRight(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	switch {
	case idx < 0:
		return ""
	case idx == 0:
		return "/"
	default:
		return trimmed[:idx]
	}
}
