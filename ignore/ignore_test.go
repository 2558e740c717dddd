package ignore

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projsweep/projsweep/errors"
)

func writeFile(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
}

// newGitProject lays out a repository at /project with a root .gitignore.
func newGitProject(t *testing.T, gitignore string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/project/.git", 0o755))
	if gitignore != "" {
		writeFile(t, fs, "/project/.gitignore", gitignore)
	}
	return fs
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(memfs.New(), "/absent")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestNewRootIsFile(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "/project", "not a directory")

	_, err := New(fs, "/project")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestNonGitRoot(t *testing.T) {
	fs := memfs.New()
	writeFile(t, fs, "/project/main.go", "package main")
	writeFile(t, fs, "/project/build/app.bin", "binary")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	assert.False(t, set.IsGitRepository())
	assert.False(t, set.ShouldIgnore("/project/build/app.bin"))

	size, count := set.IgnoredSize(nil)
	assert.Zero(t, size)
	assert.Zero(t, count)

	entries := set.WalkableEntries()
	assert.Contains(t, entries, "/project/main.go")
	assert.Contains(t, entries, "/project/build/app.bin")
}

func TestIgnoredSetDifference(t *testing.T) {
	fs := newGitProject(t, "build/\n*.log\n")
	writeFile(t, fs, "/project/main.go", "package main")
	writeFile(t, fs, "/project/build/app.bin", "0123456789")
	writeFile(t, fs, "/project/build/deep/cache.dat", "01234")
	writeFile(t, fs, "/project/app.log", "log line")

	set, err := New(fs, "/project")
	require.NoError(t, err)
	require.True(t, set.IsGitRepository())

	assert.True(t, set.ShouldIgnore("/project/build"))
	assert.True(t, set.ShouldIgnore("/project/build/app.bin"))
	assert.True(t, set.ShouldIgnore("/project/app.log"))
	assert.False(t, set.ShouldIgnore("/project/main.go"))
	assert.False(t, set.ShouldIgnore("/project/.gitignore"))
}

func TestShouldIgnoreAncestorMembership(t *testing.T) {
	fs := newGitProject(t, "build/\n")
	writeFile(t, fs, "/project/build/app.bin", "binary")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	// The queried path need not exist or be a set member itself; an
	// ignored ancestor is enough.
	assert.True(t, set.ShouldIgnore("/project/build/ghost/missing.txt"))
	assert.False(t, set.ShouldIgnore("/project/src/ghost.txt"))
}

func TestGitDirAlwaysIgnored(t *testing.T) {
	fs := newGitProject(t, "")
	writeFile(t, fs, "/project/.git/objects/ab/cdef", "blob")
	writeFile(t, fs, "/project/main.go", "package main")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	assert.True(t, set.ShouldIgnore("/project/.git"))
	assert.True(t, set.ShouldIgnore("/project/.git/objects/ab/cdef"))
	assert.NotContains(t, set.WalkableEntries(), "/project/.git")
}

func TestWalkableEntriesPrunesIgnored(t *testing.T) {
	fs := newGitProject(t, "build/\n*.log\n")
	writeFile(t, fs, "/project/main.go", "package main")
	writeFile(t, fs, "/project/src/lib.go", "package lib")
	writeFile(t, fs, "/project/build/app.bin", "binary")
	writeFile(t, fs, "/project/app.log", "log line")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	entries := set.WalkableEntries()
	assert.Contains(t, entries, "/project/main.go")
	assert.Contains(t, entries, "/project/src")
	assert.Contains(t, entries, "/project/src/lib.go")
	assert.NotContains(t, entries, "/project/build")
	assert.NotContains(t, entries, "/project/build/app.bin")
	assert.NotContains(t, entries, "/project/app.log")
}

func TestNestedGitignore(t *testing.T) {
	fs := newGitProject(t, "")
	writeFile(t, fs, "/project/sub/.gitignore", "out/\n")
	writeFile(t, fs, "/project/sub/out/artifact", "data")
	writeFile(t, fs, "/project/sub/main.go", "package main")
	writeFile(t, fs, "/project/out/kept.txt", "kept")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	assert.True(t, set.ShouldIgnore("/project/sub/out/artifact"))
	// The nested rule is scoped to its directory.
	assert.False(t, set.ShouldIgnore("/project/out/kept.txt"))
}

func TestNegationPattern(t *testing.T) {
	fs := newGitProject(t, "*.log\n!keep.log\n")
	writeFile(t, fs, "/project/drop.log", "dropped")
	writeFile(t, fs, "/project/keep.log", "kept")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	assert.True(t, set.ShouldIgnore("/project/drop.log"))
	assert.False(t, set.ShouldIgnore("/project/keep.log"))
}

func TestRootInsideRepository(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/repo/.git", 0o755))
	writeFile(t, fs, "/repo/.gitignore", "*.log\n")
	writeFile(t, fs, "/repo/sub/app.log", "log line")
	writeFile(t, fs, "/repo/sub/main.go", "package main")

	set, err := New(fs, "/repo/sub")
	require.NoError(t, err)

	assert.True(t, set.IsGitRepository())
	assert.True(t, set.ShouldIgnore("/repo/sub/app.log"))
	assert.False(t, set.ShouldIgnore("/repo/sub/main.go"))
}

func TestIgnoredSize(t *testing.T) {
	fs := newGitProject(t, "build/\n*.log\nnode_modules/\n")
	writeFile(t, fs, "/project/main.go", "package main")
	writeFile(t, fs, "/project/build/app.bin", "0123456789")      // 10 bytes
	writeFile(t, fs, "/project/build/deep/cache.dat", "01234")    // 5 bytes
	writeFile(t, fs, "/project/app.log", "12345678")              // 8 bytes
	writeFile(t, fs, "/project/node_modules/pkg/index.js", "123") // 3 bytes

	set, err := New(fs, "/project")
	require.NoError(t, err)

	t.Run("all ignored content", func(t *testing.T) {
		size, count := set.IgnoredSize(nil)
		assert.Equal(t, int64(26), size)
		assert.Equal(t, 4, count)
	})

	t.Run("excluded directory names are skipped", func(t *testing.T) {
		size, count := set.IgnoredSize([]string{"node_modules"})
		assert.Equal(t, int64(23), size)
		assert.Equal(t, 3, count)
	})
}

func TestStats(t *testing.T) {
	fs := newGitProject(t, "*.log\n")
	writeFile(t, fs, "/project/app.log", "12345678")
	writeFile(t, fs, "/project/main.go", "package main")

	set, err := New(fs, "/project")
	require.NoError(t, err)

	stats := set.Stats()
	assert.True(t, stats.IsGitRepo)
	assert.NotZero(t, stats.TotalIgnoredPaths)
	assert.Zero(t, stats.IgnoredFilesSize)

	detailed := set.DetailedStats()
	assert.Equal(t, int64(8), detailed.IgnoredFilesSize)
	assert.Equal(t, 1, detailed.IgnoredFilesCount)
}
