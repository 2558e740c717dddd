package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDependencyDir(t *testing.T) {
	assert.True(t, IsDependencyDir("node_modules"))
	assert.True(t, IsDependencyDir("target"))
	assert.True(t, IsDependencyDir(".git"))
	assert.False(t, IsDependencyDir("src"))
	assert.False(t, IsDependencyDir("tests"))
}

func TestIsDependencyPath(t *testing.T) {
	assert.True(t, IsDependencyPath("/project/node_modules/pkg/index.js"))
	assert.True(t, IsDependencyPath("/project/target/debug/app"))
	assert.False(t, IsDependencyPath("/project/src/main.go"))
	assert.False(t, IsDependencyPath("targeted/file.go"))
}

func TestIsIgnorableFile(t *testing.T) {
	t.Run("ignored", func(t *testing.T) {
		for _, name := range []string{"file.log", "file.tmp", "file.temp", ".hidden", "file~", "app.exe"} {
			assert.True(t, IsIgnorableFile(name, nil), name)
		}
	})

	t.Run("kept", func(t *testing.T) {
		for _, name := range []string{"main.rs", "README.md", "package.json", "Makefile"} {
			assert.False(t, IsIgnorableFile(name, nil), name)
		}
	})

	t.Run("custom extension set", func(t *testing.T) {
		exts := map[string]bool{"md": true}
		assert.True(t, IsIgnorableFile("README.md", exts))
		assert.False(t, IsIgnorableFile("app.log", exts))
	})

	t.Run("extension is case-insensitive", func(t *testing.T) {
		assert.True(t, IsIgnorableFile("SETUP.LOG", nil))
	})
}

func TestIsCodeFile(t *testing.T) {
	assert.True(t, IsCodeFile("main.go", nil))
	assert.True(t, IsCodeFile("app.TSX", nil))
	assert.False(t, IsCodeFile("notes.txt", nil))
	assert.False(t, IsCodeFile("binary", nil))

	// An extension in the ignore set is not code even if it looks like one.
	assert.False(t, IsCodeFile("main.go", map[string]bool{"go": true}))
}

func TestDependencyDirNames(t *testing.T) {
	names := DependencyDirNames()
	assert.Contains(t, names, "node_modules")
	assert.Contains(t, names, "vendor")
	assert.Len(t, names, len(DefaultDependencyDirs()))
}

func TestDefaultSetsAreCopies(t *testing.T) {
	dirs := DefaultDependencyDirs()
	dirs["custom"] = true
	assert.False(t, IsDependencyDir("custom"))

	exts := DefaultIgnoreExtensions()
	exts["md"] = true
	assert.False(t, IsIgnorableFile("README.md", nil))
}
