package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()

	paths, err := ResolvePaths(PathsConfig{
		BaseDir:         base,
		DataDir:         "data",
		ReportsDir:      "data/reports",
		LogsDir:         "/var/log/companylens",
		DefinitionsFile: "definitions.json",
	})
	require.NoError(t, err)

	assert.Equal(t, base, paths.BaseDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, "/var/log/companylens", paths.LogsDir, "absolute paths are kept")
	assert.Equal(t, filepath.Join(base, "definitions.json"), paths.DefinitionsFile)
}

func TestResolvePathsDefaultsToExecutableDir(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{DataDir: "data"})
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(exe), paths.BaseDir)
	assert.Equal(t, filepath.Join(filepath.Dir(exe), "data"), paths.DataDir)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths, err := ResolvePaths(PathsConfig{BaseDir: base, DataDir: "data", ReportsDir: "out/reports", LogsDir: "logs"})
	require.NoError(t, err)

	require.NoError(t, paths.EnsureDirectories())

	assert.DirExists(t, paths.ReportsDir)
	assert.DirExists(t, paths.LogsDir)
	assert.NoDirExists(t, paths.DataDir, "data dir is input only")
}

func TestPathHelperMethods(t *testing.T) {
	paths := &Paths{DataDir: "/srv/data", ReportsDir: "/srv/reports"}

	assert.Equal(t, filepath.Join("/srv/data", "cash_flow.csv"), paths.DataFile("cash_flow.csv"))
	assert.Equal(t, "/tmp/other.csv", paths.DataFile("/tmp/other.csv"))
	assert.Equal(t, filepath.Join("/srv/reports", "CBA.csv"), paths.ReportFile("CBA.csv"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}
