package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the resolved application paths
type Paths struct {
	BaseDir         string
	DataDir         string
	ReportsDir      string
	LogsDir         string
	DefinitionsFile string
}

// ResolvePaths turns the configured, possibly relative, paths into absolute
// ones. Relative entries are joined to BaseDir, or to the executable
// directory when BaseDir is empty, never to the working directory.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:         base,
		DataDir:         resolve(cfg.DataDir),
		ReportsDir:      resolve(cfg.ReportsDir),
		LogsDir:         resolve(cfg.LogsDir),
		DefinitionsFile: resolve(cfg.DefinitionsFile),
	}, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// EnsureDirectories creates the writable directories if they don't exist.
// The data directory is input only and is not created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// DataFile returns the absolute path of a file inside the data directory.
func (p *Paths) DataFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.DataDir, name)
}

// ReportFile returns the absolute path of a file inside the reports directory.
func (p *Paths) ReportFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.ReportsDir, name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.Bool("data_dir_exists", FileExists(p.DataDir)),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("definitions_file", p.DefinitionsFile),
		slog.Bool("definitions_exist", FileExists(p.DefinitionsFile)),
	)
}
