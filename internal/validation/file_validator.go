package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"companylens/internal/files"
)

// FileValidator checks dataset inputs and report outputs before they are
// used
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateDataFile checks that path is a readable CSV or Excel file. The
// returned error wraps the underlying os error, so fs.ErrNotExist survives.
func (v *FileValidator) ValidateDataFile(path string) error {
	if !files.IsDataFile(path) {
		return fmt.Errorf("%s is not a CSV or Excel file", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Warn("Data file unavailable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("data file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Warn("Data file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("data file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Data file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
// and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
