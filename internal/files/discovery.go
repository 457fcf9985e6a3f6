package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DataExtensions are the file types the dataset loader can parse.
var DataExtensions = []string{".csv", ".xlsx"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations rooted at one directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindDataFiles lists the CSV and Excel files directly inside the base
// directory, sorted by name.
func (d *Discovery) FindDataFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.basePath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsDataFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(d.basePath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// IsDataFile reports whether name has a loadable extension
func IsDataFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range DataExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Unregistered returns the files whose names are not in known. Names
// compare case-insensitively.
func Unregistered(files []FileInfo, known []string) []FileInfo {
	registered := make(map[string]struct{}, len(known))
	for _, name := range known {
		registered[strings.ToLower(filepath.Base(name))] = struct{}{}
	}

	var out []FileInfo
	for _, f := range files {
		if _, ok := registered[strings.ToLower(f.Name)]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
