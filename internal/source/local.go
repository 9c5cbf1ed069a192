// Package source loads raw course files from a local folder or a GitHub
// repository directory. Files are handed to docparse as UTF-8 text.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one raw course document ready for parsing.
type File struct {
	Path    string // Name relative to the source root
	Content string
}

// supported reports whether a file name looks like a course document.
func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

// ReadDir loads all supported course files from a local directory,
// sorted by name for deterministic ingestion order.
func ReadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read course folder %s: %w", dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		files = append(files, File{Path: entry.Name(), Content: string(data)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
