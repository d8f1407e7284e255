// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
	"sort"
)

// ListDirsContaining returns the names of all immediate subdirectories of
// rootPath that contain a regular file named marker. The result is sorted
// lexicographically so repeated scans of the same tree are stable.
func ListDirsContaining(rootPath string, marker string) ([]string, error) {
	if marker == "" {
		panic("marker must not be empty")
	}

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(rootPath, entry.Name(), marker))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		dirs = append(dirs, entry.Name())
	}

	sort.Strings(dirs)
	return dirs, nil
}
