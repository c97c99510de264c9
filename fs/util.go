package fs

import (
	"fmt"
	"path/filepath"
)

// GetAbs returns path unchanged when it is already absolute, otherwise the
// absolute form relative to the current working directory.
func GetAbs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fs: abs %q: %w", path, err)
	}
	return abs, nil
}
