package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath expands a leading "~" to the user's home directory and cleans
// the result. Recording paths arrive from shell arguments and config values,
// so both forms must resolve to the same file.
func NormalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}
