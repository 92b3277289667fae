package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/models/mnist
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ResolveLocal expands '~' and makes path absolute. Storage URLs such as
// s3://bucket/key are rejected since they never name a local file.
func ResolveLocal(path string) (string, error) {
	if strings.Contains(path, "://") {
		return "", fmt.Errorf("not a local path: %s", path)
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}
