// Package filex contains small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureAppDir returns the application data directory named name under the
// user's home directory, creating it if necessary. If the home directory
// cannot be resolved, the current working directory is used as the parent.
func EnsureAppDir(name string) (string, error) {
	parent, err := os.UserHomeDir()
	if err != nil {
		parent, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve parent dir: %w", err)
		}
	}

	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
