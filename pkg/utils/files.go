// Package utils holds small filesystem, identifier, and URL helpers
// shared by the library and its command-line drivers.
package utils

import (
	"os"
)

// MakeDir creates a directory with all parent directories.
func MakeDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// DeleteFile removes a file.
func DeleteFile(path string) error {
	return os.Remove(path)
}
