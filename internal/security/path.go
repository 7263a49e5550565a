package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects empty paths and paths that climb out of their
// directory after cleaning
func ValidateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains directory traversal: %s", path)
	}

	return nil
}

// IsMemoryDSN reports whether a sqlite DSN refers to an in-memory database
func IsMemoryDSN(dsn string) bool {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		if strings.Contains(path[i:], "mode=memory") {
			return true
		}
		path = path[:i]
	}
	return path == ":memory:" || path == ""
}

// ValidateSQLiteDSN validates the file part of a sqlite DSN. In-memory DSNs
// are always accepted.
func ValidateSQLiteDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if IsMemoryDSN(dsn) {
		return nil
	}

	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return ValidateFilePath(path)
}
