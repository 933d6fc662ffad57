package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePathSecurity performs static security validation on a relative path.
//
// The function validates:
//   - Empty or whitespace-only paths
//   - Path traversal attempts using ".." segments, before and after cleaning
//
// It does not access the filesystem; use ValidateFileInDirectory for containment
// checks against real files.
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if containsTraversal(path) {
		return fmt.Errorf("path traversal not allowed")
	}

	cleanPath := filepath.Clean(path)
	if containsTraversal(cleanPath) {
		return fmt.Errorf("path traversal not allowed")
	}

	return nil
}

// ValidateLookupName validates a caller-supplied file name before it is used to look up
// a file. Lookup names are bare names: they may carry an extension but never a directory
// component.
func ValidateLookupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be a directory reference")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name cannot contain path separators")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name cannot contain null bytes")
	}
	return nil
}

// ValidateFileInDirectory validates that a file path is within a specified base directory
// and that the file exists and is a regular file. Symlinks are resolved and their final
// destination must also be inside the base directory.
//
// Usage example:
//
//	err := fileops.ValidateFileInDirectory("/resources/standards/a.md", "/resources")
//	if err != nil {
//	    return fmt.Errorf("file validation failed: %w", err)
//	}
func ValidateFileInDirectory(filePath, baseDir string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("cannot resolve file path: %w", err)
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}

	if !isWithin(absBaseDir, absFilePath) {
		return fmt.Errorf("file is not within base directory")
	}

	linfo, err := os.Lstat(absFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if linfo.Mode()&os.ModeSymlink != 0 {
		if err := ValidateSymlinkSecurity(absFilePath, []string{absBaseDir}); err != nil {
			return fmt.Errorf("symlink resolves outside base directory: %w", err)
		}
	}

	info, err := os.Stat(absFilePath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}

	return nil
}

// ValidateFileSizeLimit validates that a file does not exceed maxSize bytes.
//
// Usage example:
//
//	// Limit files to 10MB
//	if err := fileops.ValidateFileSizeLimit("/path/to/file.txt", 10*1024*1024); err != nil {
//	    return fmt.Errorf("file too large: %w", err)
//	}
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
//
// Usage example:
//
//	expanded := fileops.ExpandPath("~/Documents/file.txt")
//	// Returns something like "/home/user/Documents/file.txt"
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// containsTraversal reports whether any segment of path is "..".
func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

// isWithin reports whether target is base or lies underneath it. Both must be absolute.
func isWithin(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
