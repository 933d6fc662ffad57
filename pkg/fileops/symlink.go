package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// IsSymlink checks if a given path is a symbolic link.
// This function uses lstat to examine the file without following symlinks.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// ResolveSymlink returns the final destination of a symbolic link.
func ResolveSymlink(linkPath string) (string, error) {
	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve symlink: %w", err)
	}
	return resolved, nil
}

// ValidateSymlinkSecurity validates that a symlink resolves to a target inside one of
// allowedBasePaths. Broken links and links that loop fail resolution and are rejected.
//
// Usage example:
//
//	err := fileops.ValidateSymlinkSecurity("/resources/components/Link.tsx", []string{"/resources"})
//	if err != nil {
//	    return fmt.Errorf("symlink security check failed: %w", err)
//	}
func ValidateSymlinkSecurity(linkPath string, allowedBasePaths []string) error {
	isLink, err := IsSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("cannot check if path is symlink: %w", err)
	}
	if !isLink {
		return fmt.Errorf("path is not a symbolic link: %s", linkPath)
	}

	resolved, err := ResolveSymlink(linkPath)
	if err != nil {
		return fmt.Errorf("symlink resolution failed: %w", err)
	}

	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return fmt.Errorf("cannot get absolute path of resolved target: %w", err)
	}

	for _, basePath := range allowedBasePaths {
		baseAbs, err := filepath.Abs(basePath)
		if err != nil {
			continue
		}

		// Resolve the base too so macOS /private prefixes compare equal
		baseCanonical, err := filepath.EvalSymlinks(baseAbs)
		if err != nil {
			baseCanonical = baseAbs
		}

		if isWithin(baseCanonical, resolvedAbs) {
			return nil
		}
	}

	return fmt.Errorf("symlink target is not within any allowed base path: %s", resolved)
}
