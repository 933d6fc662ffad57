package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to path atomically: the destination either holds the
// complete new content or is left unchanged.
//
// The function uses a temporary file approach:
//  1. Creates a temporary file in the destination directory
//  2. Writes all data to the temporary file
//  3. Syncs data to disk to ensure durability
//  4. Atomically renames the temporary file to the final destination
//
// Parent directories are created with 0755 permissions when missing.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return err
	}

	tempPath := path + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	var writeSuccess bool
	defer func() {
		tempFile.Close()
		if !writeSuccess {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file contents: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	writeSuccess = true
	return nil
}

// EnsureDirectoryExists creates a directory and all necessary parent directories.
// This is equivalent to `mkdir -p` and is safe to call multiple times.
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
