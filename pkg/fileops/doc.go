// Package fileops provides read-side filesystem helpers with defense-in-depth validation.
//
// The package backs every lookup rnstd performs against its resource tree: scanning
// category directories, locating a file by exact name, and checking that whatever is
// returned stays inside the directory it was requested from.
//
// # Validation Patterns
//
// Combine the validators in this order before reading a file:
//
// 1. **Name Safety**: ValidateLookupName() - rejects separators and traversal in caller input
// 2. **Containment**: ValidateFileInDirectory() - the file resolves inside the base directory
// 3. **File Size**: ValidateFileSizeLimit() - prevents resource exhaustion
// 4. **Symlinks**: IsSymlink(), ValidateSymlinkSecurity() - link targets stay inside allowed roots
//
// # Example: Locating a File
//
//	scanner, err := fileops.NewDirectoryScanner(categoryDir, nil)
//	if err != nil {
//	    return err
//	}
//	defer scanner.Close()
//
//	match, found, err := scanner.Find("Button.tsx")
//	if err != nil {
//	    return err
//	}
//	if !found {
//	    // fall through to the next lookup strategy
//	}
//
// # Writes
//
// AtomicWriteFile() writes configuration files through a temporary file and rename so a
// reader never observes a partially written file.
package fileops
