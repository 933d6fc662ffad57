package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// DirectoryScanOptions configures the behavior of directory scanning operations.
type DirectoryScanOptions struct {
	// SkipUnreadableDirs determines whether to skip directories that cannot be read
	// or to return an error. Setting to true makes scanning more resilient.
	SkipUnreadableDirs bool

	// MaxDepth limits the maximum recursion depth for directory traversal.
	// The scan root itself is depth 1.
	MaxDepth int

	// IncludeHidden determines whether to include files and directories that start with '.'
	IncludeHidden bool

	// SkipPatterns contains directory names that should be skipped during scanning.
	// These are exact matches against directory names (not full paths).
	SkipPatterns []string

	// FileFilter is an optional function that determines whether a file should be included.
	// If nil, all files are included.
	FileFilter func(filename string) bool
}

// FileInfo represents information about a discovered file during directory scanning.
type FileInfo struct {
	// Name is the base filename without path components
	Name string

	// Path is the relative path from the scan root to this file
	Path string

	// IsDir indicates whether this entry represents a directory
	IsDir bool

	// Size is the file size in bytes (0 for directories)
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Mode contains the file mode and permission bits
	Mode os.FileMode
}

// SecureDirectoryScanner provides configurable directory scanning confined to a root
// directory. Every open goes through an os.Root, so no lookup can escape the scan area,
// and symlinks are only followed when their target stays inside it.
//
// Entries are always visited in lexical order (the order os.ReadDir returns), which makes
// every scan and lookup deterministic across platforms.
type SecureDirectoryScanner struct {
	// root defines the security boundary for scanning operations
	root *os.Root

	// opts contains the scanning configuration
	opts *DirectoryScanOptions

	// results stores discovered files during scanning
	results []FileInfo

	// visited tracks visited directories to prevent infinite loops
	visited map[string]bool

	// scanRoot stores the absolute path of the scan root for security validation
	scanRoot string
}

// NewDirectoryScanner creates a new secure directory scanner for the given path.
//
// Usage example:
//
//	opts := &fileops.DirectoryScanOptions{
//	    MaxDepth: 10,
//	    IncludeHidden: false,
//	    FileFilter: func(name string) bool {
//	        return strings.HasSuffix(name, ".tsx")
//	    },
//	}
//	scanner, err := fileops.NewDirectoryScanner("/resources/code-examples", opts)
//	if err != nil {
//	    return fmt.Errorf("failed to create scanner: %w", err)
//	}
//	defer scanner.Close()
func NewDirectoryScanner(scanPath string, opts *DirectoryScanOptions) (*SecureDirectoryScanner, error) {
	if opts == nil {
		opts = DefaultScanOptions()
	}

	if strings.TrimSpace(scanPath) == "" {
		return nil, fmt.Errorf("scan path cannot be empty")
	}

	absPath, err := filepath.Abs(ExpandPath(scanPath))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access scan path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan path is not a directory: %s", absPath)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot create secure scan root: %w", err)
	}

	return &SecureDirectoryScanner{
		root:     root,
		opts:     opts,
		results:  []FileInfo{},
		visited:  make(map[string]bool),
		scanRoot: absPath,
	}, nil
}

// DefaultScanOptions returns the options used when none are supplied.
func DefaultScanOptions() *DirectoryScanOptions {
	return &DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           20,
		IncludeHidden:      true,
		SkipPatterns:       DefaultSkipPatterns(),
	}
}

// DefaultSkipPatterns returns commonly skipped directory names.
func DefaultSkipPatterns() []string {
	return []string{
		".git",
		"node_modules",
		"__pycache__",
	}
}

// Root returns the absolute path the scanner is confined to.
func (s *SecureDirectoryScanner) Root() string {
	return s.scanRoot
}

// Close releases resources associated with the scanner.
func (s *SecureDirectoryScanner) Close() error {
	if s.root != nil {
		err := s.root.Close()
		s.root = nil
		return err
	}
	return nil
}

// ScanDirectory performs a recursive, depth-first scan of the configured directory and
// returns every file matching the configured criteria.
func (s *SecureDirectoryScanner) ScanDirectory() ([]FileInfo, error) {
	if s.root == nil {
		return nil, fmt.Errorf("scanner has been closed")
	}

	s.results = []FileInfo{}
	s.visited = make(map[string]bool)

	if err := s.scanRecursive(".", 1); err != nil {
		return nil, fmt.Errorf("directory scan failed: %w", err)
	}

	resultsCopy := make([]FileInfo, len(s.results))
	copy(resultsCopy, s.results)
	return resultsCopy, nil
}

// ListFiles returns the files directly inside the scan root (no recursion), filtered by
// the configured options, in lexical order.
func (s *SecureDirectoryScanner) ListFiles() ([]FileInfo, error) {
	if s.root == nil {
		return nil, fmt.Errorf("scanner has been closed")
	}

	entries, err := s.readDir(".")
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		isDir, ok := s.classify(entry.Name(), entry)
		if !ok || isDir || !s.shouldIncludeFile(entry.Name()) {
			continue
		}
		fileInfo, err := s.createFileInfo(entry.Name(), entry.Name())
		if err != nil {
			continue
		}
		files = append(files, fileInfo)
	}
	return files, nil
}

// Find searches the scan root recursively for a file named exactly name. Each directory's
// own files are checked before any of its subdirectories are entered, and subdirectories
// are entered in lexical order; the first hit wins.
func (s *SecureDirectoryScanner) Find(name string) (FileInfo, bool, error) {
	if s.root == nil {
		return FileInfo{}, false, fmt.Errorf("scanner has been closed")
	}
	if err := ValidateLookupName(name); err != nil {
		return FileInfo{}, false, nil
	}

	s.visited = make(map[string]bool)
	return s.findRecursive(".", name, 1)
}

func (s *SecureDirectoryScanner) findRecursive(relativePath, name string, depth int) (FileInfo, bool, error) {
	if depth > s.opts.MaxDepth {
		return FileInfo{}, false, nil
	}

	cleanPath := filepath.Clean(relativePath)
	if s.visited[cleanPath] {
		return FileInfo{}, false, nil
	}
	s.visited[cleanPath] = true

	entries, err := s.readDir(relativePath)
	if err != nil {
		if s.opts.SkipUnreadableDirs {
			return FileInfo{}, false, nil
		}
		return FileInfo{}, false, err
	}

	var subdirs []string
	for _, entry := range entries {
		entryPath := filepath.Join(relativePath, entry.Name())
		isDir, ok := s.classify(entryPath, entry)
		if !ok {
			continue
		}
		if isDir {
			if !s.shouldSkipDirectory(entry.Name()) {
				subdirs = append(subdirs, entryPath)
			}
			continue
		}
		if entry.Name() != name || !s.shouldIncludeFile(entry.Name()) {
			continue
		}
		fileInfo, err := s.createFileInfo(entry.Name(), entryPath)
		if err != nil {
			continue
		}
		return fileInfo, true, nil
	}

	for _, dir := range subdirs {
		fileInfo, found, err := s.findRecursive(dir, name, depth+1)
		if err != nil || found {
			return fileInfo, found, err
		}
	}

	return FileInfo{}, false, nil
}

// scanRecursive performs the actual recursive directory scanning.
func (s *SecureDirectoryScanner) scanRecursive(relativePath string, depth int) error {
	if depth > s.opts.MaxDepth {
		return nil
	}

	cleanPath := filepath.Clean(relativePath)
	if s.visited[cleanPath] {
		return nil
	}
	s.visited[cleanPath] = true

	entries, err := s.readDir(relativePath)
	if err != nil {
		if s.opts.SkipUnreadableDirs {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		entryPath := filepath.Join(relativePath, entry.Name())
		isDir, ok := s.classify(entryPath, entry)
		if !ok {
			if s.opts.SkipUnreadableDirs {
				continue
			}
			return fmt.Errorf("unsafe or unreadable entry %s", entryPath)
		}

		if isDir {
			if s.shouldSkipDirectory(entry.Name()) {
				continue
			}
			if err := s.scanRecursive(entryPath, depth+1); err != nil {
				return err
			}
			continue
		}

		if !s.shouldIncludeFile(entry.Name()) {
			continue
		}
		fileInfo, err := s.createFileInfo(entry.Name(), entryPath)
		if err != nil {
			if s.opts.SkipUnreadableDirs {
				continue
			}
			return fmt.Errorf("failed to get file info for %s: %w", entryPath, err)
		}
		s.results = append(s.results, fileInfo)
	}

	return nil
}

// readDir lists a directory inside the secure root in lexical order.
func (s *SecureDirectoryScanner) readDir(relativePath string) ([]fs.DirEntry, error) {
	dir, err := s.root.Open(relativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", relativePath, err)
	}
	defer dir.Close()

	entries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", relativePath, err)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// classify reports whether an entry is a directory, following symlinks only when their
// target stays inside the scan root. ok is false for entries that must be ignored.
func (s *SecureDirectoryScanner) classify(entryPath string, entry fs.DirEntry) (isDir bool, ok bool) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), true
	}

	fullPath := filepath.Join(s.scanRoot, entryPath)
	if err := ValidateSymlinkSecurity(fullPath, []string{s.scanRoot}); err != nil {
		return false, false
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// shouldSkipDirectory determines if a directory should be skipped based on configured rules.
func (s *SecureDirectoryScanner) shouldSkipDirectory(dirName string) bool {
	if dirName == "." || dirName == ".." {
		return false
	}

	if !s.opts.IncludeHidden && strings.HasPrefix(dirName, ".") {
		return true
	}

	return slices.Contains(s.opts.SkipPatterns, dirName)
}

// shouldIncludeFile determines if a file should be included based on configured rules.
func (s *SecureDirectoryScanner) shouldIncludeFile(fileName string) bool {
	if !s.opts.IncludeHidden && strings.HasPrefix(fileName, ".") {
		return false
	}

	if s.opts.FileFilter != nil {
		return s.opts.FileFilter(fileName)
	}

	return true
}

// createFileInfo stats a file through the secure root. os.Root refuses absolute symlink
// targets, so those fall back to a plain stat once the link has been validated.
func (s *SecureDirectoryScanner) createFileInfo(name, path string) (FileInfo, error) {
	info, err := s.root.Stat(path)
	if err != nil {
		fullPath := filepath.Join(s.scanRoot, path)
		if ValidateSymlinkSecurity(fullPath, []string{s.scanRoot}) != nil {
			return FileInfo{}, fmt.Errorf("failed to get file info: %w", err)
		}
		if info, err = os.Stat(fullPath); err != nil {
			return FileInfo{}, fmt.Errorf("failed to get file info: %w", err)
		}
	}

	return FileInfo{
		Name:    name,
		Path:    path,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}, nil
}

// ScanWithFilter is a convenience function that creates a scanner with a file filter
// and immediately performs a recursive scan.
//
// Usage example:
//
//	tsFiles, err := fileops.ScanWithFilter("/resources", func(name string) bool {
//	    return strings.HasSuffix(name, ".ts")
//	}, 10)
func ScanWithFilter(scanPath string, fileFilter func(string) bool, maxDepth int) ([]FileInfo, error) {
	opts := &DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           maxDepth,
		IncludeHidden:      false,
		SkipPatterns:       DefaultSkipPatterns(),
		FileFilter:         fileFilter,
	}

	scanner, err := NewDirectoryScanner(scanPath, opts)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	return scanner.ScanDirectory()
}
