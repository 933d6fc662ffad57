// Package resources provides read-only access to the coding-standards documents and the
// categorized React Native example files served by rnstd.
//
// The resources root is laid out as:
//
//	standards/{standard_id}.md
//	code-examples/react-native/{components,hooks,helper,screens,theme}/...
//
// Every failure to produce a file (absent, unreadable, outside the tree, oversized) is
// reported as ErrNotFound. The underlying cause is logged, never returned to callers.
package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rnstd/internal/logging"
	"rnstd/pkg/fileops"
)

// ErrNotFound is returned when a requested standard or example cannot be produced.
var ErrNotFound = errors.New("resource not found")

// DefaultMaxFileSize caps the size of any file the store will read.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Options configures a Store.
type Options struct {
	// MaxFileSize is the largest file, in bytes, the store will read. Zero selects DefaultMaxFileSize.
	MaxFileSize int64
	Logger      *logging.AppLogger
}

// Example is the content and location of a resolved example file.
type Example struct {
	Content string
	File    ResolvedFile
	Match   Match
}

// Store reads standards and examples from a resources root.
type Store struct {
	root        string
	maxFileSize int64
	logger      *logging.AppLogger
	resolver    *Resolver
}

// NewStore creates a Store rooted at dir. The directory does not have to exist: lookups
// against a missing tree simply report ErrNotFound.
func NewStore(dir string, opts Options) (*Store, error) {
	root, err := filepath.Abs(fileops.ExpandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resources directory: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Store{
		root:        root,
		maxFileSize: maxSize,
		logger:      logger,
		resolver:    NewResolver(root, logger),
	}, nil
}

// Root returns the absolute resources root.
func (s *Store) Root() string {
	return s.root
}

// CategoryDir returns the absolute directory backing c.
func (s *Store) CategoryDir(c Category) string {
	return filepath.Join(s.root, filepath.FromSlash(c.Dir()))
}

// ReadStandard returns the text of standards/{standardID}.md.
func (s *Store) ReadStandard(standardID string) (string, error) {
	if err := fileops.ValidateLookupName(standardID); err != nil {
		s.logger.Debug("Rejected standard id", "id", standardID, "reason", err)
		return "", fmt.Errorf("standard %s: %w", standardID, ErrNotFound)
	}

	dir := s.CategoryDir(Standards)
	path := filepath.Join(dir, standardID+StandardExtension)

	data, err := s.readFile(path, dir)
	if err != nil {
		return "", fmt.Errorf("standard %s: %w", standardID, err)
	}
	return string(data), nil
}

// ReadExample resolves name inside the example category c and returns its text.
func (s *Store) ReadExample(c Category, name string) (Example, error) {
	if !c.IsExample() {
		return Example{}, fmt.Errorf("%q is not an example category", c)
	}

	dir := s.CategoryDir(c)
	file, match := s.resolver.ResolveMatch(dir, name)
	if match == MatchNone {
		return Example{}, fmt.Errorf("%s %s: %w", c.Kind(), name, ErrNotFound)
	}

	data, err := s.readFile(file.AbsolutePath, dir)
	if err != nil {
		return Example{}, fmt.Errorf("%s %s: %w", c.Kind(), name, err)
	}

	s.logger.Debug("Resolved example", "category", c, "name", name, "match", match, "path", file.RelativePath)
	return Example{Content: string(data), File: file, Match: match}, nil
}

// readFile validates that path is a regular file inside baseDir within the size limit and
// reads it whole. Any failure maps to ErrNotFound.
func (s *Store) readFile(path, baseDir string) ([]byte, error) {
	if err := fileops.ValidateFileInDirectory(path, baseDir); err != nil {
		s.logger.Debug("File unavailable", "path", path, "reason", err)
		return nil, ErrNotFound
	}

	if err := fileops.ValidateFileSizeLimit(path, s.maxFileSize); err != nil {
		s.logger.Warn("File exceeds size limit", "path", path, "reason", err)
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("Failed to read file", "path", path, "error", err)
		return nil, ErrNotFound
	}

	return data, nil
}
