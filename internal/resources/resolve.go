package resources

import (
	"path/filepath"
	"strings"

	"rnstd/internal/logging"
	"rnstd/pkg/fileops"
)

// ResolvedFile is a file located by the resolver.
type ResolvedFile struct {
	// AbsolutePath is the file's absolute location on disk.
	AbsolutePath string
	// RelativePath is the slash-separated path reported to callers, rooted at "resources/".
	RelativePath string
}

// Match identifies which resolution tier produced a ResolvedFile.
type Match int

const (
	MatchNone Match = iota
	MatchExact
	MatchExtension
	MatchFuzzy
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchExtension:
		return "extension"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// wireRoot prefixes every RelativePath so callers see the same layout regardless of where
// the resources directory lives on disk.
const wireRoot = "resources"

// maxSearchDepth bounds recursive lookups inside a category directory.
const maxSearchDepth = 20

// Resolver maps loosely specified names onto example files.
type Resolver struct {
	root   string
	logger *logging.AppLogger
}

// NewResolver creates a resolver for the resources tree at root. root must be absolute.
func NewResolver(root string, logger *logging.AppLogger) *Resolver {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Resolver{root: root, logger: logger}
}

// Resolve finds requestedName inside categoryDir. The first tier that produces a hit wins:
//
//  1. a file named exactly requestedName, anywhere below categoryDir
//  2. requestedName plus each of Extensions in order, anywhere below categoryDir
//  3. the first file directly in categoryDir, in lexical order, with a recognized extension
//     whose stem contains requestedName case-insensitively
//
// Names that are empty or carry path components never match.
func (r *Resolver) Resolve(categoryDir, requestedName string) (ResolvedFile, bool) {
	file, match := r.ResolveMatch(categoryDir, requestedName)
	return file, match != MatchNone
}

// ResolveMatch is Resolve that also reports which tier matched.
func (r *Resolver) ResolveMatch(categoryDir, requestedName string) (ResolvedFile, Match) {
	if err := fileops.ValidateLookupName(requestedName); err != nil {
		r.logger.Debug("Rejected lookup name", "name", requestedName, "reason", err)
		return ResolvedFile{}, MatchNone
	}

	scanner, err := fileops.NewDirectoryScanner(categoryDir, &fileops.DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           maxSearchDepth,
		IncludeHidden:      true,
		SkipPatterns:       fileops.DefaultSkipPatterns(),
	})
	if err != nil {
		r.logger.Debug("Category directory unavailable", "dir", categoryDir, "error", err)
		return ResolvedFile{}, MatchNone
	}
	defer scanner.Close()

	if info, found := r.find(scanner, requestedName); found {
		return r.resolved(scanner.Root(), info.Path), MatchExact
	}

	for _, ext := range Extensions {
		if info, found := r.find(scanner, requestedName+ext); found {
			return r.resolved(scanner.Root(), info.Path), MatchExtension
		}
	}

	if name, found := r.fuzzy(scanner.Root(), requestedName); found {
		return r.resolved(scanner.Root(), name), MatchFuzzy
	}

	return ResolvedFile{}, MatchNone
}

func (r *Resolver) find(scanner *fileops.SecureDirectoryScanner, name string) (fileops.FileInfo, bool) {
	info, found, err := scanner.Find(name)
	if err != nil {
		r.logger.Warn("Lookup failed", "name", name, "dir", scanner.Root(), "error", err)
		return fileops.FileInfo{}, false
	}
	return info, found
}

// fuzzy scans only the direct children of dir; hidden files are ignored.
func (r *Resolver) fuzzy(dir, requestedName string) (string, bool) {
	files, err := listExampleFiles(dir)
	if err != nil {
		r.logger.Debug("Fuzzy listing failed", "dir", dir, "error", err)
		return "", false
	}

	needle := strings.ToLower(requestedName)
	for _, file := range files {
		if strings.Contains(strings.ToLower(Stem(file.Name)), needle) {
			return file.Path, true
		}
	}
	return "", false
}

func (r *Resolver) resolved(scanRoot, relativeToScan string) ResolvedFile {
	abs := filepath.Join(scanRoot, relativeToScan)
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		rel = relativeToScan
	}
	return ResolvedFile{
		AbsolutePath: abs,
		RelativePath: wireRoot + "/" + filepath.ToSlash(rel),
	}
}

// listExampleFiles returns the non-hidden files directly in dir that carry a recognized
// extension, in lexical order. A missing directory yields an error.
func listExampleFiles(dir string) ([]fileops.FileInfo, error) {
	return listFiles(dir, HasExampleExtension)
}

func listFiles(dir string, filter func(string) bool) ([]fileops.FileInfo, error) {
	scanner, err := fileops.NewDirectoryScanner(dir, &fileops.DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           1,
		IncludeHidden:      false,
		FileFilter:         filter,
	})
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	return scanner.ListFiles()
}
