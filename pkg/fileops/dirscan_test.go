package fileops

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewDirectoryScanner(t *testing.T) {
	root := createTree(t, map[string]string{"a.txt": "a"})

	tests := []struct {
		name      string
		scanPath  string
		wantError bool
		errorText string
	}{
		{name: "valid directory", scanPath: root},
		{name: "empty path", scanPath: "  ", wantError: true, errorText: "cannot be empty"},
		{name: "missing directory", scanPath: filepath.Join(root, "missing"), wantError: true, errorText: "cannot access"},
		{name: "file instead of directory", scanPath: filepath.Join(root, "a.txt"), wantError: true, errorText: "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner, err := NewDirectoryScanner(tt.scanPath, nil)
			if tt.wantError {
				if err == nil {
					scanner.Close()
					t.Fatalf("expected error containing %q", tt.errorText)
				}
				if !strings.Contains(err.Error(), tt.errorText) {
					t.Errorf("expected error containing %q, got %v", tt.errorText, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer scanner.Close()
			if scanner.Root() == "" {
				t.Error("Root should be set")
			}
		})
	}
}

func TestScanDirectory_LexicalDepthFirst(t *testing.T) {
	root := createTree(t, map[string]string{
		"b.ts":               "b",
		"a.ts":               "a",
		"nested/c.ts":        "c",
		".hidden/d.ts":       "d",
		".git/config":        "x",
		"node_modules/e.js":  "e",
		"nested/deep/f.tsx":  "f",
		"nested/.secret.tsx": "s",
	})

	scanner, err := NewDirectoryScanner(root, &DirectoryScanOptions{
		SkipUnreadableDirs: true,
		MaxDepth:           10,
		IncludeHidden:      false,
		SkipPatterns:       DefaultSkipPatterns(),
	})
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	defer scanner.Close()

	files, err := scanner.ScanDirectory()
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}

	want := []string{"a.ts", "b.ts", "nested/c.ts", "nested/deep/f.tsx"}
	if got := names(files); !reflect.DeepEqual(got, want) {
		t.Errorf("ScanDirectory() = %v, want %v", got, want)
	}
}

func TestScanDirectory_MaxDepth(t *testing.T) {
	root := createTree(t, map[string]string{
		"top.js":         "1",
		"one/mid.js":     "2",
		"one/two/low.js": "3",
	})

	scanner, err := NewDirectoryScanner(root, &DirectoryScanOptions{MaxDepth: 2, IncludeHidden: true})
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	defer scanner.Close()

	files, err := scanner.ScanDirectory()
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	want := []string{"one/mid.js", "top.js"}
	if got := names(files); !reflect.DeepEqual(got, want) {
		t.Errorf("ScanDirectory() = %v, want %v", got, want)
	}
}

func TestScanDirectory_Closed(t *testing.T) {
	root := createTree(t, map[string]string{"a": "a"})
	scanner, err := NewDirectoryScanner(root, nil)
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	scanner.Close()

	if _, err := scanner.ScanDirectory(); err == nil {
		t.Error("expected error scanning with a closed scanner")
	}
	if _, _, err := scanner.Find("a"); err == nil {
		t.Error("expected error finding with a closed scanner")
	}
	if _, err := scanner.ListFiles(); err == nil {
		t.Error("expected error listing with a closed scanner")
	}
}

func TestListFiles_NonRecursiveFiltered(t *testing.T) {
	root := createTree(t, map[string]string{
		"Zeta.tsx":      "z",
		"Alpha.js":      "a",
		"notes.md":      "n",
		".Hidden.js":    "h",
		"sub/Inner.tsx": "i",
	})

	scanner, err := NewDirectoryScanner(root, &DirectoryScanOptions{
		MaxDepth: 1,
		FileFilter: func(name string) bool {
			return strings.HasSuffix(name, ".js") || strings.HasSuffix(name, ".tsx")
		},
	})
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	defer scanner.Close()

	files, err := scanner.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"Alpha.js", "Zeta.tsx"}
	if got := names(files); !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}
}

func TestFind_DirectoryFilesBeforeSubdirectories(t *testing.T) {
	root := createTree(t, map[string]string{
		"a/Button.tsx": "nested a",
		"Button.tsx":   "top",
		"b/Card.tsx":   "card b",
		"a/x/Card.tsx": "card a/x",
	})

	scanner, err := NewDirectoryScanner(root, nil)
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	defer scanner.Close()

	tests := []struct {
		name     string
		wantPath string
		found    bool
	}{
		{"Button.tsx", "Button.tsx", true},
		{"Card.tsx", "a/x/Card.tsx", true},
		{"Missing.tsx", "", false},
		{"../Button.tsx", "", false},
		{"a/Button.tsx", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, found, err := scanner.Find(tt.name)
			if err != nil {
				t.Fatalf("Find(%q) error: %v", tt.name, err)
			}
			if found != tt.found {
				t.Fatalf("Find(%q) found = %v, want %v", tt.name, found, tt.found)
			}
			if found && filepath.ToSlash(info.Path) != tt.wantPath {
				t.Errorf("Find(%q) path = %q, want %q", tt.name, info.Path, tt.wantPath)
			}
		})
	}
}

func TestFind_IgnoresEscapingSymlink(t *testing.T) {
	outside := createTree(t, map[string]string{"Secret.tsx": "secret"})
	root := createTree(t, map[string]string{"Inside.tsx": "inside"})
	createSymlink(t, filepath.Join(outside, "Secret.tsx"), filepath.Join(root, "Secret.tsx"))
	createSymlink(t, "Inside.tsx", filepath.Join(root, "Alias.tsx"))
	createSymlink(t, filepath.Join(root, "Inside.tsx"), filepath.Join(root, "Absolute.tsx"))

	scanner, err := NewDirectoryScanner(root, nil)
	if err != nil {
		t.Fatalf("NewDirectoryScanner: %v", err)
	}
	defer scanner.Close()

	if _, found, _ := scanner.Find("Secret.tsx"); found {
		t.Error("symlink escaping the scan root must not be found")
	}
	for _, name := range []string{"Alias.tsx", "Absolute.tsx"} {
		if _, found, _ := scanner.Find(name); !found {
			t.Errorf("symlink %s inside the scan root should be found", name)
		}
	}
}

func TestScanWithFilter(t *testing.T) {
	root := createTree(t, map[string]string{
		"a.md":         "#",
		"b.txt":        "b",
		"docs/c.md":    "#",
		".hidden/d.md": "#",
	})

	files, err := ScanWithFilter(root, func(name string) bool {
		return filepath.Ext(name) == ".md"
	}, 5)
	if err != nil {
		t.Fatalf("ScanWithFilter: %v", err)
	}
	want := []string{"a.md", "docs/c.md"}
	if got := names(files); !reflect.DeepEqual(got, want) {
		t.Errorf("ScanWithFilter() = %v, want %v", got, want)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := AtomicWriteFile(path, []byte("a: 1\n"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("a: 2\n"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "a: 2\n" {
		t.Errorf("content = %q, want %q", data, "a: 2\n")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after a successful write")
	}
}
