package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	componentsDir = "code-examples/react-native/components"
	hooksDir      = "code-examples/react-native/hooks"
	helperDir     = "code-examples/react-native/helper"
	screensDir    = "code-examples/react-native/screens"
	themeDir      = "code-examples/react-native/theme"
)

// writeTree creates a resources root containing files (slash path -> content).
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "resources")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newTestStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	store, err := NewStore(writeTree(t, files), Options{})
	require.NoError(t, err)
	return store
}
