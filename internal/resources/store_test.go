package resources

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStandard(t *testing.T) {
	store := newTestStore(t, map[string]string{
		"standards/project_structure.md": "# Project Structure\n",
		"standards/notes.txt":            "not a standard",
	})

	content, err := store.ReadStandard("project_structure")
	require.NoError(t, err)
	assert.Equal(t, "# Project Structure\n", content)

	for _, id := range []string{"api_communication", "notes", "", "../standards/project_structure", "..", "a/b"} {
		_, err := store.ReadStandard(id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestReadStandard_MissingRoot(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	require.NoError(t, err)

	_, err = store.ReadStandard("project_structure")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, store.ListStandards())
}

func TestReadStandard_SizeLimit(t *testing.T) {
	root := writeTree(t, map[string]string{
		"standards/small.md": "ok",
		"standards/large.md": strings.Repeat("x", 64),
	})
	store, err := NewStore(root, Options{MaxFileSize: 32})
	require.NoError(t, err)

	_, err = store.ReadStandard("small")
	require.NoError(t, err)

	_, err = store.ReadStandard("large")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStandard_SymlinkOutsideTree(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.md")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

	root := writeTree(t, map[string]string{"standards/keep.md": "keep"})
	if err := os.Symlink(outside, filepath.Join(root, "standards", "escape.md")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	store, err := NewStore(root, Options{})
	require.NoError(t, err)

	_, err = store.ReadStandard("escape")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadExample_Scenario(t *testing.T) {
	store := newTestStore(t, map[string]string{
		componentsDir + "/ButtonPrimary.tsx": "export const ButtonPrimary = () => null;\n",
	})

	example, err := store.ReadExample(Components, "Button")
	require.NoError(t, err)
	assert.Equal(t, "export const ButtonPrimary = () => null;\n", example.Content)
	assert.Equal(t, "resources/code-examples/react-native/components/ButtonPrimary.tsx", example.File.RelativePath)
	assert.Equal(t, MatchFuzzy, example.Match)
	assert.True(t, filepath.IsAbs(example.File.AbsolutePath))
}

func TestReadExample_NotFound(t *testing.T) {
	store := newTestStore(t, map[string]string{
		componentsDir + "/Card.tsx": "card",
	})

	_, err := store.ReadExample(Components, "Button")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Component Button")

	_, err = store.ReadExample(Hooks, "useAuth")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.ReadExample(Standards, "project_structure")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestReadExample_CategoryDirectories(t *testing.T) {
	store := newTestStore(t, map[string]string{
		componentsDir + "/Button.tsx":  "component",
		hooksDir + "/useAuth.ts":       "hook",
		helperDir + "/ApiService.js":   "service",
		screensDir + "/LoginScreen.js": "screen",
		themeDir + "/colors.ts":        "theme",
	})

	tests := []struct {
		category Category
		name     string
		want     string
	}{
		{Components, "Button", "component"},
		{Hooks, "useAuth", "hook"},
		{Services, "ApiService", "service"},
		{Screens, "LoginScreen", "screen"},
		{Themes, "colors", "theme"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			example, err := store.ReadExample(tt.category, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, example.Content)
		})
	}
}

func TestReadExample_Idempotent(t *testing.T) {
	store := newTestStore(t, map[string]string{
		componentsDir + "/ButtonPrimary.tsx": "primary",
		componentsDir + "/ButtonGhost.tsx":   "ghost",
	})

	first, err := store.ReadExample(Components, "button")
	require.NoError(t, err)
	second, err := store.ReadExample(Components, "button")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
