package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rnstd/internal/logging"
	"rnstd/internal/resources"
	"rnstd/internal/tools"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, files map[string]string) *tools.Registry {
	t.Helper()
	root := filepath.Join(t.TempDir(), "resources")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	store, err := resources.NewStore(root, resources.Options{})
	require.NoError(t, err)
	return tools.NewRegistry(store, tools.Options{})
}

func newTestProcessor(t *testing.T, files map[string]string) *Processor {
	t.Helper()
	return NewProcessor(newTestRegistry(t, files), logging.NewDiscardLogger())
}

// serveLines feeds input to a fresh server and returns the raw output lines.
func serveLines(t *testing.T, processor *Processor, input string) []string {
	t.Helper()
	var out bytes.Buffer
	srv := NewServerWithIO(processor, logging.NewDiscardLogger(), strings.NewReader(input), &out)
	require.NoError(t, srv.Serve(context.Background()))

	text := strings.TrimSuffix(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// decode parses one output line, keeping numbers as json.Number.
func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	var msg map[string]any
	require.NoError(t, dec.Decode(&msg))
	return msg
}

// toMap round-trips a value through JSON so tests can inspect the wire shape.
func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return decode(t, string(data))
}
