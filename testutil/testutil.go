// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modforge/core/document"
	"github.com/modforge/core/jsonval"
)

// WriteEntityFile writes a JSON entity file into dir and returns its path.
func WriteEntityFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// MustParse decodes JSON or fails the test.
func MustParse(t *testing.T, content string) jsonval.Value {
	t.Helper()

	v, err := jsonval.Decode([]byte(content))
	require.NoError(t, err)
	return v
}

// MustParsePath parses a dotted path or fails the test.
func MustParsePath(t *testing.T, s string) document.Path {
	t.Helper()

	p, err := document.ParsePath(s)
	require.NoError(t, err)
	return p
}

// ReadFile reads a file or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
