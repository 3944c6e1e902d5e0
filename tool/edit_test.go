package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditTool_RequiresUniqueMatchUnlessReplaceAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("foo\nfoo\n"), 0o644))

	ec := NewExecutionContext(dir, dir)
	ec.MarkRead(path)
	et := NewEditTool()

	_, err := et.Execute(context.Background(), ec, map[string]any{"path": "a.go", "old_string": "foo", "new_string": "bar"})
	require.Error(t, err)

	res, err := et.Execute(context.Background(), ec, map[string]any{"path": "a.go", "old_string": "foo", "new_string": "bar", "replace_all": true})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestEditTool_RejectsWriteWithoutPriorRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("foo\n"), 0o644))

	ec := NewExecutionContext(dir, dir)
	et := NewEditTool()

	_, err := et.Execute(context.Background(), ec, map[string]any{"path": "a.go", "old_string": "foo", "new_string": "bar"})
	require.Error(t, err)
}

func TestMultiEditTool_AppliesSequentially(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	ec := NewExecutionContext(dir, dir)
	ec.MarkRead(path)
	met := NewMultiEditTool()

	res, err := met.Execute(context.Background(), ec, map[string]any{
		"path": "a.go",
		"edits": []any{
			map[string]any{"old_string": "package main", "new_string": "package app"},
			map[string]any{"old_string": "package app", "new_string": "package server"},
		},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package server\n", string(content))
}
