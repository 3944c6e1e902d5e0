package tool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTool_CacheDedupsIdenticalWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2\nline3\n"), 0o644))

	ec := NewExecutionContext(dir, dir)
	rt := NewReadTool()

	first, err := rt.Execute(context.Background(), ec, map[string]any{"path": "a.go", "offset": float64(1), "limit": float64(2000)})
	require.NoError(t, err)
	assert.False(t, first.IsDedup)

	second, err := rt.Execute(context.Background(), ec, map[string]any{"path": "a.go", "offset": float64(1), "limit": float64(2000)})
	require.NoError(t, err)
	assert.True(t, second.IsDedup)
	assert.Contains(t, second.Content, "[DEDUP]")
}

func TestReadTool_MtimeChangeInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("v1\n"), 0o644))

	ec := NewExecutionContext(dir, dir)
	rt := NewReadTool()

	_, err := rt.Execute(context.Background(), ec, map[string]any{"path": "a.go"})
	require.NoError(t, err)

	newer := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0o644))
	require.NoError(t, os.Chtimes(path, newer, newer))

	second, err := rt.Execute(context.Background(), ec, map[string]any{"path": "a.go"})
	require.NoError(t, err)
	assert.False(t, second.IsDedup)
	assert.Contains(t, second.Content, "v2")
}

func TestReadTool_BinaryFileIsSkippedNotDecoded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G', 0, 0, 0}, 0o644))

	ec := NewExecutionContext(dir, dir)
	rt := NewReadTool()

	res, err := rt.Execute(context.Background(), ec, map[string]any{"path": "img.png"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "[binary file skipped]")
}
