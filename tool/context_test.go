package tool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBeforeWrite_NewFileBypasses(t *testing.T) {
	dir := t.TempDir()
	ec := NewExecutionContext(dir, dir)
	target := filepath.Join(dir, "new.txt")

	err := ec.CheckReadBeforeWrite(target)
	require.NoError(t, err)
}

func TestReadBeforeWrite_ExistingUnreadFails(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	ec := NewExecutionContext(dir, dir)
	err := ec.CheckReadBeforeWrite(target)
	require.Error(t, err)
}

func TestReadBeforeWrite_SucceedsAfterRead(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	ec := NewExecutionContext(dir, dir)
	ec.MarkRead(target)
	require.NoError(t, ec.CheckReadBeforeWrite(target))
}

func TestTaskDedup_SecondLookupHitsCache(t *testing.T) {
	ec := NewExecutionContext(t.TempDir(), "")
	_, hit := ec.CachedTaskOutput("inspect src/lib.rs")
	assert.False(t, hit)

	ec.StoreTaskOutput("inspect src/lib.rs", "it's a library entrypoint")
	out, hit := ec.CachedTaskOutput("inspect src/lib.rs")
	require.True(t, hit)
	assert.Equal(t, "it's a library entrypoint", out)
}

func TestChildContext_FreshReadSetDeeperDepth(t *testing.T) {
	ec := NewExecutionContext(t.TempDir(), "")
	ec.MarkRead("/tmp/whatever")
	child := ec.ChildContext()

	assert.Equal(t, 1, child.Depth)
	assert.False(t, child.WasRead("/tmp/whatever"))
}
