package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNeedsRebuildIsTrueWithNoCacheEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	writeFile(t, src, `(fn add [a b] (+ a b))`)

	c, err := Open(dir)
	require.NoError(t, err)

	needs, err := c.NeedsRebuild(src, filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestMarkBuiltThenNeedsRebuildIsFalse(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, nil))

	needs, err := c.NeedsRebuild(src, out)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestNeedsRebuildIsTrueAfterSourceContentChanges(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, nil))

	writeFile(t, src, `(fn add [a b] (+ a b 1))`)

	needs, err := c.NeedsRebuild(src, out)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestNeedsRebuildIsTrueWhenDependencyIsMissing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(import "./b.hql")`)
	writeFile(t, out, `import "./b.js";`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, []string{filepath.Join(dir, "b.hql")}))

	needs, err := c.NeedsRebuild(src, out)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestInvalidateRemovesOneEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, nil))
	require.NoError(t, c.Invalidate(src))

	needs, err := c.NeedsRebuild(src, out)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestInvalidateAllClearsEveryEntry(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, nil))
	require.NoError(t, c.InvalidateAll())
	assert.Empty(t, c.Entries)
}

func TestCleanDropsEntriesWhoseOutputWasDeleted(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.MarkBuilt(src, out, nil))

	require.NoError(t, os.Remove(out))
	require.NoError(t, c.Clean())
	assert.Empty(t, c.Entries)
}

func TestOpenReloadsPersistedEntriesFromDisk(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.hql")
	out := filepath.Join(dir, "a.js")
	writeFile(t, src, `(fn add [a b] (+ a b))`)
	writeFile(t, out, `function add(a, b) { return a + b; }`)

	c1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c1.MarkBuilt(src, out, nil))

	c2, err := Open(dir)
	require.NoError(t, err)
	needs, err := c2.NeedsRebuild(src, out)
	require.NoError(t, err)
	assert.False(t, needs)
}
