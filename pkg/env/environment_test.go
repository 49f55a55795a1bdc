package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineAndLookupLocal(t *testing.T) {
	e := New()
	e.Define("x", int64(42))
	v, err := e.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestLookupWalksParentChain(t *testing.T) {
	root := New()
	root.Define("x", int64(1))
	child := root.Extend()
	v, err := child.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestChildDefineDoesNotLeakToParent(t *testing.T) {
	root := New()
	child := root.Extend()
	child.Define("y", int64(2))
	_, err := root.Lookup("y")
	assert.Error(t, err)
}

func TestUndefinedVariableError(t *testing.T) {
	e := New()
	_, err := e.Lookup("nope")
	require.Error(t, err)
}

func TestLookupCacheInvalidatedOnDefine(t *testing.T) {
	e := New()
	e.Define("x", int64(1))
	v, err := e.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	e.Define("x", int64(2))
	v, err = e.Lookup("x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestImportModuleStableAcrossCircularAccess(t *testing.T) {
	e := New()
	exportsA := e.ModuleExportsFor("moduleA")
	// Consumer holds a reference before moduleA finishes "compiling".
	ref := exportsA

	e.ImportModule("moduleA", map[string]Value{"foo": int64(99)})
	assert.Equal(t, int64(99), ref.Names["foo"])
}

func TestDottedPathLookupThroughModuleExports(t *testing.T) {
	e := New()
	e.ImportModule("mod", map[string]Value{"foo": int64(7)})
	v, err := e.Lookup("mod.foo")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestMacroAccessibilitySystemAlwaysVisible(t *testing.T) {
	e := New()
	e.Registry().DefineMacro("sys", nil, true, "")
	assert.True(t, e.Registry().IsAccessible("sys", "any/file.hql"))
}

func TestMacroAccessibilityUserGatedByFile(t *testing.T) {
	e := New()
	e.Registry().DefineMacro("mine", nil, false, "a.hql")
	assert.True(t, e.Registry().IsAccessible("mine", "a.hql"))
	assert.False(t, e.Registry().IsAccessible("mine", "b.hql"))
}

func TestMacroImportGating(t *testing.T) {
	e := New()
	e.Registry().DefineMacro("shared", nil, false, "a.hql")
	e.Registry().MarkExported("a.hql", "shared")

	err := e.Registry().ImportUserMacro("shared", "a.hql", "b.hql")
	require.NoError(t, err)
	assert.True(t, e.Registry().IsAccessible("shared", "b.hql"))
}

func TestMacroImportRejectedWithoutExport(t *testing.T) {
	e := New()
	e.Registry().DefineMacro("private", nil, false, "a.hql")
	err := e.Registry().ImportUserMacro("private", "a.hql", "b.hql")
	require.Error(t, err)
}

func TestProcessedAndInProgressFilesDisjoint(t *testing.T) {
	e := New()
	e.MarkFileInProgress("x.hql")
	assert.True(t, e.IsFileInProgress("x.hql"))
	assert.False(t, e.HasProcessedFile("x.hql"))

	e.MarkFileProcessed("x.hql")
	assert.False(t, e.IsFileInProgress("x.hql"))
	assert.True(t, e.HasProcessedFile("x.hql"))
}

func TestNextGensymIncrementsFromOnePerEnvironment(t *testing.T) {
	e := New()
	assert.Equal(t, 1, e.NextGensym())
	assert.Equal(t, 2, e.NextGensym())

	other := New()
	assert.Equal(t, 1, other.NextGensym(), "a fresh Environment must not see an earlier one's counter")
}

func TestNextGensymIsSharedAcrossExtend(t *testing.T) {
	root := New()
	root.NextGensym()
	child := root.Extend()
	assert.Equal(t, 2, child.NextGensym(), "Extend()'d scopes share the root's gensym counter")
}
