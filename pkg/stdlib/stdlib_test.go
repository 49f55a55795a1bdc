package stdlib

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/env"
	"github.com/hlvm-dev/hql/pkg/importer"
	"github.com/hlvm-dev/hql/pkg/macro"
	"github.com/hlvm-dev/hql/pkg/reader"
)

func TestResolveEmbeddedReturnsCoreModuleSource(t *testing.T) {
	src, err := ResolveEmbedded("core")
	require.NoError(t, err)
	assert.Contains(t, src, "when-not")
}

func TestResolveEmbeddedMissingModuleIsModuleNotFound(t *testing.T) {
	_, err := ResolveEmbedded("does-not-exist")
	require.Error(t, err)
}

func TestLoadMacrosRegistersSystemMacroVisibleFromAnyFile(t *testing.T) {
	l := New()
	e := env.New().WithFilePath("a.hql")
	require.NoError(t, l.LoadMacros(e))

	forms, err := reader.Read([]byte(`(when-not false 1)`), "b.hql")
	require.NoError(t, err)
	bEnv := e.WithFilePath("b.hql")
	out, err := macro.Expand(forms, bEnv, macro.DefaultOptions("b.hql"))
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestLoadMacrosIsIdempotentAcrossRepeatedCalls(t *testing.T) {
	l := New()
	e := env.New()
	require.NoError(t, l.LoadMacros(e))
	require.NoError(t, l.LoadMacros(e))
}

func TestLoadOpaqueRejectsNonEmbeddedKind(t *testing.T) {
	l := New()
	_, err := l.LoadOpaque(context.Background(), "./util.hql", importer.ModuleSource)
	require.Error(t, err)
}

func TestLoadOpaqueReturnsCoreModuleMacroBindings(t *testing.T) {
	l := New()
	exports, err := l.LoadOpaque(context.Background(), "@hql/core", importer.ModuleEmbedded)
	require.NoError(t, err)
	assert.Contains(t, exports, "when-not")
	assert.Contains(t, exports, "while-not")
}
