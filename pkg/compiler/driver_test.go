package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/env"
)

func TestCompileSimpleFunctionProducesCode(t *testing.T) {
	d := New("", "", nil, nil)
	res, err := d.Compile(context.Background(), `(fn add [a b] (+ a b))`, Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	assert.Contains(t, res.Code, "function add(a, b)")
	assert.Contains(t, res.Code, "a + b")
	require.NotNil(t, res.IR)
	assert.Empty(t, res.SourceMap)
}

func TestCompileWithSourceMapProducesV3Document(t *testing.T) {
	d := New("", "", nil, nil)
	res, err := d.Compile(context.Background(), `(fn add [a b] (+ a b))`, Options{
		CurrentFile:       "a.hql",
		GenerateSourceMap: true,
		SourceContent:     `(fn add [a b] (+ a b))`,
	})
	require.NoError(t, err)
	assert.Contains(t, res.SourceMap, `"version":3`)
}

func TestCompileDuplicateDeclarationSurfacesValidatorDiagnostic(t *testing.T) {
	d := New("", "", nil, nil)
	_, err := d.Compile(context.Background(), `(let x 1) (let x 2)`, Options{CurrentFile: "a.hql"})
	require.Error(t, err)
}

func TestExpandReturnsExpandedFormsWithoutCodegen(t *testing.T) {
	d := New("", "", nil, nil)
	forms, err := d.Expand(context.Background(),
		`(macro double [x] (quasiquote (+ (unquote x) (unquote x)))) (double 3)`,
		Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	require.Len(t, forms, 1)
}

func TestCompileReusesInjectedEnvironmentAcrossCalls(t *testing.T) {
	d := New("", "", nil, nil)
	e := env.New()

	_, err := d.Compile(context.Background(), `(let shared 1)`, Options{
		CurrentFile: "a.hql",
		Context:     Context{Environment: e},
	})
	require.NoError(t, err)

	// A second compile against the same injected Environment must not
	// error just because the first compile already defined bindings in it.
	_, err = d.Compile(context.Background(), `(let other 2)`, Options{
		CurrentFile: "b.hql",
		Context:     Context{Environment: e},
	})
	require.NoError(t, err)
}

func TestInvalidateSourceMapCacheIsSafeWithNoCachedMaps(t *testing.T) {
	InvalidateSourceMapCache()
}

func TestCompileInjectsPreludeForUsedHelper(t *testing.T) {
	d := New("", "", nil, nil)
	res, err := d.Compile(context.Background(), `(fn first [coll] (get coll 0))`, Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	assert.Equal(t, []string{"__hql_get"}, res.UsedHelpers)
	assert.Contains(t, res.Code, "function __hql_get(")
	// The helper definition must precede the function that calls it.
	assert.Less(t, strings.Index(res.Code, "function __hql_get("), strings.Index(res.Code, "function first("))
}

func TestCompileOmitsPreludeWhenNoHelperIsUsed(t *testing.T) {
	d := New("", "", nil, nil)
	res, err := d.Compile(context.Background(), `(fn add [a b] (+ a b))`, Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	assert.Empty(t, res.UsedHelpers)
	assert.NotContains(t, res.Code, "__hql_")
}

func TestCompileIsDeterministicAcrossRepeatedCallsWithHelpersUsed(t *testing.T) {
	d := New("", "", nil, nil)
	src := `(fn first [coll] (get coll 0))`
	res1, err := d.Compile(context.Background(), src, Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	res2, err := d.Compile(context.Background(), src, Options{CurrentFile: "a.hql"})
	require.NoError(t, err)
	assert.Equal(t, res1.Code, res2.Code)
}
