package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/reader"
)

func transformSrc(t *testing.T, src string) ast.Node {
	t.Helper()
	forms, err := reader.Read([]byte(src), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	out, err := Transform(forms[0])
	require.NoError(t, err)
	return out
}

func TestArrowImplicitParams(t *testing.T) {
	out := transformSrc(t, "(=> (+ $0 $1))")
	list := out.(*ast.List)
	assert.Equal(t, "fn", list.Head())
	assert.Equal(t, "__anon", list.Elements[1].(*ast.Symbol).Name)

	params := list.Elements[2].(*ast.List)
	assert.Equal(t, "vector", params.Head())
	require.Len(t, params.Tail(), 2)
	assert.Equal(t, "$0", params.Tail()[0].(*ast.Symbol).Name)
	assert.Equal(t, "$1", params.Tail()[1].(*ast.Symbol).Name)
}

func TestArrowNoImplicitParams(t *testing.T) {
	out := transformSrc(t, "(=> 42)")
	list := out.(*ast.List)
	params := list.Elements[2].(*ast.List)
	assert.Empty(t, params.Tail())
}

func TestArrowExplicitParams(t *testing.T) {
	out := transformSrc(t, "(=> [x y] (+ x y))")
	list := out.(*ast.List)
	params := list.Elements[2].(*ast.List)
	require.Len(t, params.Tail(), 2)
	assert.Equal(t, "x", params.Tail()[0].(*ast.Symbol).Name)
}

func TestDotMethodCall(t *testing.T) {
	out := transformSrc(t, `(.push arr 1)`)
	list := out.(*ast.List)
	assert.Equal(t, "js-call", list.Head())
	assert.Equal(t, "arr", list.Elements[1].(*ast.Symbol).Name)
	assert.Equal(t, "push", list.Elements[2].(*ast.Literal).Value)
	assert.Equal(t, int64(1), list.Elements[3].(*ast.Literal).Value)
}

func TestDotMethodCallWithoutArgsIsInterop(t *testing.T) {
	out := transformSrc(t, `(.length arr)`)
	list := out.(*ast.List)
	assert.Equal(t, "js-interop", list.Head())
	assert.Equal(t, "arr", list.Elements[1].(*ast.Symbol).Name)
	assert.Equal(t, "length", list.Elements[2].(*ast.Literal).Value)
}

func TestNestedPropertyAccess(t *testing.T) {
	out := transformSrc(t, `(obj .prop)`)
	list := out.(*ast.List)
	assert.Equal(t, "js-get", list.Head())
	assert.Equal(t, "obj", list.Elements[1].(*ast.Symbol).Name)
	assert.Equal(t, "prop", list.Elements[2].(*ast.Literal).Value)
}

func TestRestMarkerValid(t *testing.T) {
	_ = transformSrc(t, "(fn f [a & rest] rest)")
}

func TestRestMarkerDuplicateRejected(t *testing.T) {
	forms, err := reader.Read([]byte("(fn f [a & b & c] a)"), "test.hql")
	require.NoError(t, err)
	_, err = Transform(forms[0])
	require.Error(t, err)
}

func TestRestMarkerTrailingRejected(t *testing.T) {
	forms, err := reader.Read([]byte("(fn f [a &] a)"), "test.hql")
	require.NoError(t, err)
	_, err = Transform(forms[0])
	require.Error(t, err)
}

func TestMapLiteralPassesThroughUnchanged(t *testing.T) {
	out := transformSrc(t, `{:a 1 :b 2}`)
	list := out.(*ast.List)
	assert.Equal(t, "hash-map", list.Head())
}

func TestNestedArrowInsideCall(t *testing.T) {
	out := transformSrc(t, `(map (=> (* $0 2)) xs)`)
	list := out.(*ast.List)
	require.Equal(t, "map", list.Head())
	lambda := list.Elements[1].(*ast.List)
	assert.Equal(t, "fn", lambda.Head())
}
