package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

func readOne(t *testing.T, src string) ast.Node {
	t.Helper()
	forms, err := Read([]byte(src), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

func TestReadAtoms(t *testing.T) {
	sym := readOne(t, "foo-bar.baz")
	assert.Equal(t, "foo-bar.baz", sym.(*ast.Symbol).Name)

	i := readOne(t, "42")
	assert.Equal(t, ast.LitInt, i.(*ast.Literal).Kind)
	assert.Equal(t, int64(42), i.(*ast.Literal).Value)

	neg := readOne(t, "-17")
	assert.Equal(t, int64(-17), neg.(*ast.Literal).Value)

	f := readOne(t, "3.14")
	assert.Equal(t, ast.LitFloat, f.(*ast.Literal).Kind)
	assert.InDelta(t, 3.14, f.(*ast.Literal).Value.(float64), 1e-9)

	str := readOne(t, `"hello\nworld"`)
	assert.Equal(t, "hello\nworld", str.(*ast.Literal).Value)

	assert.Equal(t, true, readOne(t, "true").(*ast.Literal).Value)
	assert.Equal(t, false, readOne(t, "false").(*ast.Literal).Value)
	assert.Nil(t, readOne(t, "null").(*ast.Literal).Value)
}

func TestReadUnicodeEscape(t *testing.T) {
	str := readOne(t, `"\u{48}\u{49}"`)
	assert.Equal(t, "HI", str.(*ast.Literal).Value)
}

func TestReadList(t *testing.T) {
	n := readOne(t, "(+ 1 2)")
	list, ok := n.(*ast.List)
	require.True(t, ok)
	require.Len(t, list.Elements, 3)
	assert.Equal(t, "+", list.Head())
}

func TestReadVectorSugar(t *testing.T) {
	n := readOne(t, "[1 2 3]")
	list := n.(*ast.List)
	assert.Equal(t, "vector", list.Head())
	assert.Len(t, list.Tail(), 3)
}

func TestReadHashMapSugarUnquotedKeys(t *testing.T) {
	n := readOne(t, "{:a 1 :b 2}")
	list := n.(*ast.List)
	assert.Equal(t, "hash-map", list.Head())
	assert.Len(t, list.Tail(), 4)
}

func TestReadHashMapSugarJSONStyle(t *testing.T) {
	n := readOne(t, `{"a": 1, "b": 2}`)
	list := n.(*ast.List)
	assert.Equal(t, "hash-map", list.Head())
	assert.Len(t, list.Tail(), 4)
}

func TestReadQuoteShorthand(t *testing.T) {
	n := readOne(t, "'x")
	list := n.(*ast.List)
	assert.Equal(t, "quote", list.Head())
	assert.Equal(t, "x", list.Elements[1].(*ast.Symbol).Name)
}

func TestReadQuasiquoteUnquoteSplicing(t *testing.T) {
	n := readOne(t, "`(a ~b ~@c)")
	outer := n.(*ast.List)
	assert.Equal(t, "quasiquote", outer.Head())

	inner := outer.Elements[1].(*ast.List)
	require.Len(t, inner.Elements, 3)
	assert.Equal(t, "a", inner.Elements[0].(*ast.Symbol).Name)

	unq := inner.Elements[1].(*ast.List)
	assert.Equal(t, "unquote", unq.Head())

	splice := inner.Elements[2].(*ast.List)
	assert.Equal(t, "unquote-splicing", splice.Head())
}

func TestReadLineComment(t *testing.T) {
	forms, err := Read([]byte("; a comment\n(+ 1 2) ; trailing\n"), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
}

func TestReadBlockComment(t *testing.T) {
	forms, err := Read([]byte("(foo #| a block comment |# bar)"), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	list := forms[0].(*ast.List)
	require.Len(t, list.Elements, 2)
	assert.Equal(t, "foo", list.Head())
	assert.Equal(t, "bar", list.Elements[1].(*ast.Symbol).Name)
}

func TestReadNestedBlockComment(t *testing.T) {
	forms, err := Read([]byte("(foo #| outer #| inner |# still-outer |# bar)"), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	list := forms[0].(*ast.List)
	require.Len(t, list.Elements, 2)
	assert.Equal(t, "bar", list.Elements[1].(*ast.Symbol).Name)
}

func TestUnclosedBlockCommentError(t *testing.T) {
	_, err := Read([]byte("(foo #| unterminated"), "test.hql")
	require.Error(t, err)
	diag := asDiagnostic(t, err)
	assert.Equal(t, "UNCLOSED_COMMENT", diag.Code.Name())
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	forms, err := Read([]byte("1 2 3"), "test.hql")
	require.NoError(t, err)
	assert.Len(t, forms, 3)
}

func TestReadPositionsTrackLineAndColumn(t *testing.T) {
	forms, err := Read([]byte("(foo\n  bar)"), "test.hql")
	require.NoError(t, err)
	list := forms[0].(*ast.List)
	bar := list.Elements[1].(*ast.Symbol)
	assert.Equal(t, 2, bar.Pos().Line)
	assert.Equal(t, 3, bar.Pos().Column)
	assert.Equal(t, "test.hql", bar.Pos().FilePath)
}

func TestUnclosedListError(t *testing.T) {
	_, err := Read([]byte("(+ 1 2"), "test.hql")
	require.Error(t, err)
	diag := asDiagnostic(t, err)
	assert.Equal(t, "UNCLOSED_LIST", diag.Code.Name())
}

func TestUnclosedStringError(t *testing.T) {
	_, err := Read([]byte(`"unterminated`), "test.hql")
	require.Error(t, err)
	diag := asDiagnostic(t, err)
	assert.Equal(t, "UNCLOSED_STRING", diag.Code.Name())
}

func TestUnexpectedClosingDelimiter(t *testing.T) {
	_, err := Read([]byte(")"), "test.hql")
	require.Error(t, err)
	diag := asDiagnostic(t, err)
	assert.Equal(t, "UNEXPECTED_TOKEN", diag.Code.Name())
}

func TestMismatchedClosingDelimiter(t *testing.T) {
	_, err := Read([]byte("(foo]"), "test.hql")
	require.Error(t, err)
	diag := asDiagnostic(t, err)
	assert.Equal(t, "UNEXPECTED_TOKEN", diag.Code.Name())
}

func TestRoundTripPrint(t *testing.T) {
	src := "(defn add [a b] (+ a b))"
	forms, err := Read([]byte(src), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, src, ast.Print(forms[0]))
}

func asDiagnostic(t *testing.T, err error) *hqlerrors.Diagnostic {
	t.Helper()
	diag, ok := err.(*hqlerrors.Diagnostic)
	require.True(t, ok, "expected *errors.Diagnostic, got %T", err)
	return diag
}
