package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/reader"
)

func evalSrc(t *testing.T, src string, scope *Scope) Value {
	t.Helper()
	forms, err := reader.Read([]byte(src), "test.hql")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	v, err := Eval(forms[0], scope)
	require.NoError(t, err)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	scope := NewGlobalScope()
	v := evalSrc(t, "(+ 1 2 3)", scope)
	assert.Equal(t, float64(6), v)
}

func TestEvalIfBranches(t *testing.T) {
	scope := NewGlobalScope()
	assert.Equal(t, float64(1), evalSrc(t, "(if true 1 2)", scope))
	assert.Equal(t, float64(2), evalSrc(t, "(if false 1 2)", scope))
}

func TestEvalCond(t *testing.T) {
	scope := NewGlobalScope()
	v := evalSrc(t, `(cond [false 1] [true 2] [:else 3])`, scope)
	assert.Equal(t, float64(2), v)
}

func TestEvalLetScoping(t *testing.T) {
	scope := NewGlobalScope()
	v := evalSrc(t, "(let [x 1 y 2] (+ x y))", scope)
	assert.Equal(t, float64(3), v)
	_, ok := scope.Get("x")
	assert.False(t, ok, "let bindings must not leak into the enclosing scope")
}

func TestEvalVarDefinesInCurrentScope(t *testing.T) {
	scope := NewGlobalScope()
	evalSrc(t, "(var x 42)", scope)
	v, ok := scope.Get("x")
	require.True(t, ok)
	assert.Equal(t, float64(42), v)
}

func TestEvalQuoteReturnsUnevaluated(t *testing.T) {
	scope := NewGlobalScope()
	v := evalSrc(t, "(quote (+ 1 2))", scope)
	list, ok := v.(*ast.List)
	require.True(t, ok)
	assert.Equal(t, "+", list.Head())
}

func TestEvalFnApplication(t *testing.T) {
	scope := NewGlobalScope()
	evalSrc(t, "(var square (fn [x] (* x x)))", scope)
	v := evalSrc(t, "(square 5)", scope)
	assert.Equal(t, float64(25), v)
}

func TestEvalFnRestParameter(t *testing.T) {
	scope := NewGlobalScope()
	evalSrc(t, "(var count (fn [a & rest] (%length rest)))", scope)
	v := evalSrc(t, "(count 1 2 3 4)", scope)
	assert.Equal(t, float64(3), v)
}

func TestQuasiquoteUnquote(t *testing.T) {
	scope := NewGlobalScope()
	evalSrc(t, "(var x 10)", scope)
	v := evalSrc(t, "`(a ~x b)", scope)
	list := v.(*ast.List)
	require.Len(t, list.Elements, 3)
	assert.Equal(t, "a", list.Elements[0].(*ast.Symbol).Name)
	assert.Equal(t, int64(10), list.Elements[1].(*ast.Literal).Value)
	assert.Equal(t, "b", list.Elements[2].(*ast.Symbol).Name)
}

func TestQuasiquoteUnquoteSplicing(t *testing.T) {
	scope := NewGlobalScope()
	evalSrc(t, "(var xs (quote (1 2 3)))", scope)
	v := evalSrc(t, "`(a ~@xs b)", scope)
	list := v.(*ast.List)
	require.Len(t, list.Elements, 5)
	assert.Equal(t, "a", list.Elements[0].(*ast.Symbol).Name)
	assert.Equal(t, int64(1), list.Elements[1].(*ast.Literal).Value)
	assert.Equal(t, int64(3), list.Elements[3].(*ast.Literal).Value)
	assert.Equal(t, "b", list.Elements[4].(*ast.Symbol).Name)
}

func TestQuasiquoteGensymConsistentWithinTemplate(t *testing.T) {
	scope := NewGlobalScope()
	v := evalSrc(t, "`(tmp# tmp#)", scope)
	list := v.(*ast.List)
	require.Len(t, list.Elements, 2)
	a := list.Elements[0].(*ast.Symbol).Name
	b := list.Elements[1].(*ast.Symbol).Name
	assert.Equal(t, a, b)
}

func TestQuasiquoteGensymFreshAcrossTemplates(t *testing.T) {
	scope := NewGlobalScope()
	v1 := evalSrc(t, "`(tmp#)", scope)
	v2 := evalSrc(t, "`(tmp#)", scope)
	n1 := v1.(*ast.List).Elements[0].(*ast.Symbol).Name
	n2 := v2.(*ast.List).Elements[0].(*ast.Symbol).Name
	assert.NotEqual(t, n1, n2)
}

func TestIntrospectionBuiltins(t *testing.T) {
	scope := NewGlobalScope()
	assert.Equal(t, true, evalSrc(t, "(list? (quote (1 2)))", scope))
	assert.Equal(t, false, evalSrc(t, "(list? 1)", scope))
	assert.Equal(t, true, evalSrc(t, "(symbol? (quote x))", scope))
	assert.Equal(t, "x", evalSrc(t, "(name (quote x))", scope))
}

func TestSExpAwareSequenceBuiltins(t *testing.T) {
	scope := NewGlobalScope()
	assert.Equal(t, float64(3), evalSrc(t, "(%length (quote (1 2 3)))", scope))
	assert.Equal(t, false, evalSrc(t, "(%empty? (quote (1)))", scope))
	assert.Equal(t, true, evalSrc(t, "(%empty? (quote ()))", scope))
}
