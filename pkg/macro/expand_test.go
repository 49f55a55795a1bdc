package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/env"
	"github.com/hlvm-dev/hql/pkg/reader"
)

func expandSrc(t *testing.T, src string) []ast.Node {
	t.Helper()
	forms, err := reader.Read([]byte(src), "test.hql")
	require.NoError(t, err)
	e := env.New().WithFilePath("test.hql")
	out, err := Expand(forms, e, DefaultOptions("test.hql"))
	require.NoError(t, err)
	return out
}

func TestMacroDefinitionFormsAreRemoved(t *testing.T) {
	out := expandSrc(t, `
		(macro double [x] (quasiquote (+ (unquote x) (unquote x))))
	`)
	assert.Empty(t, out)
}

func TestSimpleMacroExpansion(t *testing.T) {
	out := expandSrc(t, `
		(macro double [x] (quasiquote (+ (unquote x) (unquote x))))
		(double 5)
	`)
	require.Len(t, out, 1)
	list := out[0].(*ast.List)
	assert.Equal(t, "+", list.Head())
	assert.Equal(t, int64(5), list.Elements[1].(*ast.Literal).Value)
	assert.Equal(t, int64(5), list.Elements[2].(*ast.Literal).Value)
}

func TestAutoGensymIsStableAcrossRepeatedExpansionsOfTheSameSource(t *testing.T) {
	src := `
		(macro with-tmp [x] (quasiquote (let tmp# (unquote x))))
		(with-tmp 1)
	`
	first := expandSrc(t, src)
	second := expandSrc(t, src)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	name1 := first[0].(*ast.List).Elements[1].(*ast.Symbol).Name
	name2 := second[0].(*ast.List).Elements[1].(*ast.Symbol).Name
	assert.Equal(t, name1, name2, "a fresh Environment must produce the same gensym name regardless of prior expansions in this process")
}

func TestAutoGensymSharesOneNumberPerTemplateWithinOneExpansion(t *testing.T) {
	out := expandSrc(t, `
		(macro with-tmp [x] (quasiquote (let tmp# (unquote x) tmp#)))
		(with-tmp 1)
	`)
	require.Len(t, out, 1)
	list := out[0].(*ast.List)
	assert.Equal(t, list.Elements[1].(*ast.Symbol).Name, list.Elements[3].(*ast.Symbol).Name)
}

func TestMacroExpansionRecursesIntoResult(t *testing.T) {
	out := expandSrc(t, `
		(macro twice [x] (quasiquote (list (unquote x) (unquote x))))
		(macro wrap [x] (quasiquote (twice (unquote x))))
		(wrap 1)
	`)
	require.Len(t, out, 1)
	list := out[0].(*ast.List)
	assert.Equal(t, "list", list.Head())
}

func TestMacroCallSiteMetaPropagation(t *testing.T) {
	forms, err := reader.Read([]byte(`(macro id [x] x)`), "def.hql")
	require.NoError(t, err)
	e := env.New().WithFilePath("def.hql")
	require.NoError(t, RegisterTopLevelMacros(forms, e))
	e.Registry().MarkExported("def.hql", "id")

	callEnv := e.WithFilePath("call.hql")
	require.NoError(t, callEnv.Registry().ImportUserMacro("id", "def.hql", "call.hql"))

	callForms, err := reader.Read([]byte(`(id 42)`), "call.hql")
	require.NoError(t, err)
	out, err := Expand(callForms, callEnv, DefaultOptions("call.hql"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	lit := out[0].(*ast.Literal)
	assert.Equal(t, "call.hql", lit.Pos().FilePath)
}

func TestMacroRestParameterSplicing(t *testing.T) {
	out := expandSrc(t, `
		(macro listify [& items] (quasiquote (list (unquote-splicing items))))
		(listify 1 2 3)
	`)
	require.Len(t, out, 1)
	list := out[0].(*ast.List)
	assert.Equal(t, "list", list.Head())
	require.Len(t, list.Tail(), 3)
}

func TestNonAccessibleMacroIsLeftAsOrdinaryCall(t *testing.T) {
	e := env.New().WithFilePath("a.hql")
	forms1, err := reader.Read([]byte(`(macro secret [x] (unquote x))`), "a.hql")
	require.NoError(t, err)
	require.NoError(t, RegisterTopLevelMacros(forms1, e))

	bEnv := e.WithFilePath("b.hql")
	forms2, err := reader.Read([]byte(`(secret 1)`), "b.hql")
	require.NoError(t, err)
	out, err := Expand(forms2, bEnv, DefaultOptions("b.hql"))
	require.NoError(t, err)
	require.Len(t, out, 1)
	list := out[0].(*ast.List)
	assert.Equal(t, "secret", list.Head())
}
