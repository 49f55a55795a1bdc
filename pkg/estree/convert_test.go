package estree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	"github.com/hlvm-dev/hql/pkg/ir"
)

func pos(line, col int) ast.Position {
	return ast.Position{FilePath: "m.hql", Line: line, Column: col}
}

func program(body ...ir.Node) *ir.Program {
	return &ir.Program{Body: body, Meta: pos(1, 1)}
}

func TestConvertIdentifierHasTokenLengthLoc(t *testing.T) {
	c := NewConverter()
	id := c.convertExpr(&ir.Identifier{Name: "abc", Meta: pos(3, 5)}).(*Identifier)
	assert.Equal(t, 5, id.Loc().Start.Column)
	assert.Equal(t, 8, id.Loc().End.Column) // 5 + len("abc")
}

func TestConvertPositiveIntLiteral(t *testing.T) {
	c := NewConverter()
	lit := c.convertExpr(&ir.Literal{Kind: ir.LitInt, Value: int64(42), Meta: pos(1, 1)}).(*Literal)
	assert.Equal(t, float64(42), lit.Value)
	assert.Equal(t, "42", lit.Raw)
}

func TestConvertNegativeIntLiteralWrapsUnary(t *testing.T) {
	c := NewConverter()
	n := c.convertExpr(&ir.Literal{Kind: ir.LitInt, Value: int64(-7), Meta: pos(1, 1)})
	u, ok := n.(*UnaryExpression)
	require.True(t, ok)
	assert.Equal(t, "-", u.Operator)
	lit := u.Argument.(*Literal)
	assert.Equal(t, float64(7), lit.Value)
	assert.Equal(t, "7", lit.Raw)
}

func TestConvertNegativeFloatLiteralWrapsUnary(t *testing.T) {
	c := NewConverter()
	n := c.convertExpr(&ir.Literal{Kind: ir.LitFloat, Value: -1.5, Meta: pos(1, 1)})
	u, ok := n.(*UnaryExpression)
	require.True(t, ok)
	lit := u.Argument.(*Literal)
	assert.Equal(t, 1.5, lit.Value)
}

func TestConvertStringLiteralQuoted(t *testing.T) {
	c := NewConverter()
	lit := c.convertExpr(&ir.Literal{Kind: ir.LitString, Value: "hi", Meta: pos(1, 1)}).(*Literal)
	assert.Equal(t, `"hi"`, lit.Raw)
}

func TestRuntimeHelperIdentifierIsRecordedAsUsed(t *testing.T) {
	c := NewConverter()
	c.convertExpr(&ir.CallExpression{
		Callee: &ir.Identifier{Name: "__hql_range", Meta: pos(1, 1)},
		Meta:   pos(1, 1),
	})
	assert.Equal(t, []string{"__hql_range"}, c.UsedHelpers())
}

func TestForOfWrapsIterableInToSequenceHelper(t *testing.T) {
	prog := program(&ir.ForOfStatement{
		Variable: "x",
		Iterable: &ir.Identifier{Name: "xs", Meta: pos(1, 1)},
		Body:     []ir.Node{&ir.ExpressionStatement{Expression: &ir.Identifier{Name: "x", Meta: pos(2, 1)}, Meta: pos(2, 1)}},
		Meta:     pos(1, 1),
	})
	out, helpers := Convert(prog)
	forOf := out.Body[0].(*ForOfStatement)
	call := forOf.Right.(*CallExpression)
	assert.Equal(t, "__hql_toSequence", call.Callee.(*Identifier).Name)
	assert.Contains(t, helpers, "__hql_toSequence")
}

func TestInteropIIFEExpandsToConditionalCall(t *testing.T) {
	prog := program(&ir.ExpressionStatement{
		Expression: &ir.InteropIIFE{
			Object:   &ir.Identifier{Name: "obj", Meta: pos(1, 1)},
			Property: "prop",
			Meta:     pos(1, 1),
		},
		Meta: pos(1, 1),
	})
	out, _ := Convert(prog)
	stmt := out.Body[0].(*ExpressionStatement)
	outer := stmt.Expression.(*CallExpression)
	arrow := outer.Callee.(*ArrowFunctionExpression)
	require.False(t, arrow.Expression)
	block := arrow.Body.(*BlockStatement)
	require.Len(t, block.Body, 3)

	objDecl := block.Body[0].(*VariableDeclaration)
	assert.Equal(t, "const", objDecl.Kind)
	fnDecl := block.Body[1].(*VariableDeclaration)
	member := fnDecl.Declarations[0].Init.(*MemberExpression)
	assert.Equal(t, "prop", member.Property.(*Identifier).Name)

	ret := block.Body[2].(*ReturnStatement)
	cond := ret.Argument.(*ConditionalExpression)
	test := cond.Test.(*BinaryExpression)
	assert.Equal(t, "===", test.Operator)
	call := cond.Consequent.(*CallExpression)
	callMember := call.Callee.(*MemberExpression)
	assert.Equal(t, "call", callMember.Property.(*Identifier).Name)
}

func TestFnDeclarationWithJSONMapParamsDestructuresViaNullishCoalescing(t *testing.T) {
	fn := &ir.FnFunctionDeclaration{
		Name:              "greet",
		UsesJSONMapParams: true,
		JSONMapKeys:       []string{"name"},
		Body:              []ir.Node{&ir.ReturnStatement{Argument: &ir.Identifier{Name: "name", Meta: pos(2, 1)}, Meta: pos(2, 1)}},
		Meta:              pos(1, 1),
	}
	out, _ := Convert(program(fn))
	decl := out.Body[0].(*FunctionDeclaration)
	require.Len(t, decl.Params, 1)
	param := decl.Params[0].(*AssignmentPattern)
	assert.Equal(t, "__hql_params", param.Left.(*Identifier).Name)

	prologue := decl.Body.Body[0].(*VariableDeclaration)
	assert.Equal(t, "name", prologue.Declarations[0].ID.(*Identifier).Name)
	fallback := prologue.Declarations[0].Init.(*LogicalExpression)
	assert.Equal(t, "??", fallback.Operator)
}

func TestFnDeclarationWithJSONMapParamsEmitsEachKeysOwnDefault(t *testing.T) {
	fn := &ir.FnFunctionDeclaration{
		Name:              "multiply",
		UsesJSONMapParams: true,
		JSONMapKeys:       []string{"x", "y"},
		JSONMapDefaults: []ir.Node{
			&ir.Literal{Kind: ir.LitInt, Value: int64(10), Meta: pos(1, 1)},
			&ir.Literal{Kind: ir.LitInt, Value: int64(20), Meta: pos(1, 1)},
		},
		Body: []ir.Node{&ir.ReturnStatement{
			Argument: &ir.BinaryExpression{Operator: "*", Left: &ir.Identifier{Name: "x", Meta: pos(2, 1)}, Right: &ir.Identifier{Name: "y", Meta: pos(2, 1)}, Meta: pos(2, 1)},
			Meta:     pos(2, 1),
		}},
		Meta: pos(1, 1),
	}
	out, _ := Convert(program(fn))
	decl := out.Body[0].(*FunctionDeclaration)

	xDecl := decl.Body.Body[0].(*VariableDeclaration)
	xFallback := xDecl.Declarations[0].Init.(*LogicalExpression)
	assert.Equal(t, float64(10), xFallback.Right.(*Literal).Value)

	yDecl := decl.Body.Body[1].(*VariableDeclaration)
	yFallback := yDecl.Declarations[0].Init.(*LogicalExpression)
	assert.Equal(t, float64(20), yFallback.Right.(*Literal).Value)
}

func TestClassDeclarationConstructorIsTaggedMethodKind(t *testing.T) {
	cls := &ir.ClassDeclaration{
		Name: "Box",
		Methods: []ir.ClassMethod{
			{Name: "constructor", Params: []ir.Node{&ir.Identifier{Name: "v", Meta: pos(1, 1)}}},
			{Name: "open", Static: false},
			{Name: "create", Static: true},
		},
		Meta: pos(1, 1),
	}
	out, _ := Convert(program(cls))
	decl := out.Body[0].(*ClassDeclaration)
	require.Len(t, decl.Body.Body, 3)
	ctor := decl.Body.Body[0].(*MethodDefinitionNode)
	assert.Equal(t, MethodConstructor, ctor.Kind)
	open := decl.Body.Body[1].(*MethodDefinitionNode)
	assert.Equal(t, MethodNormal, open.Kind)
	assert.False(t, open.Static)
	create := decl.Body.Body[2].(*MethodDefinitionNode)
	assert.True(t, create.Static)
}

func TestImportDeclarationSpecifierKinds(t *testing.T) {
	imp := &ir.ImportDeclaration{
		Specifiers: []ir.ImportSpecifier{
			{Imported: "foo", Local: "foo"},
			{Local: "bar", Default: true},
			{Local: "ns", Namespace: true},
		},
		Source: "./util.hql",
		Meta:   pos(1, 1),
	}
	out, _ := Convert(program(imp))
	decl := out.Body[0].(*ImportDeclaration)
	require.Len(t, decl.Specifiers, 3)
	assert.Equal(t, "named", decl.Specifiers[0].Kind)
	assert.Equal(t, "default", decl.Specifiers[1].Kind)
	assert.Equal(t, "namespace", decl.Specifiers[2].Kind)
	assert.Equal(t, `"./util.hql"`, decl.Source.Raw)
}

func TestExportNamedExprLowersToConstDeclaration(t *testing.T) {
	exp := &ir.ExportNamedExpr{Name: "answer", Value: &ir.Literal{Kind: ir.LitInt, Value: int64(42), Meta: pos(1, 1)}, Meta: pos(1, 1)}
	out, _ := Convert(program(exp))
	decl := out.Body[0].(*ExportNamedDeclaration)
	inner := decl.Declaration.(*VariableDeclaration)
	assert.Equal(t, "const", inner.Kind)
	assert.Equal(t, "answer", inner.Declarations[0].ID.(*Identifier).Name)
}

func TestExportNamedDeclarationListsSpecifiers(t *testing.T) {
	exp := &ir.ExportNamedDeclaration{Names: []string{"a", "b"}, Meta: pos(1, 1)}
	out, _ := Convert(program(exp))
	decl := out.Body[0].(*ExportNamedDeclaration)
	require.Len(t, decl.Specifiers, 2)
	assert.Equal(t, "a", decl.Specifiers[0].Local.Name)
	assert.Equal(t, "b", decl.Specifiers[1].Local.Name)
}

func TestObjectExpressionUsesIdentifierKeyWhenValidName(t *testing.T) {
	obj := &ir.ObjectExpression{
		Properties: []ir.ObjectProperty{
			{Key: "validName", Value: &ir.Literal{Kind: ir.LitInt, Value: int64(1), Meta: pos(1, 1)}},
			{Key: "not-valid", Value: &ir.Literal{Kind: ir.LitInt, Value: int64(2), Meta: pos(1, 1)}},
		},
		Meta: pos(1, 1),
	}
	c := NewConverter()
	out := c.convertExpr(obj).(*ObjectExpression)
	_, isIdent := out.Properties[0].Key.(*Identifier)
	assert.True(t, isIdent)
	_, isLit := out.Properties[1].Key.(*Literal)
	assert.True(t, isLit)
}
