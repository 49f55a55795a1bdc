package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

func pos(line int) ast.Position {
	return ast.Position{FilePath: "test.hql", Line: line, Column: 1}
}

func ident(name string, line int) *ir.Identifier {
	return &ir.Identifier{Name: name, Meta: pos(line)}
}

func varDecl(kind, name string, line int) *ir.VariableDeclaration {
	return &ir.VariableDeclaration{
		Kind: kind,
		Declarations: []ir.VariableDeclarator{
			{ID: ident(name, line), Init: &ir.Literal{Kind: ir.LitInt, Value: int64(1), Meta: pos(line)}},
		},
		Meta: pos(line),
	}
}

func exprStmt(e ir.Node, line int) *ir.ExpressionStatement {
	return &ir.ExpressionStatement{Expression: e, Meta: pos(line)}
}

func onlyCode(t *testing.T, errs []*hqlerrors.Diagnostic, code hqlerrors.Code) {
	t.Helper()
	require.Len(t, errs, 1)
	assert.Equal(t, code, errs[0].Code)
}

func TestValidProgramHasNoErrors(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "x", 1),
		exprStmt(ident("x", 2), 2),
	}}
	assert.Empty(t, Validate(prog))
}

func TestDuplicateDeclarationInSameScope(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "x", 1),
		varDecl("const", "x", 2),
	}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestDuplicateFunctionAndClassNames(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		&ir.FnFunctionDeclaration{Name: "helper", Meta: pos(1)},
		&ir.ClassDeclaration{Name: "helper", Meta: pos(2)},
	}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestTemporalDeadZoneReferenceBeforeDeclaration(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		exprStmt(ident("x", 1), 1),
		varDecl("let", "x", 2),
	}}
	onlyCode(t, Validate(prog), hqlerrors.CodeTemporalDeadZone)
}

func TestReferenceAfterDeclarationIsFine(t *testing.T) {
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "x", 1),
		exprStmt(ident("x", 2), 2),
		exprStmt(ident("x", 3), 3),
	}}
	assert.Empty(t, Validate(prog))
}

func TestNestedFunctionClosingOverLaterDeclarationIsNotTDZ(t *testing.T) {
	// A function body is its own scope, so a reference to an
	// outer-scope name declared later in program order is not a TDZ
	// violation within the function's own scope (the "same scope" rule
	// in spec §4.8 never crosses a function boundary).
	fn := &ir.FnFunctionDeclaration{
		Name: "useLater",
		Body: []ir.Node{exprStmt(ident("later", 1), 1)},
		Meta: pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		fn,
		varDecl("let", "later", 2),
	}}
	assert.Empty(t, Validate(prog))
}

func TestDuplicateParameterNames(t *testing.T) {
	fn := &ir.FnFunctionDeclaration{
		Name:   "f",
		Params: []ir.Node{ident("a", 1), ident("a", 1)},
		Body:   []ir.Node{exprStmt(ident("a", 1), 0)},
		Meta:   pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{fn}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestParametersAreNeverTDZd(t *testing.T) {
	fn := &ir.FnFunctionDeclaration{
		Name:   "f",
		Params: []ir.Node{ident("a", 1)},
		Body: []ir.Node{
			exprStmt(ident("a", 1), 0),
			&ir.ReturnStatement{Argument: ident("a", 1), Meta: pos(2)},
		},
		Meta: pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{fn}}
	assert.Empty(t, Validate(prog))
}

func TestForLoopVariableVisibleInsideBodyOnly(t *testing.T) {
	forStmt := &ir.ForOfStatement{
		Variable: "item",
		Iterable: ident("xs", 1),
		Body:     []ir.Node{exprStmt(ident("item", 2), 0)},
		Meta:     pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "xs", 1),
		forStmt,
	}}
	assert.Empty(t, Validate(prog))
}

func TestIfBranchesAreIndependentBlockScopes(t *testing.T) {
	ifStmt := &ir.IfStatement{
		Test:       ident("cond", 1),
		Consequent: []ir.Node{varDecl("let", "y", 1)},
		Alternate:  []ir.Node{varDecl("let", "y", 1)}, // same name, different block scopes: fine
		Meta:       pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "cond", 1),
		ifStmt,
	}}
	assert.Empty(t, Validate(prog))
}

func TestClassDuplicateInstanceMethodNames(t *testing.T) {
	cls := &ir.ClassDeclaration{
		Name: "Box",
		Methods: []ir.ClassMethod{
			{Name: "open", Body: nil},
			{Name: "open", Body: nil},
		},
		Meta: pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{cls}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestClassStaticAndInstanceMemberMayShareAName(t *testing.T) {
	cls := &ir.ClassDeclaration{
		Name: "Box",
		Methods: []ir.ClassMethod{
			{Name: "create", Static: true, Body: nil},
			{Name: "create", Static: false, Body: nil},
		},
		Meta: pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{cls}}
	assert.Empty(t, Validate(prog))
}

func TestImportSpecifierCollidesWithLaterDeclaration(t *testing.T) {
	imp := &ir.ImportDeclaration{
		Specifiers: []ir.ImportSpecifier{{Imported: "helper", Local: "helper"}},
		Source:     "./util.hql",
		Meta:       pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		imp,
		varDecl("let", "helper", 2),
	}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestArrowFunctionArgumentIntroducesItsOwnScope(t *testing.T) {
	arrow := &ir.ArrowFunctionExpression{
		Params: []ir.Node{ident("x", 1)},
		Body:   []ir.Node{&ir.ReturnStatement{Argument: ident("x", 1), Meta: pos(1)}},
		Meta:   pos(1),
	}
	call := &ir.CallExpression{
		Callee:    ident("map", 1),
		Arguments: []ir.Node{arrow, ident("xs", 1)},
		Meta:      pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		varDecl("let", "xs", 1),
		exprStmt(call, 2),
	}}
	assert.Empty(t, Validate(prog))
}

func TestInlineFnArgumentStillCatchesDuplicateParams(t *testing.T) {
	fn := &ir.FnFunctionDeclaration{
		Params: []ir.Node{ident("x", 1), ident("x", 1)},
		Body:   []ir.Node{exprStmt(ident("x", 1), 0)},
		Meta:   pos(1),
	}
	call := &ir.CallExpression{
		Callee:    ident("map", 1),
		Arguments: []ir.Node{fn},
		Meta:      pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{exprStmt(call, 1)}}
	onlyCode(t, Validate(prog), hqlerrors.CodeDuplicateDecl)
}

func TestArrayPatternFlattensNestedBoundNames(t *testing.T) {
	decl := &ir.VariableDeclaration{
		Kind: "let",
		Declarations: []ir.VariableDeclarator{
			{
				ID: &ir.ArrayPattern{
					Elements: []ir.Node{ident("a", 1), &ir.RestElement{Argument: ident("rest", 1), Meta: pos(1)}},
					Meta:     pos(1),
				},
				Init: &ir.ArrayExpression{Meta: pos(1)},
			},
		},
		Meta: pos(1),
	}
	prog := &ir.Program{Body: []ir.Node{
		decl,
		exprStmt(ident("a", 2), 2),
		exprStmt(ident("rest", 3), 3),
	}}
	assert.Empty(t, Validate(prog))
}
