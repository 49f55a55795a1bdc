package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// lowerStatement lowers one form at statement position: a body element of
// a function, class method, if/while/for branch, or the top-level program
// (via lowerTopLevelOrStatement, which checks import/export first).
func lowerStatement(n ast.Node) (ir.Node, error) {
	list, ok := n.(*ast.List)
	if !ok {
		expr, err := lowerExpr(n)
		if err != nil {
			return nil, err
		}
		return &ir.ExpressionStatement{Expression: expr, Meta: n.Pos()}, nil
	}

	switch list.Head() {
	case "let", "var", "const":
		return lowerDeclarationStatement(list)
	case "fn", "defn":
		return lowerFnDeclaration(list)
	case "class":
		return lowerClass(list)
	case "enum":
		return lowerEnum(list)
	case "if":
		return lowerIfStatement(list)
	case "when":
		return lowerWhenStatement(list)
	case "unless":
		return lowerUnlessStatement(list)
	case "while":
		return lowerWhile(list)
	case "for":
		return lowerFor(list)
	case "return":
		return lowerReturn(list)
	case "throw":
		return lowerThrow(list)
	}

	expr, err := lowerExpr(n)
	if err != nil {
		return nil, err
	}
	return &ir.ExpressionStatement{Expression: expr, Meta: list.Meta}, nil
}

// lowerDeclarationStatement handles both binding shapes the source
// language's `let`/`var`/`const` admit: the bare `(kind name value)`
// single-variable declaration (mirroring the macro-time interpreter's
// `var`), and the Clojure-style `(kind [n1 v1 n2 v2 …] body…)` binding
// vector with a body (mirroring the interpreter's `let`). The latter has
// no direct JS statement shape — JS `let` cannot carry a body whose last
// expression becomes the declaration's value — so it lowers to an
// immediately-invoked arrow wrapped in an ExpressionStatement.
func lowerDeclarationStatement(list *ast.List) (ir.Node, error) {
	kind := list.Head()
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" requires a binding", list.Meta)
	}
	if bindings, ok := list.Elements[1].(*ast.List); ok && bindings.Head() == "vector" {
		iife, err := letIIFE(kind, bindings, list.Elements[2:], list.Meta)
		if err != nil {
			return nil, err
		}
		return &ir.ExpressionStatement{Expression: iife, Meta: list.Meta}, nil
	}
	return lowerSimpleDeclaration(kind, list)
}

func lowerSimpleDeclaration(kind string, list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 3 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" requires (kind name value)", list.Meta)
	}
	name, ok := list.Elements[1].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" binding name must be a symbol", list.Elements[1].Pos())
	}
	value, err := lowerExpr(list.Elements[2])
	if err != nil {
		return nil, err
	}
	return &ir.VariableDeclaration{
		Kind: kind,
		Declarations: []ir.VariableDeclarator{
			{ID: &ir.Identifier{Name: name.Name, Meta: name.Meta}, Init: value},
		},
		Meta: list.Meta,
	}, nil
}

// letIIFE lowers a `(kind [bindings…] body…)` form into
// `(() => { kind n1 = v1, …; <body>; })()`, used both at statement
// position (value discarded) and, by lowerDeclarationExpr, at expression
// position (value is the IIFE's return).
func letIIFE(kind string, bindings *ast.List, body []ast.Node, meta ast.Position) (ir.Node, error) {
	pairs := bindings.Tail()
	if len(pairs)%2 != 0 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" binding vector must have an even number of forms", bindings.Meta)
	}

	decls := make([]ir.VariableDeclarator, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(*ast.Symbol)
		if !ok {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" binding name must be a symbol", pairs[i].Pos())
		}
		v, err := lowerExpr(pairs[i+1])
		if err != nil {
			return nil, err
		}
		decls = append(decls, ir.VariableDeclarator{ID: &ir.Identifier{Name: name.Name, Meta: name.Meta}, Init: v})
	}

	arrowBody := []ir.Node{&ir.VariableDeclaration{Kind: kind, Declarations: decls, Meta: bindings.Meta}}
	rest, err := lowerFunctionBody(body)
	if err != nil {
		return nil, err
	}
	arrowBody = append(arrowBody, rest...)

	arrow := &ir.ArrowFunctionExpression{Body: arrowBody, Meta: meta}
	return &ir.CallExpression{Callee: arrow, Meta: meta}, nil
}

// lowerFunctionBody lowers a function/method/arrow body: every form but
// the last is lowered as an ordinary statement; the last becomes an
// implicit return of its value, unless it is a form with no value of its
// own (spec's control forms other than `if`/`cond`, which are the only
// ones the builder treats as expression-capable).
func lowerFunctionBody(body []ast.Node) ([]ir.Node, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var out []ir.Node
	for _, f := range body[:len(body)-1] {
		if ast.IsForm(f, "do") {
			spliced, err := lowerFunctionBody(f.(*ast.List).Tail())
			if err != nil {
				return nil, err
			}
			out = append(out, spliced...)
			continue
		}
		stmt, err := lowerStatement(f)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}

	last := body[len(body)-1]
	if ast.IsForm(last, "do") {
		tail := last.(*ast.List).Tail()
		if len(tail) == 0 {
			return out, nil
		}
		spliced, err := lowerFunctionBody(tail)
		if err != nil {
			return nil, err
		}
		return append(out, spliced...), nil
	}
	if isStatementOnlyForm(last) {
		stmt, err := lowerStatement(last)
		if err != nil {
			return nil, err
		}
		return append(out, stmt), nil
	}
	value, err := lowerExpr(last)
	if err != nil {
		return nil, err
	}
	return append(out, &ir.ReturnStatement{Argument: value, Meta: last.Pos()}), nil
}

// isStatementOnlyForm reports whether n has no JS expression shape and so,
// in tail-value position, executes for effect with the enclosing function
// implicitly returning undefined.
func isStatementOnlyForm(n ast.Node) bool {
	list, ok := n.(*ast.List)
	if !ok {
		return false
	}
	switch list.Head() {
	case "when", "unless", "while", "for", "return", "class", "enum":
		return true
	case "let", "var", "const":
		return true
	}
	return false
}

func lowerIfStatement(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 3 || len(list.Elements) > 4 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "if requires (if test then else?)", list.Meta)
	}
	test, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	cons, err := lowerBranch(list.Elements[2])
	if err != nil {
		return nil, err
	}
	var alt []ir.Node
	if len(list.Elements) == 4 {
		alt, err = lowerBranch(list.Elements[3])
		if err != nil {
			return nil, err
		}
	}
	return &ir.IfStatement{Test: test, Consequent: cons, Alternate: alt, Meta: list.Meta}, nil
}

// lowerBranch lowers a single if/when/unless branch into a statement list,
// splicing a `do` block in place rather than wrapping it.
func lowerBranch(n ast.Node) ([]ir.Node, error) {
	if ast.IsForm(n, "do") {
		return lowerBody(n.(*ast.List).Tail())
	}
	stmt, err := lowerStatement(n)
	if err != nil {
		return nil, err
	}
	return []ir.Node{stmt}, nil
}

func lowerWhenStatement(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "when requires a test", list.Meta)
	}
	test, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	body, err := lowerBody(list.Elements[2:])
	if err != nil {
		return nil, err
	}
	return &ir.IfStatement{Test: test, Consequent: body, Meta: list.Meta}, nil
}

func lowerUnlessStatement(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "unless requires a test", list.Meta)
	}
	test, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	body, err := lowerBody(list.Elements[2:])
	if err != nil {
		return nil, err
	}
	negated := &ir.UnaryExpression{Operator: "!", Argument: test, Meta: list.Elements[1].Pos()}
	return &ir.IfStatement{Test: negated, Consequent: body, Meta: list.Meta}, nil
}

func lowerWhile(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "while requires a test", list.Meta)
	}
	test, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	body, err := lowerBody(list.Elements[2:])
	if err != nil {
		return nil, err
	}
	return &ir.WhileStatement{Test: test, Body: body, Meta: list.Meta}, nil
}

// lowerFor lowers `(for [name coll] body…)`. Iterable is passed through
// the `__hql_toSequence` runtime helper so ranges, S-expression lists, and
// plain arrays all iterate uniformly (spec §4.9).
func lowerFor(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "for requires a [name coll] binding", list.Meta)
	}
	binding, ok := list.Elements[1].(*ast.List)
	if !ok || binding.Head() != "vector" || len(binding.Tail()) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "for requires a [name coll] binding", list.Elements[1].Pos())
	}
	name, ok := binding.Tail()[0].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "for binding name must be a symbol", binding.Tail()[0].Pos())
	}
	collExpr, err := lowerExpr(binding.Tail()[1])
	if err != nil {
		return nil, err
	}
	iterable := &ir.CallExpression{
		Callee:    &ir.Identifier{Name: "__hql_toSequence", Meta: binding.Meta},
		Arguments: []ir.Node{collExpr},
		Meta:      binding.Meta,
	}
	body, err := lowerBody(list.Elements[2:])
	if err != nil {
		return nil, err
	}
	return &ir.ForOfStatement{Variable: name.Name, Iterable: iterable, Body: body, Meta: list.Meta}, nil
}

func lowerReturn(list *ast.List) (ir.Node, error) {
	if len(list.Elements) > 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "return takes at most one argument", list.Meta)
	}
	if len(list.Elements) == 1 {
		return &ir.ReturnStatement{Meta: list.Meta}, nil
	}
	arg, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	return &ir.ReturnStatement{Argument: arg, Meta: list.Meta}, nil
}

func lowerThrow(list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "throw requires exactly one argument", list.Meta)
	}
	arg, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	return &ir.ThrowStatement{Argument: arg, Meta: list.Meta}, nil
}
