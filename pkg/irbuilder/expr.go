package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// lowerExpr lowers n at expression (value-producing) position.
func lowerExpr(n ast.Node) (ir.Node, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return lowerLiteral(v), nil
	case *ast.Symbol:
		return &ir.Identifier{Name: v.Name, Meta: v.Meta}, nil
	case *ast.List:
		return lowerListExpr(v)
	default:
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "cannot lower unknown node kind", ast.Position{})
	}
}

func lowerLiteral(l *ast.Literal) ir.Node {
	kind := ir.LitNull
	switch l.Kind {
	case ast.LitBool:
		kind = ir.LitBool
	case ast.LitInt:
		kind = ir.LitInt
	case ast.LitFloat:
		kind = ir.LitFloat
	case ast.LitString:
		kind = ir.LitString
	}
	return &ir.Literal{Kind: kind, Value: l.Value, Meta: l.Meta}
}

func lowerListExpr(list *ast.List) (ir.Node, error) {
	if len(list.Elements) == 0 {
		return &ir.ArrayExpression{Meta: list.Meta}, nil
	}

	switch list.Head() {
	case "vector":
		return lowerArray(list)
	case "hash-map":
		return lowerObject(list)
	case "quote":
		if len(list.Elements) != 2 {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "quote requires exactly one argument", list.Meta)
		}
		return lowerQuoted(list.Elements[1])
	case "if":
		return lowerIfExpr(list)
	case "cond":
		return lowerCondExpr(list)
	case "fn", "defn":
		return lowerFnDeclaration(list)
	case "let", "var", "const":
		return lowerDeclarationExpr(list)
	case "get":
		return lowerGet(list)
	case "js-get":
		return lowerJSGet(list)
	case "js-call":
		return lowerJSCall(list)
	case "js-interop":
		return lowerJSInterop(list)
	case "template-literal":
		return lowerTemplateLiteral(list)
	case "new":
		return lowerNew(list)
	case "throw":
		return lowerThrowExpr(list)
	case "not":
		return lowerNot(list)
	}

	if op, ok := binaryOperators[list.Head()]; ok {
		return lowerBinaryFold(op, list)
	}
	if op, ok := logicalOperators[list.Head()]; ok {
		return lowerLogicalFold(op, list)
	}

	return lowerCall(list)
}

// lowerDeclarationExpr lowers `let`/`var`/`const` used at expression
// position: only the binding-vector-with-body shape has a value (via the
// same IIFE lowerDeclarationStatement uses); the bare single-variable
// shape has no JS expression form.
func lowerDeclarationExpr(list *ast.List) (ir.Node, error) {
	kind := list.Head()
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" requires a binding", list.Meta)
	}
	if bindings, ok := list.Elements[1].(*ast.List); ok && bindings.Head() == "vector" {
		return letIIFE(kind, bindings, list.Elements[2:], list.Meta)
	}
	return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, kind+" declaration cannot be used as a value", list.Meta)
}

func lowerArray(list *ast.List) (ir.Node, error) {
	elements := make([]ir.Node, 0, len(list.Tail()))
	for _, e := range list.Tail() {
		le, err := lowerExpr(e)
		if err != nil {
			return nil, err
		}
		elements = append(elements, le)
	}
	return &ir.ArrayExpression{Elements: elements, Meta: list.Meta}, nil
}

func lowerObject(list *ast.List) (ir.Node, error) {
	pairs := list.Tail()
	if len(pairs)%2 != 0 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "hash-map literal must have an even number of forms", list.Meta)
	}
	props := make([]ir.ObjectProperty, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := keyName(pairs[i])
		if !ok {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "hash-map key must be a keyword or string", pairs[i].Pos())
		}
		value, err := lowerExpr(pairs[i+1])
		if err != nil {
			return nil, err
		}
		props = append(props, ir.ObjectProperty{Key: key, Value: value})
	}
	return &ir.ObjectExpression{Properties: props, Meta: list.Meta}, nil
}

// lowerQuoted lowers a quoted SExp into its JS data-literal equivalent:
// lists become arrays, symbols become their name as a string, literals
// pass through. `unquote`/`unquote-splicing` do not appear here — they
// only have meaning inside a `quasiquote` template, which the macro
// expander has already fully resolved by this stage.
func lowerQuoted(n ast.Node) (ir.Node, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return lowerLiteral(v), nil
	case *ast.Symbol:
		return &ir.Literal{Kind: ir.LitString, Value: v.Name, Meta: v.Meta}, nil
	case *ast.List:
		elements := make([]ir.Node, 0, len(v.Elements))
		for _, e := range v.Elements {
			qe, err := lowerQuoted(e)
			if err != nil {
				return nil, err
			}
			elements = append(elements, qe)
		}
		return &ir.ArrayExpression{Elements: elements, Meta: v.Meta}, nil
	default:
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "cannot lower quoted node", ast.Position{})
	}
}

func lowerIfExpr(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 3 || len(list.Elements) > 4 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "if requires (if test then else?)", list.Meta)
	}
	test, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	cons, err := lowerExpr(list.Elements[2])
	if err != nil {
		return nil, err
	}
	alt := ir.Node(&ir.Identifier{Name: "undefined", Meta: list.Meta})
	if len(list.Elements) == 4 {
		alt, err = lowerExpr(list.Elements[3])
		if err != nil {
			return nil, err
		}
	}
	return &ir.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt, Meta: list.Meta}, nil
}

// lowerCondExpr lowers `(cond [test1 expr1] … [:else exprN])` into a
// right-nested ConditionalExpression (spec §4.7: "cond → nested
// conditional expression"), mirroring pkg/interp's evalCond clause walk.
func lowerCondExpr(list *ast.List) (ir.Node, error) {
	return lowerCondClauses(list.Tail(), list.Meta)
}

func lowerCondClauses(clauses []ast.Node, meta ast.Position) (ir.Node, error) {
	if len(clauses) == 0 {
		return &ir.Identifier{Name: "undefined", Meta: meta}, nil
	}
	pair, ok := clauses[0].(*ast.List)
	if !ok || pair.Head() != "vector" || len(pair.Tail()) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "cond clause must be [test expr]", clauses[0].Pos())
	}
	testForm, exprForm := pair.Tail()[0], pair.Tail()[1]
	value, err := lowerExpr(exprForm)
	if err != nil {
		return nil, err
	}
	if sym, ok := testForm.(*ast.Symbol); ok && sym.Name == ":else" {
		return value, nil
	}
	test, err := lowerExpr(testForm)
	if err != nil {
		return nil, err
	}
	rest, err := lowerCondClauses(clauses[1:], meta)
	if err != nil {
		return nil, err
	}
	return &ir.ConditionalExpression{Test: test, Consequent: value, Alternate: rest, Meta: pair.Meta}, nil
}

// lowerGet lowers `(get coll key [default])` into a call to the runtime
// helper `__hql_get` (spec §4.7).
func lowerGet(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 3 || len(list.Elements) > 4 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "get requires (get coll key [default])", list.Meta)
	}
	args := make([]ir.Node, 0, 3)
	for _, e := range list.Elements[1:] {
		a, err := lowerExpr(e)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return &ir.CallExpression{
		Callee:    &ir.Identifier{Name: "__hql_get", Meta: list.Meta},
		Arguments: args,
		Meta:      list.Meta,
	}, nil
}

func lowerJSGet(list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 3 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, `js-get requires (js-get obj "prop")`, list.Meta)
	}
	obj, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	prop, ok := stringLiteralValue(list.Elements[2])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "js-get property must be a string literal", list.Elements[2].Pos())
	}
	return &ir.MemberExpression{Object: obj, Property: prop, Meta: list.Meta}, nil
}

func lowerJSCall(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 3 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, `js-call requires (js-call obj "method" args...)`, list.Meta)
	}
	obj, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	method, ok := stringLiteralValue(list.Elements[2])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "js-call method must be a string literal", list.Elements[2].Pos())
	}
	args := make([]ir.Node, 0, len(list.Elements)-3)
	for _, a := range list.Elements[3:] {
		la, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, la)
	}
	callee := &ir.MemberExpression{Object: obj, Property: method, Meta: list.Meta}
	return &ir.CallExpression{Callee: callee, Arguments: args, Meta: list.Meta}, nil
}

// lowerJSInterop lowers `(js-interop obj "prop")` into an InteropIIFE,
// deferring the field-vs-call decision to C10 (spec §4.7/§4.9).
func lowerJSInterop(list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 3 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, `js-interop requires (js-interop obj "prop")`, list.Meta)
	}
	obj, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	prop, ok := stringLiteralValue(list.Elements[2])
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "js-interop property must be a string literal", list.Elements[2].Pos())
	}
	return &ir.InteropIIFE{Object: obj, Property: prop, Meta: list.Meta}, nil
}

// lowerTemplateLiteral lowers `(template-literal s0 e1 s1 e2 s2 …)`
// (spec §4.7): quasis and expressions alternate, one more quasi than
// expression.
func lowerTemplateLiteral(list *ast.List) (ir.Node, error) {
	tail := list.Tail()
	if len(tail) == 0 || len(tail)%2 != 1 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "template-literal requires an odd number of forms (quasi, expr, quasi, ...)", list.Meta)
	}
	quasis := make([]string, 0, len(tail)/2+1)
	exprs := make([]ir.Node, 0, len(tail)/2)
	for i, e := range tail {
		if i%2 == 0 {
			s, ok := stringLiteralValue(e)
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "template-literal quasi segment must be a string literal", e.Pos())
			}
			quasis = append(quasis, s)
			continue
		}
		ex, err := lowerExpr(e)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, ex)
	}
	return &ir.TemplateLiteral{Quasis: quasis, Expressions: exprs, Meta: list.Meta}, nil
}

// lowerNew lowers `(new Ctor args…)` into a class instantiation.
func lowerNew(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "new requires a constructor", list.Meta)
	}
	callee, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	args := make([]ir.Node, 0, len(list.Elements)-2)
	for _, a := range list.Elements[2:] {
		la, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, la)
	}
	return &ir.NewExpression{Callee: callee, Arguments: args, Meta: list.Meta}, nil
}

// lowerThrowExpr lowers `throw` used at expression position (e.g. an
// arrow body) through the `__hql_throw` runtime helper, since standard JS
// has no throw-expression grammar.
func lowerThrowExpr(list *ast.List) (ir.Node, error) {
	if len(list.Elements) != 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "throw requires exactly one argument", list.Meta)
	}
	arg, err := lowerExpr(list.Elements[1])
	if err != nil {
		return nil, err
	}
	return &ir.CallExpression{
		Callee:    &ir.Identifier{Name: "__hql_throw", Meta: list.Meta},
		Arguments: []ir.Node{arg},
		Meta:      list.Meta,
	}, nil
}

func lowerCall(list *ast.List) (ir.Node, error) {
	callee, err := lowerExpr(list.Elements[0])
	if err != nil {
		return nil, err
	}
	args := make([]ir.Node, 0, len(list.Elements)-1)
	for _, a := range list.Elements[1:] {
		la, err := lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, la)
	}
	return &ir.CallExpression{Callee: callee, Arguments: args, Meta: list.Meta}, nil
}

func stringLiteralValue(n ast.Node) (string, bool) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return "", false
	}
	return lit.Value.(string), true
}
