package irbuilder

import (
	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
	"github.com/hlvm-dev/hql/pkg/ir"
)

// lowerClass lowers `(class Name (field x [default]) (fn m [self args]
// body) (static-fn s [args] body) …)` into a ClassDeclaration (spec
// §4.7). `self` is the method's receiver parameter and is dropped from
// the emitted parameter list, since it is bound implicitly via `this`.
// Field defaults are assigned in a synthesized or user-provided
// constructor's prologue.
func lowerClass(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "class requires a name", list.Meta)
	}
	name, ok := list.Elements[1].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "class name must be a symbol", list.Elements[1].Pos())
	}

	var fields []ir.ClassField
	var methods []ir.ClassMethod
	for _, m := range list.Elements[2:] {
		member, ok := m.(*ast.List)
		if !ok {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "class member must be a (field ...) or (fn ...) form", m.Pos())
		}
		switch member.Head() {
		case "field":
			field, err := lowerClassField(member)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		case "fn":
			method, err := lowerClassMethod(member, false)
			if err != nil {
				return nil, err
			}
			methods = append(methods, method)
		case "static-fn":
			method, err := lowerClassMethod(member, true)
			if err != nil {
				return nil, err
			}
			methods = append(methods, method)
		default:
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "unsupported class member form", member.Pos())
		}
	}

	methods = withFieldPrologue(fields, methods, list.Meta)
	return &ir.ClassDeclaration{Name: name.Name, Fields: fields, Methods: methods, Meta: list.Meta}, nil
}

func lowerClassField(member *ast.List) (ir.ClassField, error) {
	if len(member.Elements) < 2 {
		return ir.ClassField{}, hqlerrors.New(hqlerrors.CodeInvalidExpr, "field requires a name", member.Meta)
	}
	name, ok := member.Elements[1].(*ast.Symbol)
	if !ok {
		return ir.ClassField{}, hqlerrors.New(hqlerrors.CodeInvalidExpr, "field name must be a symbol", member.Elements[1].Pos())
	}
	var def ir.Node
	if len(member.Elements) >= 3 {
		d, err := lowerExpr(member.Elements[2])
		if err != nil {
			return ir.ClassField{}, err
		}
		def = d
	}
	return ir.ClassField{Name: name.Name, Default: def}, nil
}

func lowerClassMethod(member *ast.List, static bool) (ir.ClassMethod, error) {
	if len(member.Elements) < 3 {
		return ir.ClassMethod{}, hqlerrors.New(hqlerrors.CodeInvalidExpr, "fn requires a name and parameter vector", member.Meta)
	}
	name, ok := member.Elements[1].(*ast.Symbol)
	if !ok {
		return ir.ClassMethod{}, hqlerrors.New(hqlerrors.CodeInvalidExpr, "method name must be a symbol", member.Elements[1].Pos())
	}
	paramsList, ok := member.Elements[2].(*ast.List)
	if !ok || paramsList.Head() != "vector" {
		return ir.ClassMethod{}, hqlerrors.New(hqlerrors.CodeInvalidExpr, "method requires a parameter vector", member.Elements[2].Pos())
	}

	paramTail := paramsList.Tail()
	if !static && len(paramTail) > 0 {
		if sym, ok := paramTail[0].(*ast.Symbol); ok && sym.Name == "self" {
			paramTail = paramTail[1:]
		}
	}
	rebuilt := &ast.List{
		Elements: append([]ast.Node{ast.Sym("vector", paramsList.Meta)}, paramTail...),
		Meta:     paramsList.Meta,
	}
	params, _, _, _, err := lowerParams(rebuilt)
	if err != nil {
		return ir.ClassMethod{}, err
	}
	body, err := lowerFunctionBody(member.Elements[3:])
	if err != nil {
		return ir.ClassMethod{}, err
	}
	return ir.ClassMethod{Name: name.Name, Params: params, Body: body, Static: static}, nil
}

// withFieldPrologue assigns each field's default into the constructor's
// prologue, synthesizing a constructor if the class declared none.
func withFieldPrologue(fields []ir.ClassField, methods []ir.ClassMethod, meta ast.Position) []ir.ClassMethod {
	if len(fields) == 0 {
		return methods
	}
	prologue := make([]ir.Node, 0, len(fields))
	for _, f := range fields {
		value := f.Default
		if value == nil {
			value = &ir.Identifier{Name: "undefined", Meta: meta}
		}
		prologue = append(prologue, assignThis(f.Name, value, meta))
	}

	for i, m := range methods {
		if m.Name == "constructor" {
			methods[i].Body = append(append([]ir.Node{}, prologue...), m.Body...)
			return methods
		}
	}
	ctor := ir.ClassMethod{Name: "constructor", Body: prologue}
	return append([]ir.ClassMethod{ctor}, methods...)
}

func assignThis(prop string, value ir.Node, meta ast.Position) ir.Node {
	return &ir.ExpressionStatement{
		Expression: &ir.AssignmentExpression{
			Operator: "=",
			Left:     &ir.MemberExpression{Object: &ir.Identifier{Name: "this", Meta: meta}, Property: prop, Meta: meta},
			Right:    value,
			Meta:     meta,
		},
		Meta: meta,
	}
}

// lowerEnum lowers `enum` (spec §4.7). Two surface shapes are
// distinguished by whether any case carries a parameter vector:
//   - simple/raw-valued: `(enum Name caseA (caseB "raw"))` → a frozen
//     object literal, case name defaulting to its own name as the value.
//   - associated-values: `(enum Name (caseA [x y]) …)` → a class with a
//     `(tag, values)` constructor and one static factory method
//     per case.
func lowerEnum(list *ast.List) (ir.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum requires a name", list.Meta)
	}
	name, ok := list.Elements[1].(*ast.Symbol)
	if !ok {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum name must be a symbol", list.Elements[1].Pos())
	}
	cases := list.Elements[2:]
	if len(cases) == 0 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum requires at least one case", list.Meta)
	}

	if enumHasAssociatedValues(cases) {
		return lowerAssociatedEnum(name.Name, cases, list.Meta)
	}
	return lowerPlainEnum(name.Name, cases, list.Meta)
}

func enumHasAssociatedValues(cases []ast.Node) bool {
	for _, c := range cases {
		member, ok := c.(*ast.List)
		if !ok || len(member.Elements) != 2 {
			continue
		}
		if v, ok := member.Elements[1].(*ast.List); ok && v.Head() == "vector" {
			return true
		}
	}
	return false
}

func lowerPlainEnum(name string, cases []ast.Node, meta ast.Position) (ir.Node, error) {
	props := make([]ir.ObjectProperty, 0, len(cases))
	for _, c := range cases {
		switch v := c.(type) {
		case *ast.Symbol:
			props = append(props, ir.ObjectProperty{
				Key:   v.Name,
				Value: &ir.Literal{Kind: ir.LitString, Value: v.Name, Meta: v.Meta},
			})
		case *ast.List:
			if len(v.Elements) != 2 {
				return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum case must be a name or (name rawValue)", v.Meta)
			}
			caseName, ok := v.Elements[0].(*ast.Symbol)
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum case name must be a symbol", v.Elements[0].Pos())
			}
			raw, err := lowerExpr(v.Elements[1])
			if err != nil {
				return nil, err
			}
			props = append(props, ir.ObjectProperty{Key: caseName.Name, Value: raw})
		default:
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum case must be a name or (name rawValue)", c.Pos())
		}
	}

	obj := &ir.ObjectExpression{Properties: props, Meta: meta}
	frozen := &ir.CallExpression{
		Callee:    &ir.Identifier{Name: "__hql_deepFreeze", Meta: meta},
		Arguments: []ir.Node{obj},
		Meta:      meta,
	}
	return &ir.VariableDeclaration{
		Kind: "const",
		Declarations: []ir.VariableDeclarator{
			{ID: &ir.Identifier{Name: name, Meta: meta}, Init: frozen},
		},
		Meta: meta,
	}, nil
}

func lowerAssociatedEnum(name string, cases []ast.Node, meta ast.Position) (ir.Node, error) {
	ctor := ir.ClassMethod{
		Name: "constructor",
		Params: []ir.Node{
			&ir.Identifier{Name: "tag", Meta: meta},
			&ir.Identifier{Name: "values", Meta: meta},
		},
		Body: []ir.Node{
			assignThis("tag", &ir.Identifier{Name: "tag", Meta: meta}, meta),
			assignThis("values", &ir.Identifier{Name: "values", Meta: meta}, meta),
		},
	}
	methods := []ir.ClassMethod{ctor}

	for _, c := range cases {
		member, ok := c.(*ast.List)
		if !ok || len(member.Elements) != 2 {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "associated-value enum case must be (name [params])", c.Pos())
		}
		caseName, ok := member.Elements[0].(*ast.Symbol)
		if !ok {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum case name must be a symbol", member.Elements[0].Pos())
		}
		params, ok := member.Elements[1].(*ast.List)
		if !ok || params.Head() != "vector" {
			return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "associated-value enum case requires a parameter vector", member.Elements[1].Pos())
		}

		var factoryParams []ir.Node
		var arrayElements []ir.Node
		for _, p := range params.Tail() {
			sym, ok := p.(*ast.Symbol)
			if !ok {
				return nil, hqlerrors.New(hqlerrors.CodeInvalidExpr, "enum case parameter must be a symbol", p.Pos())
			}
			factoryParams = append(factoryParams, &ir.Identifier{Name: sym.Name, Meta: sym.Meta})
			arrayElements = append(arrayElements, &ir.Identifier{Name: sym.Name, Meta: sym.Meta})
		}

		newExpr := &ir.NewExpression{
			Callee: &ir.Identifier{Name: name, Meta: meta},
			Arguments: []ir.Node{
				&ir.Literal{Kind: ir.LitString, Value: caseName.Name, Meta: meta},
				&ir.ArrayExpression{Elements: arrayElements, Meta: meta},
			},
			Meta: meta,
		}
		methods = append(methods, ir.ClassMethod{
			Name:   caseName.Name,
			Params: factoryParams,
			Body:   []ir.Node{&ir.ReturnStatement{Argument: newExpr, Meta: meta}},
			Static: true,
		})
	}

	return &ir.ClassDeclaration{Name: name, Methods: methods, Meta: meta}, nil
}
