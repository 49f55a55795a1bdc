// Package syntax canonicalizes read-time sugar on the SExp tree before
// macro expansion: arrow lambdas, dot-method calls, nested property
// access, and rest-parameter markers inside parameter vectors.
package syntax

import (
	"strconv"
	"strings"

	"github.com/hlvm-dev/hql/pkg/ast"
	hqlerrors "github.com/hlvm-dev/hql/pkg/errors"
)

// Transform rewrites every form in n, returning a new tree with sugar
// forms replaced by their core equivalents. Nodes untouched by any rule
// keep their original identity (a new List is only built for
// containers that actually change), matching the tree-wide "don't
// allocate a new node unless something changed" discipline the reader
// and macro expander also rely on for fixpoint/identity checks.
func Transform(n ast.Node) (ast.Node, error) {
	list, ok := n.(*ast.List)
	if !ok {
		return n, nil
	}

	switch list.Head() {
	case "=>":
		return transformArrow(list)
	}

	if isDotMethodCall(list) {
		return transformDotMethodCall(list)
	}
	if isNestedPropertyAccess(list) {
		return transformNestedPropertyAccess(list)
	}
	if list.Head() == "fn" || list.Head() == "defn" || list.Head() == "macro" || list.Head() == "let" {
		return transformBindingForm(list)
	}

	return transformChildren(list)
}

// transformChildren recurses into every element, rebuilding the list only
// if a child actually changed.
func transformChildren(list *ast.List) (ast.Node, error) {
	elements := list.Elements
	changed := false
	for i, e := range list.Elements {
		re, err := Transform(e)
		if err != nil {
			return nil, err
		}
		if re != e {
			if !changed {
				elements = make([]ast.Node, len(list.Elements))
				copy(elements, list.Elements)
				changed = true
			}
			elements[i] = re
		}
	}
	if !changed {
		return list, nil
	}
	return &ast.List{Elements: elements, Meta: list.Meta}, nil
}

// maxDollarParam scans body for the highest $N implicit-parameter
// reference, returning -1 if none are present.
func maxDollarParam(n ast.Node) int {
	max := -1
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Symbol:
			if idx, ok := dollarIndex(v.Name); ok && idx > max {
				max = idx
			}
		case *ast.List:
			for _, e := range v.Elements {
				walk(e)
			}
		}
	}
	walk(n)
	return max
}

func dollarIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "$") || len(name) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// transformArrow canonicalizes `(=> body)` (implicit $0..$N params) and
// `(=> [x y] body)` (explicit params) into `(fn __anon [params...] body)`
// (spec §4.2).
func transformArrow(list *ast.List) (ast.Node, error) {
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidSyntaxSugar, "arrow lambda requires a body", list.Meta)
	}
	head := list.Elements[0]
	meta := list.Meta

	var params *ast.List
	var bodyForms []ast.Node

	if len(list.Elements) >= 2 {
		if vec, ok := list.Elements[1].(*ast.List); ok && vec.Head() == "vector" {
			params = vec
			bodyForms = list.Elements[2:]
		}
	}

	if params == nil {
		bodyForms = list.Elements[1:]
		maxIdx := -1
		for _, b := range bodyForms {
			if m := maxDollarParam(b); m > maxIdx {
				maxIdx = m
			}
		}
		names := make([]ast.Node, 0, maxIdx+1)
		names = append(names, ast.Sym("vector", meta))
		for i := 0; i <= maxIdx; i++ {
			names = append(names, ast.Sym("$"+strconv.Itoa(i), meta))
		}
		params = &ast.List{Elements: names, Meta: meta}
	}

	transformedParams, err := transformChildren(params)
	if err != nil {
		return nil, err
	}

	transformedBody := make([]ast.Node, 0, len(bodyForms))
	for _, b := range bodyForms {
		tb, err := Transform(b)
		if err != nil {
			return nil, err
		}
		transformedBody = append(transformedBody, tb)
	}

	elements := append([]ast.Node{
		ast.Sym("fn", head.Pos()),
		ast.Sym("__anon", meta),
		transformedParams,
	}, transformedBody...)
	return &ast.List{Elements: elements, Meta: meta}, nil
}

// isDotMethodCall reports whether list's head is a symbol beginning with
// '.', e.g. `(.method obj args...)`.
func isDotMethodCall(list *ast.List) bool {
	sym, ok := headSymbol(list)
	return ok && len(sym.Name) > 1 && strings.HasPrefix(sym.Name, ".")
}

func headSymbol(list *ast.List) (*ast.Symbol, bool) {
	if len(list.Elements) == 0 {
		return nil, false
	}
	sym, ok := list.Elements[0].(*ast.Symbol)
	return sym, ok
}

// transformDotMethodCall rewrites `(.method obj args...)` into
// `(js-call obj "method" args...)` (spec §4.2). The zero-argument shape
// `(.prop obj)` is ambiguous between a field read and a no-arg method
// call, so it is instead rewritten to `(js-interop obj "prop")` and left
// for the IR builder's InteropIIFE lowering (spec §4.7) to resolve at
// emission time by checking whether the resolved property is callable.
func transformDotMethodCall(list *ast.List) (ast.Node, error) {
	sym, _ := headSymbol(list)
	method := strings.TrimPrefix(sym.Name, ".")
	if len(list.Elements) < 2 {
		return nil, hqlerrors.New(hqlerrors.CodeInvalidSyntaxSugar, "dot-method call requires a receiver", list.Meta)
	}

	obj, err := Transform(list.Elements[1])
	if err != nil {
		return nil, err
	}

	if len(list.Elements) == 2 {
		return &ast.List{
			Elements: []ast.Node{ast.Sym("js-interop", sym.Meta), obj, ast.Str(method, sym.Meta)},
			Meta:     list.Meta,
		}, nil
	}

	args := make([]ast.Node, 0, len(list.Elements)-2)
	for _, a := range list.Elements[2:] {
		ta, err := Transform(a)
		if err != nil {
			return nil, err
		}
		args = append(args, ta)
	}

	elements := append([]ast.Node{
		ast.Sym("js-call", sym.Meta),
		obj,
		ast.Str(method, sym.Meta),
	}, args...)
	return &ast.List{Elements: elements, Meta: list.Meta}, nil
}

// isNestedPropertyAccess reports whether list is `(obj .prop)`: exactly
// two elements, the second a symbol starting with '.'.
func isNestedPropertyAccess(list *ast.List) bool {
	if len(list.Elements) != 2 {
		return false
	}
	sym, ok := list.Elements[1].(*ast.Symbol)
	return ok && len(sym.Name) > 1 && strings.HasPrefix(sym.Name, ".")
}

// transformNestedPropertyAccess rewrites `(obj .prop)` into
// `(js-get obj "prop")` (spec §4.2).
func transformNestedPropertyAccess(list *ast.List) (ast.Node, error) {
	obj, err := Transform(list.Elements[0])
	if err != nil {
		return nil, err
	}
	sym := list.Elements[1].(*ast.Symbol)
	prop := strings.TrimPrefix(sym.Name, ".")
	return &ast.List{
		Elements: []ast.Node{ast.Sym("js-get", list.Meta), obj, ast.Str(prop, sym.Meta)},
		Meta:     list.Meta,
	}, nil
}

// transformBindingForm recurses into fn/defn/macro/let forms, leaving
// their parameter vector's shape alone beyond recursing into defaults;
// recognizing a `vector`-headed list as the parameter list is already
// the reader's job (spec §4.2: "Vector parameter lists ... recognize
// [a b c] (head vector) as the parameter vector"), so this function only
// needs to walk every element for nested sugar and validate the rest
// marker.
func transformBindingForm(list *ast.List) (ast.Node, error) {
	elements := make([]ast.Node, len(list.Elements))
	copy(elements, list.Elements)
	changed := false

	for i, e := range list.Elements {
		if vec, ok := e.(*ast.List); ok && vec.Head() == "vector" {
			if err := validateRestMarker(vec); err != nil {
				return nil, err
			}
		}
		te, err := Transform(e)
		if err != nil {
			return nil, err
		}
		if te != e {
			elements[i] = te
			changed = true
		}
	}

	if !changed {
		return list, nil
	}
	return &ast.List{Elements: elements, Meta: list.Meta}, nil
}

// validateRestMarker enforces "exactly one '&' allowed, marking the
// following symbol as the rest parameter" (spec §4.2).
func validateRestMarker(params *ast.List) error {
	count := 0
	for i, e := range params.Tail() {
		sym, ok := e.(*ast.Symbol)
		if !ok || !sym.IsRestMarker() {
			continue
		}
		count++
		if count > 1 {
			return hqlerrors.New(hqlerrors.CodeInvalidSyntaxSugar, "at most one rest parameter marker '&' is allowed", sym.Meta)
		}
		if i+1 >= len(params.Tail()) {
			return hqlerrors.New(hqlerrors.CodeInvalidSyntaxSugar, "rest parameter marker '&' must be followed by a parameter name", sym.Meta)
		}
	}
	return nil
}
